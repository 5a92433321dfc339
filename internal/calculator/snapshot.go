package calculator

import (
	"errors"
	"fmt"

	"ProfitPredictor/internal/model"
)

// ErrEmptySeries is returned when there is nothing to compute over.
var ErrEmptySeries = errors.New("empty price series")

// SnapshotSpec selects which indicators to compute. A zero span or period
// disables that indicator.
type SnapshotSpec struct {
	FastSpan  int
	SlowSpan  int
	LongSpan  int
	RSIPeriod int
	ATRPeriod int
}

// Lookback returns the longest window the snapshot needs.
func (s SnapshotSpec) Lookback() int {
	n := 0
	for _, v := range []int{s.FastSpan, s.SlowSpan, s.LongSpan, s.RSIPeriod + 1, s.ATRPeriod} {
		if v > n {
			n = v
		}
	}
	return n
}

// Snapshot computes the requested indicators over the whole series and
// returns their values at the latest point.
func Snapshot(series model.PriceSeries, spec SnapshotSpec) (model.IndicatorSnapshot, error) {
	if series.Empty() {
		return model.IndicatorSnapshot{}, ErrEmptySeries
	}
	closes := series.Closes()
	last := len(closes) - 1
	snap := model.IndicatorSnapshot{
		Price:    closes[last],
		Points:   len(closes),
		Lookback: spec.Lookback(),
	}

	lastEMA := func(span int) (float64, error) {
		ema, err := CalculateEMA(closes, span)
		if err != nil {
			return 0, fmt.Errorf("ema(%d): %w", span, err)
		}
		return ema[last], nil
	}

	var err error
	if spec.FastSpan > 0 {
		if snap.EMAFast, err = lastEMA(spec.FastSpan); err != nil {
			return snap, err
		}
	}
	if spec.SlowSpan > 0 {
		if snap.EMASlow, err = lastEMA(spec.SlowSpan); err != nil {
			return snap, err
		}
	}
	if spec.LongSpan > 0 {
		if snap.EMALong, err = lastEMA(spec.LongSpan); err != nil {
			return snap, err
		}
	}
	if spec.RSIPeriod > 0 {
		rsi, err := CalculateRSI(closes, spec.RSIPeriod)
		if err != nil {
			return snap, fmt.Errorf("rsi(%d): %w", spec.RSIPeriod, err)
		}
		snap.RSI = rsi[last]
		snap.HasRSI = true
	}
	if spec.ATRPeriod > 0 {
		atr, err := CalculateATR(series.Points, spec.ATRPeriod)
		if err != nil {
			return snap, fmt.Errorf("atr(%d): %w", spec.ATRPeriod, err)
		}
		snap.ATR = atr[last]
		snap.HasATR = true
	}
	return snap, nil
}
