package strategy

import (
	"fmt"

	"ProfitPredictor/internal/calculator"
	"ProfitPredictor/internal/model"
)

// ErrEmptySeries means no result is available for the series.
var ErrEmptySeries = calculator.ErrEmptySeries

// Evaluate computes the policy's indicators over series and decides on the
// latest point. An empty series yields ErrEmptySeries, never a Hold.
func Evaluate(series model.PriceSeries, p Policy) (model.IndicatorSnapshot, model.SignalResult, error) {
	if series.Empty() {
		return model.IndicatorSnapshot{}, model.SignalResult{}, ErrEmptySeries
	}
	if err := series.Validate(); err != nil {
		return model.IndicatorSnapshot{}, model.SignalResult{}, fmt.Errorf("invalid series %s: %w", series.Symbol, err)
	}
	snap, err := calculator.Snapshot(series, p.Spec())
	if err != nil {
		return snap, model.SignalResult{}, fmt.Errorf("compute indicators: %w", err)
	}
	return snap, p.Decide(snap), nil
}
