package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProfitPredictor/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertResult(t *testing.T, got model.SignalResult, sig model.Signal, target, stop string) {
	t.Helper()
	assert.Equal(t, sig, got.Signal)
	assert.True(t, got.Target.Equal(dec(target)), "target: want %s, got %s", target, got.Target)
	assert.True(t, got.StopLoss.Equal(dec(stop)), "stop: want %s, got %s", stop, got.StopLoss)
}

func preset(t *testing.T, h model.Horizon, r model.Rule) Policy {
	t.Helper()
	p, ok := Preset(h, r)
	require.True(t, ok)
	return p
}

func TestDecideShort_BasicTable(t *testing.T) {
	b := Bracket{ProfitPct: 0.015, StopPct: 0.01}
	tests := []struct {
		name         string
		fast, slow   float64
		sig          model.Signal
		target, stop string
	}{
		{"fast above slow", 6, 3, model.SignalBuy, "101.50", "99.00"},
		{"fast below slow", 3, 5, model.SignalSell, "98.50", "101.00"},
		{"equal", 4, 4, model.SignalHold, "100.00", "100.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := model.IndicatorSnapshot{Price: 100, EMAFast: tt.fast, EMASlow: tt.slow}
			assertResult(t, DecideShort(snap, Gate{}, b), tt.sig, tt.target, tt.stop)
		})
	}
}

func TestDecideShort_GatedTable(t *testing.T) {
	p := preset(t, model.HorizonShort, model.RuleGated)
	tests := []struct {
		name         string
		fast, slow   float64
		rsi, atr     float64
		sig          model.Signal
		target, stop string
	}{
		{"buy confirmed", 6, 3, 60, 1.0, model.SignalBuy, "105.00", "97.00"},
		{"sell confirmed", 3, 6, 40, 1.0, model.SignalSell, "95.00", "103.00"},
		{"buy without momentum", 6, 3, 45, 1.0, model.SignalHold, "100.00", "100.00"},
		{"sell without momentum", 3, 6, 55, 1.0, model.SignalHold, "100.00", "100.00"},
		{"neutral rsi", 6, 3, 50, 1.0, model.SignalHold, "100.00", "100.00"},
		{"atr below floor", 6, 3, 60, 0.0001, model.SignalHold, "100.00", "100.00"},
		{"atr just above floor", 6, 3, 60, 0.031, model.SignalBuy, "105.00", "97.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := model.IndicatorSnapshot{
				Price: 100, EMAFast: tt.fast, EMASlow: tt.slow,
				RSI: tt.rsi, HasRSI: true, ATR: tt.atr, HasATR: true,
			}
			assertResult(t, p.Decide(snap), tt.sig, tt.target, tt.stop)
		})
	}
}

func TestDecideLong_Tables(t *testing.T) {
	basic := preset(t, model.HorizonLong, model.RuleBasic)
	gated := preset(t, model.HorizonLong, model.RuleGated)

	snap := model.IndicatorSnapshot{Price: 110, EMALong: 100}
	assertResult(t, basic.Decide(snap), model.SignalBuy, "119.90", "106.70")

	snap = model.IndicatorSnapshot{Price: 90, EMALong: 100}
	assertResult(t, basic.Decide(snap), model.SignalSell, "81.90", "92.70")

	snap = model.IndicatorSnapshot{Price: 100, EMALong: 100}
	assertResult(t, basic.Decide(snap), model.SignalHold, "100.00", "100.00")

	snap = model.IndicatorSnapshot{Price: 110, EMALong: 100, RSI: 65, HasRSI: true}
	assertResult(t, gated.Decide(snap), model.SignalBuy, "115.50", "107.80")

	snap = model.IndicatorSnapshot{Price: 110, EMALong: 100, RSI: 35, HasRSI: true}
	assertResult(t, gated.Decide(snap), model.SignalHold, "110.00", "110.00")
}

func TestBracket_RoundsAtBoundary(t *testing.T) {
	res := Bracket{ProfitPct: 0.015, StopPct: 0.01}.Apply(model.SignalBuy, 1.23456)
	assert.Equal(t, "1.25", res.Target.StringFixed(2))
	assert.Equal(t, "1.22", res.StopLoss.StringFixed(2))

	hold := Bracket{ProfitPct: 0.015, StopPct: 0.01}.Apply(model.SignalHold, 1.23456)
	assert.Equal(t, "1.23", hold.Target.StringFixed(2))
	assert.Equal(t, "1.23", hold.StopLoss.StringFixed(2))
}

func trend(start, step float64, n int) model.PriceSeries {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]model.PricePoint, n)
	for i := range pts {
		c := start + step*float64(i)
		pts[i] = model.PricePoint{Time: t0.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c}
	}
	return model.PriceSeries{Symbol: "TREND", Points: pts}
}

func TestEvaluate_Trends(t *testing.T) {
	for _, p := range Presets {
		t.Run(p.Name, func(t *testing.T) {
			_, up, err := Evaluate(trend(100, 1, 60), p)
			require.NoError(t, err)
			assert.Equal(t, model.SignalBuy, up.Signal)

			_, down, err := Evaluate(trend(200, -1, 60), p)
			require.NoError(t, err)
			assert.Equal(t, model.SignalSell, down.Signal)
		})
	}
}

func TestEvaluate_FlatSeriesHolds(t *testing.T) {
	for _, p := range Presets {
		_, res, err := Evaluate(trend(100, 0, 30), p)
		require.NoError(t, err)
		assert.Equal(t, model.SignalHold, res.Signal, p.Name)
	}
}

func TestEvaluate_SinglePoint(t *testing.T) {
	p := preset(t, model.HorizonShort, model.RuleGated)
	snap, res, err := Evaluate(trend(100, 0, 1), p)
	require.NoError(t, err)
	assert.False(t, snap.Warm())
	assert.Equal(t, model.SignalHold, res.Signal)
}

func TestEvaluate_EmptyAndInvalid(t *testing.T) {
	p := preset(t, model.HorizonShort, model.RuleBasic)
	_, _, err := Evaluate(model.PriceSeries{Symbol: "X"}, p)
	assert.ErrorIs(t, err, ErrEmptySeries)

	s := trend(100, 1, 3)
	s.Points[2].Time = s.Points[0].Time
	_, _, err = Evaluate(s, p)
	assert.Error(t, err)
}

func TestPolicy_Validate(t *testing.T) {
	for _, p := range Presets {
		assert.NoError(t, p.Validate(), p.Name)
	}

	bad := preset(t, model.HorizonShort, model.RuleGated)
	bad.ProfitPct = 5.0 // whole percent, not a fraction
	assert.Error(t, bad.Validate())

	bad = preset(t, model.HorizonShort, model.RuleBasic)
	bad.FastSpan, bad.SlowSpan = 30, 10
	assert.Error(t, bad.Validate())

	bad = preset(t, model.HorizonLong, model.RuleGated)
	bad.RSIPeriod = 0
	assert.Error(t, bad.Validate())

	bad = preset(t, model.HorizonLong, model.RuleBasic)
	bad.Horizon = "weekly"
	assert.Error(t, bad.Validate())
}

func TestPolicy_SpecOnlyRequestsWhatItReads(t *testing.T) {
	s := preset(t, model.HorizonShort, model.RuleBasic).Spec()
	assert.Equal(t, 0, s.RSIPeriod)
	assert.Equal(t, 0, s.ATRPeriod)
	assert.Equal(t, 5, s.Lookback())

	s = preset(t, model.HorizonLong, model.RuleGated).Spec()
	assert.Equal(t, 200, s.LongSpan)
	assert.Equal(t, 14, s.RSIPeriod)
	assert.Equal(t, 0, s.ATRPeriod)
}
