package strategy

import (
	"github.com/shopspring/decimal"

	"ProfitPredictor/internal/model"
)

// rsiMidline splits bullish from bearish momentum for the gated rules.
const rsiMidline = 50.0

// Bracket holds the exit offsets around an entry, as fractions (0.01 = 1%).
type Bracket struct {
	ProfitPct float64 `json:"profit_pct" yaml:"profit_pct"`
	StopPct   float64 `json:"stop_pct" yaml:"stop_pct"`
}

// Apply derives target and stop-loss for a signal at price, rounded to cents.
// Buy: target above, stop below. Sell: mirrored. Hold: both at price.
func (b Bracket) Apply(sig model.Signal, price float64) model.SignalResult {
	p := decimal.NewFromFloat(price)
	one := decimal.NewFromInt(1)
	profit := decimal.NewFromFloat(b.ProfitPct)
	stop := decimal.NewFromFloat(b.StopPct)

	res := model.SignalResult{Signal: sig, Target: p, StopLoss: p}
	switch sig {
	case model.SignalBuy:
		res.Target = p.Mul(one.Add(profit))
		res.StopLoss = p.Mul(one.Sub(stop))
	case model.SignalSell:
		res.Target = p.Mul(one.Sub(profit))
		res.StopLoss = p.Mul(one.Add(stop))
	default:
		res.Signal = model.SignalHold
	}
	res.Target = res.Target.Round(2)
	res.StopLoss = res.StopLoss.Round(2)
	return res
}

// Gate configures the confirmation checks of the gated rules.
type Gate struct {
	RSI      bool    // require RSI on the same side of 50
	ATRFloor float64 // hold when ATR < ATRFloor*price; 0 disables
}

// DecideShort applies the short-horizon table to the latest snapshot.
// Basic: fast EMA above slow → Buy, below → Sell, equal → Hold.
// Gated: an ATR under the floor forces Hold first; otherwise the crossover
// must be confirmed by RSI.
func DecideShort(snap model.IndicatorSnapshot, g Gate, b Bracket) model.SignalResult {
	if g.ATRFloor > 0 && snap.HasATR && snap.ATR < g.ATRFloor*snap.Price {
		return b.Apply(model.SignalHold, snap.Price)
	}
	sig := compare(snap.EMAFast, snap.EMASlow)
	if g.RSI && snap.HasRSI {
		sig = confirm(sig, snap.RSI)
	}
	return b.Apply(sig, snap.Price)
}

// DecideLong applies the long-horizon table: price above the long EMA → Buy,
// below → Sell, with RSI confirmation when gated.
func DecideLong(snap model.IndicatorSnapshot, g Gate, b Bracket) model.SignalResult {
	sig := compare(snap.Price, snap.EMALong)
	if g.RSI && snap.HasRSI {
		sig = confirm(sig, snap.RSI)
	}
	return b.Apply(sig, snap.Price)
}

func compare(lead, base float64) model.Signal {
	switch {
	case lead > base:
		return model.SignalBuy
	case lead < base:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

func confirm(sig model.Signal, rsi float64) model.Signal {
	switch {
	case sig == model.SignalBuy && rsi > rsiMidline:
		return model.SignalBuy
	case sig == model.SignalSell && rsi < rsiMidline:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}
