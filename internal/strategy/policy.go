package strategy

import (
	"fmt"

	"ProfitPredictor/internal/calculator"
	"ProfitPredictor/internal/model"
)

// DefaultATRFloor is the minimum ATR, as a fraction of price, below which the
// gated short rule refuses to signal (0.03%).
const DefaultATRFloor = 0.0003

// Policy is a fully parameterized decision rule for one horizon.
type Policy struct {
	Name      string        `json:"name" yaml:"name"`
	Horizon   model.Horizon `json:"horizon" yaml:"horizon"`
	Rule      model.Rule    `json:"rule" yaml:"rule"`
	FastSpan  int           `json:"fast_span,omitempty" yaml:"fast_span"`
	SlowSpan  int           `json:"slow_span,omitempty" yaml:"slow_span"`
	LongSpan  int           `json:"long_span,omitempty" yaml:"long_span"`
	RSIPeriod int           `json:"rsi_period,omitempty" yaml:"rsi_period"`
	ATRPeriod int           `json:"atr_period,omitempty" yaml:"atr_period"`
	ATRFloor  float64       `json:"atr_floor,omitempty" yaml:"atr_floor"`
	Bracket   `yaml:",inline"`
}

// Presets lists the built-in policies, one per horizon and rule.
var Presets = []Policy{
	{
		Name: "short/basic", Horizon: model.HorizonShort, Rule: model.RuleBasic,
		FastSpan: 3, SlowSpan: 5,
		Bracket: Bracket{ProfitPct: 0.015, StopPct: 0.01},
	},
	{
		Name: "short/gated", Horizon: model.HorizonShort, Rule: model.RuleGated,
		FastSpan: 10, SlowSpan: 30, RSIPeriod: 14, ATRPeriod: 14, ATRFloor: DefaultATRFloor,
		Bracket: Bracket{ProfitPct: 0.05, StopPct: 0.03},
	},
	{
		Name: "long/basic", Horizon: model.HorizonLong, Rule: model.RuleBasic,
		LongSpan: 200,
		Bracket:  Bracket{ProfitPct: 0.09, StopPct: 0.03},
	},
	{
		Name: "long/gated", Horizon: model.HorizonLong, Rule: model.RuleGated,
		LongSpan: 200, RSIPeriod: 14,
		Bracket: Bracket{ProfitPct: 0.05, StopPct: 0.02},
	},
}

// PolicyName builds the "horizon/rule" key used for presets.
func PolicyName(h model.Horizon, r model.Rule) string {
	return string(h) + "/" + string(r)
}

// Preset returns the built-in policy for a horizon and rule.
func Preset(h model.Horizon, r model.Rule) (Policy, bool) {
	return Find(Presets, h, r)
}

// Find returns the policy matching horizon and rule from policies.
func Find(policies []Policy, h model.Horizon, r model.Rule) (Policy, bool) {
	for _, p := range policies {
		if p.Horizon == h && p.Rule == r {
			return p, true
		}
	}
	return Policy{}, false
}

// Validate checks spans, periods and the fraction convention for percentages.
func (p Policy) Validate() error {
	if p.FastSpan < 0 || p.SlowSpan < 0 || p.LongSpan < 0 || p.RSIPeriod < 0 || p.ATRPeriod < 0 {
		return fmt.Errorf("policy %s: spans and periods must not be negative", p.Name)
	}
	switch p.Horizon {
	case model.HorizonShort:
		if p.FastSpan == 0 || p.SlowSpan == 0 {
			return fmt.Errorf("policy %s: short horizon needs fast_span and slow_span", p.Name)
		}
		if p.FastSpan >= p.SlowSpan {
			return fmt.Errorf("policy %s: fast_span %d must be below slow_span %d", p.Name, p.FastSpan, p.SlowSpan)
		}
	case model.HorizonLong:
		if p.LongSpan == 0 {
			return fmt.Errorf("policy %s: long horizon needs long_span", p.Name)
		}
	default:
		return fmt.Errorf("policy %s: unknown horizon %q", p.Name, p.Horizon)
	}
	switch p.Rule {
	case model.RuleBasic:
	case model.RuleGated:
		if p.RSIPeriod == 0 {
			return fmt.Errorf("policy %s: gated rule needs rsi_period", p.Name)
		}
		if p.ATRFloor > 0 && p.ATRPeriod == 0 {
			return fmt.Errorf("policy %s: atr_floor needs atr_period", p.Name)
		}
	default:
		return fmt.Errorf("policy %s: unknown rule %q", p.Name, p.Rule)
	}
	if p.ATRFloor < 0 || p.ATRFloor >= 1 {
		return fmt.Errorf("policy %s: atr_floor %.6f must be a fraction in [0, 1)", p.Name, p.ATRFloor)
	}
	if p.ProfitPct <= 0 || p.ProfitPct >= 1 {
		return fmt.Errorf("policy %s: profit_pct %.4f must be a fraction in (0, 1)", p.Name, p.ProfitPct)
	}
	if p.StopPct <= 0 || p.StopPct >= 1 {
		return fmt.Errorf("policy %s: stop_pct %.4f must be a fraction in (0, 1)", p.Name, p.StopPct)
	}
	return nil
}

// Spec returns the indicators the policy reads.
func (p Policy) Spec() calculator.SnapshotSpec {
	var s calculator.SnapshotSpec
	switch p.Horizon {
	case model.HorizonShort:
		s.FastSpan, s.SlowSpan = p.FastSpan, p.SlowSpan
	case model.HorizonLong:
		s.LongSpan = p.LongSpan
	}
	if p.Rule == model.RuleGated {
		s.RSIPeriod = p.RSIPeriod
		if p.ATRFloor > 0 {
			s.ATRPeriod = p.ATRPeriod
		}
	}
	return s
}

// Gate returns the confirmation checks for the policy's rule.
func (p Policy) Gate() Gate {
	if p.Rule != model.RuleGated {
		return Gate{}
	}
	return Gate{RSI: true, ATRFloor: p.ATRFloor}
}

// Decide maps a snapshot to a signal with exit prices.
func (p Policy) Decide(snap model.IndicatorSnapshot) model.SignalResult {
	if p.Horizon == model.HorizonLong {
		return DecideLong(snap, p.Gate(), p.Bracket)
	}
	return DecideShort(snap, p.Gate(), p.Bracket)
}
