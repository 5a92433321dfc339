package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Signal is the discrete trading action.
type Signal string

const (
	SignalBuy  Signal = "Buy"
	SignalSell Signal = "Sell"
	SignalHold Signal = "Hold"
)

// Horizon selects the short (intraday) or long (trend-following) parameter set.
type Horizon string

const (
	HorizonShort Horizon = "short"
	HorizonLong  Horizon = "long"
)

// ParseHorizon accepts "short"/"intraday" and "long"/"long-term".
func ParseHorizon(s string) (Horizon, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", "intraday":
		return HorizonShort, nil
	case "long", "long-term", "longterm":
		return HorizonLong, nil
	default:
		return "", fmt.Errorf("unknown horizon %q", s)
	}
}

// Rule selects the decision table variant within a horizon.
type Rule string

const (
	// RuleBasic decides on the moving averages alone.
	RuleBasic Rule = "basic"
	// RuleGated additionally requires RSI confirmation and, where
	// configured, a minimum ATR.
	RuleGated Rule = "gated"
)

// ParseRule parses a rule name. Empty means basic.
func ParseRule(s string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "basic":
		return RuleBasic, nil
	case "gated", "rsi", "rsi-atr":
		return RuleGated, nil
	default:
		return "", fmt.Errorf("unknown rule %q", s)
	}
}

// SignalResult is the output of a policy: the action and its exit prices,
// rounded to 2 decimal places.
type SignalResult struct {
	Signal   Signal          `json:"signal"`
	Target   decimal.Decimal `json:"target_price"`
	StopLoss decimal.Decimal `json:"stop_loss"`
}
