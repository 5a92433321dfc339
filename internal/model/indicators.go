package model

// IndicatorSnapshot holds indicator values at the latest point of a series.
type IndicatorSnapshot struct {
	Price   float64 `json:"price"`
	EMAFast float64 `json:"ema_fast,omitempty"`
	EMASlow float64 `json:"ema_slow,omitempty"`
	EMALong float64 `json:"ema_long,omitempty"`
	RSI     float64 `json:"rsi,omitempty"`
	ATR     float64 `json:"atr,omitempty"`
	HasRSI  bool    `json:"has_rsi"`
	HasATR  bool    `json:"has_atr"`

	Points   int `json:"points"`   // series length the values were computed over
	Lookback int `json:"lookback"` // longest window requested
}

// Warm reports whether the series covered the longest lookback window.
// Values from a cold series are still defined but carry less weight.
func (s IndicatorSnapshot) Warm() bool {
	return s.Points >= s.Lookback
}
