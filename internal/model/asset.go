package model

// AssetClass groups instruments for display.
type AssetClass string

const (
	ClassCrypto    AssetClass = "crypto"
	ClassMetal     AssetClass = "metal"
	ClassForex     AssetClass = "forex"
	ClassCommodity AssetClass = "commodity"
)

// Asset maps a user-facing instrument to the identifiers each backend expects.
type Asset struct {
	ID            string     `json:"id" yaml:"id"`
	Name          string     `json:"name" yaml:"name"`
	Class         AssetClass `json:"class" yaml:"class"`
	Symbol        string     `json:"symbol" yaml:"symbol"`                 // history symbol, e.g. "BTC-USD" or "XAU/USD"
	HistorySource string     `json:"history_source" yaml:"history_source"` // "yahoo" or "alphavantage"
	SpotSource    string     `json:"spot_source,omitempty" yaml:"spot_source"`
	SpotID        string     `json:"spot_id,omitempty" yaml:"spot_id"` // e.g. "bitcoin" or "BTC/XAU"
}

// DefaultAssets is the built-in catalog.
func DefaultAssets() []Asset {
	return []Asset{
		{ID: "BTC-USD", Name: "Bitcoin", Class: ClassCrypto, Symbol: "BTC-USD", HistorySource: "yahoo", SpotSource: "coingecko", SpotID: "bitcoin"},
		{ID: "ETH-USD", Name: "Ethereum", Class: ClassCrypto, Symbol: "ETH-USD", HistorySource: "yahoo", SpotSource: "coingecko", SpotID: "ethereum"},
		{ID: "GC=F", Name: "Gold Futures", Class: ClassMetal, Symbol: "GC=F", HistorySource: "yahoo", SpotSource: "yahoo", SpotID: "GC=F"},
		{ID: "XAU-USD", Name: "Gold Spot (XAU/USD)", Class: ClassMetal, Symbol: "XAU/USD", HistorySource: "alphavantage", SpotSource: "alphavantage", SpotID: "XAU/USD"},
		{ID: "SI=F", Name: "Silver Futures", Class: ClassMetal, Symbol: "SI=F", HistorySource: "yahoo", SpotSource: "yahoo", SpotID: "SI=F"},
		{ID: "CL=F", Name: "Crude Oil", Class: ClassCommodity, Symbol: "CL=F", HistorySource: "yahoo", SpotSource: "yahoo", SpotID: "CL=F"},
		{ID: "EURUSD=X", Name: "EUR/USD", Class: ClassForex, Symbol: "EURUSD=X", HistorySource: "yahoo", SpotSource: "alphavantage", SpotID: "EUR/USD"},
		{ID: "BTC-XAU", Name: "Bitcoin in Gold", Class: ClassCrypto, Symbol: "BTC/XAU", HistorySource: "alphavantage", SpotSource: "alphavantage", SpotID: "BTC/XAU"},
	}
}
