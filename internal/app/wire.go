// Package app builds the shared components from configuration.
package app

import (
	"go.uber.org/zap"

	"ProfitPredictor/internal/collector"
	"ProfitPredictor/internal/config"
	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/metrics"
)

// mockBasePrice seeds generated series in mock mode.
const mockBasePrice = 100

// NewCollector wires the configured price backends. In mock mode every
// backend name is served by generated data.
func NewCollector(cfg *config.Config, m *metrics.Metrics) *collector.Collector {
	log := logger.Named("app")
	var (
		history []collector.HistoryFetcher
		spot    []collector.SpotFetcher
	)

	if cfg.Sources.Mock {
		for _, name := range []string{config.SourceYahoo, config.SourceAlphaVantage, config.SourceCoinGecko} {
			mf := &collector.MockFetcher{Source: name, BasePrice: mockBasePrice}
			history = append(history, mf)
			spot = append(spot, mf)
		}
		log.Warn("using mock price data")
	} else {
		yahoo := collector.NewYahooFetcher(cfg.Sources.Yahoo.BaseURL, cfg.Proxy)
		history = append(history, yahoo)
		spot = append(spot, yahoo)

		if cfg.Sources.AlphaVantage.APIKey != "" {
			av := collector.NewAlphaVantageFetcher(cfg.Sources.AlphaVantage.BaseURL, cfg.Sources.AlphaVantage.APIKey, cfg.Proxy)
			history = append(history, av)
			spot = append(spot, av)
		} else {
			log.Warn("ALPHAVANTAGE_API_KEY not set, alphavantage assets are unavailable")
		}

		spot = append(spot, collector.NewCoinGeckoFetcher(cfg.Sources.CoinGecko.BaseURL, cfg.Sources.CoinGecko.APIKey, cfg.Proxy))
	}

	col := collector.NewCollector(cfg.Assets, history, spot)
	col.Metrics = m
	log.Info("collector ready", zap.Int("assets", len(cfg.Assets)), zap.Int("history_sources", len(history)))
	return col
}
