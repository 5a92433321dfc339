package collector

import (
	"context"
	"sync/atomic"
	"time"

	"ProfitPredictor/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Without a fixed series it generates a gentle uptrend around BasePrice.
type MockFetcher struct {
	Source    string
	BasePrice float64
	Series    map[string]model.PriceSeries
	Spots     map[string]float64
	Err       error
	SpotErr   error

	historyCalls atomic.Int64
	spotCalls    atomic.Int64
}

func (m *MockFetcher) Name() string {
	if m.Source == "" {
		return "mock"
	}
	return m.Source
}

func (m *MockFetcher) FetchHistory(_ context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	m.historyCalls.Add(1)
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	if s, ok := m.Series[symbol]; ok {
		return s, nil
	}
	if m.Series != nil {
		return model.PriceSeries{Symbol: symbol}, nil
	}
	days := int(end.Sub(start).Hours() / 24)
	return model.PriceSeries{Symbol: symbol, Points: generateMockBars(m.BasePrice, days, end)}, nil
}

func (m *MockFetcher) FetchSpot(_ context.Context, id string) (float64, bool, error) {
	m.spotCalls.Add(1)
	if m.SpotErr != nil {
		return 0, false, m.SpotErr
	}
	p, ok := m.Spots[id]
	return p, ok, nil
}

// HistoryCalls reports how many history fetches were made.
func (m *MockFetcher) HistoryCalls() int64 { return m.historyCalls.Load() }

// SpotCalls reports how many spot fetches were made.
func (m *MockFetcher) SpotCalls() int64 { return m.spotCalls.Load() }

func generateMockBars(basePrice float64, count int, end time.Time) []model.PricePoint {
	if basePrice == 0 {
		basePrice = 100
	}
	end = end.UTC().Truncate(24 * time.Hour)
	bars := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PricePoint{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
