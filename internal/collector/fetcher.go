package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"ProfitPredictor/internal/model"
)

// HistoryFetcher returns daily bars for a symbol between start and end.
// No data in range is an empty series, not an error.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error)
	Name() string
}

// SpotFetcher returns a live reference price. ok=false with a nil error
// means the backend has no quote for id.
type SpotFetcher interface {
	FetchSpot(ctx context.Context, id string) (price float64, ok bool, err error)
	Name() string
}

// newHTTPClient builds a client with a 30s timeout and optional proxy.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
