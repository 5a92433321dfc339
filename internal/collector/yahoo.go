package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ProfitPredictor/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements HistoryFetcher and SpotFetcher using the Yahoo
// Finance chart API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooFetcher creates a Yahoo Finance fetcher. An empty baseURL uses the
// public endpoint.
func NewYahooFetcher(baseURL, proxyURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	return &YahooFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the chart API. Quote arrays
// contain nulls for non-trading days.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, query url.Values) (*yahooChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(symbol), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	// Unknown symbols come back as 404 with a populated error object.
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	return &chart, nil
}

// FetchHistory returns daily bars in [start, end).
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.Unix()))
	q.Set("interval", "1d")

	chart, err := f.fetchChart(ctx, symbol, q)
	if err != nil {
		return model.PriceSeries{}, err
	}
	series := model.PriceSeries{Symbol: symbol}
	if len(chart.Chart.Result) == 0 {
		return series, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return series, nil
	}
	quote := result.Indicators.Quote[0]
	series.Points = make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			continue // skip null bars (holidays etc.)
		}
		p := model.PricePoint{Time: time.Unix(ts, 0).UTC(), Close: *c}
		p.Open = valueOr(at(quote.Open, i), *c)
		p.High = valueOr(at(quote.High, i), *c)
		p.Low = valueOr(at(quote.Low, i), *c)
		p.Volume = valueOr(at(quote.Volume, i), 0)
		series.Points = append(series.Points, p)
	}
	return series.Normalize(), nil
}

// FetchSpot returns the regular market price reported in the chart metadata.
func (f *YahooFetcher) FetchSpot(ctx context.Context, symbol string) (float64, bool, error) {
	q := url.Values{}
	q.Set("range", "1d")
	q.Set("interval", "1d")
	chart, err := f.fetchChart(ctx, symbol, q)
	if err != nil {
		return 0, false, err
	}
	if len(chart.Chart.Result) == 0 {
		return 0, false, nil
	}
	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, false, nil
	}
	return price, true, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
