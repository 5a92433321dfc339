package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ProfitPredictor/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// compactDays is roughly how far back the compact FX_DAILY output reaches.
const compactDays = 100

// AlphaVantageFetcher implements HistoryFetcher and SpotFetcher for currency
// pairs ("XAU/USD", "EUR/USD", "BTC/XAU") using the Alpha Vantage REST API.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = alphaVantageBaseURL
	}
	return &AlphaVantageFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// splitPair accepts "XAU/USD", "XAU-USD" or "XAUUSD".
func splitPair(symbol string) (from, to string, err error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, sep := range []string{"/", "-"} {
		if parts := strings.Split(s, sep); len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], nil
		}
	}
	if len(s) == 6 {
		return s[:3], s[3:], nil
	}
	return "", "", fmt.Errorf("alphavantage: %q is not a currency pair", symbol)
}

func (f *AlphaVantageFetcher) query(ctx context.Context, params url.Values, out any) error {
	params.Set("apikey", f.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	// Errors and throttling arrive as 200 with a single message field.
	var apiErr struct {
		ErrorMessage string `json:"Error Message"`
		Note         string `json:"Note"`
		Information  string `json:"Information"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil {
		switch {
		case apiErr.ErrorMessage != "":
			return fmt.Errorf("alphavantage api error: %s", apiErr.ErrorMessage)
		case apiErr.Note != "":
			return fmt.Errorf("alphavantage throttled: %s", apiErr.Note)
		case apiErr.Information != "":
			return fmt.Errorf("alphavantage: %s", apiErr.Information)
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("alphavantage decode: %w", err)
	}
	return nil
}

type avDailyBar struct {
	Open  string `json:"1. open"`
	High  string `json:"2. high"`
	Low   string `json:"3. low"`
	Close string `json:"4. close"`
}

// FetchHistory returns FX_DAILY bars with dates in [start, end).
func (f *AlphaVantageFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	from, to, err := splitPair(symbol)
	if err != nil {
		return model.PriceSeries{}, err
	}
	outputSize := "compact"
	if end.Sub(start) > compactDays*24*time.Hour {
		outputSize = "full"
	}
	params := url.Values{}
	params.Set("function", "FX_DAILY")
	params.Set("from_symbol", from)
	params.Set("to_symbol", to)
	params.Set("outputsize", outputSize)

	var result struct {
		Series map[string]avDailyBar `json:"Time Series FX (Daily)"`
	}
	if err := f.query(ctx, params, &result); err != nil {
		return model.PriceSeries{}, err
	}

	series := model.PriceSeries{Symbol: symbol}
	for date, bar := range result.Series {
		ts, err := time.Parse("2006-01-02", date)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("alphavantage: bad date %q: %w", date, err)
		}
		if ts.Before(start.UTC().Truncate(24*time.Hour)) || !ts.Before(end) {
			continue
		}
		p, err := bar.point(ts)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("alphavantage %s: %w", date, err)
		}
		series.Points = append(series.Points, p)
	}
	// map iteration order is random
	return series.Normalize(), nil
}

func (b avDailyBar) point(ts time.Time) (model.PricePoint, error) {
	vals := make([]float64, 4)
	for i, s := range []string{b.Open, b.High, b.Low, b.Close} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.PricePoint{}, fmt.Errorf("parse %q: %w", s, err)
		}
		vals[i] = v
	}
	return model.PricePoint{Time: ts, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}, nil
}

// FetchSpot returns the realtime exchange rate for a pair.
func (f *AlphaVantageFetcher) FetchSpot(ctx context.Context, pair string) (float64, bool, error) {
	from, to, err := splitPair(pair)
	if err != nil {
		return 0, false, err
	}
	params := url.Values{}
	params.Set("function", "CURRENCY_EXCHANGE_RATE")
	params.Set("from_currency", from)
	params.Set("to_currency", to)

	var result struct {
		Rate *struct {
			ExchangeRate string `json:"5. Exchange Rate"`
		} `json:"Realtime Currency Exchange Rate"`
	}
	if err := f.query(ctx, params, &result); err != nil {
		return 0, false, err
	}
	if result.Rate == nil || result.Rate.ExchangeRate == "" {
		return 0, false, nil
	}
	price, err := strconv.ParseFloat(result.Rate.ExchangeRate, 64)
	if err != nil {
		return 0, false, fmt.Errorf("alphavantage: parse rate %q: %w", result.Rate.ExchangeRate, err)
	}
	return price, true, nil
}
