package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const coinGeckoBaseURL = "https://api.coingecko.com"

// CoinGeckoFetcher implements SpotFetcher using the CoinGecko simple price API.
// Ids are CoinGecko coin ids such as "bitcoin" or "ethereum".
type CoinGeckoFetcher struct {
	BaseURL  string
	APIKey   string // optional demo key
	Currency string
	Client   *http.Client
}

// NewCoinGeckoFetcher creates a spot fetcher quoting in USD.
func NewCoinGeckoFetcher(baseURL, apiKey, proxyURL string) *CoinGeckoFetcher {
	if baseURL == "" {
		baseURL = coinGeckoBaseURL
	}
	return &CoinGeckoFetcher{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		Currency: "usd",
		Client:   newHTTPClient(proxyURL),
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

func (f *CoinGeckoFetcher) FetchSpot(ctx context.Context, id string) (float64, bool, error) {
	coinID := strings.ToLower(strings.TrimSpace(id))
	q := url.Values{}
	q.Set("ids", coinID)
	q.Set("vs_currencies", f.Currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/api/v3/simple/price?"+q.Encode(), nil)
	if err != nil {
		return 0, false, err
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, false, fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode, string(body))
	}

	var prices map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return 0, false, fmt.Errorf("coingecko decode: %w", err)
	}
	quote, ok := prices[coinID]
	if !ok {
		return 0, false, nil
	}
	price, ok := quote[f.Currency]
	return price, ok, nil
}
