package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/metrics"
	"ProfitPredictor/internal/model"
	"ProfitPredictor/internal/strategy"
)

// Lookback bounds for a request, in calendar days.
const (
	MinDays     = 7
	MaxDays     = 90
	DefaultDays = 30
)

var (
	// ErrUnknownAsset means the asset id is not in the catalog.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrNoData means the provider returned an empty series: no result is available.
	ErrNoData = errors.New("no data for asset")
)

// DefaultSpotTTL is how long a live quote is reused.
const DefaultSpotTTL = 30 * time.Second

type spotEntry struct {
	price   float64
	ok      bool
	fetched time.Time
}

// Collector resolves assets to their backends, fetches data and evaluates
// policies over it.
type Collector struct {
	assets  []model.Asset
	byID    map[string]model.Asset
	history map[string]HistoryFetcher
	spot    map[string]SpotFetcher

	SpotTTL time.Duration
	Metrics *metrics.Metrics
	Now     func() time.Time

	mu        sync.Mutex
	spotCache map[string]spotEntry
	log       *zap.Logger
}

// NewCollector creates a Collector over the given catalog and backends.
// Backends are keyed by Name().
func NewCollector(assets []model.Asset, history []HistoryFetcher, spot []SpotFetcher) *Collector {
	c := &Collector{
		assets:    assets,
		byID:      make(map[string]model.Asset, len(assets)),
		history:   make(map[string]HistoryFetcher, len(history)),
		spot:      make(map[string]SpotFetcher, len(spot)),
		SpotTTL:   DefaultSpotTTL,
		Now:       time.Now,
		spotCache: make(map[string]spotEntry),
		log:       logger.Named("collector"),
	}
	for _, a := range assets {
		c.byID[a.ID] = a
	}
	for _, h := range history {
		c.history[h.Name()] = h
	}
	for _, s := range spot {
		c.spot[s.Name()] = s
	}
	return c
}

// Assets returns the catalog in configuration order.
func (c *Collector) Assets() []model.Asset {
	out := make([]model.Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

// Asset looks up a catalog entry.
func (c *Collector) Asset(id string) (model.Asset, error) {
	a, ok := c.byID[id]
	if !ok {
		return model.Asset{}, fmt.Errorf("%w: %s", ErrUnknownAsset, id)
	}
	return a, nil
}

// ValidateDays checks a lookback against [MinDays, MaxDays].
func ValidateDays(days int) error {
	if days < MinDays || days > MaxDays {
		return fmt.Errorf("days %d out of range [%d, %d]", days, MinDays, MaxDays)
	}
	return nil
}

// Collect fetches days of history ending now, plus the live spot price when
// the asset has a spot source. Spot failures are logged and leave Spot nil.
func (c *Collector) Collect(ctx context.Context, assetID string, days int) (*model.MarketData, error) {
	asset, err := c.Asset(assetID)
	if err != nil {
		return nil, err
	}
	hf, ok := c.history[asset.HistorySource]
	if !ok {
		return nil, fmt.Errorf("asset %s: history source %q not configured", asset.ID, asset.HistorySource)
	}

	end := c.Now()
	start := end.AddDate(0, 0, -days)
	series, err := hf.FetchHistory(ctx, asset.Symbol, start, end)
	if err != nil {
		c.fetchFailed(hf.Name())
		return nil, fmt.Errorf("fetch history %s from %s: %w", asset.Symbol, hf.Name(), err)
	}

	data := &model.MarketData{
		Asset:     asset,
		Series:    series.Normalize(),
		FetchedAt: end,
	}
	if price, ok := c.fetchSpot(ctx, asset); ok {
		data.Spot = &price
	}
	return data, nil
}

func (c *Collector) fetchSpot(ctx context.Context, asset model.Asset) (float64, bool) {
	if asset.SpotSource == "" {
		return 0, false
	}
	sf, ok := c.spot[asset.SpotSource]
	if !ok {
		c.log.Warn("spot source not configured",
			zap.String("asset", asset.ID), zap.String("source", asset.SpotSource))
		return 0, false
	}
	id := asset.SpotID
	if id == "" {
		id = asset.Symbol
	}
	key := sf.Name() + ":" + id
	now := c.Now()

	c.mu.Lock()
	if e, hit := c.spotCache[key]; hit && now.Sub(e.fetched) < c.SpotTTL {
		c.mu.Unlock()
		return e.price, e.ok
	}
	c.mu.Unlock()

	price, ok, err := sf.FetchSpot(ctx, id)
	if err != nil {
		c.fetchFailed(sf.Name())
		c.log.Warn("spot price unavailable",
			zap.String("asset", asset.ID), zap.String("source", sf.Name()), zap.Error(err))
		return 0, false
	}

	c.mu.Lock()
	c.spotCache[key] = spotEntry{price: price, ok: ok, fetched: now}
	c.mu.Unlock()
	return price, ok
}

func (c *Collector) fetchFailed(source string) {
	if c.Metrics != nil {
		c.Metrics.FetchErrors.WithLabelValues(source).Inc()
	}
}

// Request selects what to evaluate. Every parameter is explicit.
type Request struct {
	AssetID string
	Policy  strategy.Policy
	Days    int
}

// Validate checks the lookback and the policy.
func (r Request) Validate() error {
	if err := ValidateDays(r.Days); err != nil {
		return err
	}
	return r.Policy.Validate()
}

// Evaluate fetches data for the request and runs its policy. An empty series
// returns ErrNoData; a fetch failure is returned as an error, never as Hold.
func (c *Collector) Evaluate(ctx context.Context, req Request) (*model.Evaluation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	data, err := c.Collect(ctx, req.AssetID, req.Days)
	if err != nil {
		return nil, err
	}
	if data.Series.Empty() {
		return nil, fmt.Errorf("%w: %s between %s and %s", ErrNoData, req.AssetID,
			data.FetchedAt.AddDate(0, 0, -req.Days).Format("2006-01-02"), data.FetchedAt.Format("2006-01-02"))
	}

	snap, res, err := strategy.Evaluate(data.Series, req.Policy)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", req.AssetID, err)
	}
	return &model.Evaluation{
		AssetID:       req.AssetID,
		Horizon:       req.Policy.Horizon,
		Rule:          req.Policy.Rule,
		Policy:        req.Policy.Name,
		Days:          req.Days,
		Snapshot:      snap,
		Result:        &res,
		Spot:          data.Spot,
		Closes:        data.Series.CloseSeries(),
		LowConfidence: !snap.Warm(),
		EvaluatedAt:   data.FetchedAt,
	}, nil
}
