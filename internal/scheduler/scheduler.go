package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ProfitPredictor/internal/collector"
	"ProfitPredictor/internal/config"
	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/metrics"
	"ProfitPredictor/internal/model"
	"ProfitPredictor/internal/strategy"
)

// Evaluator runs one evaluation request.
type Evaluator interface {
	Evaluate(ctx context.Context, req collector.Request) (*model.Evaluation, error)
}

// Watch is one asset re-evaluated on a schedule with a fixed policy.
type Watch struct {
	AssetID string
	Policy  strategy.Policy
	Days    int
	Cron    string
}

// Key identifies the watch's stream of evaluations.
func (w Watch) Key() string {
	return model.EvaluationKey(w.AssetID, w.Policy.Horizon, w.Policy.Rule)
}

type subscriber struct {
	name string
	ch   chan *model.Evaluation
}

// Monitor re-evaluates watches on cron schedules and publishes every
// evaluation, failed or not, to its subscribers. A subscriber whose buffer
// is full misses the evaluation; the loop never blocks on a consumer.
type Monitor struct {
	Cron      *cron.Cron
	Evaluator Evaluator
	Metrics   *metrics.Metrics
	Now       func() time.Time

	ctx     context.Context
	watches []Watch

	mu      sync.RWMutex
	subs    []subscriber
	stopped bool

	log *zap.Logger
}

// NewMonitor creates a Monitor. ctx bounds every evaluation it runs.
func NewMonitor(ctx context.Context, ev Evaluator) *Monitor {
	return &Monitor{
		Cron:      cron.New(cron.WithParser(config.CronParser)),
		Evaluator: ev,
		Now:       time.Now,
		ctx:       ctx,
		log:       logger.Named("monitor"),
	}
}

// Add registers a watch on its cron schedule.
func (m *Monitor) Add(w Watch) error {
	req := collector.Request{AssetID: w.AssetID, Policy: w.Policy, Days: w.Days}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("watch %s: %w", w.Key(), err)
	}
	for _, existing := range m.watches {
		if existing.Key() == w.Key() {
			return fmt.Errorf("watch %s: already registered", w.Key())
		}
	}
	if _, err := m.Cron.AddFunc(w.Cron, func() { m.run(m.ctx, w) }); err != nil {
		return fmt.Errorf("register watch %s: %w", w.Key(), err)
	}
	m.watches = append(m.watches, w)
	return nil
}

// Watches returns the registered watches.
func (m *Monitor) Watches() []Watch {
	out := make([]Watch, len(m.watches))
	copy(out, m.watches)
	return out
}

// Subscribe returns a channel receiving every evaluation. It is closed by Stop.
func (m *Monitor) Subscribe(name string, buffer int) <-chan *model.Evaluation {
	ch := make(chan *model.Evaluation, buffer)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		close(ch)
		return ch
	}
	m.subs = append(m.subs, subscriber{name: name, ch: ch})
	return ch
}

// Start starts the cron scheduler.
func (m *Monitor) Start() {
	m.Cron.Start()
	m.log.Info("monitor started", zap.Int("watches", len(m.watches)))
}

// Stop waits for running evaluations, then closes every subscriber channel.
func (m *Monitor) Stop() {
	<-m.Cron.Stop().Done()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	for _, s := range m.subs {
		close(s.ch)
	}
	m.log.Info("monitor stopped")
}

// RunNow evaluates every watch once, in order, and publishes the results.
func (m *Monitor) RunNow(ctx context.Context) []*model.Evaluation {
	out := make([]*model.Evaluation, 0, len(m.watches))
	for _, w := range m.watches {
		out = append(out, m.run(ctx, w))
	}
	return out
}

func (m *Monitor) run(ctx context.Context, w Watch) *model.Evaluation {
	start := time.Now()
	ev, err := m.Evaluator.Evaluate(ctx, collector.Request{AssetID: w.AssetID, Policy: w.Policy, Days: w.Days})
	if m.Metrics != nil {
		m.Metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		m.log.Warn("evaluation failed", zap.String("watch", w.Key()), zap.Error(err))
		if m.Metrics != nil {
			m.Metrics.EvaluationErrors.WithLabelValues(w.AssetID, string(w.Policy.Horizon)).Inc()
		}
		ev = &model.Evaluation{
			AssetID:     w.AssetID,
			Horizon:     w.Policy.Horizon,
			Rule:        w.Policy.Rule,
			Policy:      w.Policy.Name,
			Days:        w.Days,
			Err:         err.Error(),
			EvaluatedAt: m.Now(),
		}
	} else {
		m.log.Debug("evaluated",
			zap.String("watch", w.Key()),
			zap.String("signal", string(ev.Result.Signal)),
			zap.Bool("low_confidence", ev.LowConfidence))
		if m.Metrics != nil {
			m.Metrics.Evaluations.WithLabelValues(w.AssetID, string(w.Policy.Horizon), string(ev.Result.Signal)).Inc()
		}
	}
	m.publish(ev)
	return ev
}

func (m *Monitor) publish(ev *model.Evaluation) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.stopped {
		return
	}
	for _, s := range m.subs {
		select {
		case s.ch <- ev:
		default:
			m.log.Warn("subscriber full, dropping evaluation",
				zap.String("subscriber", s.name), zap.String("watch", ev.Key()))
			if m.Metrics != nil {
				m.Metrics.SubscriberDrops.WithLabelValues(s.name).Inc()
			}
		}
	}
}

// WatchesFromConfig resolves configured watches against the policy table.
func WatchesFromConfig(cfg *config.Config) ([]Watch, error) {
	out := make([]Watch, 0, len(cfg.Monitor.Watches))
	for _, w := range cfg.Monitor.Watches {
		p, err := cfg.Policy(w.Horizon, w.Rule)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", model.EvaluationKey(w.Asset, w.Horizon, w.Rule), err)
		}
		spec := w.Cron
		if spec == "" {
			spec = cfg.Monitor.Cron
		}
		out = append(out, Watch{AssetID: w.Asset, Policy: p, Days: w.Days, Cron: spec})
	}
	return out, nil
}
