package notifier

import (
	"context"
	"math"

	"go.uber.org/zap"

	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/metrics"
	"ProfitPredictor/internal/model"
)

// DefaultMinMove is the relative target move that counts as a new signal.
const DefaultMinMove = 0.005

type alertState struct {
	failed bool
	signal model.Signal
	target float64
	stop   float64
}

// Alerter consumes evaluations and notifies when a watch's signal changes:
// first sighting, a different side, or a target/stop move above MinMove.
// A failure is reported once per streak. Handle is not safe for concurrent use.
type Alerter struct {
	Notifier Notifier
	MinMove  float64
	Metrics  *metrics.Metrics

	last map[string]alertState
	log  *zap.Logger
}

// NewAlerter creates an Alerter delivering through n.
func NewAlerter(n Notifier) *Alerter {
	return &Alerter{
		Notifier: n,
		MinMove:  DefaultMinMove,
		last:     make(map[string]alertState),
		log:      logger.Named("alerter"),
	}
}

// Run handles evaluations until ch is closed or ctx is cancelled.
func (a *Alerter) Run(ctx context.Context, ch <-chan *model.Evaluation) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			a.Handle(ctx, ev)
		}
	}
}

// Handle processes one evaluation and reports whether a message was sent.
func (a *Alerter) Handle(ctx context.Context, ev *model.Evaluation) bool {
	key := ev.Key()
	prev, seen := a.last[key]
	next := stateOf(ev)

	if !a.changed(prev, seen, next) {
		return false
	}
	if err := a.Notifier.Send(ctx, FormatEvaluation(ev)); err != nil {
		a.log.Error("alert not delivered", zap.String("key", key), zap.Error(err))
		return false
	}
	a.last[key] = next
	if a.Metrics != nil {
		a.Metrics.AlertsSent.Inc()
	}
	return true
}

func stateOf(ev *model.Evaluation) alertState {
	if ev.Failed() {
		return alertState{failed: true}
	}
	return alertState{
		signal: ev.Result.Signal,
		target: ev.Result.Target.InexactFloat64(),
		stop:   ev.Result.StopLoss.InexactFloat64(),
	}
}

func (a *Alerter) changed(prev alertState, seen bool, next alertState) bool {
	if !seen || prev.failed != next.failed {
		return true
	}
	if next.failed {
		return false
	}
	if prev.signal != next.signal {
		return true
	}
	if next.signal == model.SignalHold {
		return false
	}
	return moved(prev.target, next.target, a.MinMove) || moved(prev.stop, next.stop, a.MinMove)
}

func moved(from, to, threshold float64) bool {
	if from == 0 {
		return to != 0
	}
	return math.Abs(to-from)/math.Abs(from) > threshold
}
