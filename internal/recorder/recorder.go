package recorder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/model"
)

// Row is one persisted evaluation.
type Row struct {
	ID            int64               `json:"id"`
	Timestamp     time.Time           `json:"timestamp"`
	AssetID       string              `json:"asset"`
	Horizon       model.Horizon       `json:"horizon"`
	Rule          model.Rule          `json:"rule"`
	Policy        string              `json:"policy"`
	Days          int                 `json:"days"`
	Points        int                 `json:"points"`
	Price         float64             `json:"price"`
	EMAFast       float64             `json:"ema_fast"`
	EMASlow       float64             `json:"ema_slow"`
	EMALong       float64             `json:"ema_long"`
	RSI           *float64            `json:"rsi"`
	ATR           *float64            `json:"atr"`
	Signal        model.Signal        `json:"signal,omitempty"` // empty for failed runs
	Target        decimal.NullDecimal `json:"target_price"`
	StopLoss      decimal.NullDecimal `json:"stop_loss"`
	Spot          *float64            `json:"spot,omitempty"`
	LowConfidence bool                `json:"low_confidence"`
	Err           string              `json:"error,omitempty"`
}

// Recorder persists evaluation history for analysis.
type Recorder interface {
	RecordEvaluation(ev *model.Evaluation) error
	// Recent returns up to limit rows, newest first. An empty assetID matches all assets.
	Recent(assetID string, limit int) ([]Row, error)
	Close() error
}

// Drain records every evaluation from ch until ch is closed or ctx is cancelled.
func Drain(ctx context.Context, rec Recorder, ch <-chan *model.Evaluation) {
	log := logger.Named("recorder")
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := rec.RecordEvaluation(ev); err != nil {
				log.Error("record evaluation", zap.String("key", ev.Key()), zap.Error(err))
			}
		}
	}
}
