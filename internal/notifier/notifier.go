package notifier

import (
	"context"

	"go.uber.org/zap"

	"ProfitPredictor/internal/logger"
)

// Notifier delivers a formatted message.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// LogNotifier writes messages to the log. Used when Telegram is not configured.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Named("notifier")}
}

func (n *LogNotifier) Send(_ context.Context, text string) error {
	n.log.Info("notification", zap.String("text", text))
	return nil
}
