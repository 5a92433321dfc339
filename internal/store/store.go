// Package store keeps the latest evaluation per watch.
package store

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/model"
)

// Store holds the latest evaluation per "asset:horizon:rule" key. Failed runs are
// stored too, so readers see the current state of each watch.
type Store interface {
	Save(ctx context.Context, ev *model.Evaluation) error
	Get(ctx context.Context, assetID string, h model.Horizon, r model.Rule) (*model.Evaluation, bool, error)
	All(ctx context.Context) ([]*model.Evaluation, error)
}

// Sync saves every evaluation from ch until ch is closed or ctx is cancelled.
func Sync(ctx context.Context, st Store, ch <-chan *model.Evaluation) {
	log := logger.Named("store")
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := st.Save(ctx, ev); err != nil {
				log.Error("save latest evaluation", zap.String("key", ev.Key()), zap.Error(err))
			}
		}
	}
}

func sortByKey(evs []*model.Evaluation) {
	sort.Slice(evs, func(i, j int) bool { return evs[i].Key() < evs[j].Key() })
}
