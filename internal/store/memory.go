package store

import (
	"context"
	"sync"

	"ProfitPredictor/internal/model"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*model.Evaluation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*model.Evaluation),
	}
}

func (s *MemoryStore) Save(_ context.Context, ev *model.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ev.Key()] = ev
	return nil
}

func (s *MemoryStore) Get(_ context.Context, assetID string, h model.Horizon, r model.Rule) (*model.Evaluation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.data[model.EvaluationKey(assetID, h, r)]
	return ev, ok, nil
}

func (s *MemoryStore) All(_ context.Context) ([]*model.Evaluation, error) {
	s.mu.RLock()
	out := make([]*model.Evaluation, 0, len(s.data))
	for _, ev := range s.data {
		out = append(out, ev)
	}
	s.mu.RUnlock()
	sortByKey(out)
	return out, nil
}
