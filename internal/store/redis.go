package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/model"
)

// Redis keys.
const (
	LatestKey     = "signals:latest"
	UpdateChannel = "signals:updates"
)

// RedisStore keeps the latest evaluations in a Redis hash and publishes each
// update on UpdateChannel.
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, ev *model.Evaluation) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, LatestKey, ev.Key(), payload)
	pipe.Publish(ctx, UpdateChannel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save %s: %w", ev.Key(), err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, assetID string, h model.Horizon, r model.Rule) (*model.Evaluation, bool, error) {
	key := model.EvaluationKey(assetID, h, r)
	raw, err := s.client.HGet(ctx, LatestKey, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	var ev model.Evaluation
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return &ev, true, nil
}

func (s *RedisStore) All(ctx context.Context) ([]*model.Evaluation, error) {
	entries, err := s.client.HGetAll(ctx, LatestKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list latest: %w", err)
	}
	out := make([]*model.Evaluation, 0, len(entries))
	for key, raw := range entries {
		var ev model.Evaluation
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		out = append(out, &ev)
	}
	sortByKey(out)
	return out, nil
}

// Subscribe listens on UpdateChannel. It returns once the server has
// confirmed the subscription, so every later Save is delivered.
func (s *RedisStore) Subscribe(ctx context.Context) (*Subscription, error) {
	ps := s.client.Subscribe(ctx, UpdateChannel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", UpdateChannel, err)
	}
	return &Subscription{ps: ps, log: logger.Named("store")}, nil
}

// Subscription streams evaluations published by any RedisStore.
type Subscription struct {
	ps  *redis.PubSub
	log *zap.Logger
}

// Follow passes each published evaluation to fn until ctx is cancelled, the
// subscription is closed, or fn returns false.
func (s *Subscription) Follow(ctx context.Context, fn func(*model.Evaluation) bool) error {
	ch := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev model.Evaluation
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.log.Warn("skip undecodable update", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if !fn(&ev) {
				return nil
			}
		}
	}
}

func (s *Subscription) Close() error {
	return s.ps.Close()
}
