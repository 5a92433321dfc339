package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProfitPredictor/internal/model"
)

func sampleEvaluation(asset string, h model.Horizon, sig model.Signal) *model.Evaluation {
	return &model.Evaluation{
		AssetID: asset, Horizon: h, Rule: model.RuleBasic, Policy: string(h) + "/basic", Days: 30,
		Snapshot: model.IndicatorSnapshot{Price: 100, EMAFast: 101, EMASlow: 100.5, Points: 30, Lookback: 5},
		Result: &model.SignalResult{
			Signal:   sig,
			Target:   decimal.RequireFromString("101.50"),
			StopLoss: decimal.RequireFromString("99.00"),
		},
		EvaluatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newRedisStore(t *testing.T) (*RedisStore, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), client
}

func testStores(t *testing.T) map[string]Store {
	rs, _ := newRedisStore(t)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  rs,
	}
}

func TestStore_SaveGetAll(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := st.Get(ctx, "BTC-USD", model.HorizonShort, model.RuleBasic)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, st.Save(ctx, sampleEvaluation("GC=F", model.HorizonShort, model.SignalSell)))
			require.NoError(t, st.Save(ctx, sampleEvaluation("BTC-USD", model.HorizonShort, model.SignalHold)))
			require.NoError(t, st.Save(ctx, sampleEvaluation("BTC-USD", model.HorizonShort, model.SignalBuy)))
			require.NoError(t, st.Save(ctx, sampleEvaluation("BTC-USD", model.HorizonLong, model.SignalSell)))

			ev, ok, err := st.Get(ctx, "BTC-USD", model.HorizonShort, model.RuleBasic)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, model.SignalBuy, ev.Result.Signal)
			assert.Equal(t, "101.5", ev.Result.Target.String())
			assert.True(t, ev.EvaluatedAt.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)))

			all, err := st.All(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			keys := []string{all[0].Key(), all[1].Key(), all[2].Key()}
			assert.Equal(t, []string{"BTC-USD:long:basic", "BTC-USD:short:basic", "GC=F:short:basic"}, keys)
		})
	}
}

func TestStore_RulesKeptApart(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			basic := sampleEvaluation("BTC-USD", model.HorizonShort, model.SignalBuy)
			gated := sampleEvaluation("BTC-USD", model.HorizonShort, model.SignalHold)
			gated.Rule = model.RuleGated
			gated.Policy = "short/gated"
			for i := 0; i < 3; i++ {
				require.NoError(t, st.Save(ctx, basic))
				require.NoError(t, st.Save(ctx, gated))
			}

			ev, ok, err := st.Get(ctx, "BTC-USD", model.HorizonShort, model.RuleBasic)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, model.SignalBuy, ev.Result.Signal)

			ev, ok, err = st.Get(ctx, "BTC-USD", model.HorizonShort, model.RuleGated)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, model.SignalHold, ev.Result.Signal)

			all, err := st.All(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}

func TestRedisStore_PublishesUpdates(t *testing.T) {
	st, client := newRedisStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := st.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, client.Publish(ctx, UpdateChannel, "not json").Err())
	require.NoError(t, st.Save(ctx, sampleEvaluation("BTC-USD", model.HorizonShort, model.SignalBuy)))
	require.NoError(t, st.Save(ctx, sampleEvaluation("GC=F", model.HorizonLong, model.SignalSell)))

	var got []*model.Evaluation
	err = sub.Follow(ctx, func(ev *model.Evaluation) bool {
		got = append(got, ev)
		return len(got) < 2
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BTC-USD:short:basic", got[0].Key())
	assert.Equal(t, model.SignalBuy, got[0].Result.Signal)
	assert.Equal(t, "GC=F:long:basic", got[1].Key())
}

func TestSubscription_FollowStopsOnCancel(t *testing.T) {
	st, _ := newRedisStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := st.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	cancel()
	assert.ErrorIs(t, sub.Follow(ctx, func(*model.Evaluation) bool { return true }), context.Canceled)
}

func TestRedisStore_FailedEvaluation(t *testing.T) {
	st, client := newRedisStore(t)
	ctx := context.Background()

	ev := &model.Evaluation{AssetID: "XAU-USD", Horizon: model.HorizonLong, Rule: model.RuleGated, Err: "no data"}
	require.NoError(t, st.Save(ctx, ev))

	got, ok, err := st.Get(ctx, "XAU-USD", model.HorizonLong, model.RuleGated)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Failed())
	assert.Equal(t, "no data", got.Err)

	n, err := client.HLen(ctx, LatestKey).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSync_DrainsChannel(t *testing.T) {
	st := NewMemoryStore()
	ch := make(chan *model.Evaluation, 2)
	ch <- sampleEvaluation("BTC-USD", model.HorizonShort, model.SignalBuy)
	ch <- sampleEvaluation("BTC-USD", model.HorizonShort, model.SignalSell)
	close(ch)

	Sync(context.Background(), st, ch)

	ev, ok, err := st.Get(context.Background(), "BTC-USD", model.HorizonShort, model.RuleBasic)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.SignalSell, ev.Result.Signal)
}
