package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProfitPredictor/internal/model"
	"ProfitPredictor/internal/store"
)

func TestRun_MockEvaluation(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "absent.yaml")
	var stdout, stderr bytes.Buffer

	code := run([]string{"-config", cfgPath, "-mock", "-asset", "GC=F", "-horizon", "long", "-days", "60"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "GC=F  Buy  (long/basic, 60 days")
	assert.Contains(t, out, "ema long")
	assert.Contains(t, out, "low confidence")
}

func TestRun_JSON(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "absent.yaml")
	var stdout, stderr bytes.Buffer

	code := run([]string{"-config", cfgPath, "-mock", "-rule", "gated", "-json"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	var ev map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &ev))
	assert.Equal(t, "short/gated", ev["policy"])
	assert.Equal(t, "BTC-USD", ev["asset"])
}

func TestRun_Failures(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "absent.yaml")
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"bad horizon", []string{"-horizon", "weekly"}, 2},
		{"bad rule", []string{"-rule", "magic"}, 2},
		{"unknown asset", []string{"-asset", "DOGE"}, 1},
		{"days out of range", []string{"-days", "365"}, 1},
		{"unknown flag", []string{"-verbose"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			args := append([]string{"-config", cfgPath, "-mock"}, tt.args...)
			assert.Equal(t, tt.code, run(args, &stdout, &stderr))
			assert.Empty(t, stdout.String())
		})
	}
}

func published(asset string, sig model.Signal) *model.Evaluation {
	return &model.Evaluation{
		AssetID: asset, Horizon: model.HorizonShort, Rule: model.RuleGated, Policy: "short/gated", Days: 30,
		Snapshot: model.IndicatorSnapshot{Price: 100, EMAFast: 101, EMASlow: 100.5, Points: 30, Lookback: 15},
		Result: &model.SignalResult{
			Signal:   sig,
			Target:   decimal.RequireFromString("101.50"),
			StopLoss: decimal.RequireFromString("99.00"),
		},
	}
}

func TestFollow_FiltersAndStopsAfterCount(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := store.NewRedisClient(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()
	st := store.NewRedisStore(client)

	sub, err := st.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, st.Save(ctx, published("BTC-USD", model.SignalBuy)))
	require.NoError(t, st.Save(ctx, published("GC=F", model.SignalSell)))
	require.NoError(t, st.Save(ctx, &model.Evaluation{AssetID: "BTC-USD", Horizon: model.HorizonShort, Rule: model.RuleGated, Policy: "short/gated", Err: "no data"}))

	var out bytes.Buffer
	require.NoError(t, follow(ctx, sub, "BTC-USD", 2, false, &out))
	assert.Contains(t, out.String(), "BTC-USD  Buy  (short/gated")
	assert.Contains(t, out.String(), "BTC-USD  failed  (short/gated): no data")
	assert.NotContains(t, out.String(), "GC=F")
}

func TestRun_FollowJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", mr.Addr())
	cfgPath := filepath.Join(t.TempDir(), "absent.yaml")

	ctx := context.Background()
	client, err := store.NewRedisClient(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	go func() {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			subs, err := client.PubSubNumSub(ctx, store.UpdateChannel).Result()
			if err == nil && subs[store.UpdateChannel] > 0 {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		client.Publish(ctx, store.UpdateChannel, `{"asset":"ETH-USD","horizon":"short","rule":"gated","policy":"short/gated","error":"no data"}`)
	}()

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "-follow", "-count", "1", "-json"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	var ev map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &ev))
	assert.Equal(t, "ETH-USD", ev["asset"])
	assert.Equal(t, "no data", ev["error"])
}

func TestRun_FollowNeedsRedis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	cfgPath := filepath.Join(t.TempDir(), "absent.yaml")
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run([]string{"-config", cfgPath, "-follow"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "redis")
}
