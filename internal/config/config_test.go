package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProfitPredictor/internal/model"
	"ProfitPredictor/internal/strategy"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "@every 60s", cfg.Monitor.Cron)
	assert.Equal(t, 30, cfg.Monitor.Days)
	assert.Len(t, cfg.Assets, len(model.DefaultAssets()))
	assert.Len(t, cfg.Policies, len(strategy.Presets))
	assert.NotEmpty(t, cfg.Monitor.Watches)
	for _, w := range cfg.Monitor.Watches {
		assert.NotZero(t, w.Days)
	}
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: file-token
  chat_id: "42"
monitor:
  cron: "0 */5 * * * *"
  watches:
    - asset: EURUSD=X
      horizon: intraday
      days: 14
policies:
  - horizon: short
    rule: basic
    fast_span: 4
    slow_span: 9
    profit_pct: 0.02
    stop_pct: 0.01
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("MONITOR_DAYS", "45")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 45, cfg.Monitor.Days)

	require.Len(t, cfg.Monitor.Watches, 1)
	w := cfg.Monitor.Watches[0]
	assert.Equal(t, model.HorizonShort, w.Horizon)
	assert.Equal(t, model.RuleBasic, w.Rule)
	assert.Equal(t, 14, w.Days)

	p, err := cfg.Policy(model.HorizonShort, model.RuleBasic)
	require.NoError(t, err)
	assert.Equal(t, "short/basic", p.Name)
	assert.Equal(t, 4, p.FastSpan)
	assert.Equal(t, 0.02, p.ProfitPct)

	_, err = cfg.Policy(model.HorizonLong, model.RuleGated)
	assert.NoError(t, err, "presets fill the policies the file does not set")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x"; c.Telegram.ChatID = "" }},
		{"bad cron", func(c *Config) { c.Monitor.Cron = "every minute" }},
		{"days too long", func(c *Config) { c.Monitor.Days = 365 }},
		{"whole-number percent", func(c *Config) { c.Policies[0].ProfitPct = 5 }},
		{"unknown watch asset", func(c *Config) { c.Monitor.Watches[0].Asset = "DOGE" }},
		{"watch days too short", func(c *Config) { c.Monitor.Watches[0].Days = 3 }},
		{"unknown history source", func(c *Config) { c.Assets[0].HistorySource = "bloomberg" }},
		{"duplicate asset", func(c *Config) { c.Assets = append(c.Assets, c.Assets[0]) }},
		{"duplicate watch", func(c *Config) { c.Monitor.Watches = append(c.Monitor.Watches, c.Monitor.Watches[0]) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_SameAssetBothRules(t *testing.T) {
	path := writeConfig(t, `
monitor:
  watches:
    - asset: BTC-USD
      horizon: short
      rule: basic
    - asset: BTC-USD
      horizon: short
      rule: gated
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	keys := make([]string, 0, len(cfg.Monitor.Watches))
	for _, w := range cfg.Monitor.Watches {
		keys = append(keys, model.EvaluationKey(w.Asset, w.Horizon, w.Rule))
	}
	assert.Equal(t, []string{"BTC-USD:short:basic", "BTC-USD:short:gated"}, keys)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "monitor: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}
