package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"ProfitPredictor/internal/collector"
	"ProfitPredictor/internal/model"
	"ProfitPredictor/internal/strategy"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Known backend names.
const (
	SourceYahoo        = "yahoo"
	SourceAlphaVantage = "alphavantage"
	SourceCoinGecko    = "coingecko"
)

// CronParser accepts five- or six-field expressions and descriptors such as "@every 60s".
var CronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Watch is one asset/horizon/rule combination the monitor re-evaluates.
type Watch struct {
	Asset   string        `yaml:"asset"`
	Horizon model.Horizon `yaml:"horizon"`
	Rule    model.Rule    `yaml:"rule"`
	Days    int           `yaml:"days"`
	Cron    string        `yaml:"cron"` // empty means monitor.cron
}

// Config holds all application configuration.
type Config struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		APIBase  string `yaml:"api_base"`
		Retries  int    `yaml:"retries"`
	} `yaml:"telegram"`

	Sources struct {
		Mock  bool `yaml:"mock"`
		Yahoo struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"yahoo"`
		AlphaVantage struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"alphavantage"`
		CoinGecko struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"coingecko"`
	} `yaml:"sources"`

	Assets   []model.Asset     `yaml:"assets"`
	Policies []strategy.Policy `yaml:"policies"`

	Monitor struct {
		Cron       string  `yaml:"cron"`
		Days       int     `yaml:"days"`
		RunOnStart bool    `yaml:"run_on_start"`
		Buffer     int     `yaml:"buffer"`
		Watches    []Watch `yaml:"watches"`
	} `yaml:"monitor"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then .env, then environment variable
// overrides, then fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"TELEGRAM_BOT_TOKEN":   &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":     &c.Telegram.ChatID,
		"ALPHAVANTAGE_API_KEY": &c.Sources.AlphaVantage.APIKey,
		"COINGECKO_API_KEY":    &c.Sources.CoinGecko.APIKey,
		"HTTPS_PROXY":          &c.Proxy,
		"SQLITE_PATH":          &c.Database.SQLitePath,
		"REDIS_ADDR":           &c.Redis.Addr,
		"REDIS_PASSWORD":       &c.Redis.Password,
		"HTTP_ADDR":            &c.HTTP.Addr,
		"LOG_LEVEL":            &c.LogLevel,
		"ENVIRONMENT":          &c.Environment,
		"MONITOR_CRON":         &c.Monitor.Cron,
	}
	for key, dst := range overrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("MONITOR_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			c.Monitor.Days = days
		}
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Monitor.RunOnStart = b
		}
	}
	if v := os.Getenv("MOCK_DATA"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Sources.Mock = b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Telegram.Retries == 0 {
		c.Telegram.Retries = 3
	}
	if len(c.Assets) == 0 {
		c.Assets = model.DefaultAssets()
	}
	c.Policies = mergePresets(c.Policies)

	if c.Monitor.Cron == "" {
		c.Monitor.Cron = "@every 60s"
	}
	if c.Monitor.Days == 0 {
		c.Monitor.Days = collector.DefaultDays
	}
	if c.Monitor.Buffer == 0 {
		c.Monitor.Buffer = 32
	}
	if len(c.Monitor.Watches) == 0 {
		c.Monitor.Watches = []Watch{
			{Asset: "BTC-USD", Horizon: model.HorizonShort, Rule: model.RuleGated},
			{Asset: "BTC-USD", Horizon: model.HorizonLong, Rule: model.RuleBasic, Days: collector.MaxDays},
			{Asset: "GC=F", Horizon: model.HorizonShort, Rule: model.RuleGated},
			{Asset: "CL=F", Horizon: model.HorizonShort, Rule: model.RuleBasic},
		}
	}
	for i := range c.Monitor.Watches {
		w := &c.Monitor.Watches[i]
		if h, err := model.ParseHorizon(string(w.Horizon)); err == nil {
			w.Horizon = h
		}
		if r, err := model.ParseRule(string(w.Rule)); err == nil {
			w.Rule = r
		}
		if w.Days == 0 {
			w.Days = c.Monitor.Days
		}
	}

	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/predictor.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
}

// mergePresets fills in every built-in policy the config does not override.
func mergePresets(policies []strategy.Policy) []strategy.Policy {
	out := make([]strategy.Policy, 0, len(policies)+len(strategy.Presets))
	for _, p := range policies {
		if h, err := model.ParseHorizon(string(p.Horizon)); err == nil {
			p.Horizon = h
		}
		if r, err := model.ParseRule(string(p.Rule)); err == nil {
			p.Rule = r
		}
		if p.Name == "" {
			p.Name = strategy.PolicyName(p.Horizon, p.Rule)
		}
		out = append(out, p)
	}
	for _, preset := range strategy.Presets {
		if _, ok := strategy.Find(out, preset.Horizon, preset.Rule); !ok {
			out = append(out, preset)
		}
	}
	return out
}

// Policy returns the configured policy for a horizon and rule.
func (c *Config) Policy(h model.Horizon, r model.Rule) (strategy.Policy, error) {
	p, ok := strategy.Find(c.Policies, h, r)
	if !ok {
		return strategy.Policy{}, fmt.Errorf("no policy for %s", strategy.PolicyName(h, r))
	}
	return p, nil
}

// TelegramEnabled reports whether alerts and commands go to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	if c.TelegramEnabled() && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}

	assets := make(map[string]bool, len(c.Assets))
	for _, a := range c.Assets {
		if a.ID == "" || a.Symbol == "" {
			return fmt.Errorf("asset %q: id and symbol are required", a.ID)
		}
		if assets[a.ID] {
			return fmt.Errorf("asset %q: duplicate id", a.ID)
		}
		assets[a.ID] = true
		switch a.HistorySource {
		case SourceYahoo, SourceAlphaVantage:
		default:
			return fmt.Errorf("asset %q: unknown history_source %q", a.ID, a.HistorySource)
		}
		switch a.SpotSource {
		case "", SourceYahoo, SourceAlphaVantage, SourceCoinGecko:
		default:
			return fmt.Errorf("asset %q: unknown spot_source %q", a.ID, a.SpotSource)
		}
	}

	for _, p := range c.Policies {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	if _, err := CronParser.Parse(c.Monitor.Cron); err != nil {
		return fmt.Errorf("monitor.cron %q: %w", c.Monitor.Cron, err)
	}
	if err := collector.ValidateDays(c.Monitor.Days); err != nil {
		return fmt.Errorf("monitor.days: %w", err)
	}
	if c.Monitor.Buffer < 0 {
		return fmt.Errorf("monitor.buffer must not be negative")
	}
	watches := make(map[string]bool, len(c.Monitor.Watches))
	for i, w := range c.Monitor.Watches {
		if !assets[w.Asset] {
			return fmt.Errorf("monitor.watches[%d]: unknown asset %q", i, w.Asset)
		}
		if _, err := c.Policy(w.Horizon, w.Rule); err != nil {
			return fmt.Errorf("monitor.watches[%d]: %w", i, err)
		}
		if err := collector.ValidateDays(w.Days); err != nil {
			return fmt.Errorf("monitor.watches[%d]: %w", i, err)
		}
		key := model.EvaluationKey(w.Asset, w.Horizon, w.Rule)
		if watches[key] {
			return fmt.Errorf("monitor.watches[%d]: duplicate watch %s", i, key)
		}
		watches[key] = true
		if w.Cron != "" {
			if _, err := CronParser.Parse(w.Cron); err != nil {
				return fmt.Errorf("monitor.watches[%d].cron %q: %w", i, w.Cron, err)
			}
		}
	}
	return nil
}
