package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ProfitPredictor/internal/api"
	"ProfitPredictor/internal/app"
	"ProfitPredictor/internal/config"
	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/metrics"
	"ProfitPredictor/internal/notifier"
	"ProfitPredictor/internal/recorder"
	"ProfitPredictor/internal/scheduler"
	"ProfitPredictor/internal/store"
)

func main() {
	// Load config
	cfgPath := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Named("main")

	if err := cfg.Validate(); err != nil {
		log.Fatal("config validation", zap.Error(err))
	}
	log.Info("ProfitPredictor starting", zap.String("config", cfgPath), zap.String("environment", cfg.Environment))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	col := app.NewCollector(cfg, m)

	// Latest-signal store
	var (
		st  store.Store = store.NewMemoryStore()
		rdb *redis.Client
	)
	if cfg.Redis.Addr != "" {
		rdb, err = store.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, using in-memory store", zap.Error(err))
		} else {
			st = store.NewRedisStore(rdb)
			defer rdb.Close()
			log.Info("latest signals stored in redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	// Notifier
	var (
		tn    *notifier.TelegramNotifier
		alert notifier.Notifier = notifier.NewLogNotifier()
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if cfg.Telegram.APIBase != "" {
			tn.APIBase = cfg.Telegram.APIBase
		}
		alert = notifier.RetryingNotifier{TelegramNotifier: tn, Retries: cfg.Telegram.Retries}
	} else {
		log.Warn("telegram not configured, alerts go to the log")
	}

	// Monitor and its consumers
	monitor := scheduler.NewMonitor(ctx, col)
	monitor.Metrics = m
	watches, err := scheduler.WatchesFromConfig(cfg)
	if err != nil {
		log.Fatal("resolve watches", zap.Error(err))
	}
	for _, w := range watches {
		if err := monitor.Add(w); err != nil {
			log.Fatal("register watch", zap.Error(err))
		}
	}

	alerter := notifier.NewAlerter(alert)
	alerter.Metrics = m

	var consumers sync.WaitGroup
	consume := func(run func()) {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			run()
		}()
	}
	alertsCh := monitor.Subscribe("alerts", cfg.Monitor.Buffer)
	historyCh := monitor.Subscribe("history", cfg.Monitor.Buffer)
	storeCh := monitor.Subscribe("store", cfg.Monitor.Buffer)
	consume(func() { alerter.Run(ctx, alertsCh) })
	consume(func() { recorder.Drain(ctx, rec, historyCh) })
	consume(func() { store.Sync(ctx, st, storeCh) })

	monitor.Start()

	// Telegram commands
	if tn != nil {
		cmds := &scheduler.Commands{
			Evaluator: col,
			Assets:    cfg.Assets,
			Policies:  cfg.Policies,
			Store:     st,
			Days:      cfg.Monitor.Days,
		}
		go tn.StartPolling(ctx, cmds.HandleCommand)
		log.Info("telegram polling started")
	}

	// HTTP API
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(&api.Handler{
		Service:  col,
		Store:    st,
		Recorder: rec,
		Policies: cfg.Policies,
		Metrics:  m,
		Days:     cfg.Monitor.Days,
	})
	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", zap.Error(err))
		}
	}()
	log.Info("http api listening", zap.String("addr", cfg.HTTP.Addr))

	// Optional: run immediately on start
	if cfg.Monitor.RunOnStart {
		log.Info("RUN_ON_START enabled, evaluating all watches now")
		go monitor.RunNow(ctx)
	}

	log.Info("ProfitPredictor is running, press Ctrl+C to stop", zap.Int("watches", len(watches)))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	monitor.Stop()
	consumers.Wait()
	log.Info("ProfitPredictor stopped")
}
