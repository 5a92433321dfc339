package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ProfitPredictor/internal/app"
	"ProfitPredictor/internal/collector"
	"ProfitPredictor/internal/config"
	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/model"
	"ProfitPredictor/internal/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("signal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath = fs.String("config", config.DefaultPath, "path to the YAML config")
		assetID = fs.String("asset", "BTC-USD", "asset id from the catalog")
		horizon = fs.String("horizon", "short", "short|long")
		rule    = fs.String("rule", "basic", "basic|gated")
		days    = fs.Int("days", collector.DefaultDays, "lookback in days (7-90)")
		asJSON  = fs.Bool("json", false, "print the full evaluation as JSON")
		mock    = fs.Bool("mock", false, "use generated prices instead of live providers")
		tail    = fs.Bool("follow", false, "print evaluations published by a running predictor (needs redis.addr)")
		count   = fs.Int("count", 0, "with -follow, exit after this many updates (0 = until interrupted)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	if *mock {
		cfg.Sources.Mock = true
	}
	if err := logger.Init(cfg.LogLevel, "development"); err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *tail {
		filter := ""
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "asset" {
				filter = *assetID
			}
		})
		return followUpdates(ctx, cfg, filter, *count, *asJSON, stdout, stderr)
	}

	h, err := model.ParseHorizon(*horizon)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	r, err := model.ParseRule(*rule)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	policy, err := cfg.Policy(h, r)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	col := app.NewCollector(cfg, nil)
	ev, err := col.Evaluate(ctx, collector.Request{AssetID: *assetID, Policy: policy, Days: *days})
	if err != nil {
		if errors.Is(err, collector.ErrNoData) {
			fmt.Fprintf(stderr, "no result available: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "evaluate: %v\n", err)
		}
		return 1
	}

	if err := writeEvaluation(stdout, ev, *asJSON); err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	return 0
}

func followUpdates(ctx context.Context, cfg *config.Config, assetID string, count int, asJSON bool, stdout, stderr io.Writer) int {
	if cfg.Redis.Addr == "" {
		fmt.Fprintln(stderr, "-follow needs redis.addr or REDIS_ADDR")
		return 2
	}
	client, err := store.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer client.Close()

	sub, err := store.NewRedisStore(client).Subscribe(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer sub.Close()

	if err := follow(ctx, sub, assetID, count, asJSON, stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "follow: %v\n", err)
		return 1
	}
	return 0
}

// follow prints updates for assetID (all assets when empty) until count
// updates have been printed or ctx is done.
func follow(ctx context.Context, sub *store.Subscription, assetID string, count int, asJSON bool, w io.Writer) error {
	printed := 0
	var writeErr error
	err := sub.Follow(ctx, func(ev *model.Evaluation) bool {
		if assetID != "" && ev.AssetID != assetID {
			return true
		}
		if writeErr = writeEvaluation(w, ev, asJSON); writeErr != nil {
			return false
		}
		printed++
		return count == 0 || printed < count
	})
	if writeErr != nil {
		return writeErr
	}
	return err
}

func writeEvaluation(w io.Writer, ev *model.Evaluation, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ev)
	}
	if ev.Failed() {
		_, err := fmt.Fprintf(w, "%s  failed  (%s): %s\n", ev.AssetID, ev.Policy, ev.Err)
		return err
	}
	printEvaluation(w, ev)
	return nil
}

func printEvaluation(w io.Writer, ev *model.Evaluation) {
	snap := ev.Snapshot
	fmt.Fprintf(w, "%s  %s  (%s, %d days, %d bars)\n", ev.AssetID, ev.Result.Signal, ev.Policy, ev.Days, snap.Points)
	fmt.Fprintf(w, "price      %.2f\n", snap.Price)
	if ev.Spot != nil {
		fmt.Fprintf(w, "live       %.2f\n", *ev.Spot)
	}
	fmt.Fprintf(w, "target     %s\n", ev.Result.Target.StringFixed(2))
	fmt.Fprintf(w, "stop-loss  %s\n", ev.Result.StopLoss.StringFixed(2))
	if ev.Horizon == model.HorizonLong {
		fmt.Fprintf(w, "ema long   %.4f\n", snap.EMALong)
	} else {
		fmt.Fprintf(w, "ema fast   %.4f\n", snap.EMAFast)
		fmt.Fprintf(w, "ema slow   %.4f\n", snap.EMASlow)
	}
	if snap.HasRSI {
		fmt.Fprintf(w, "rsi        %.2f\n", snap.RSI)
	}
	if snap.HasATR {
		fmt.Fprintf(w, "atr        %.4f\n", snap.ATR)
	}
	if ev.LowConfidence {
		fmt.Fprintf(w, "warning    low confidence: %d bars for a %d-bar lookback\n", snap.Points, snap.Lookback)
	}
}
