package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ProfitPredictor/internal/collector"
	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/model"
	"ProfitPredictor/internal/notifier"
	"ProfitPredictor/internal/store"
	"ProfitPredictor/internal/strategy"
)

// Commands answers bot commands.
type Commands struct {
	Evaluator Evaluator
	Assets    []model.Asset
	Policies  []strategy.Policy
	Store     store.Store
	Days      int
}

// HandleCommand processes a user command and returns a reply.
func (c *Commands) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Group chats send "/cmd@BotName".
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/signal":
		return c.signal(ctx, fields[1:])
	case "/latest":
		if c.Store == nil {
			return "No signals yet."
		}
		evs, err := c.Store.All(ctx)
		if err != nil {
			logger.Named("commands").Error("list latest", zap.Error(err))
			return "❌ Latest signals unavailable."
		}
		return notifier.FormatLatest(evs)
	case "/assets":
		return notifier.FormatAssets(c.Assets)
	default:
		return notifier.FormatHelp()
	}
}

func (c *Commands) signal(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /signal &lt;asset&gt; [short|long] [basic|gated] [days]"
	}
	asset, ok := c.findAsset(args[0])
	if !ok {
		return fmt.Sprintf("Unknown asset %q. Try /assets.", args[0])
	}

	horizon, rule, days := model.HorizonShort, model.RuleBasic, c.Days
	if days == 0 {
		days = collector.DefaultDays
	}
	for _, arg := range args[1:] {
		if h, err := model.ParseHorizon(arg); err == nil {
			horizon = h
			continue
		}
		if r, err := model.ParseRule(arg); err == nil {
			rule = r
			continue
		}
		if n, err := strconv.Atoi(arg); err == nil {
			days = n
			continue
		}
		return fmt.Sprintf("Unrecognised argument %q.", arg)
	}

	policy, ok := strategy.Find(c.Policies, horizon, rule)
	if !ok {
		return fmt.Sprintf("No policy for %s.", strategy.PolicyName(horizon, rule))
	}
	ev, err := c.Evaluator.Evaluate(ctx, collector.Request{AssetID: asset.ID, Policy: policy, Days: days})
	if err != nil {
		if errors.Is(err, collector.ErrNoData) {
			return fmt.Sprintf("No result available for %s: the provider returned no data.", asset.ID)
		}
		return notifier.FormatFailure(&model.Evaluation{AssetID: asset.ID, Horizon: horizon, Rule: rule, Err: err.Error()})
	}
	return notifier.FormatEvaluation(ev)
}

func (c *Commands) findAsset(id string) (model.Asset, bool) {
	for _, a := range c.Assets {
		if strings.EqualFold(a.ID, id) {
			return a, true
		}
	}
	return model.Asset{}, false
}
