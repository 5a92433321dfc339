package notifier

import (
	"fmt"
	"html"
	"strings"

	"ProfitPredictor/internal/model"
)

func signalIcon(s model.Signal) string {
	switch s {
	case model.SignalBuy:
		return "🟢"
	case model.SignalSell:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatEvaluation formats a successful evaluation into a Telegram message.
func FormatEvaluation(ev *model.Evaluation) string {
	if ev.Failed() {
		return FormatFailure(ev)
	}
	var b strings.Builder
	res := ev.Result
	snap := ev.Snapshot

	b.WriteString(fmt.Sprintf("%s <b>%s</b> %s | %s\n\n", signalIcon(res.Signal),
		html.EscapeString(ev.AssetID), res.Signal, ev.Policy))
	b.WriteString(fmt.Sprintf("Price: %.2f\n", snap.Price))
	if ev.Spot != nil {
		b.WriteString(fmt.Sprintf("Live: %.2f\n", *ev.Spot))
	}
	if res.Signal != model.SignalHold {
		b.WriteString(fmt.Sprintf("Target: %s\n", res.Target.StringFixed(2)))
		b.WriteString(fmt.Sprintf("Stop-loss: %s\n", res.StopLoss.StringFixed(2)))
	}

	b.WriteString("\n")
	switch ev.Horizon {
	case model.HorizonLong:
		b.WriteString(fmt.Sprintf("EMA long: %.2f\n", snap.EMALong))
	default:
		b.WriteString(fmt.Sprintf("EMA fast/slow: %.2f / %.2f\n", snap.EMAFast, snap.EMASlow))
	}
	if snap.HasRSI {
		b.WriteString(fmt.Sprintf("RSI: %.1f\n", snap.RSI))
	}
	if snap.HasATR {
		b.WriteString(fmt.Sprintf("ATR: %.4f\n", snap.ATR))
	}
	b.WriteString(fmt.Sprintf("Window: %d days, %d bars\n", ev.Days, snap.Points))
	if ev.LowConfidence {
		b.WriteString(fmt.Sprintf("⚠️ Low confidence: %d bars for a %d-bar lookback\n", snap.Points, snap.Lookback))
	}
	b.WriteString(fmt.Sprintf("\n%s", ev.EvaluatedAt.UTC().Format("2006-01-02 15:04 MST")))
	return b.String()
}

// FormatFailure formats an evaluation that produced no result.
func FormatFailure(ev *model.Evaluation) string {
	return fmt.Sprintf("❌ <b>%s</b> %s: no result available\n%s",
		html.EscapeString(ev.AssetID), watchLabel(ev), html.EscapeString(ev.Err))
}

// FormatLatest formats one line per stored evaluation.
func FormatLatest(evs []*model.Evaluation) string {
	if len(evs) == 0 {
		return "No signals yet."
	}
	var b strings.Builder
	b.WriteString("📋 <b>Latest signals</b>\n\n")
	for _, ev := range evs {
		if ev.Failed() {
			b.WriteString(fmt.Sprintf("❌ %s %s: %s\n", html.EscapeString(ev.AssetID), watchLabel(ev), html.EscapeString(ev.Err)))
			continue
		}
		line := fmt.Sprintf("%s %s %s: %s @ %.2f", signalIcon(ev.Result.Signal),
			html.EscapeString(ev.AssetID), watchLabel(ev), ev.Result.Signal, ev.Snapshot.Price)
		if ev.Result.Signal != model.SignalHold {
			line += fmt.Sprintf(" (TP %s / SL %s)", ev.Result.Target.StringFixed(2), ev.Result.StopLoss.StringFixed(2))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// watchLabel is "horizon/rule", or just the horizon when the rule is unknown.
func watchLabel(ev *model.Evaluation) string {
	if ev.Rule == "" {
		return string(ev.Horizon)
	}
	return string(ev.Horizon) + "/" + string(ev.Rule)
}

// FormatAssets lists the catalog.
func FormatAssets(assets []model.Asset) string {
	var b strings.Builder
	b.WriteString("📦 <b>Assets</b>\n\n")
	for _, a := range assets {
		b.WriteString(fmt.Sprintf("• <code>%s</code> %s (%s)\n", html.EscapeString(a.ID), html.EscapeString(a.Name), a.Class))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Commands:\n" +
		"• /signal &lt;asset&gt; [short|long] [basic|gated] [days]\n" +
		"• /latest\n" +
		"• /assets\n" +
		"• /help"
}
