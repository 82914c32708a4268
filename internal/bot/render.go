package bot

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/value-bot/internal/lookup"
	"github.com/sells-group/value-bot/internal/model"
)

func renderItem(it model.Item) Reply {
	return Reply{
		Title: it.Name,
		Color: ColorGold,
		Fields: []Field{
			{Name: "Value", Value: bold(it.RawValue)},
			{Name: "Demand", Value: bold(it.Demand)},
			{Name: "Status", Value: bold(it.Status)},
		},
	}
}

func renderTrade(out model.TradeOutcome) Reply {
	p := message.NewPrinter(language.English)

	offered := make([]string, len(out.Offered))
	for i, it := range out.Offered {
		offered[i] = p.Sprintf("• %s: **%d**", it.Name, it.Value)
	}

	status, color := classificationLabel(out.Classification)
	return Reply{
		Title: "Trade Calculator",
		Color: color,
		Fields: []Field{
			{Name: "📤 Offer", Value: strings.Join(offered, "\n")},
			{Name: "📥 For", Value: p.Sprintf("• %s: **%d**", out.Target.Name, out.Target.Value)},
			{Name: "📊 Result", Value: p.Sprintf("**%d** / **%d** = **%s%%**", out.OfferedTotal, out.TargetValue, out.Percentage.StringFixed(1))},
			{Name: "Status", Value: status},
			{Name: "Note", Value: "Calculations only based on value"},
		},
	}
}

func classificationLabel(c model.Classification) (string, int) {
	switch c {
	case model.Lowball:
		return "❌ **LOWBALL**", ColorRed
	case model.Fair:
		return "✅ **FAIR**", ColorGreen
	default:
		return "⚠️ **OVERPAY**", ColorOrange
	}
}

func renderHighDemand(entries []lookup.HighDemandEntry, threshold float64) Reply {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("• %s — Demand: **%s** — Value: **%s**", e.Name, e.DemandDisplay, e.ValueDisplay)
	}
	return Reply{
		Title:       fmt.Sprintf("🔥 High Demand (≥ %s)", formatThreshold(threshold)),
		Color:       ColorOrange,
		Description: strings.Join(lines, "\n"),
		Footer:      fmt.Sprintf("Showing up to %d items", len(entries)),
	}
}

func renderHelp(entries []lookup.HelpEntry) Reply {
	fields := make([]Field, len(entries))
	for i, e := range entries {
		fields[i] = Field{Name: e.Usage, Value: e.Description}
	}
	return Reply{Title: "Info — Commands", Color: ColorBlurple, Fields: fields}
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func bold(s string) string {
	if s == "" {
		s = "N/A"
	}
	return "**" + s + "**"
}
