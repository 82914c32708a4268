// Package lookup answers the bot's questions about the value sheet: item
// lookups, trade checks and high-demand listings.
package lookup

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/value-bot/internal/dataset"
	"github.com/sells-group/value-bot/internal/field"
	"github.com/sells-group/value-bot/internal/model"
	"github.com/sells-group/value-bot/internal/resolve"
	"github.com/sells-group/value-bot/internal/trade"
)

// High-demand listing defaults.
const (
	DefaultDemandThreshold = 7.0
	DefaultDemandLimit     = 20
)

// HighDemandEntry is one row of a high-demand listing.
type HighDemandEntry struct {
	Name          string  `json:"name" yaml:"name"`
	Demand        float64 `json:"demand" yaml:"demand"`
	DemandDisplay string  `json:"demand_display" yaml:"demand_display"`
	ValueDisplay  string  `json:"value_display" yaml:"value_display"`
}

// Service wires the dataset source to the resolver and trade evaluator.
type Service struct {
	source    dataset.Source
	resolver  *resolve.Resolver
	evaluator *trade.Evaluator
}

// NewService creates a Service.
func NewService(src dataset.Source, r *resolve.Resolver, e *trade.Evaluator) *Service {
	return &Service{source: src, resolver: r, evaluator: e}
}

// Warm loads the dataset ahead of the first command. A failure is logged and
// left for the next command to retry.
func (s *Service) Warm(ctx context.Context) {
	if _, err := s.source.GetOrLoad(ctx); err != nil {
		zap.L().Warn("lookup: initial dataset load failed, will retry on demand", zap.Error(err))
	}
}

// Value looks up a single item. A name below the match threshold yields a
// KindItemNotFound error carrying the best score.
func (s *Service) Value(ctx context.Context, name string) (model.MatchResult, error) {
	ds, err := s.source.GetOrLoad(ctx)
	if err != nil {
		return model.MatchResult{}, err
	}
	res := s.resolver.Resolve(name, ds)
	if !res.Found() {
		return res, model.ItemNotFound(name, res.Score)
	}
	return res, nil
}

// Trade parses and evaluates a trade request such as
// "Silver Bar + Silver Bar for Gold Bar".
func (s *Service) Trade(ctx context.Context, text string) (model.TradeOutcome, error) {
	spec, err := trade.ParseSpec(text)
	if err != nil {
		return model.TradeOutcome{}, err
	}
	ds, err := s.source.GetOrLoad(ctx)
	if err != nil {
		return model.TradeOutcome{}, err
	}
	return s.evaluator.Evaluate(spec.Offered, spec.Target, ds)
}

// HighDemand lists items whose demand is at least threshold, highest first,
// keeping sheet order among equal demand. limit <= 0 uses DefaultDemandLimit.
func (s *Service) HighDemand(ctx context.Context, threshold float64, limit int) ([]HighDemandEntry, error) {
	ds, err := s.source.GetOrLoad(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultDemandLimit
	}

	var out []HighDemandEntry
	for _, it := range ds.Items() {
		d, ok := field.ParseDemand(it.Demand)
		if !ok || d < threshold {
			continue
		}
		out = append(out, HighDemandEntry{
			Name:          it.Name,
			Demand:        d,
			DemandDisplay: demandDisplay(it.Demand, d),
			ValueDisplay:  valueDisplay(it.RawValue),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Demand > out[j].Demand })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func demandDisplay(raw string, parsed float64) string {
	if field.IsPlaceholder(raw) {
		return fmt.Sprintf("%.1f", parsed)
	}
	return raw
}

func valueDisplay(raw string) string {
	if raw == "" {
		return "N/A"
	}
	return raw
}
