package trade

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/value-bot/internal/model"
	"github.com/sells-group/value-bot/internal/resolve"
)

var hundred = decimal.NewFromInt(100)

// Default fair band, in percent of the target's value.
var (
	DefaultFairLow  = decimal.NewFromInt(85)
	DefaultFairHigh = decimal.NewFromInt(115)
)

// Evaluator prices trades against a dataset.
type Evaluator struct {
	resolver *resolve.Resolver
	fairLow  decimal.Decimal
	fairHigh decimal.Decimal
}

// NewEvaluator creates an Evaluator. Offers below fairLow percent of the
// target are lowballs, offers above fairHigh percent are overpays; both
// bounds are inclusive for FAIR.
func NewEvaluator(r *resolve.Resolver, fairLow, fairHigh decimal.Decimal) *Evaluator {
	return &Evaluator{resolver: r, fairLow: fairLow, fairHigh: fairHigh}
}

// Classify maps a percentage onto the fair band.
func (e *Evaluator) Classify(pct decimal.Decimal) model.Classification {
	return Classify(pct, e.fairLow, e.fairHigh)
}

// Classify maps a percentage onto a fair band [low, high].
func Classify(pct, low, high decimal.Decimal) model.Classification {
	switch {
	case pct.LessThan(low):
		return model.Lowball
	case pct.GreaterThan(high):
		return model.Overpay
	default:
		return model.Fair
	}
}

// Evaluate prices the offered items against the target. Items are resolved
// in order and the first failure aborts the evaluation.
func (e *Evaluator) Evaluate(offered []string, target string, ds *model.Dataset) (model.TradeOutcome, error) {
	var out model.TradeOutcome

	for _, name := range offered {
		it, err := e.price(name, ds)
		if err != nil {
			return model.TradeOutcome{}, err
		}
		out.Offered = append(out.Offered, it)
		out.OfferedTotal += it.Value
	}

	tgt, err := e.price(target, ds)
	if err != nil {
		return model.TradeOutcome{}, err
	}
	if tgt.Value == 0 {
		return model.TradeOutcome{}, model.ZeroTargetValue(tgt.Name)
	}
	out.Target = tgt
	out.TargetValue = tgt.Value

	out.Percentage = decimal.NewFromInt(out.OfferedTotal).
		Mul(hundred).
		Div(decimal.NewFromInt(out.TargetValue))
	out.Classification = e.Classify(out.Percentage)
	return out, nil
}

func (e *Evaluator) price(name string, ds *model.Dataset) (model.PricedItem, error) {
	res := e.resolver.Resolve(name, ds)
	if !res.Found() {
		return model.PricedItem{}, model.ItemNotFound(name, res.Score)
	}
	if !res.Item.ValueOK {
		return model.PricedItem{}, model.ValueConversion(res.Item.Name, res.Item.RawValue)
	}
	return model.PricedItem{Name: res.Item.Name, Value: res.Item.Value}, nil
}
