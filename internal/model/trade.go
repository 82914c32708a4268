package model

import (
	"github.com/shopspring/decimal"
)

// Classification labels how fair a trade is for the side receiving the offer.
type Classification string

// Trade classifications.
const (
	Lowball Classification = "LOWBALL"
	Fair    Classification = "FAIR"
	Overpay Classification = "OVERPAY"
)

// PricedItem is a resolved item name with its integer value.
type PricedItem struct {
	Name  string `json:"name" yaml:"name"`
	Value int64  `json:"value" yaml:"value"`
}

// TradeOutcome carries everything needed to render a trade result.
type TradeOutcome struct {
	Offered        []PricedItem    `json:"offered" yaml:"offered"`
	Target         PricedItem      `json:"target" yaml:"target"`
	OfferedTotal   int64           `json:"offered_total" yaml:"offered_total"`
	TargetValue    int64           `json:"target_value" yaml:"target_value"`
	Percentage     decimal.Decimal `json:"percentage" yaml:"percentage"`
	Classification Classification  `json:"classification" yaml:"classification"`
}
