package engine

import (
	"github.com/shopspring/decimal"
)

// LineProjection is the costed view of one scaled recipe line. Cost is nil
// when no package price could be resolved: unavailable, not zero.
type LineProjection struct {
	Line           Line    `json:"line"`
	ScaledQuantity float64 `json:"scaled_quantity"`
	Cost           *Money  `json:"cost,omitempty"`
}

// CostProjection is the recipe-level cost view. The total is authoritative
// only when Partial and MixedCurrency are both false.
type CostProjection struct {
	Lines         []LineProjection `json:"lines"`
	Total         Money            `json:"total"`
	Partial       bool             `json:"partial"`
	MixedCurrency bool             `json:"mixed_currency"`
}

// LineCost prices one line at a scale factor. The cost is proportional to
// the unrounded scaled quantity: price per milliliter is derived from the
// bottle's volume and multiplied by quantity*factor, so the two-decimal
// display rounding of ScaledQuantity never compounds into the total. Lines
// without a priced bottle, and discrete-unit lines, report no cost.
func LineCost(line Line, factor float64, bottle *BottleVariant) (Money, bool) {
	if bottle == nil || bottle.Price == nil || bottle.VolumeML <= 0 {
		return Money{}, false
	}
	if line.Class() != UnitClassVolume {
		return Money{}, false
	}
	quantity := decimal.NewFromFloat(line.Quantity * factor)
	if quantity.Sign() < 0 {
		return Money{}, false
	}
	perML := bottle.Price.Amount.Div(decimal.NewFromInt(int64(bottle.VolumeML)))
	return Money{
		Amount:   perML.Mul(quantity),
		Currency: bottle.Price.Currency,
	}, true
}

// ProjectCost attaches costs to a set of recipe lines at a scale factor.
// bottleFor resolves the selected bottle of a line; it may return nil. The
// caller decides which lines participate: under a base batch type it passes
// the active lines only, so juice is excluded from the no-juice cost view.
//
// Currency is taken from the first priced line. A later line in a different
// currency flags the projection instead of being summed; cross-currency
// totals are unsupported input.
func ProjectCost(lines []Line, factor float64, bottleFor func(Line) *BottleVariant) CostProjection {
	projection := CostProjection{Lines: make([]LineProjection, 0, len(lines))}
	total := decimal.Zero

	for _, line := range lines {
		entry := LineProjection{
			Line:           line,
			ScaledQuantity: line.Quantity,
		}
		if line.Class() == UnitClassVolume && factor > 0 {
			entry.ScaledQuantity = ScaledQuantity(line.Quantity, factor)
		}

		var bottle *BottleVariant
		if bottleFor != nil {
			bottle = bottleFor(line)
		}
		cost, ok := LineCost(line, factor, bottle)
		if !ok {
			projection.Partial = true
			projection.Lines = append(projection.Lines, entry)
			continue
		}

		if projection.Total.Currency == "" {
			projection.Total.Currency = cost.Currency
		} else if projection.Total.Currency != cost.Currency {
			projection.MixedCurrency = true
			projection.Lines = append(projection.Lines, entry)
			continue
		}

		rounded := Money{Amount: cost.Amount.Round(2), Currency: cost.Currency}
		entry.Cost = &rounded
		total = total.Add(cost.Amount)
		projection.Lines = append(projection.Lines, entry)
	}

	projection.Total.Amount = total.Round(2)
	return projection
}
