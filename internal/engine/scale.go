package engine

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// UnitClass separates continuous volume measures from countable ones. All
// arithmetic on a line happens within one class; the two are never summed
// together.
type UnitClass int

const (
	UnitClassVolume UnitClass = iota
	UnitClassDiscrete
)

func (c UnitClass) String() string {
	if c == UnitClassVolume {
		return "volume"
	}
	return "discrete"
}

// ClassifyUnit maps a unit label to its class. Milliliter spellings are
// volume; anything else (piece, leaf, dash...) counts as discrete.
func ClassifyUnit(unit string) UnitClass {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "ml", "milliliter", "milliliters", "millilitre", "millilitres":
		return UnitClassVolume
	default:
		return UnitClassDiscrete
	}
}

// Line is one recipe line as the engine sees it: a resolved ingredient, a
// quantity in some unit, and an optional bottle selection for costing.
type Line struct {
	IngredientID uuid.UUID
	Name         string
	NameAlt      string
	Category     string
	Quantity     float64
	Unit         string
	BottleID     *uuid.UUID
	SortOrder    int
}

// Class returns the unit class of the line.
func (l Line) Class() UnitClass {
	return ClassifyUnit(l.Unit)
}

// TotalVolume sums the quantities of the volume-class lines. Discrete lines
// contribute nothing; a recipe made only of garnish counts has no scalable
// volume.
func TotalVolume(lines []Line) float64 {
	total := 0.0
	for _, line := range lines {
		if line.Class() != UnitClassVolume {
			continue
		}
		if line.Quantity > 0 {
			total += line.Quantity
		}
	}
	return total
}

// ScaleFactor derives the ratio between a target output volume and the
// recipe's nominal volume. Zero and negative targets, and recipes with no
// volume, resolve to 0: callers treat a zero factor as "not yet computable"
// rather than an error.
func ScaleFactor(lines []Line, targetVolume float64) float64 {
	if targetVolume <= 0 {
		return 0
	}
	total := TotalVolume(lines)
	if total <= 0 {
		return 0
	}
	return targetVolume / total
}

// ScaledQuantity applies a scale factor and rounds half-up to two decimals.
// The rounded value is for display only; cost projection re-derives from the
// unrounded product so rounding error never compounds.
func ScaledQuantity(quantity, factor float64) float64 {
	return math.Round(quantity*factor*100) / 100
}

// ScaleLines returns a copy of lines with volume quantities scaled by the
// factor. Discrete lines pass through unchanged: scaling is defined for
// volume, a mixed recipe scales only its volume lines.
func ScaleLines(lines []Line, factor float64) []Line {
	scaled := make([]Line, len(lines))
	copy(scaled, lines)
	if factor <= 0 {
		return scaled
	}
	for i := range scaled {
		if scaled[i].Class() != UnitClassVolume {
			continue
		}
		scaled[i].Quantity = ScaledQuantity(scaled[i].Quantity, factor)
	}
	return scaled
}
