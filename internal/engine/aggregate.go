package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// BottleRef is the representative package carried on an order line. It is
// used for display and bottle recommendations only, never for arithmetic.
type BottleRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	NameAlt  string    `json:"name_alt,omitempty"`
	VolumeML int       `json:"volume_ml"`
}

// OrderLine is one order item as the engine consumes it: an ingredient
// reference plus up to three magnitudes per unit class. Volume magnitudes
// live in the *ML fields, discrete magnitudes in the *Quantity fields.
type OrderLine struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Name         string    `json:"ingredient_name"`
	NameAlt      string    `json:"ingredient_name_alt,omitempty"`

	RequestedML       *float64 `json:"requested_ml,omitempty"`
	RequestedQuantity *float64 `json:"requested_quantity,omitempty"`

	UsedFromStockML       *float64 `json:"used_from_stock_ml,omitempty"`
	UsedFromStockQuantity *float64 `json:"used_from_stock_quantity,omitempty"`

	NeededML       *float64 `json:"needed_ml,omitempty"`
	NeededQuantity *float64 `json:"needed_quantity,omitempty"`

	Unit   string     `json:"unit,omitempty"`
	Bottle *BottleRef `json:"bottle,omitempty"`
}

// Order is a set of order lines attributed to an optional supplier and
// event. The engine only reads it; persistence belongs to the caller.
type Order struct {
	ID           uuid.UUID   `json:"id"`
	SupplierID   *uuid.UUID  `json:"supplier_id,omitempty"`
	SupplierName string      `json:"supplier_name,omitempty"`
	EventID      *uuid.UUID  `json:"event_id,omitempty"`
	EventName    string      `json:"event_name,omitempty"`
	Items        []OrderLine `json:"items"`
}

// AggregatedLine is the reconciled view of one ingredient within one unit
// class across a set of orders. It is derived on every call, never stored.
type AggregatedLine struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Name         string    `json:"ingredient_name"`
	NameAlt      string    `json:"ingredient_name_alt,omitempty"`

	Class UnitClass `json:"-"`
	Unit  string    `json:"unit"`

	Requested     float64 `json:"requested"`
	UsedFromStock float64 `json:"used_from_stock"`
	Needed        float64 `json:"needed"`

	Bottle             *BottleRef `json:"bottle,omitempty"`
	RecommendedBottles *int       `json:"recommended_bottles,omitempty"`
}

// lineKey is the composite merge key: one aggregate per ingredient per unit
// class. Discrete lines additionally key on their declared unit so pieces
// and leaves of the same ingredient stay apart.
type lineKey struct {
	IngredientID uuid.UUID
	Class        UnitClass
	Unit         string
}

// The class of a line follows from which magnitude fields it carries: any
// milliliter field makes it a volume line, otherwise it is discrete and its
// declared unit becomes part of the merge key.
func (l OrderLine) key() lineKey {
	if l.RequestedML != nil || l.UsedFromStockML != nil || l.NeededML != nil {
		return lineKey{IngredientID: l.IngredientID, Class: UnitClassVolume}
	}
	unit := strings.ToLower(strings.TrimSpace(l.Unit))
	if ClassifyUnit(unit) == UnitClassVolume {
		return lineKey{IngredientID: l.IngredientID, Class: UnitClassVolume}
	}
	return lineKey{IngredientID: l.IngredientID, Class: UnitClassDiscrete, Unit: unit}
}

func deref(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

// Aggregate folds the line items of many orders into one reconciled line per
// (ingredient, unit-class) key. The three magnitudes are summed
// independently; missing values contribute zero. The first non-nil
// representative bottle of a key is kept. The result is ordered by display
// name, case-insensitively and locale-aware.
//
// Aggregate is pure: calling it twice on the same input yields the same
// output, and an ingredient appearing in both volume and discrete form
// yields two separate lines.
func Aggregate(orders []Order) []AggregatedLine {
	byKey := make(map[lineKey]*AggregatedLine)
	keys := make([]lineKey, 0)

	for _, order := range orders {
		for _, item := range order.Items {
			key := item.key()
			agg, ok := byKey[key]
			if !ok {
				agg = &AggregatedLine{
					IngredientID: item.IngredientID,
					Class:        key.Class,
					Unit:         aggregateUnit(key, item),
				}
				byKey[key] = agg
				keys = append(keys, key)
			}
			if agg.Name == "" {
				agg.Name = strings.TrimSpace(item.Name)
			}
			if agg.NameAlt == "" {
				agg.NameAlt = strings.TrimSpace(item.NameAlt)
			}

			if key.Class == UnitClassVolume {
				agg.Requested += deref(item.RequestedML)
				agg.UsedFromStock += deref(item.UsedFromStockML)
				agg.Needed += deref(item.NeededML)
			} else {
				agg.Requested += deref(item.RequestedQuantity)
				agg.UsedFromStock += deref(item.UsedFromStockQuantity)
				agg.Needed += deref(item.NeededQuantity)
			}

			if agg.Bottle == nil && item.Bottle != nil {
				bottle := *item.Bottle
				agg.Bottle = &bottle
			}
		}
	}

	result := make([]AggregatedLine, 0, len(keys))
	for _, key := range keys {
		agg := byKey[key]
		agg.RecommendedBottles = recommendBottles(agg)
		result = append(result, *agg)
	}
	sortAggregatedLines(result)
	return result
}

func aggregateUnit(key lineKey, item OrderLine) string {
	if key.Class == UnitClassVolume {
		return "ml"
	}
	return key.Unit
}

// recommendBottles derives ceil(needed/volume) when a representative bottle
// with a positive volume exists and something is actually needed. Absence
// means "no recommendation available", which is distinct from zero bottles.
func recommendBottles(agg *AggregatedLine) *int {
	if agg.Class != UnitClassVolume {
		return nil
	}
	if agg.Bottle == nil || agg.Bottle.VolumeML <= 0 || agg.Needed <= 0 {
		return nil
	}
	count := int(math.Ceil(agg.Needed / float64(agg.Bottle.VolumeML)))
	return &count
}

func sortAggregatedLines(lines []AggregatedLine) {
	cl := collate.New(language.Und, collate.Loose)
	sort.SliceStable(lines, func(i, j int) bool {
		ni := DisplayName(lines[i].Name, lines[i].NameAlt, LanguagePrimary)
		nj := DisplayName(lines[j].Name, lines[j].NameAlt, LanguagePrimary)
		if cmp := cl.CompareString(ni, nj); cmp != 0 {
			return cmp < 0
		}
		if lines[i].Class != lines[j].Class {
			return lines[i].Class == UnitClassVolume
		}
		if lines[i].Unit != lines[j].Unit {
			return lines[i].Unit < lines[j].Unit
		}
		return lines[i].IngredientID.String() < lines[j].IngredientID.String()
	})
}

// SupplierGroup is the per-supplier drill-down view: the same aggregation
// arithmetic applied to the subset of orders belonging to one supplier.
type SupplierGroup struct {
	SupplierID   *uuid.UUID       `json:"supplier_id,omitempty"`
	SupplierName string           `json:"supplier_name,omitempty"`
	OrderIDs     []uuid.UUID      `json:"order_ids"`
	Items        []AggregatedLine `json:"items"`
}

// GroupBySupplier partitions orders by supplier id, aggregating each bucket
// on its own. Orders without a supplier fall into a single unknown-supplier
// bucket, which sorts last; the named groups are ordered by supplier name.
func GroupBySupplier(orders []Order) []SupplierGroup {
	type bucket struct {
		group  SupplierGroup
		orders []Order
	}
	bySupplier := make(map[uuid.UUID]*bucket)
	var unknown *bucket
	sequence := make([]*bucket, 0)

	for _, order := range orders {
		var b *bucket
		if order.SupplierID == nil {
			if unknown == nil {
				unknown = &bucket{}
				sequence = append(sequence, unknown)
			}
			b = unknown
		} else {
			b = bySupplier[*order.SupplierID]
			if b == nil {
				id := *order.SupplierID
				b = &bucket{group: SupplierGroup{SupplierID: &id, SupplierName: order.SupplierName}}
				bySupplier[id] = b
				sequence = append(sequence, b)
			}
		}
		if b.group.SupplierName == "" {
			b.group.SupplierName = order.SupplierName
		}
		b.group.OrderIDs = append(b.group.OrderIDs, order.ID)
		b.orders = append(b.orders, order)
	}

	groups := make([]SupplierGroup, 0, len(sequence))
	for _, b := range sequence {
		b.group.Items = Aggregate(b.orders)
		groups = append(groups, b.group)
	}

	cl := collate.New(language.Und, collate.Loose)
	sort.SliceStable(groups, func(i, j int) bool {
		if (groups[i].SupplierID == nil) != (groups[j].SupplierID == nil) {
			return groups[j].SupplierID == nil
		}
		return cl.CompareString(groups[i].SupplierName, groups[j].SupplierName) < 0
	})
	return groups
}
