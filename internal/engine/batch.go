package engine

import (
	"fmt"
	"strings"
)

// CategoryJuice marks perishable ingredients that spoil in a prepared batch
// and are added fresh at pour time instead.
const CategoryJuice = "juice"

// BatchType decides which recipe lines end up in the produced batch.
type BatchType int

const (
	// BatchBase excludes juice-category lines from the batch.
	BatchBase BatchType = iota
	// BatchFull includes every line.
	BatchFull
)

func (t BatchType) String() string {
	if t == BatchBase {
		return "base"
	}
	return "batch"
}

// ParseBatchType maps the persisted string form ("base"/"batch") back to a
// BatchType.
func ParseBatchType(value string) (BatchType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "base":
		return BatchBase, nil
	case "batch":
		return BatchFull, nil
	default:
		return BatchFull, fmt.Errorf("engine: unknown batch type %q", value)
	}
}

// IsJuice reports whether a line resolves to the juice category.
func IsJuice(line Line) bool {
	return strings.EqualFold(strings.TrimSpace(line.Category), CategoryJuice)
}

// Classify partitions lines by the effective batch type. Under BatchBase the
// juice lines are moved to excluded; under BatchFull everything stays
// active. The split is pure and can be re-derived from the full line list at
// any time. Excluded lines are hidden, never discarded.
func Classify(lines []Line, effective BatchType) (active, excluded []Line) {
	active = make([]Line, 0, len(lines))
	if effective == BatchFull {
		active = append(active, lines...)
		return active, nil
	}
	for _, line := range lines {
		if IsJuice(line) {
			excluded = append(excluded, line)
			continue
		}
		active = append(active, line)
	}
	return active, excluded
}

// Classifier tracks the batch type of one recipe across a session. It is a
// two-state machine: the engine may auto-switch into BatchFull when an edit
// introduces juice, but it never auto-switches into BatchBase and it never
// overrides a type the user chose or that was persisted with the recipe.
type Classifier struct {
	current  BatchType
	explicit bool
}

// NewClassifier adopts a persisted batch type verbatim, marking it explicit.
// A nil persisted value starts the machine at BatchFull with derivation
// still allowed.
func NewClassifier(persisted *BatchType) *Classifier {
	if persisted != nil {
		return &Classifier{current: *persisted, explicit: true}
	}
	return &Classifier{current: BatchFull}
}

// Effective returns the current batch type.
func (c *Classifier) Effective() BatchType {
	return c.current
}

// Explicit reports whether the current type was set by the user or loaded
// from storage, as opposed to derived.
func (c *Classifier) Explicit() bool {
	return c.explicit
}

// NoteIngredientEdit re-derives the default after the ingredient list
// changed. While the type is not explicit, the presence of juice forces
// BatchFull; the transition is idempotent and does not mark the type
// explicit.
func (c *Classifier) NoteIngredientEdit(lines []Line) {
	if c.explicit {
		return
	}
	for _, line := range lines {
		if IsJuice(line) {
			c.current = BatchFull
			return
		}
	}
}

// Select records a direct user choice. The choice is explicit from then on.
func (c *Classifier) Select(t BatchType) {
	c.current = t
	c.explicit = true
}

// Classify splits the full line list by the current effective type.
func (c *Classifier) Classify(lines []Line) (active, excluded []Line) {
	return Classify(lines, c.current)
}
