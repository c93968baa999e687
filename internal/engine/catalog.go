package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrUnresolvableIngredient is returned when a free-text name can neither be
// matched against the catalog nor created through the catalog service. It is
// the only engine error callers should treat as a hard failure.
var ErrUnresolvableIngredient = errors.New("engine: ingredient could not be resolved")

// Language selects which display name a caller prefers. Either name field is
// sufficient on its own; the other is the fallback.
type Language int

const (
	LanguagePrimary Language = iota
	LanguageSecondary
)

// CatalogEntry is the engine's view of a canonical ingredient.
type CatalogEntry struct {
	ID       uuid.UUID
	Name     string
	NameAlt  string
	Category string
}

// DisplayName returns the preferred non-empty display name of a bilingual
// pair. Every component that renders a name goes through here.
func DisplayName(name, nameAlt string, preferred Language) string {
	first, second := name, nameAlt
	if preferred == LanguageSecondary {
		first, second = nameAlt, name
	}
	if trimmed := strings.TrimSpace(first); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(second)
}

// IngredientCreator creates a canonical ingredient for a name the catalog
// does not know yet. Implementations talk to the external catalog service.
type IngredientCreator interface {
	CreateIngredient(ctx context.Context, name string) (CatalogEntry, error)
}

// Index is an in-memory lookup from free-text ingredient names to catalog
// entries. It matches either display name, case-insensitively, and accepts
// additive updates while a session is running.
type Index struct {
	mu      sync.Mutex
	entries []CatalogEntry
	byName  map[string]int

	// ensureMu serializes Ensure so a batch submission referencing the same
	// unknown name twice never issues two creation calls.
	ensureMu sync.Mutex
}

// NewIndex builds an Index from a catalog snapshot.
func NewIndex(entries []CatalogEntry) *Index {
	idx := &Index{byName: make(map[string]int, len(entries)*2)}
	for _, entry := range entries {
		idx.add(entry)
	}
	return idx
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (idx *Index) add(entry CatalogEntry) {
	idx.entries = append(idx.entries, entry)
	pos := len(idx.entries) - 1
	for _, name := range []string{entry.Name, entry.NameAlt} {
		key := normalizeName(name)
		if key == "" {
			continue
		}
		// First registration wins; the catalog is assumed not to collide.
		if _, ok := idx.byName[key]; !ok {
			idx.byName[key] = pos
		}
	}
}

// Add registers an entry created elsewhere during the session.
func (idx *Index) Add(entry CatalogEntry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.add(entry)
}

// Resolve matches a free-text name against both display-name fields. It
// returns nil when nothing matches.
func (idx *Index) Resolve(name string) *CatalogEntry {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.resolve(name)
}

func (idx *Index) resolve(name string) *CatalogEntry {
	key := normalizeName(name)
	if key == "" {
		return nil
	}
	pos, ok := idx.byName[key]
	if !ok {
		return nil
	}
	entry := idx.entries[pos]
	return &entry
}

// Lookup returns the entry for a known ingredient id, if present.
func (idx *Index) Lookup(id uuid.UUID) *CatalogEntry {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i := range idx.entries {
		if idx.entries[i].ID == id {
			entry := idx.entries[i]
			return &entry
		}
	}
	return nil
}

// Entries returns a copy of the current catalog snapshot.
func (idx *Index) Entries() []CatalogEntry {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make([]CatalogEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Ensure resolves a name, creating a canonical ingredient when the catalog
// has no match. Newly created entries are registered immediately so repeated
// references to the same unknown name within one submission resolve to the
// same id without duplicate creation calls. Ensure calls on one index are
// fully serialized; concurrent sessions may still race against each other on
// the catalog service side.
func (idx *Index) Ensure(ctx context.Context, creator IngredientCreator, name string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return uuid.Nil, fmt.Errorf("%w: empty name", ErrUnresolvableIngredient)
	}

	idx.ensureMu.Lock()
	defer idx.ensureMu.Unlock()

	if entry := idx.Resolve(trimmed); entry != nil {
		return entry.ID, nil
	}

	if creator == nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrUnresolvableIngredient, trimmed)
	}

	created, err := creator.CreateIngredient(ctx, trimmed)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q: %v", ErrUnresolvableIngredient, trimmed, err)
	}
	if created.ID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %q: creator returned no id", ErrUnresolvableIngredient, trimmed)
	}

	idx.Add(created)
	return created.ID, nil
}
