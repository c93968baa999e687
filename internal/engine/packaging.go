package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Money pairs a decimal amount with an ISO currency code. The engine never
// converts between currencies; it only refuses to sum across them.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// MoneyFromMinor builds a Money value from an amount in minor units
// (agorot, cents).
func MoneyFromMinor(minor int64, currency string) Money {
	return Money{Amount: decimal.New(minor, -2), Currency: currency}
}

// BottleVariant is a purchasable package of an ingredient: a fixed nominal
// volume at a price.
type BottleVariant struct {
	ID       uuid.UUID
	Name     string
	NameAlt  string
	VolumeML int
	Price    *Money
}

// BottleSource fetches the purchasable variants of one ingredient.
// Implementations talk to the external packaging/price service.
type BottleSource interface {
	BottlesForIngredient(ctx context.Context, ingredientID uuid.UUID) ([]BottleVariant, error)
}

// PackagingResolver memoizes bottle lookups per ingredient id for the life
// of a session. Invalidate discards everything; the next lookup refetches.
type PackagingResolver struct {
	source BottleSource

	mu    sync.Mutex
	cache map[uuid.UUID][]BottleVariant
}

// NewPackagingResolver wraps a bottle source with a session-scoped cache.
func NewPackagingResolver(source BottleSource) *PackagingResolver {
	return &PackagingResolver{
		source: source,
		cache:  make(map[uuid.UUID][]BottleVariant),
	}
}

// BottlesFor returns the package variants of an ingredient, fetching at most
// once per ingredient id per session.
func (r *PackagingResolver) BottlesFor(ctx context.Context, ingredientID uuid.UUID) ([]BottleVariant, error) {
	r.mu.Lock()
	if cached, ok := r.cache[ingredientID]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	if r.source == nil {
		return nil, fmt.Errorf("engine: no bottle source configured")
	}

	bottles, err := r.source.BottlesForIngredient(ctx, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("fetch bottles for %s: %w", ingredientID, err)
	}

	r.mu.Lock()
	r.cache[ingredientID] = bottles
	r.mu.Unlock()
	return bottles, nil
}

// Bottle returns one specific variant of an ingredient, or nil when the
// variant is unknown.
func (r *PackagingResolver) Bottle(ctx context.Context, ingredientID, bottleID uuid.UUID) (*BottleVariant, error) {
	bottles, err := r.BottlesFor(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	for i := range bottles {
		if bottles[i].ID == bottleID {
			bottle := bottles[i]
			return &bottle, nil
		}
	}
	return nil, nil
}

// Invalidate drops the cache. Callers do this after a full catalog reload.
func (r *PackagingResolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[uuid.UUID][]BottleVariant)
}
