package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"barcraft/internal/engine"
	"barcraft/models"
)

// catalogStore adapts the database to the engine's collaborator interfaces:
// it creates canonical ingredients and fetches bottle variants with their
// current prices.
type catalogStore struct{}

var _ engine.IngredientCreator = (*catalogStore)(nil)
var _ engine.BottleSource = (*catalogStore)(nil)

func (catalogStore) CreateIngredient(ctx context.Context, name string) (engine.CatalogEntry, error) {
	if database == nil {
		return engine.CatalogEntry{}, gorm.ErrInvalidDB
	}

	ingredient := models.Ingredient{Name: strings.TrimSpace(name)}
	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return engine.CatalogEntry{}, fmt.Errorf("create ingredient %q: %w", name, err)
	}

	return engine.CatalogEntry{
		ID:       ingredient.ID,
		Name:     ingredient.Name,
		NameAlt:  ingredient.NameAlt,
		Category: ingredient.Category,
	}, nil
}

func (catalogStore) BottlesForIngredient(ctx context.Context, ingredientID uuid.UUID) ([]engine.BottleVariant, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	var bottles []models.Bottle
	if err := database.WithContext(ctx).
		Preload("Prices").
		Where("ingredient_id = ?", ingredientID).
		Order("volume_ml asc").
		Find(&bottles).Error; err != nil {
		return nil, err
	}

	variants := make([]engine.BottleVariant, 0, len(bottles))
	for _, bottle := range bottles {
		variant := engine.BottleVariant{
			ID:       bottle.ID,
			Name:     bottle.Name,
			NameAlt:  bottle.NameAlt,
			VolumeML: bottle.VolumeML,
		}
		if price := currentPrice(bottle.Prices); price != nil {
			money := engine.MoneyFromMinor(price.PriceMinor, price.Currency)
			variant.Price = &money
		}
		variants = append(variants, variant)
	}
	return variants, nil
}

// currentPrice picks the open-ended price with the most recent start date,
// falling back to the newest closed one.
func currentPrice(prices []models.BottlePrice) *models.BottlePrice {
	var best *models.BottlePrice
	for i := range prices {
		candidate := &prices[i]
		if best == nil {
			best = candidate
			continue
		}
		bestOpen := best.EndDate == nil
		candidateOpen := candidate.EndDate == nil
		if candidateOpen != bestOpen {
			if candidateOpen {
				best = candidate
			}
			continue
		}
		if candidate.StartDate.After(best.StartDate) {
			best = candidate
		}
	}
	return best
}

func loadCatalogEntries(ctx context.Context) ([]engine.CatalogEntry, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	var ingredients []models.Ingredient
	if err := database.WithContext(ctx).Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, err
	}

	entries := make([]engine.CatalogEntry, 0, len(ingredients))
	for _, ingredient := range ingredients {
		entries = append(entries, engine.CatalogEntry{
			ID:       ingredient.ID,
			Name:     ingredient.Name,
			NameAlt:  ingredient.NameAlt,
			Category: ingredient.Category,
		})
	}
	return entries, nil
}
