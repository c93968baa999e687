package mock

import (
	"context"
	"testing"

	"barcraft/models"
)

func TestNewSeedsRepresentativeBar(t *testing.T) {
	ctx := context.Background()
	database, err := New(ctx)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var ingredientCount int64
	if err := database.Model(&models.Ingredient{}).Count(&ingredientCount).Error; err != nil {
		t.Fatalf("count ingredients: %v", err)
	}
	if ingredientCount < 4 {
		t.Fatalf("expected seeded ingredients, got %d", ingredientCount)
	}

	var juice models.Ingredient
	if err := database.Where("category = ?", "juice").First(&juice).Error; err != nil {
		t.Fatalf("expected a juice-category ingredient: %v", err)
	}
	if juice.NameAlt == "" {
		t.Fatalf("seeded juice ingredient should carry a secondary name")
	}

	var recipe models.CocktailRecipe
	if err := database.Preload("Ingredients").First(&recipe).Error; err != nil {
		t.Fatalf("load recipe: %v", err)
	}
	if len(recipe.Ingredients) != 4 {
		t.Fatalf("recipe lines = %d, want 4", len(recipe.Ingredients))
	}

	var orders []models.Order
	if err := database.Preload("Items").Find(&orders).Error; err != nil {
		t.Fatalf("load orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("orders = %d, want 2", len(orders))
	}
	items := 0
	for _, order := range orders {
		items += len(order.Items)
	}
	if items != 3 {
		t.Fatalf("order items = %d, want 3", items)
	}
}

func TestEmptyIsMigratedAndBlank(t *testing.T) {
	database, err := Empty(context.Background(), "mock-empty-test")
	if err != nil {
		t.Fatalf("Empty returned error: %v", err)
	}

	var count int64
	if err := database.Model(&models.Ingredient{}).Count(&count).Error; err != nil {
		t.Fatalf("schema not migrated: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no rows, got %d", count)
	}
}
