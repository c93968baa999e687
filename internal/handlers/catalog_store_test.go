package handlers

import (
	"context"
	"testing"
	"time"

	"barcraft/models"
)

func TestCurrentPricePrefersOpenEndedLatestStart(t *testing.T) {
	t.Parallel()

	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	may := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	closed := models.BottlePrice{PriceMinor: 9000, StartDate: may, EndDate: &may}
	oldOpen := models.BottlePrice{PriceMinor: 10000, StartDate: jan}
	newOpen := models.BottlePrice{PriceMinor: 11000, StartDate: mar}

	got := currentPrice([]models.BottlePrice{closed, oldOpen, newOpen})
	if got == nil || got.PriceMinor != 11000 {
		t.Fatalf("expected the open price starting in march, got %+v", got)
	}
}

func TestCurrentPriceFallsBackToNewestClosed(t *testing.T) {
	t.Parallel()

	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	older := models.BottlePrice{PriceMinor: 8000, StartDate: jan, EndDate: &end}
	newer := models.BottlePrice{PriceMinor: 8500, StartDate: mar, EndDate: &end}

	got := currentPrice([]models.BottlePrice{older, newer})
	if got == nil || got.PriceMinor != 8500 {
		t.Fatalf("expected the newest closed price, got %+v", got)
	}
}

func TestCurrentPriceEmpty(t *testing.T) {
	t.Parallel()

	if got := currentPrice(nil); got != nil {
		t.Fatalf("expected nil for no prices, got %+v", got)
	}
}

func TestCatalogStoreCreateIngredient(t *testing.T) {
	withEmptyDatabase(t)

	entry, err := (&catalogStore{}).CreateIngredient(context.Background(), "  Falernum ")
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	if entry.Name != "Falernum" {
		t.Fatalf("expected trimmed name, got %q", entry.Name)
	}

	var stored models.Ingredient
	if err := database.First(&stored, "id = ?", entry.ID).Error; err != nil {
		t.Fatalf("load stored ingredient: %v", err)
	}
}

func TestCatalogStoreBottlesForIngredientOrdersByVolume(t *testing.T) {
	db := withSeededDatabase(t)

	var vodka models.Ingredient
	if err := db.First(&vodka, "name = ?", "Vodka").Error; err != nil {
		t.Fatalf("load vodka: %v", err)
	}
	if err := db.Create(&models.Bottle{IngredientID: vodka.ID, Name: "Vodka 1.75L", VolumeML: 1750}).Error; err != nil {
		t.Fatalf("create second bottle: %v", err)
	}

	bottles, err := (&catalogStore{}).BottlesForIngredient(context.Background(), vodka.ID)
	if err != nil {
		t.Fatalf("load bottles: %v", err)
	}
	if len(bottles) != 2 {
		t.Fatalf("expected 2 bottles, got %d", len(bottles))
	}
	if bottles[0].VolumeML != 700 || bottles[1].VolumeML != 1750 {
		t.Fatalf("expected ascending volume order, got %+v", bottles)
	}
	if bottles[0].Price == nil {
		t.Fatal("expected the seeded bottle to carry a price")
	}
	if bottles[1].Price != nil {
		t.Fatal("expected the unpriced bottle to have no price")
	}
}
