package main

import (
	"context"
	"strings"
	"testing"

	"barcraft/internal/db/mock"
	"barcraft/models"
)

func TestReadCatalogCSVSkipsHeaderAndBlankRows(t *testing.T) {
	t.Parallel()

	input := strings.NewReader(`name,name_alt,category,supplier,bottle_name,volume_ml,price_minor,currency
Aperol,אפרול,liqueur,Acme Beverages,Aperol 700,700,8500,ILS
,,,
Lime Juice,מיץ ליים,juice,,,,,
`)
	records, err := readCatalogCSV(input)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}

	first := records[0]
	if first.Name != "Aperol" || first.VolumeML != 700 || first.PriceMinor != 8500 {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if records[1].VolumeML != 0 {
		t.Fatalf("expected no bottle on the juice row, got %+v", records[1])
	}
}

func TestReadCatalogCSVDefaultsCurrency(t *testing.T) {
	t.Parallel()

	records, err := readCatalogCSV(strings.NewReader("Gin,,spirit,,Gin 700,700,9900,\n"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if records[0].Currency != "ILS" {
		t.Fatalf("expected default currency ILS, got %q", records[0].Currency)
	}
}

func TestReadCatalogCSVRejectsBadVolume(t *testing.T) {
	t.Parallel()

	if _, err := readCatalogCSV(strings.NewReader("Gin,,spirit,,Gin 700,-5,9900,ILS\n")); err == nil {
		t.Fatal("expected an error for a negative volume")
	}
}

func TestImportRecordsUpsertsCatalog(t *testing.T) {
	db, err := mock.Empty(context.Background(), "importcatalog-test")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	records := []catalogRecord{
		{Name: "Aperol", NameAlt: "אפרול", Category: "liqueur", Supplier: "Acme Beverages", BottleName: "Aperol 700", VolumeML: 700, PriceMinor: 8500, Currency: "ILS"},
		{Name: "aperol", Category: "bitter", Supplier: "Acme Beverages", VolumeML: 1000, PriceMinor: 11000, Currency: "ILS"},
	}

	imported, err := importRecords(db, records)
	if err != nil {
		t.Fatalf("import records: %v", err)
	}
	if imported != 2 {
		t.Fatalf("expected 2 imported rows, got %d", imported)
	}

	// Both rows land on one ingredient, matched case-insensitively, with the
	// later category winning.
	var ingredients []models.Ingredient
	if err := db.Find(&ingredients).Error; err != nil {
		t.Fatalf("load ingredients: %v", err)
	}
	if len(ingredients) != 1 {
		t.Fatalf("expected 1 ingredient, got %d", len(ingredients))
	}
	if ingredients[0].Category != "bitter" {
		t.Fatalf("expected category bitter after reimport, got %q", ingredients[0].Category)
	}
	if ingredients[0].NameAlt != "אפרול" {
		t.Fatalf("expected the alternate name to survive, got %q", ingredients[0].NameAlt)
	}

	var suppliers []models.Supplier
	if err := db.Find(&suppliers).Error; err != nil {
		t.Fatalf("load suppliers: %v", err)
	}
	if len(suppliers) != 1 {
		t.Fatalf("expected the supplier to be created once, got %d", len(suppliers))
	}

	var bottles []models.Bottle
	if err := db.Order("volume_ml asc").Find(&bottles).Error; err != nil {
		t.Fatalf("load bottles: %v", err)
	}
	if len(bottles) != 2 {
		t.Fatalf("expected 2 bottles, got %d", len(bottles))
	}
	if bottles[1].Name != "Aperol 1000 ml" {
		t.Fatalf("expected a generated bottle name, got %q", bottles[1].Name)
	}

	var prices []models.BottlePrice
	if err := db.Find(&prices).Error; err != nil {
		t.Fatalf("load prices: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(prices))
	}
}

func TestImportRecordsIsIdempotentForBottles(t *testing.T) {
	db, err := mock.Empty(context.Background(), "importcatalog-idempotent-test")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	records := []catalogRecord{
		{Name: "Campari", Category: "bitter", VolumeML: 700},
	}
	for i := 0; i < 2; i++ {
		if _, err := importRecords(db, records); err != nil {
			t.Fatalf("import round %d: %v", i+1, err)
		}
	}

	var count int64
	if err := db.Model(&models.Bottle{}).Count(&count).Error; err != nil {
		t.Fatalf("count bottles: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single bottle after reimport, got %d", count)
	}
}
