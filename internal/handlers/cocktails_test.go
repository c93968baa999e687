package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"barcraft/models"
)

func TestCocktailResourceCreateWithNamedIngredients(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	payload := `{
		"name": "Mezcal Gimlet",
		"batch_type": "base",
		"ingredients": [
			{"ingredient_name": "vodka", "quantity": 50, "unit": "ml"},
			{"ingredient_name": "Yuzu Juice", "quantity": 20, "unit": "ml"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/cocktails", strings.NewReader(payload))
	req = signedInRequest(t, sm, req, manager)
	rec := httptest.NewRecorder()
	CocktailResource(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created models.CocktailRecipe
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created recipe: %v", err)
	}
	if len(created.Ingredients) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(created.Ingredients))
	}
	if created.Ingredients[0].SortOrder != 1 || created.Ingredients[1].SortOrder != 2 {
		t.Fatalf("expected document order to be preserved: %+v", created.Ingredients)
	}

	// "vodka" resolves to the seeded entry, "Yuzu Juice" is created.
	var vodka models.Ingredient
	if err := db.First(&vodka, "name = ?", "Vodka").Error; err != nil {
		t.Fatalf("load vodka: %v", err)
	}
	if created.Ingredients[0].IngredientID != vodka.ID {
		t.Fatal("expected the first line to reuse the seeded vodka entry")
	}
	var yuzu models.Ingredient
	if err := db.First(&yuzu, "name = ?", "Yuzu Juice").Error; err != nil {
		t.Fatalf("expected Yuzu Juice to be created: %v", err)
	}
}

func TestCocktailResourceRejectsInvalidBatchType(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	payload := `{"name": "Broken", "batch_type": "mega", "ingredients": []}`
	req := httptest.NewRequest(http.MethodPost, "/api/cocktails", strings.NewReader(payload))
	req = signedInRequest(t, sm, req, manager)
	rec := httptest.NewRecorder()
	CocktailResource(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid batch type, got %d", rec.Code)
	}
}

func TestCocktailResourceUpdateReplacesLines(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	var gimlet models.CocktailRecipe
	if err := db.First(&gimlet, "name = ?", "Batch Gimlet").Error; err != nil {
		t.Fatalf("load seeded recipe: %v", err)
	}
	var vodka models.Ingredient
	if err := db.First(&vodka, "name = ?", "Vodka").Error; err != nil {
		t.Fatalf("load vodka: %v", err)
	}

	payload := fmt.Sprintf(`{
		"name": "Batch Gimlet",
		"ingredients": [
			{"ingredient_id": %q, "quantity": 45, "unit": "ml"}
		]
	}`, vodka.ID)
	req := httptest.NewRequest(http.MethodPut, "/api/cocktails/"+gimlet.ID.String(), strings.NewReader(payload))
	req = signedInRequest(t, sm, req, manager)
	rec := httptest.NewRecorder()
	CocktailResource(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated models.CocktailRecipe
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode updated recipe: %v", err)
	}
	if len(updated.Ingredients) != 1 {
		t.Fatalf("expected full line replacement, got %d lines", len(updated.Ingredients))
	}
	if updated.Ingredients[0].Quantity != 45 {
		t.Fatalf("expected quantity 45, got %v", updated.Ingredients[0].Quantity)
	}

	var count int64
	if err := db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", gimlet.ID).Count(&count).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected stale lines to be removed, found %d", count)
	}
}

func TestBatchReportScalesAndPricesRecipe(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	var gimlet models.CocktailRecipe
	if err := db.First(&gimlet, "name = ?", "Batch Gimlet").Error; err != nil {
		t.Fatalf("load seeded recipe: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cocktails/"+gimlet.ID.String()+"/batch?target_ml=1000", nil)
	req = signedInRequest(t, sm, req, manager)
	rec := httptest.NewRecorder()
	CocktailResource(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report struct {
		BatchType     string  `json:"batch_type"`
		TargetML      float64 `json:"target_ml"`
		TotalVolumeML float64 `json:"total_volume_ml"`
		Factor        float64 `json:"factor"`
		Lines         []struct {
			Name           string  `json:"name"`
			ScaledQuantity float64 `json:"scaled_quantity"`
			Cost           *struct {
				Amount   string `json:"amount"`
				Currency string `json:"currency"`
			} `json:"cost"`
		} `json:"lines"`
		Total struct {
			Amount   string `json:"amount"`
			Currency string `json:"currency"`
		} `json:"total_cost"`
		Partial bool `json:"partial_cost"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	// The garnish line stays out, leaving 60+25+15 = 100 ml of volume, so a
	// 1000 ml target scales by 10.
	if report.TotalVolumeML != 100 {
		t.Fatalf("expected recipe volume 100 ml, got %v", report.TotalVolumeML)
	}
	if report.Factor != 10 {
		t.Fatalf("expected factor 10, got %v", report.Factor)
	}
	if len(report.Lines) != 3 {
		t.Fatalf("expected 3 costed lines, got %d", len(report.Lines))
	}
	if report.Lines[0].Name != "Vodka" || report.Lines[0].ScaledQuantity != 600 {
		t.Fatalf("unexpected first line: %+v", report.Lines[0])
	}
	if report.Lines[0].Cost == nil || report.Lines[0].Cost.Amount != "102.86" {
		t.Fatalf("expected vodka cost 102.86, got %+v", report.Lines[0].Cost)
	}
	if report.Total.Amount != "110.86" || report.Total.Currency != "ILS" {
		t.Fatalf("expected total 110.86 ILS, got %+v", report.Total)
	}
	if report.Partial {
		t.Fatal("every line carries a price, projection should be complete")
	}
}

func TestBatchReportBaseTypeExcludesJuice(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	var gimlet models.CocktailRecipe
	if err := db.First(&gimlet, "name = ?", "Batch Gimlet").Error; err != nil {
		t.Fatalf("load seeded recipe: %v", err)
	}
	if err := db.Model(&gimlet).Update("batch_type", models.BatchTypeBase).Error; err != nil {
		t.Fatalf("set batch type: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cocktails/"+gimlet.ID.String()+"/batch?target_ml=750", nil)
	req = signedInRequest(t, sm, req, manager)
	rec := httptest.NewRecorder()
	CocktailResource(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report struct {
		BatchType     string  `json:"batch_type"`
		Explicit      bool    `json:"batch_type_explicit"`
		TotalVolumeML float64 `json:"total_volume_ml"`
		Excluded      []struct {
			Name string `json:"name"`
		} `json:"excluded"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.BatchType != "base" || !report.Explicit {
		t.Fatalf("expected explicit base batch, got %q explicit=%t", report.BatchType, report.Explicit)
	}
	if len(report.Excluded) != 1 || report.Excluded[0].Name != "Lime Juice" {
		t.Fatalf("expected the juice line to be excluded, got %+v", report.Excluded)
	}
	// Volume drops to the 75 ml of non-juice lines.
	if report.TotalVolumeML != 75 {
		t.Fatalf("expected 75 ml of base volume, got %v", report.TotalVolumeML)
	}
}

func TestBatchReportRejectsBadTarget(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	var gimlet models.CocktailRecipe
	if err := db.First(&gimlet, "name = ?", "Batch Gimlet").Error; err != nil {
		t.Fatalf("load seeded recipe: %v", err)
	}

	for _, target := range []string{"", "0", "-100", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/cocktails/"+gimlet.ID.String()+"/batch?target_ml="+target, nil)
		req = signedInRequest(t, sm, req, manager)
		rec := httptest.NewRecorder()
		CocktailResource(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("target %q: expected 400, got %d", target, rec.Code)
		}
	}
}
