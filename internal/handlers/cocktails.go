package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"barcraft/internal/engine"
	applog "barcraft/internal/log"
	"barcraft/models"
)

type recipeLineRequest struct {
	IngredientID   *uuid.UUID `json:"ingredient_id"`
	IngredientName string     `json:"ingredient_name"`
	Quantity       float64    `json:"quantity"`
	Unit           string     `json:"unit"`
	BottleID       *uuid.UUID `json:"bottle_id"`
	IsGarnish      bool       `json:"is_garnish"`
	IsOptional     bool       `json:"is_optional"`
}

type cocktailRequest struct {
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	GarnishText       string              `json:"garnish_text"`
	PreparationMethod string              `json:"preparation_method"`
	BatchType         *string             `json:"batch_type"`
	IsBase            bool                `json:"is_base"`
	BaseRecipeID      *uuid.UUID          `json:"base_recipe_id"`
	Ingredients       []recipeLineRequest `json:"ingredients"`
}

// CocktailResource handles CRUD interactions for cocktail recipes. Updates
// replace the full ingredient list; lines may name ingredients by id or by
// free text, in which case unknown names are added to the catalog.
func CocktailResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/cocktails"), "/")
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listCocktails(w, r)
		case http.MethodPost:
			createCocktail(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, rest, ok := splitIdentifier(path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if rest == "batch" {
		BatchReport(w, r, id)
		return
	}
	if rest != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showCocktail(w, r, id)
	case http.MethodPut:
		updateCocktail(w, r, id)
	case http.MethodDelete:
		deleteCocktail(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listCocktails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var recipes []models.CocktailRecipe
	if err := database.WithContext(ctx).Order("name asc").Find(&recipes).Error; err != nil {
		applog.Error(ctx, "failed to list cocktails", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load cocktails")
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func showCocktail(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	recipe, err := loadCocktail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load cocktail", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load cocktail")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func createCocktail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := currentUserID(r)

	var payload cocktailRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	if payload.BatchType != nil {
		if _, err := engine.ParseBatchType(*payload.BatchType); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid batch type")
			return
		}
	}

	lines, err := resolveRecipeLines(r, payload.Ingredients)
	if err != nil {
		respondLineResolutionError(w, ctx, err)
		return
	}

	recipe := models.CocktailRecipe{
		CreatedByUserID:   userID,
		Name:              strings.TrimSpace(payload.Name),
		Description:       payload.Description,
		GarnishText:       payload.GarnishText,
		PreparationMethod: payload.PreparationMethod,
		BatchType:         payload.BatchType,
		IsBase:            payload.IsBase,
		BaseRecipeID:      payload.BaseRecipeID,
		Ingredients:       lines,
	}
	if err := database.WithContext(ctx).Create(&recipe).Error; err != nil {
		applog.Error(ctx, "failed to create cocktail", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create cocktail")
		return
	}

	created, err := loadCocktail(ctx, recipe.ID)
	if err != nil {
		applog.Error(ctx, "failed to reload created cocktail", "error", err, "id", recipe.ID)
		writeJSON(w, http.StatusCreated, recipe)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func updateCocktail(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	existing, err := loadCocktail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load cocktail for update", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load cocktail")
		return
	}

	var payload cocktailRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	// The stored batch type stays authoritative once a maker has picked one.
	// An untyped recipe that gains a juice line falls back to a full batch,
	// which the effective classification recomputes on every read.
	batchType := existing.BatchType
	if payload.BatchType != nil {
		if _, err := engine.ParseBatchType(*payload.BatchType); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid batch type")
			return
		}
		batchType = payload.BatchType
	}

	lines, err := resolveRecipeLines(r, payload.Ingredients)
	if err != nil {
		respondLineResolutionError(w, ctx, err)
		return
	}

	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		updates := map[string]any{
			"name":               strings.TrimSpace(payload.Name),
			"description":        payload.Description,
			"garnish_text":       payload.GarnishText,
			"preparation_method": payload.PreparationMethod,
			"batch_type":         batchType,
			"is_base":            payload.IsBase,
			"base_recipe_id":     payload.BaseRecipeID,
		}
		if err := tx.Model(&models.CocktailRecipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].RecipeID = id
			if err := tx.Create(&lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		applog.Error(ctx, "failed to update cocktail", "error", err, "id", id)
		writeJSONError(w, http.StatusBadRequest, "unable to update cocktail")
		return
	}

	updated, err := loadCocktail(ctx, id)
	if err != nil {
		applog.Error(ctx, "failed to reload updated cocktail", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load cocktail")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func deleteCocktail(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CocktailRecipe{}, "id = ?", id).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete cocktail", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete cocktail")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func loadCocktail(ctx context.Context, id uuid.UUID) (models.CocktailRecipe, error) {
	var recipe models.CocktailRecipe
	err := database.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Preload("Ingredients.Ingredient").
		Preload("Ingredients.Bottle").
		First(&recipe, "id = ?", id).Error
	return recipe, err
}

// resolveRecipeLines turns request lines into persisted rows. Lines without
// an ingredient id are resolved by name through the session catalog, creating
// new catalog entries as needed.
func resolveRecipeLines(r *http.Request, requests []recipeLineRequest) ([]models.RecipeIngredient, error) {
	ctx := r.Context()
	session, err := engineSession(r)
	if err != nil {
		return nil, err
	}

	lines := make([]models.RecipeIngredient, 0, len(requests))
	for i, req := range requests {
		ingredientID := uuid.Nil
		if req.IngredientID != nil {
			ingredientID = *req.IngredientID
		} else {
			entry, err := session.EnsureIngredient(ctx, &catalogStore{}, req.IngredientName)
			if err != nil {
				return nil, err
			}
			ingredientID = entry.ID
		}
		lines = append(lines, models.RecipeIngredient{
			IngredientID: ingredientID,
			Quantity:     req.Quantity,
			Unit:         strings.TrimSpace(req.Unit),
			BottleID:     req.BottleID,
			IsGarnish:    req.IsGarnish,
			IsOptional:   req.IsOptional,
			SortOrder:    i + 1,
		})
	}
	return lines, nil
}

func respondLineResolutionError(w http.ResponseWriter, ctx context.Context, err error) {
	if errors.Is(err, engine.ErrUnresolvableIngredient) {
		writeJSONError(w, http.StatusUnprocessableEntity, "ingredient resolution failed")
		return
	}
	applog.Error(ctx, "failed to resolve recipe lines", "error", err)
	writeJSONError(w, http.StatusInternalServerError, "unable to resolve recipe lines")
}
