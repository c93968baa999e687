package handlers

import (
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

type ingredientRequest struct {
	Name              string     `json:"name"`
	NameAlt           string     `json:"name_alt"`
	Category          string     `json:"category"`
	Notes             string     `json:"notes"`
	DefaultSupplierID *uuid.UUID `json:"default_supplier_id"`
}

type ensureIngredientRequest struct {
	Name string `json:"name"`
}

// IngredientResource handles CRUD interactions for catalog ingredients, the
// ensure-by-name operation, and per-ingredient bottle lookups.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/ingredients")
	path = strings.Trim(path, "/")

	switch {
	case path == "":
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case path == "ensure":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ensureIngredient(w, r)
		return
	}

	id, rest, ok := splitIdentifier(path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if rest == "bottles" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		listIngredientBottles(w, r, id)
		return
	}
	if rest != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, id)
	case http.MethodPut:
		updateIngredient(w, r, id)
	case http.MethodDelete:
		deleteIngredient(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func splitIdentifier(path string) (uuid.UUID, string, bool) {
	head, rest, _ := strings.Cut(path, "/")
	id, err := uuid.Parse(head)
	if err != nil {
		return uuid.Nil, "", false
	}
	return id, rest, true
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var ingredients []models.Ingredient

	query := database.WithContext(ctx).Order("name asc")
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		query = query.Where("lower(category) = ?", strings.ToLower(category))
	}

	if err := query.Find(&ingredients).Error; err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	writeJSON(w, http.StatusOK, ingredients)
}

func showIngredient(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).Preload("Bottles.Prices").First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	ingredient := models.Ingredient{
		Name:              strings.TrimSpace(payload.Name),
		NameAlt:           strings.TrimSpace(payload.NameAlt),
		Category:          strings.ToLower(strings.TrimSpace(payload.Category)),
		Notes:             payload.Notes,
		DefaultSupplierID: payload.DefaultSupplierID,
	}
	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		applog.Error(ctx, "failed to create ingredient", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create ingredient")
		return
	}

	refreshEngineSessions(ctx)
	writeJSON(w, http.StatusCreated, ingredient)
}

func updateIngredient(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	var existing models.Ingredient
	if err := database.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient for update", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	updates := map[string]any{
		"name":                strings.TrimSpace(payload.Name),
		"name_alt":            strings.TrimSpace(payload.NameAlt),
		"category":            strings.ToLower(strings.TrimSpace(payload.Category)),
		"notes":               payload.Notes,
		"default_supplier_id": payload.DefaultSupplierID,
	}
	if err := database.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update ingredient", "error", err, "id", id)
		writeJSONError(w, http.StatusBadRequest, "unable to update ingredient")
		return
	}

	refreshEngineSessions(ctx)
	if err := database.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		applog.Error(ctx, "failed to reload updated ingredient", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	if err := database.WithContext(ctx).Delete(&models.Ingredient{}, "id = ?", id).Error; err != nil {
		applog.Error(ctx, "failed to delete ingredient", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}
	refreshEngineSessions(ctx)
	w.WriteHeader(http.StatusNoContent)
}

// ensureIngredient resolves a free-text name to a canonical ingredient,
// creating one when the catalog has no match. Repeated submissions of the
// same new name within a session coalesce to a single creation.
func ensureIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload ensureIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	session, err := engineSession(r)
	if err != nil {
		applog.Error(ctx, "failed to build engine session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load catalog")
		return
	}

	entry, err := session.EnsureIngredient(ctx, &catalogStore{}, payload.Name)
	if err != nil {
		if errors.Is(err, engine.ErrUnresolvableIngredient) {
			applog.Debug(ctx, "ingredient resolution failed", "name", payload.Name, "error", err)
			writeJSONError(w, http.StatusUnprocessableEntity, "ingredient resolution failed")
			return
		}
		applog.Error(ctx, "ensure ingredient failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to resolve ingredient")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       entry.ID,
		"name":     entry.Name,
		"name_alt": entry.NameAlt,
		"category": entry.Category,
	})
}

// listIngredientBottles serves the purchasable variants of one ingredient
// through the session's packaging cache.
func listIngredientBottles(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	session, err := engineSession(r)
	if err != nil {
		applog.Error(ctx, "failed to build engine session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load catalog")
		return
	}

	bottles, err := session.Packaging().BottlesFor(ctx, id)
	if err != nil {
		applog.Error(ctx, "failed to load bottles", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load bottles")
		return
	}

	type bottleResponse struct {
		ID       uuid.UUID     `json:"id"`
		Name     string        `json:"name"`
		NameAlt  string        `json:"name_alt,omitempty"`
		VolumeML int           `json:"volume_ml"`
		Price    *engine.Money `json:"price,omitempty"`
	}
	responses := make([]bottleResponse, 0, len(bottles))
	for _, bottle := range bottles {
		responses = append(responses, bottleResponse{
			ID:       bottle.ID,
			Name:     bottle.Name,
			NameAlt:  bottle.NameAlt,
			VolumeML: bottle.VolumeML,
			Price:    bottle.Price,
		})
	}
	writeJSON(w, http.StatusOK, responses)
}
