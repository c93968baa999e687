package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	applog "barcraft/internal/log"
	"barcraft/models"
)

type supplierRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Notes   string `json:"notes"`
}

// SupplierResource handles CRUD interactions for suppliers.
func SupplierResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/suppliers"), "/")
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listSuppliers(w, r)
		case http.MethodPost:
			createSupplier(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, rest, ok := splitIdentifier(path)
	if !ok || rest != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showSupplier(w, r, id)
	case http.MethodPut:
		updateSupplier(w, r, id)
	case http.MethodDelete:
		deleteSupplier(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listSuppliers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var suppliers []models.Supplier
	if err := database.WithContext(ctx).Order("name asc").Find(&suppliers).Error; err != nil {
		applog.Error(ctx, "failed to list suppliers", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load suppliers")
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}

func showSupplier(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	var supplier models.Supplier
	if err := database.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load supplier", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load supplier")
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

func createSupplier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	supplier := models.Supplier{
		Name:    strings.TrimSpace(payload.Name),
		Contact: payload.Contact,
		Notes:   payload.Notes,
	}
	if err := database.WithContext(ctx).Create(&supplier).Error; err != nil {
		applog.Error(ctx, "failed to create supplier", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create supplier")
		return
	}
	writeJSON(w, http.StatusCreated, supplier)
}

func updateSupplier(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	var supplier models.Supplier
	if err := database.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load supplier for update", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load supplier")
		return
	}

	var payload supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	updates := map[string]any{
		"name":    strings.TrimSpace(payload.Name),
		"contact": payload.Contact,
		"notes":   payload.Notes,
	}
	if err := database.WithContext(ctx).Model(&supplier).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update supplier", "error", err, "id", id)
		writeJSONError(w, http.StatusBadRequest, "unable to update supplier")
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

func deleteSupplier(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	if err := database.WithContext(ctx).Delete(&models.Supplier{}, "id = ?", id).Error; err != nil {
		applog.Error(ctx, "failed to delete supplier", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete supplier")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
