package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"barcraft/internal/engine"
	applog "barcraft/internal/log"
	"barcraft/models"
)

type orderItemRequest struct {
	IngredientID          uuid.UUID  `json:"ingredient_id"`
	RequestedML           *float64   `json:"requested_ml"`
	RequestedQuantity     *float64   `json:"requested_quantity"`
	RequestedUnit         *string    `json:"requested_unit"`
	UsedFromStockML       *float64   `json:"used_from_stock_ml"`
	UsedFromStockQuantity *float64   `json:"used_from_stock_quantity"`
	NeededML              *float64   `json:"needed_ml"`
	NeededQuantity        *float64   `json:"needed_quantity"`
	Unit                  *string    `json:"unit"`
	BottleID              *uuid.UUID `json:"bottle_id"`
}

type orderRequest struct {
	Scope       string             `json:"scope"`
	EventID     *uuid.UUID         `json:"event_id"`
	SupplierID  *uuid.UUID         `json:"supplier_id"`
	PeriodStart time.Time          `json:"period_start"`
	PeriodEnd   time.Time          `json:"period_end"`
	Notes       string             `json:"notes"`
	Items       []orderItemRequest `json:"items"`
}

type orderUpdateRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// OrderResource handles procurement orders: CRUD on the raw orders plus two
// read views, the cross-order aggregation and its per-supplier drill-down.
func OrderResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/orders"), "/")
	switch path {
	case "":
		switch r.Method {
		case http.MethodGet:
			listOrders(w, r)
		case http.MethodPost:
			createOrder(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case "aggregate":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		aggregateOrders(w, r)
		return
	case "by-supplier":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ordersBySupplier(w, r)
		return
	}

	id, rest, ok := splitIdentifier(path)
	if !ok || rest != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showOrder(w, r, id)
	case http.MethodPut:
		updateOrder(w, r, id)
	case http.MethodDelete:
		deleteOrder(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orders, err := loadOrders(ctx, r)
	if err != nil {
		applog.Error(ctx, "failed to list orders", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func showOrder(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	var order models.Order
	err := database.WithContext(ctx).
		Preload("Supplier").
		Preload("Event").
		Preload("Items.Ingredient").
		Preload("Items.Bottle").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load order", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load order")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := currentUserID(r)

	var payload orderRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	scope := strings.ToUpper(strings.TrimSpace(payload.Scope))
	if scope != models.OrderScopeWeekly && scope != models.OrderScopeEvent {
		writeJSONError(w, http.StatusBadRequest, "scope must be WEEKLY or EVENT")
		return
	}

	order := models.Order{
		Scope:           scope,
		EventID:         payload.EventID,
		SupplierID:      payload.SupplierID,
		Status:          models.OrderStatusDraft,
		PeriodStart:     payload.PeriodStart,
		PeriodEnd:       payload.PeriodEnd,
		Notes:           payload.Notes,
		CreatedByUserID: &userID,
	}
	for _, item := range payload.Items {
		order.Items = append(order.Items, models.OrderItem{
			IngredientID:          item.IngredientID,
			RequestedML:           item.RequestedML,
			RequestedQuantity:     item.RequestedQuantity,
			RequestedUnit:         item.RequestedUnit,
			UsedFromStockML:       item.UsedFromStockML,
			UsedFromStockQuantity: item.UsedFromStockQuantity,
			NeededML:              item.NeededML,
			NeededQuantity:        item.NeededQuantity,
			Unit:                  item.Unit,
			BottleID:              item.BottleID,
		})
	}

	if err := database.WithContext(ctx).Create(&order).Error; err != nil {
		applog.Error(ctx, "failed to create order", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create order")
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

var orderStatuses = map[string]bool{
	models.OrderStatusDraft:     true,
	models.OrderStatusSent:      true,
	models.OrderStatusReceived:  true,
	models.OrderStatusCancelled: true,
}

func updateOrder(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	var order models.Order
	if err := database.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load order for update", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load order")
		return
	}

	var payload orderUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	updates := map[string]any{}
	if payload.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*payload.Status))
		if !orderStatuses[status] {
			writeJSONError(w, http.StatusBadRequest, "invalid status")
			return
		}
		updates["status"] = status
	}
	if payload.Notes != nil {
		updates["notes"] = *payload.Notes
	}
	if len(updates) == 0 {
		writeJSON(w, http.StatusOK, order)
		return
	}

	if err := database.WithContext(ctx).Model(&order).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update order", "error", err, "id", id)
		writeJSONError(w, http.StatusBadRequest, "unable to update order")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func deleteOrder(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", id).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete order", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// aggregateOrders flattens the selected orders into one procurement list,
// merging identical ingredient/unit-class lines across orders.
func aggregateOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	engineOrders, err := loadEngineOrders(ctx, r)
	if err != nil {
		applog.Error(ctx, "failed to load orders for aggregation", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to aggregate orders")
		return
	}

	lines := engine.Aggregate(engineOrders)
	writeJSON(w, http.StatusOK, map[string]any{
		"orders": len(engineOrders),
		"items":  lines,
	})
}

func ordersBySupplier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	engineOrders, err := loadEngineOrders(ctx, r)
	if err != nil {
		applog.Error(ctx, "failed to load orders for supplier view", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to group orders")
		return
	}

	groups := engine.GroupBySupplier(engineOrders)
	writeJSON(w, http.StatusOK, groups)
}

// loadOrders applies the shared list filters: scope, status and event id.
func loadOrders(ctx context.Context, r *http.Request) ([]models.Order, error) {
	query := database.WithContext(ctx).
		Preload("Supplier").
		Preload("Event").
		Preload("Items.Ingredient").
		Preload("Items.Bottle").
		Order("created_at desc")

	if scope := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("scope"))); scope != "" {
		query = query.Where("scope = ?", scope)
	}
	if status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))); status != "" {
		query = query.Where("status = ?", status)
	}
	if rawEvent := strings.TrimSpace(r.URL.Query().Get("event_id")); rawEvent != "" {
		eventID, err := uuid.Parse(rawEvent)
		if err != nil {
			return nil, err
		}
		query = query.Where("event_id = ?", eventID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func loadEngineOrders(ctx context.Context, r *http.Request) ([]engine.Order, error) {
	orders, err := loadOrders(ctx, r)
	if err != nil {
		return nil, err
	}

	engineOrders := make([]engine.Order, 0, len(orders))
	for _, order := range orders {
		eo := engine.Order{
			ID:         order.ID,
			SupplierID: order.SupplierID,
			EventID:    order.EventID,
		}
		if order.Supplier != nil {
			eo.SupplierName = order.Supplier.Name
		}
		if order.Event != nil {
			eo.EventName = order.Event.Name
		}
		for _, item := range order.Items {
			line := engine.OrderLine{
				IngredientID:          item.IngredientID,
				RequestedML:           item.RequestedML,
				RequestedQuantity:     item.RequestedQuantity,
				UsedFromStockML:       item.UsedFromStockML,
				UsedFromStockQuantity: item.UsedFromStockQuantity,
				NeededML:              item.NeededML,
				NeededQuantity:        item.NeededQuantity,
			}
			if item.Unit != nil {
				line.Unit = *item.Unit
			} else if item.RequestedUnit != nil {
				line.Unit = *item.RequestedUnit
			}
			if item.Ingredient != nil {
				line.Name = item.Ingredient.Name
				line.NameAlt = item.Ingredient.NameAlt
			}
			if item.Bottle != nil {
				line.Bottle = &engine.BottleRef{
					ID:       item.Bottle.ID,
					Name:     item.Bottle.Name,
					NameAlt:  item.Bottle.NameAlt,
					VolumeML: item.Bottle.VolumeML,
				}
			}
			eo.Items = append(eo.Items, line)
		}
		engineOrders = append(engineOrders, eo)
	}
	return engineOrders, nil
}
