package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"barcraft/models"
)

func TestOrderResourceListsSeededOrders(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/orders?scope=WEEKLY", nil)
	req = signedInRequest(t, sm, req, manager)
	rec := httptest.NewRecorder()
	OrderResource(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var orders []models.Order
	if err := json.NewDecoder(rec.Body).Decode(&orders); err != nil {
		t.Fatalf("decode orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 seeded weekly orders, got %d", len(orders))
	}
	for _, order := range orders {
		if len(order.Items) == 0 {
			t.Fatalf("expected items to be preloaded on order %s", order.ID)
		}
	}
}

func TestOrderResourceUpdateStatus(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	var order models.Order
	if err := db.First(&order).Error; err != nil {
		t.Fatalf("load seeded order: %v", err)
	}

	body := strings.NewReader(`{"status":"sent","notes":"call ahead"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+order.ID.String(), body)
	req = signedInRequest(t, sm, req, manager)
	rec := httptest.NewRecorder()
	OrderResource(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var stored models.Order
	if err := db.First(&stored, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if stored.Status != models.OrderStatusSent {
		t.Fatalf("expected status SENT, got %q", stored.Status)
	}
	if stored.Notes != "call ahead" {
		t.Fatalf("expected notes to update, got %q", stored.Notes)
	}
}

func TestOrderResourceRejectsUnknownStatus(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	var order models.Order
	if err := db.First(&order).Error; err != nil {
		t.Fatalf("load seeded order: %v", err)
	}

	body := strings.NewReader(`{"status":"SHIPPED"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+order.ID.String(), body)
	req = signedInRequest(t, sm, req, manager)
	rec := httptest.NewRecorder()
	OrderResource(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestAggregateOrdersMergesAcrossOrders(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/aggregate", nil)
	req = signedInRequest(t, sm, req, manager)
	rec := httptest.NewRecorder()
	OrderResource(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Orders int `json:"orders"`
		Items  []struct {
			Name               string  `json:"ingredient_name"`
			Unit               string  `json:"unit"`
			Requested          float64 `json:"requested"`
			UsedFromStock      float64 `json:"used_from_stock"`
			Needed             float64 `json:"needed"`
			RecommendedBottles *int    `json:"recommended_bottles"`
		} `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode aggregate: %v", err)
	}
	if payload.Orders != 2 {
		t.Fatalf("expected 2 orders in scope, got %d", payload.Orders)
	}

	byName := map[string]int{}
	for i, item := range payload.Items {
		byName[item.Name] = i
	}

	vodka, ok := byName["Vodka"]
	if !ok {
		t.Fatalf("expected an aggregated vodka line, got %+v", payload.Items)
	}
	line := payload.Items[vodka]
	// The shortfall of 1400 ml against the 700 ml package rounds up to two
	// whole bottles.
	if line.Requested != 2100 || line.Needed != 1400 {
		t.Fatalf("unexpected vodka totals: %+v", line)
	}
	if line.RecommendedBottles == nil || *line.RecommendedBottles != 2 {
		t.Fatalf("expected 2 recommended bottles, got %+v", line.RecommendedBottles)
	}

	if _, ok := byName["Mint"]; !ok {
		t.Fatal("expected the discrete mint line to survive aggregation")
	}
}

func TestOrdersBySupplierGroupsAndBucketsUnknown(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/by-supplier", nil)
	req = signedInRequest(t, sm, req, manager)
	rec := httptest.NewRecorder()
	OrderResource(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var groups []struct {
		SupplierName string `json:"supplier_name"`
		OrderIDs     []any  `json:"order_ids"`
		Items        []any  `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if len(groups) == 0 {
		t.Fatal("expected at least one supplier group")
	}
	for _, group := range groups {
		if len(group.Items) == 0 {
			t.Fatalf("expected items in group %q", group.SupplierName)
		}
	}
}

func TestCreateOrderValidatesScope(t *testing.T) {
	sm := withTestSessionManager(t)
	db := withSeededDatabase(t)
	manager := seededManager(t, db)

	body := strings.NewReader(`{"scope":"MONTHLY"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
	req = signedInRequest(t, sm, req, manager)
	rec := httptest.NewRecorder()
	OrderResource(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", rec.Code)
	}
}
