package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order scopes and statuses mirror the procurement workflow: weekly standing
// orders and per-event orders, moving from draft to received.
const (
	OrderScopeWeekly = "WEEKLY"
	OrderScopeEvent  = "EVENT"

	OrderStatusDraft     = "DRAFT"
	OrderStatusSent      = "SENT"
	OrderStatusReceived  = "RECEIVED"
	OrderStatusCancelled = "CANCELLED"
)

// Order is a purchase order covering one period, optionally bound to a
// supplier and an event.
type Order struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Scope      string     `gorm:"not null;default:WEEKLY;index" json:"scope"`
	EventID    *uuid.UUID `gorm:"type:uuid;index" json:"event_id,omitempty"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Status     string     `gorm:"not null;default:DRAFT;index" json:"status"`

	PeriodStart time.Time `gorm:"not null;index" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null;index" json:"period_end"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`

	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"created_by_user_id,omitempty"`

	Supplier *Supplier   `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Event    *Event      `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem carries up to three magnitudes per unit class: the amount
// requested before stock, the amount covered from stock, and the shortfall
// that must be ordered. Volume magnitudes use the *ML columns, discrete
// magnitudes use the *Quantity columns; the two are never mixed on one row.
type OrderItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID      uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;index" json:"ingredient_id"`

	RequestedML       *float64 `json:"requested_ml,omitempty"`
	RequestedQuantity *float64 `json:"requested_quantity,omitempty"`
	RequestedUnit     *string  `json:"requested_unit,omitempty"`

	UsedFromStockML       *float64 `json:"used_from_stock_ml,omitempty"`
	UsedFromStockQuantity *float64 `json:"used_from_stock_quantity,omitempty"`

	NeededML       *float64 `json:"needed_ml,omitempty"`
	NeededQuantity *float64 `json:"needed_quantity,omitempty"`
	Unit           *string  `json:"unit,omitempty"`

	// Representative bottle used for display and recommendation only.
	BottleID           *uuid.UUID `gorm:"type:uuid;index" json:"bottle_id,omitempty"`
	BottleVolumeML     *int       `json:"bottle_volume_ml,omitempty"`
	RecommendedBottles *int       `json:"recommended_bottles,omitempty"`
	LeftoverML         *float64   `json:"leftover_ml,omitempty"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Bottle     *Bottle     `gorm:"foreignKey:BottleID" json:"bottle,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
