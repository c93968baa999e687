package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bottle is a purchasable package variant of an ingredient with a fixed
// nominal volume. Prices live in BottlePrice rows so historical prices are
// retained.
type Bottle struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;index" json:"ingredient_id"`

	Name          string `gorm:"not null" json:"name"`
	NameAlt       string `json:"name_alt"`
	VolumeML      int    `gorm:"not null" json:"volume_ml"`
	IsDefaultCost bool   `gorm:"not null;default:false" json:"is_default_cost"`

	Ingredient *Ingredient   `gorm:"foreignKey:IngredientID" json:"-"`
	Prices     []BottlePrice `gorm:"foreignKey:BottleID" json:"prices,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Bottle) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BottlePrice records one observed price for a bottle. Amounts are stored in
// minor currency units to keep the column integral.
type BottlePrice struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BottleID uuid.UUID `gorm:"type:uuid;not null;index" json:"bottle_id"`

	PriceMinor int64      `gorm:"not null" json:"price_minor"`
	Currency   string     `gorm:"type:varchar(3);not null;default:ILS" json:"currency"`
	StartDate  time.Time  `gorm:"not null" json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Source     string     `gorm:"type:text" json:"source,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *BottlePrice) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
