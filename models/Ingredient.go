package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is a canonical catalog entry. Free-text names typed by users are
// resolved against Name and NameAlt before any recipe or order references it.
type Ingredient struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"uniqueIndex;not null" json:"name"`
	NameAlt  string    `json:"name_alt"`
	Category string    `gorm:"index" json:"category"`
	Notes    string    `gorm:"type:text" json:"notes"`

	DefaultSupplierID *uuid.UUID `gorm:"type:uuid;index" json:"default_supplier_id,omitempty"`

	Bottles []Bottle `gorm:"foreignKey:IngredientID" json:"bottles,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Ingredient) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
