package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Batch type values persisted on a recipe. "base" excludes perishable juice
// lines from the produced batch; "batch" includes every line.
const (
	BatchTypeBase  = "base"
	BatchTypeBatch = "batch"
)

// CocktailRecipe is an ordered list of ingredient lines plus presentation
// metadata. BatchType is nullable: recipes created before batching existed
// carry no value and the engine derives a default.
type CocktailRecipe struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"created_by_user_id"`

	Name              string  `gorm:"not null" json:"name"`
	Description       string  `gorm:"type:text" json:"description"`
	GarnishText       string  `gorm:"type:text" json:"garnish_text"`
	PreparationMethod string  `gorm:"type:text" json:"preparation_method"`
	BatchType         *string `json:"batch_type,omitempty"`

	IsBase       bool       `gorm:"not null;default:false" json:"is_base"`
	BaseRecipeID *uuid.UUID `gorm:"type:uuid" json:"base_recipe_id,omitempty"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"recipe_ingredients"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *CocktailRecipe) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient is one line of a recipe. Duplicate ingredient references
// within a recipe are legal and kept as distinct lines.
type RecipeIngredient struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID     uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;index" json:"ingredient_id"`

	Quantity float64 `gorm:"not null" json:"quantity"`
	Unit     string  `gorm:"not null" json:"unit"`

	// Per-line bottle override used for costing.
	BottleID *uuid.UUID `gorm:"type:uuid;index" json:"bottle_id,omitempty"`

	IsGarnish  bool `gorm:"not null;default:false" json:"is_garnish"`
	IsOptional bool `gorm:"not null;default:false" json:"is_optional"`
	SortOrder  int  `json:"sort_order"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Bottle     *Bottle     `gorm:"foreignKey:BottleID" json:"bottle,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *RecipeIngredient) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
