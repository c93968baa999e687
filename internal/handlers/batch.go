package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"barcraft/internal/engine"
	applog "barcraft/internal/log"
	"barcraft/models"
)

var (
	errRecipeNotFound = errors.New("recipe not found")
	errInvalidTarget  = errors.New("invalid target volume")
)

type batchLineResponse struct {
	IngredientID   uuid.UUID     `json:"ingredient_id"`
	Name           string        `json:"name"`
	NameAlt        string        `json:"name_alt,omitempty"`
	Category       string        `json:"category,omitempty"`
	Quantity       float64       `json:"quantity"`
	ScaledQuantity float64       `json:"scaled_quantity"`
	Unit           string        `json:"unit"`
	Cost           *engine.Money `json:"cost,omitempty"`
}

type batchReportResponse struct {
	RecipeID      uuid.UUID           `json:"recipe_id"`
	RecipeName    string              `json:"recipe_name"`
	BatchType     string              `json:"batch_type"`
	Explicit      bool                `json:"batch_type_explicit"`
	TargetML      float64             `json:"target_ml"`
	TotalVolumeML float64             `json:"total_volume_ml"`
	Factor        float64             `json:"factor"`
	Lines         []batchLineResponse `json:"lines"`
	Excluded      []batchLineResponse `json:"excluded"`
	Total         engine.Money        `json:"total_cost"`
	Partial       bool                `json:"partial_cost"`
	MixedCurrency bool                `json:"mixed_currency"`
}

// BatchReport scales one recipe to a target volume and prices the result.
// The effective batch type decides which lines participate: a base batch
// leaves juice out for day-of addition.
func BatchReport(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	report, err := buildBatchReport(ctx, r, id)
	if err != nil {
		switch {
		case errors.Is(err, errRecipeNotFound):
			http.NotFound(w, r)
		case errors.Is(err, errInvalidTarget):
			writeJSONError(w, http.StatusBadRequest, "target_ml must be a positive number")
		default:
			applog.Error(ctx, "failed to build batch report", "error", err, "id", id)
			writeJSONError(w, http.StatusInternalServerError, "unable to build batch report")
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func buildBatchReport(ctx context.Context, r *http.Request, id uuid.UUID) (*batchReportResponse, error) {
	target, err := parseTargetML(r.URL.Query().Get("target_ml"))
	if err != nil {
		return nil, err
	}

	var recipe models.CocktailRecipe
	err = database.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRecipeNotFound
		}
		return nil, err
	}

	lines := recipeEngineLines(&recipe)
	classifier := newRecipeClassifier(&recipe, lines)
	active, excluded := classifier.Classify(lines)

	scaled := engine.ScaleRecipe(active, target)

	session, err := engineSession(r)
	if err != nil {
		return nil, err
	}
	packaging := session.Packaging()

	projection := engine.ProjectCost(active, scaled.Factor, func(line engine.Line) *engine.BottleVariant {
		return lineBottle(ctx, packaging, line)
	})

	report := &batchReportResponse{
		RecipeID:      recipe.ID,
		RecipeName:    recipe.Name,
		BatchType:     classifier.Effective().String(),
		Explicit:      classifier.Explicit(),
		TargetML:      target,
		TotalVolumeML: scaled.TotalVolume,
		Factor:        scaled.Factor,
		Lines:         make([]batchLineResponse, 0, len(projection.Lines)),
		Excluded:      make([]batchLineResponse, 0, len(excluded)),
		Total:         projection.Total,
		Partial:       projection.Partial,
		MixedCurrency: projection.MixedCurrency,
	}
	for _, lp := range projection.Lines {
		report.Lines = append(report.Lines, batchLineResponse{
			IngredientID:   lp.Line.IngredientID,
			Name:           lp.Line.Name,
			NameAlt:        lp.Line.NameAlt,
			Category:       lp.Line.Category,
			Quantity:       lp.Line.Quantity,
			ScaledQuantity: lp.ScaledQuantity,
			Unit:           lp.Line.Unit,
			Cost:           lp.Cost,
		})
	}
	for _, line := range excluded {
		report.Excluded = append(report.Excluded, batchLineResponse{
			IngredientID: line.IngredientID,
			Name:         line.Name,
			NameAlt:      line.NameAlt,
			Category:     line.Category,
			Quantity:     line.Quantity,
			Unit:         line.Unit,
		})
	}
	return report, nil
}

func parseTargetML(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errInvalidTarget
	}
	target, err := strconv.ParseFloat(raw, 64)
	if err != nil || target <= 0 {
		return 0, errInvalidTarget
	}
	return target, nil
}

func recipeEngineLines(recipe *models.CocktailRecipe) []engine.Line {
	lines := make([]engine.Line, 0, len(recipe.Ingredients))
	for _, ri := range recipe.Ingredients {
		if ri.IsGarnish {
			continue
		}
		line := engine.Line{
			IngredientID: ri.IngredientID,
			Quantity:     ri.Quantity,
			Unit:         ri.Unit,
			BottleID:     ri.BottleID,
			SortOrder:    ri.SortOrder,
		}
		if ri.Ingredient != nil {
			line.Name = ri.Ingredient.Name
			line.NameAlt = ri.Ingredient.NameAlt
			line.Category = ri.Ingredient.Category
		}
		lines = append(lines, line)
	}
	return lines
}

// newRecipeClassifier builds the batch classifier from the persisted type,
// re-checking the juice rule for untyped recipes on every read.
func newRecipeClassifier(recipe *models.CocktailRecipe, lines []engine.Line) *engine.Classifier {
	var persisted *engine.BatchType
	if recipe.BatchType != nil {
		if t, err := engine.ParseBatchType(*recipe.BatchType); err == nil {
			persisted = &t
		}
	}
	classifier := engine.NewClassifier(persisted)
	classifier.NoteIngredientEdit(lines)
	return classifier
}

func lineBottle(ctx context.Context, packaging *engine.PackagingResolver, line engine.Line) *engine.BottleVariant {
	if line.BottleID != nil {
		bottle, err := packaging.Bottle(ctx, line.IngredientID, *line.BottleID)
		if err == nil && bottle != nil {
			return bottle
		}
	}
	bottles, err := packaging.BottlesFor(ctx, line.IngredientID)
	if err != nil || len(bottles) == 0 {
		return nil
	}
	for i := range bottles {
		if bottles[i].Price != nil {
			return &bottles[i]
		}
	}
	return nil
}
