package mock

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"barcraft/internal/db"
	applog "barcraft/internal/log"
	"barcraft/models"
)

// New returns an in-memory sqlite database seeded with a representative bar:
// a manager account, a small ingredient catalog with bottles and prices, one
// batchable cocktail, two suppliers and a pair of open orders.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	// A unique name per call keeps repeated opens within one process from
	// sharing (and re-seeding) the same store.
	dsn := fmt.Sprintf("file:barcraft-mock-%d?mode=memory&cache=shared", time.Now().UnixNano())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

// Empty returns an in-memory sqlite database with the schema migrated and no
// rows, for tests that build their own fixtures. Databases with the same
// name share storage within the process, so tests should pass a unique one.
func Empty(ctx context.Context, name string) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising empty mock database", "name", name)

	database, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("speakeasy"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	manager := &models.User{
		Name:         "Noa Peretz",
		Email:        "noa@barcraft.app",
		PasswordHash: string(password),
		IsManager:    true,
	}
	if err := database.WithContext(ctx).Create(manager).Error; err != nil {
		return err
	}

	acme := models.Supplier{Name: "Acme Beverages", Contact: "orders@acme.example"}
	zest := models.Supplier{Name: "Zest Imports", Contact: "sales@zest.example"}
	for _, supplier := range []*models.Supplier{&acme, &zest} {
		if err := database.WithContext(ctx).Create(supplier).Error; err != nil {
			return err
		}
	}

	vodka := models.Ingredient{Name: "Vodka", NameAlt: "וודקה", Category: "spirit", DefaultSupplierID: &acme.ID}
	limeJuice := models.Ingredient{Name: "Lime Juice", NameAlt: "מיץ ליים", Category: "juice", DefaultSupplierID: &zest.ID}
	sugarSyrup := models.Ingredient{Name: "Sugar Syrup", NameAlt: "סירופ סוכר", Category: "syrup"}
	mint := models.Ingredient{Name: "Mint", NameAlt: "נענע", Category: "herb", DefaultSupplierID: &zest.ID}

	for _, ingredient := range []*models.Ingredient{&vodka, &limeJuice, &sugarSyrup, &mint} {
		if err := database.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	vodkaBottle := models.Bottle{IngredientID: vodka.ID, Name: "Vodka 700", NameAlt: "וודקה 700", VolumeML: 700, IsDefaultCost: true}
	limeBottle := models.Bottle{IngredientID: limeJuice.ID, Name: "Lime Juice 1L", VolumeML: 1000, IsDefaultCost: true}
	syrupBottle := models.Bottle{IngredientID: sugarSyrup.ID, Name: "Sugar Syrup 750", VolumeML: 750, IsDefaultCost: true}

	for _, bottle := range []*models.Bottle{&vodkaBottle, &limeBottle, &syrupBottle} {
		if err := database.WithContext(ctx).Create(bottle).Error; err != nil {
			return err
		}
	}

	startDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := []models.BottlePrice{
		{BottleID: vodkaBottle.ID, PriceMinor: 12000, Currency: "ILS", StartDate: startDate},
		{BottleID: limeBottle.ID, PriceMinor: 2000, Currency: "ILS", StartDate: startDate},
		{BottleID: syrupBottle.ID, PriceMinor: 1500, Currency: "ILS", StartDate: startDate},
	}
	for i := range prices {
		if err := database.WithContext(ctx).Create(&prices[i]).Error; err != nil {
			return err
		}
	}

	gimlet := models.CocktailRecipe{
		Name:            "Batch Gimlet",
		Description:     "House gimlet prepared ahead of service.",
		CreatedByUserID: manager.ID,
	}
	if err := database.WithContext(ctx).Create(&gimlet).Error; err != nil {
		return err
	}

	recipeLines := []models.RecipeIngredient{
		{RecipeID: gimlet.ID, IngredientID: vodka.ID, Quantity: 60, Unit: "ml", BottleID: &vodkaBottle.ID, SortOrder: 1},
		{RecipeID: gimlet.ID, IngredientID: limeJuice.ID, Quantity: 25, Unit: "ml", BottleID: &limeBottle.ID, SortOrder: 2},
		{RecipeID: gimlet.ID, IngredientID: sugarSyrup.ID, Quantity: 15, Unit: "ml", BottleID: &syrupBottle.ID, SortOrder: 3},
		{RecipeID: gimlet.ID, IngredientID: mint.ID, Quantity: 1, Unit: "leaf", IsGarnish: true, SortOrder: 4},
	}
	for i := range recipeLines {
		if err := database.WithContext(ctx).Create(&recipeLines[i]).Error; err != nil {
			return err
		}
	}

	periodStart := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 0, 6)

	acmeOrder := models.Order{
		Scope:       models.OrderScopeWeekly,
		SupplierID:  &acme.ID,
		Status:      models.OrderStatusDraft,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	zestOrder := models.Order{
		Scope:       models.OrderScopeWeekly,
		SupplierID:  &zest.ID,
		Status:      models.OrderStatusDraft,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	for _, order := range []*models.Order{&acmeOrder, &zestOrder} {
		if err := database.WithContext(ctx).Create(order).Error; err != nil {
			return err
		}
	}

	ml := func(v float64) *float64 { return &v }
	unit := func(v string) *string { return &v }
	vol := vodkaBottle.VolumeML

	items := []models.OrderItem{
		{
			OrderID:      acmeOrder.ID,
			IngredientID: vodka.ID,
			RequestedML:  ml(2100), UsedFromStockML: ml(700), NeededML: ml(1400),
			Unit:     unit("ml"),
			BottleID: &vodkaBottle.ID, BottleVolumeML: &vol,
		},
		{
			OrderID:      zestOrder.ID,
			IngredientID: limeJuice.ID,
			RequestedML:  ml(900), NeededML: ml(900),
			Unit:     unit("ml"),
			BottleID: &limeBottle.ID,
		},
		{
			OrderID:           zestOrder.ID,
			IngredientID:      mint.ID,
			RequestedQuantity: ml(40), UsedFromStockQuantity: ml(10), NeededQuantity: ml(30),
			Unit: unit("leaf"),
		},
	}
	for i := range items {
		if err := database.WithContext(ctx).Create(&items[i]).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
