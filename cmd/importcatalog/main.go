package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"barcraft/internal/config"
	"barcraft/internal/db"
	applog "barcraft/internal/log"
	"barcraft/models"
)

// catalogRecord is one parsed CSV row. Bottle and price columns are
// optional; a row may introduce just an ingredient.
type catalogRecord struct {
	Name       string
	NameAlt    string
	Category   string
	Supplier   string
	BottleName string
	VolumeML   int
	PriceMinor int64
	Currency   string
}

func main() {
	app := &cli.App{
		Name:  "importcatalog",
		Usage: "Import ingredients, bottles and prices from a CSV catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "csv",
				Usage:    "Path to the catalog CSV file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Action: func(c *cli.Context) error {
			if err := applog.SetLevel(c.String("log-level")); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			database, err := db.Configure(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}

			file, err := os.Open(c.String("csv"))
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer file.Close()

			records, err := readCatalogCSV(file)
			if err != nil {
				return fmt.Errorf("read csv: %w", err)
			}

			imported, err := importRecords(database, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "imported %d catalog rows\n", imported)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

// readCatalogCSV parses rows of the form
// name,name_alt,category,supplier,bottle_name,volume_ml,price_minor,currency
// with an optional header line.
func readCatalogCSV(r io.Reader) ([]catalogRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var records []catalogRecord
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line == 1 && looksLikeHeader(row) {
			continue
		}
		record, err := parseCatalogRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if record.Name == "" {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func looksLikeHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "name")
}

func parseCatalogRow(row []string) (catalogRecord, error) {
	field := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	record := catalogRecord{
		Name:       field(0),
		NameAlt:    field(1),
		Category:   strings.ToLower(field(2)),
		Supplier:   field(3),
		BottleName: field(4),
		Currency:   strings.ToUpper(field(7)),
	}

	if raw := field(5); raw != "" {
		volume, err := strconv.Atoi(raw)
		if err != nil || volume <= 0 {
			return catalogRecord{}, fmt.Errorf("invalid volume %q", raw)
		}
		record.VolumeML = volume
	}
	if raw := field(6); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || price < 0 {
			return catalogRecord{}, fmt.Errorf("invalid price %q", raw)
		}
		record.PriceMinor = price
	}
	if record.Currency == "" {
		record.Currency = "ILS"
	}
	return record, nil
}

// importRecords upserts each row inside its own transaction: the supplier
// and ingredient by name, the bottle by ingredient and volume, and a price
// when one is given.
func importRecords(database *gorm.DB, records []catalogRecord) (int, error) {
	imported := 0
	for _, record := range records {
		err := database.Transaction(func(tx *gorm.DB) error {
			var supplier *models.Supplier
			if record.Supplier != "" {
				var err error
				supplier, err = upsertSupplier(tx, record.Supplier)
				if err != nil {
					return err
				}
			}

			ingredient, err := upsertIngredient(tx, record, supplier)
			if err != nil {
				return err
			}

			if record.VolumeML <= 0 {
				return nil
			}
			bottle, err := upsertBottle(tx, ingredient, record)
			if err != nil {
				return err
			}
			if record.PriceMinor <= 0 {
				return nil
			}
			return tx.Create(&models.BottlePrice{
				BottleID:   bottle.ID,
				PriceMinor: record.PriceMinor,
				Currency:   record.Currency,
				StartDate:  tx.NowFunc(),
				Source:     "csv-import",
			}).Error
		})
		if err != nil {
			return imported, fmt.Errorf("import %q: %w", record.Name, err)
		}
		imported++
	}
	return imported, nil
}

func upsertSupplier(tx *gorm.DB, name string) (*models.Supplier, error) {
	var supplier models.Supplier
	err := tx.Where("name = ?", name).First(&supplier).Error
	if err == nil {
		return &supplier, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	supplier = models.Supplier{Name: name}
	if err := tx.Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func upsertIngredient(tx *gorm.DB, record catalogRecord, supplier *models.Supplier) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := tx.Where("lower(name) = ?", strings.ToLower(record.Name)).First(&ingredient).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ingredient = models.Ingredient{Name: record.Name}
	}

	if record.NameAlt != "" {
		ingredient.NameAlt = record.NameAlt
	}
	if record.Category != "" {
		ingredient.Category = record.Category
	}
	if supplier != nil {
		ingredient.DefaultSupplierID = &supplier.ID
	}
	if err := tx.Save(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func upsertBottle(tx *gorm.DB, ingredient *models.Ingredient, record catalogRecord) (*models.Bottle, error) {
	var bottle models.Bottle
	err := tx.Where("ingredient_id = ? AND volume_ml = ?", ingredient.ID, record.VolumeML).First(&bottle).Error
	if err == nil {
		return &bottle, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := record.BottleName
	if name == "" {
		name = fmt.Sprintf("%s %d ml", ingredient.Name, record.VolumeML)
	}
	bottle = models.Bottle{
		IngredientID: ingredient.ID,
		Name:         name,
		VolumeML:     record.VolumeML,
	}
	if err := tx.Create(&bottle).Error; err != nil {
		return nil, err
	}
	return &bottle, nil
}
