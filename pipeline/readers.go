package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aluiziolira/go-food-value/models"
	"github.com/aluiziolira/go-food-value/parser"
)

// ErrMissingColumn is returned when a store header lacks a required column.
var ErrMissingColumn = errors.New("pipeline: missing column")

// ReadRaw loads the whole raw store in row order.
func ReadRaw(filename string) ([]*models.RawProduct, error) {
	var out []*models.RawProduct
	err := readStore(filename, models.RawHeader, func(_ int, get func(string) string) error {
		out = append(out, &models.RawProduct{
			Category:          get("category"),
			Barcode:           get("barcode"),
			ProductName:       get("product_name"),
			Brands:            get("brands"),
			ProductQuantity:   get("product_quantity"),
			Quantity:          get("quantity"),
			Nutriments:        get("nutriments"),
			NutriscoreGrade:   get("nutriscore_grade"),
			NutriscoreNumeric: get("nutriscore_numeric"),
			LatestPrice:       get("latest_price"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadClean loads the clean store.
func ReadClean(filename string) ([]*models.CleanProduct, error) {
	var out []*models.CleanProduct
	err := readStore(filename, models.CleanHeader, func(line int, get func(string) string) error {
		price := parser.ParseNumber(get("latest_price"))
		if price == nil {
			return fmt.Errorf("line %d: invalid latest_price %q", line, get("latest_price"))
		}
		out = append(out, &models.CleanProduct{
			Barcode:           get("barcode"),
			ProductName:       get("product_name"),
			Brands:            get("brands"),
			Category:          get("category"),
			LatestPrice:       *price,
			PricePer100g:      parser.ParseNumber(get("price_per_100g")),
			EnergyKcal100g:    parser.ParseNumber(get("energy_kcal_100g")),
			Sugars100g:        parser.ParseNumber(get("sugars_100g")),
			Fat100g:           parser.ParseNumber(get("fat_100g")),
			Salt100g:          parser.ParseNumber(get("salt_100g")),
			NutriscoreNumeric: parser.ParseNumber(get("nutriscore_numeric")),
			NutriscoreGrade:   parser.NormalizeGrade(get("nutriscore_grade")),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// readStore opens a CSV store, checks the header carries every required
// column and calls fn once per data row with the row's first physical line
// and a lookup by column name.
func readStore(filename string, required []string, fn func(line int, get func(string) string) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return fmt.Errorf("read %s: empty file", filename)
	}
	if err != nil {
		return fmt.Errorf("read %s header: %w", filename, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return fmt.Errorf("read %s: %w %q", filename, ErrMissingColumn, name)
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", filename, err)
		}
		line, _ := reader.FieldPos(0)
		get := func(name string) string {
			return record[index[name]]
		}
		if err := fn(line, get); err != nil {
			return fmt.Errorf("read %s: %w", filename, err)
		}
	}
}
