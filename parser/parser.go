// Package parser coerces raw store text into typed clean-store values.
package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-food-value/models"
	"github.com/titanous/json5"
)

// Nutrient keys read from the nutriments mapping.
const (
	EnergyKcalKey = "energy-kcal_100g"
	SugarsKey     = "sugars_100g"
	FatKey        = "fat_100g"
	SaltKey       = "salt_100g"
)

var (
	ErrMissingBarcode = errors.New("missing barcode")
	ErrMissingName    = errors.New("missing name")
	ErrMissingPrice   = errors.New("missing price")
)

// ValidateRaw ensures a raw row carries the fields a clean row requires.
func ValidateRaw(p *models.RawProduct) error {
	if p == nil {
		return fmt.Errorf("product is nil")
	}
	if strings.TrimSpace(p.Barcode) == "" {
		return ErrMissingBarcode
	}
	if strings.TrimSpace(p.ProductName) == "" {
		return fmt.Errorf("product %s: %w", p.Barcode, ErrMissingName)
	}
	if ParseNumber(p.LatestPrice) == nil {
		return fmt.Errorf("product %s: %w", p.Barcode, ErrMissingPrice)
	}
	return nil
}

// ParseNumber converts text to a float. Empty, unparseable and non-finite
// input yields nil.
func ParseNumber(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseNutriments decodes the serialized nutriments mapping. Anything that
// does not decode to an object yields an empty mapping.
func ParseNutriments(blob string) map[string]any {
	out := map[string]any{}
	if strings.TrimSpace(blob) == "" {
		return out
	}
	var decoded map[string]any
	if err := json5.Unmarshal([]byte(blob), &decoded); err != nil || decoded == nil {
		return out
	}
	return decoded
}

// Nutrient returns the numeric value stored under key, or nil when the key
// is absent or not numeric.
func Nutrient(nutriments map[string]any, key string) *float64 {
	value, ok := nutriments[key]
	if !ok || value == nil {
		return nil
	}
	var v float64
	switch n := value.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case string:
		return ParseNumber(n)
	default:
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NormalizeGrade lowercases a Nutri-Score grade. Empty text and the literal
// "nan" map to nil.
func NormalizeGrade(grade string) *string {
	grade = strings.ToLower(strings.TrimSpace(grade))
	if grade == "" || grade == "nan" {
		return nil
	}
	return &grade
}

// PricePer100g returns price / (quantity / 100) for a positive quantity in
// grams and nil otherwise.
func PricePer100g(price float64, quantity *float64) *float64 {
	if quantity == nil || *quantity <= 0 {
		return nil
	}
	v := price / (*quantity / 100)
	return &v
}

// FormatNumber renders a nullable number for the stores: shortest
// round-trip form, empty for nil.
func FormatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
