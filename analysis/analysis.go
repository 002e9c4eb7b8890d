// Package analysis derives the grouped statistics reported by the analyze
// and visualize commands from the clean store.
package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/aluiziolira/go-food-value/models"
)

// Record is a clean product with its health label.
type Record struct {
	*models.CleanProduct
	Healthy bool
}

// IsHealthy reports whether a Nutri-Score grade is a or b, in any case.
func IsHealthy(grade *string) bool {
	if grade == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(*grade)) {
	case "a", "b":
		return true
	default:
		return false
	}
}

// Classify attaches the health label to every product.
func Classify(products []*models.CleanProduct) []Record {
	out := make([]Record, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		out = append(out, Record{CleanProduct: p, Healthy: IsHealthy(p.NutriscoreGrade)})
	}
	return out
}

// Prepare classifies products and trims price outliers at quantile q.
func Prepare(products []*models.CleanProduct, q float64) ([]Record, float64) {
	return TrimOutliers(Classify(products), q)
}

// Quantile returns the q-quantile of values using linear interpolation
// between closest ranks. ok is false for an empty input.
func Quantile(values []float64, q float64) (value float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower], true
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac, true
}

// TrimOutliers keeps the records whose price_per_100g is at or below the
// q-quantile of all non-null price_per_100g values, and returns that
// cutoff. Records with a null price_per_100g are not kept. With no priced
// records the result is empty and the cutoff NaN.
func TrimOutliers(records []Record, q float64) ([]Record, float64) {
	prices := make([]float64, 0, len(records))
	for _, r := range records {
		if r.PricePer100g != nil {
			prices = append(prices, *r.PricePer100g)
		}
	}
	cutoff, ok := Quantile(prices, q)
	if !ok {
		return []Record{}, math.NaN()
	}
	return FilterAtOrBelow(records, cutoff), cutoff
}

// FilterAtOrBelow keeps records whose price_per_100g is not null and is at
// or below cutoff. Applying it twice with the same cutoff is a no-op.
func FilterAtOrBelow(records []Record, cutoff float64) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.PricePer100g != nil && *r.PricePer100g <= cutoff {
			out = append(out, r)
		}
	}
	return out
}

// Ratio is a nutrient amount per currency unit of price_per_100g.
type Ratio struct {
	Name     string // figure and column name
	Title    string
	Nutrient func(*models.CleanProduct) *float64
}

// Ratios lists the nutrition-per-dollar ratios in report order.
var Ratios = []Ratio{
	{Name: "calories_per_dollar", Title: "Calories", Nutrient: func(p *models.CleanProduct) *float64 { return p.EnergyKcal100g }},
	{Name: "sugar_per_dollar", Title: "Sugar", Nutrient: func(p *models.CleanProduct) *float64 { return p.Sugars100g }},
	{Name: "fat_per_dollar", Title: "Fat", Nutrient: func(p *models.CleanProduct) *float64 { return p.Fat100g }},
	{Name: "salt_per_dollar", Title: "Salt", Nutrient: func(p *models.CleanProduct) *float64 { return p.Salt100g }},
}

// Value returns the ratio for r, or nil when the nutrient or
// price_per_100g is null or the price is zero.
func (ratio Ratio) Value(r Record) *float64 {
	nutrient := ratio.Nutrient(r.CleanProduct)
	if nutrient == nil || r.PricePer100g == nil || *r.PricePer100g == 0 {
		return nil
	}
	v := *nutrient / *r.PricePer100g
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// PricePer100g returns the record's price_per_100g.
func PricePer100g(r Record) *float64 {
	return r.PricePer100g
}

// Mean averages the non-null values of value over records. It returns nil
// when every value is null.
func Mean(records []Record, value func(Record) *float64) *float64 {
	sum, n := 0.0, 0
	for _, r := range records {
		if v := value(r); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

// Categories returns the distinct categories in first-seen order.
func Categories(records []Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}

// SortedCategories returns the distinct categories in lexical order.
func SortedCategories(records []Record) []string {
	out := Categories(records)
	sort.Strings(out)
	return out
}

// InCategory returns the records of one category.
func InCategory(records []Record, category string) []Record {
	var out []Record
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// HealthSplit holds a statistic for the not-healthy and healthy groups.
type HealthSplit struct {
	Unhealthy *float64
	Healthy   *float64
}

// MeanByHealth splits records by health label and averages value in each
// group.
func MeanByHealth(records []Record, value func(Record) *float64) HealthSplit {
	var healthy, unhealthy []Record
	for _, r := range records {
		if r.Healthy {
			healthy = append(healthy, r)
		} else {
			unhealthy = append(unhealthy, r)
		}
	}
	return HealthSplit{Unhealthy: Mean(unhealthy, value), Healthy: Mean(healthy, value)}
}

// GradeMean is the mean of a statistic for one Nutri-Score grade.
type GradeMean struct {
	Grade string
	Mean  *float64
}

// MeanByGrade averages value per Nutri-Score grade, in grade order.
// Records without a grade are left out.
func MeanByGrade(records []Record, value func(Record) *float64) []GradeMean {
	groups := make(map[string][]Record)
	for _, r := range records {
		if r.NutriscoreGrade == nil {
			continue
		}
		grade := strings.ToLower(*r.NutriscoreGrade)
		groups[grade] = append(groups[grade], r)
	}

	grades := make([]string, 0, len(groups))
	for grade := range groups {
		grades = append(grades, grade)
	}
	sort.Strings(grades)

	out := make([]GradeMean, 0, len(grades))
	for _, grade := range grades {
		out = append(out, GradeMean{Grade: grade, Mean: Mean(groups[grade], value)})
	}
	return out
}
