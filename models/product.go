// Package models defines the records that flow through the food value pipeline.
package models

// RawHeader is the column order of the raw store.
var RawHeader = []string{
	"category",
	"barcode",
	"product_name",
	"brands",
	"product_quantity",
	"quantity",
	"nutriments",
	"nutriscore_grade",
	"nutriscore_numeric",
	"latest_price",
}

// CleanHeader is the column order of the clean store.
var CleanHeader = []string{
	"barcode",
	"product_name",
	"brands",
	"category",
	"latest_price",
	"price_per_100g",
	"energy_kcal_100g",
	"sugars_100g",
	"fat_100g",
	"salt_100g",
	"nutriscore_numeric",
	"nutriscore_grade",
}

// RawProduct is one collected row. Every field is kept as text exactly as it
// is stored; typing happens during cleaning.
type RawProduct struct {
	Category          string `json:"category"`
	Barcode           string `json:"barcode"`
	ProductName       string `json:"product_name"`
	Brands            string `json:"brands"`
	ProductQuantity   string `json:"product_quantity"`
	Quantity          string `json:"quantity"`
	Nutriments        string `json:"nutriments"`
	NutriscoreGrade   string `json:"nutriscore_grade"`
	NutriscoreNumeric string `json:"nutriscore_numeric"`
	LatestPrice       string `json:"latest_price"`
}

// Record returns the row in RawHeader order.
func (p *RawProduct) Record() []string {
	return []string{
		p.Category,
		p.Barcode,
		p.ProductName,
		p.Brands,
		p.ProductQuantity,
		p.Quantity,
		p.Nutriments,
		p.NutriscoreGrade,
		p.NutriscoreNumeric,
		p.LatestPrice,
	}
}

// CleanProduct is one row of the clean store. Nil pointers are nulls.
type CleanProduct struct {
	Barcode           string   `json:"barcode"`
	ProductName       string   `json:"product_name"`
	Brands            string   `json:"brands"`
	Category          string   `json:"category"`
	LatestPrice       float64  `json:"latest_price"`
	PricePer100g      *float64 `json:"price_per_100g"`
	EnergyKcal100g    *float64 `json:"energy_kcal_100g"`
	Sugars100g        *float64 `json:"sugars_100g"`
	Fat100g           *float64 `json:"fat_100g"`
	Salt100g          *float64 `json:"salt_100g"`
	NutriscoreNumeric *float64 `json:"nutriscore_numeric"`
	NutriscoreGrade   *string  `json:"nutriscore_grade"`
}

// Float returns a pointer to v, for building nullable fields.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}
