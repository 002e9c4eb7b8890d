package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SearchResponse is the body returned by the product search endpoint.
// Upstream echoes the paging fields back as either numbers or strings.
type SearchResponse struct {
	Count    FlexText        `json:"count"`
	Page     FlexText        `json:"page"`
	PageSize FlexText        `json:"page_size"`
	Products []SearchProduct `json:"products"`
}

// SearchProduct holds the product fields the collector keeps.
type SearchProduct struct {
	Code             FlexText        `json:"code"`
	ProductName      FlexText        `json:"product_name"`
	Brands           FlexText        `json:"brands"`
	ProductQuantity  FlexText        `json:"product_quantity"`
	Quantity         FlexText        `json:"quantity"`
	Nutriments       json.RawMessage `json:"nutriments"`
	NutritionGradeFr FlexText        `json:"nutrition_grade_fr"`
	NutritionScoreFr FlexText        `json:"nutrition_score_fr"`
}

// PriceResponse is the body returned by the price endpoint.
type PriceResponse struct {
	Items []PriceItem `json:"items"`
	Total FlexText    `json:"total"`
}

// PriceItem is a single observed price. Price is nil when upstream omits it.
type PriceItem struct {
	Price    *float64 `json:"price"`
	Currency string   `json:"currency"`
	Date     string   `json:"date"`
}

// FlexText decodes a JSON string, number or boolean into its text form.
// Upstream product documents are not consistent about which they send.
type FlexText string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexText(s)
	case '{', '[':
		// Objects and arrays carry nothing usable as a scalar field.
		*f = ""
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			*f = FlexText(normalizeNumber(n))
			return nil
		}
		*f = FlexText(data)
	}
	return nil
}

func (f FlexText) String() string {
	return string(f)
}

func normalizeNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if v, err := n.Float64(); err == nil {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return n.String()
}
