package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aluiziolira/go-food-value/models"
	"github.com/aluiziolira/go-food-value/parser"
)

// Drop reasons reported in CleanResult.Dropped.
const (
	DropMissingBarcode   = "missing_barcode"
	DropMissingName      = "missing_name"
	DropMissingPrice     = "missing_price"
	DropDuplicate        = "duplicate_barcode"
	DropNonPositivePrice = "non_positive_price"
	DropInvalid          = "invalid_record"
)

// OutputWriter defines the interface for clean store output.
type OutputWriter interface {
	Write(products []*models.CleanProduct) error
	Close() error
	Validate() error
}

// Pipeline turns raw store rows into clean store rows: validation,
// de-duplication by barcode, nutrient extraction and per-unit pricing.
// Rows are handled strictly in input order, so the first occurrence of a
// barcode is the one kept.
type Pipeline struct {
	writer  OutputWriter
	seen    map[string]struct{}
	metrics metrics
}

// NewPipeline builds a pipeline that writes to writer.
func NewPipeline(writer OutputWriter) *Pipeline {
	return &Pipeline{
		writer:  writer,
		seen:    make(map[string]struct{}),
		metrics: newMetrics(),
	}
}

// Run cleans rows and writes the result in a single batch.
func (p *Pipeline) Run(rows []*models.RawProduct) (*models.CleanResult, error) {
	cleaned := p.Clean(rows)
	if err := p.writer.Write(cleaned); err != nil {
		return nil, fmt.Errorf("write clean store: %w", err)
	}
	return p.Result(), nil
}

// Clean applies the cleaning steps to rows and returns the retained
// products in input order.
func (p *Pipeline) Clean(rows []*models.RawProduct) []*models.CleanProduct {
	out := make([]*models.CleanProduct, 0, len(rows))
	for _, row := range rows {
		p.metrics.read++
		if product := p.prepare(row); product != nil {
			out = append(out, product)
			p.metrics.written++
		}
	}
	return out
}

// Result returns a snapshot of the counters.
func (p *Pipeline) Result() *models.CleanResult {
	return p.metrics.snapshot()
}

func (p *Pipeline) prepare(row *models.RawProduct) *models.CleanProduct {
	if row == nil {
		p.drop(DropInvalid, "", nil)
		return nil
	}

	trimmed := *row
	trimmed.Barcode = strings.TrimSpace(row.Barcode)
	trimmed.ProductName = strings.TrimSpace(row.ProductName)
	trimmed.Brands = strings.TrimSpace(row.Brands)

	if err := parser.ValidateRaw(&trimmed); err != nil {
		p.drop(dropReason(err), trimmed.Barcode, err)
		return nil
	}

	if _, ok := p.seen[trimmed.Barcode]; ok {
		p.drop(DropDuplicate, trimmed.Barcode, nil)
		return nil
	}
	p.seen[trimmed.Barcode] = struct{}{}

	price := *parser.ParseNumber(trimmed.LatestPrice)
	quantity := parser.ParseNumber(trimmed.ProductQuantity)
	nutriments := parser.ParseNutriments(trimmed.Nutriments)

	product := &models.CleanProduct{
		Barcode:           trimmed.Barcode,
		ProductName:       trimmed.ProductName,
		Brands:            trimmed.Brands,
		Category:          trimmed.Category,
		LatestPrice:       price,
		PricePer100g:      parser.PricePer100g(price, quantity),
		EnergyKcal100g:    parser.Nutrient(nutriments, parser.EnergyKcalKey),
		Sugars100g:        parser.Nutrient(nutriments, parser.SugarsKey),
		Fat100g:           parser.Nutrient(nutriments, parser.FatKey),
		Salt100g:          parser.Nutrient(nutriments, parser.SaltKey),
		NutriscoreNumeric: parser.ParseNumber(trimmed.NutriscoreNumeric),
		NutriscoreGrade:   parser.NormalizeGrade(trimmed.NutriscoreGrade),
	}

	if product.LatestPrice <= 0 {
		p.drop(DropNonPositivePrice, product.Barcode, nil)
		return nil
	}
	return product
}

func (p *Pipeline) drop(reason, barcode string, err error) {
	p.metrics.addDropped(reason)
	attrs := []any{slog.String("reason", reason), slog.String("barcode", barcode)}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	slog.Debug("dropping raw row", attrs...)
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, parser.ErrMissingBarcode):
		return DropMissingBarcode
	case errors.Is(err, parser.ErrMissingName):
		return DropMissingName
	case errors.Is(err, parser.ErrMissingPrice):
		return DropMissingPrice
	default:
		return DropInvalid
	}
}

type metrics struct {
	read    int
	written int
	dropped map[string]int
}

func newMetrics() metrics {
	return metrics{
		dropped: make(map[string]int),
	}
}

func (m *metrics) addDropped(reason string) {
	m.dropped[reason]++
}

func (m *metrics) snapshot() *models.CleanResult {
	copyDropped := make(map[string]int, len(m.dropped))
	for k, v := range m.dropped {
		copyDropped[k] = v
	}
	return &models.CleanResult{
		RowsRead:    m.read,
		RowsWritten: m.written,
		Dropped:     copyDropped,
	}
}
