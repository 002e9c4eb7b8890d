package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aluiziolira/go-food-value/config"
	"github.com/aluiziolira/go-food-value/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Skip reasons reported in CollectResult.Skipped.
const (
	SkipMissingBarcode = "missing_barcode"
	SkipNoPrice        = "no_price"
)

// RowAppender receives accepted rows as soon as they are built.
type RowAppender interface {
	Append(product *models.RawProduct) error
}

// Collector walks the configured categories, joins every product with its
// latest price and appends the accepted rows to the raw store.
type Collector struct {
	cfg      *config.Config
	products *ProductClient
	prices   *PriceClient
	cache    *lru.Cache[string, *float64]
	Metrics  *Metrics

	sleep func(ctx context.Context, d time.Duration) error
}

// NewCollector builds a collector configured from cfg.
func NewCollector(cfg *config.Config) (*Collector, error) {
	metrics := NewMetrics()
	products, err := NewProductClient(cfg, metrics)
	if err != nil {
		return nil, err
	}

	c := &Collector{
		cfg:      cfg,
		products: products,
		prices:   NewPriceClient(cfg, metrics),
		Metrics:  metrics,
		sleep:    sleepContext,
	}
	if cfg.PriceCacheSize > 0 {
		cache, err := lru.New[string, *float64](cfg.PriceCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create price cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Run collects every configured category in order. Rows reach out one at a
// time; on cancellation the rows already appended stay valid and the
// partial result is returned alongside the context error.
func (c *Collector) Run(ctx context.Context, out RowAppender) (*models.CollectResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &models.CollectResult{
		StartTime:    time.Now(),
		Accepted:     make(map[string]int),
		Skipped:      make(map[string]int),
		ErrorsByType: make(map[string]int),
	}
	defer func() {
		result.EndTime = time.Now()
	}()

	for _, category := range c.cfg.Categories {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Categories = append(result.Categories, category)
		if err := c.collectCategory(ctx, category, out, result); err != nil {
			return result, err
		}
		slog.Info("category complete",
			slog.String("category", category),
			slog.Int("accepted", result.Accepted[category]),
			slog.Int("target", c.cfg.TargetPerCategory),
		)
	}
	return result, nil
}

func (c *Collector) collectCategory(ctx context.Context, category string, out RowAppender, result *models.CollectResult) error {
	slog.Info("collecting category", slog.String("category", category))

	count := 0
	for page := 1; page <= c.cfg.MaxPages && count < c.cfg.TargetPerCategory; page++ {
		res := c.products.FetchPage(ctx, category, page)
		result.RequestCount++
		if err := ctx.Err(); err != nil {
			return err
		}
		if res.Err != nil {
			c.recordError(endpointSearch, res.Err, result)
			slog.Error("product page request failed",
				slog.String("category", category),
				slog.Int("page", page),
				slog.String("outcome", res.Outcome.String()),
				slog.Any("error", res.Err),
			)
			if res.Outcome == OutcomeTransient {
				if err := c.sleep(ctx, c.cfg.FailureSleep); err != nil {
					return err
				}
			}
			return nil
		}
		if len(res.Products) == 0 {
			slog.Debug("empty product page", slog.String("category", category), slog.Int("page", page))
			return nil
		}
		result.PageCount++

		for i := range res.Products {
			if count >= c.cfg.TargetPerCategory {
				break
			}
			product := &res.Products[i]

			barcode := strings.TrimSpace(product.Code.String())
			if barcode == "" {
				c.skip(SkipMissingBarcode, result)
				continue
			}

			price, err := c.latestPrice(ctx, barcode, result)
			if err != nil {
				return err
			}
			if price == nil {
				c.skip(SkipNoPrice, result)
				continue
			}

			row := buildRow(category, barcode, product, *price)
			if err := out.Append(row); err != nil {
				return fmt.Errorf("append raw row: %w", err)
			}
			count++
			result.Accepted[category]++
			c.Metrics.IncAccepted(category)
			slog.Info("accepted product",
				slog.String("category", category),
				slog.Int("count", count),
				slog.String("barcode", barcode),
				slog.String("product_name", row.ProductName),
			)
		}
	}
	return nil
}

// latestPrice resolves the price for barcode through the memo or the price
// endpoint. A nil price means "skip this product"; the error is only set
// when ctx is done.
func (c *Collector) latestPrice(ctx context.Context, barcode string, result *models.CollectResult) (*float64, error) {
	if c.cache != nil {
		if price, ok := c.cache.Get(barcode); ok {
			result.CacheHits++
			c.Metrics.IncCacheHit()
			return price, nil
		}
	}

	res := c.prices.Latest(ctx, barcode)
	result.RequestCount++
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case res.Err != nil:
		c.recordError(endpointPrice, res.Err, result)
		slog.Debug("price lookup failed",
			slog.String("barcode", barcode),
			slog.String("outcome", res.Outcome.String()),
			slog.Any("error", res.Err),
		)
		if res.Outcome == OutcomeTransient {
			if err := c.sleep(ctx, c.cfg.FailureSleep); err != nil {
				return nil, err
			}
		}
	case c.cache != nil:
		c.cache.Add(barcode, res.Price)
	}

	if err := c.sleep(ctx, c.cfg.PriceDelay); err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, nil
	}
	return res.Price, nil
}

func (c *Collector) recordError(endpoint string, err error, result *models.CollectResult) {
	label := errorTypeLabel(err)
	result.ErrorsByType[label]++
	c.Metrics.IncError(endpoint, label)
}

func (c *Collector) skip(reason string, result *models.CollectResult) {
	result.Skipped[reason]++
	c.Metrics.IncSkipped(reason)
}

func buildRow(category, barcode string, product *models.SearchProduct, price float64) *models.RawProduct {
	return &models.RawProduct{
		Category:          category,
		Barcode:           barcode,
		ProductName:       product.ProductName.String(),
		Brands:            product.Brands.String(),
		ProductQuantity:   product.ProductQuantity.String(),
		Quantity:          product.Quantity.String(),
		Nutriments:        serializeNutriments(product.Nutriments),
		NutriscoreGrade:   product.NutritionGradeFr.String(),
		NutriscoreNumeric: product.NutritionScoreFr.String(),
		LatestPrice:       strconv.FormatFloat(price, 'f', -1, 64),
	}
}

// serializeNutriments stores the nutriments object on a single line. A
// missing object is stored as an empty one.
func serializeNutriments(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "{}"
	}
	return buf.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
