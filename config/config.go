package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the settings shared by the collect, clean, analyze and
// visualize commands.
type Config struct {
	ProductSearchURL  string        `yaml:"productSearchUrl"`
	PriceURL          string        `yaml:"priceUrl"`
	Categories        []string      `yaml:"categories"`
	TargetPerCategory int           `yaml:"targetPerCategory"`
	PageSize          int           `yaml:"pageSize"`
	MaxPages          int           `yaml:"maxPages"`
	Timeout           time.Duration `yaml:"timeout"`
	PriceDelay        time.Duration `yaml:"priceDelay"`
	FailureSleep      time.Duration `yaml:"failureSleep"`
	PriceCacheSize    int           `yaml:"priceCacheSize"`
	MaxBodySize       int           `yaml:"maxBodySize"` // bytes per search page, 0 is unlimited
	UserAgent         string        `yaml:"userAgent"`

	RawFile       string `yaml:"rawFile"`
	CleanFile     string `yaml:"cleanFile"`
	CleanJSONFile string `yaml:"cleanJsonFile"` // empty disables the JSON mirror
	FigureDir     string `yaml:"figureDir"`

	OutlierQuantile float64 `yaml:"outlierQuantile"`
	Interactive     bool    `yaml:"interactive"`

	MetricsAddr string `yaml:"metricsAddr"`
	MetricsFile string `yaml:"metricsFile"`
	Verbose     bool   `yaml:"verbose"`
}

// DefaultConfig returns the values the pipeline was built around.
func DefaultConfig() *Config {
	return &Config{
		ProductSearchURL:  "https://world.openfoodfacts.org/cgi/search.pl",
		PriceURL:          "https://prices.openfoodfacts.org/api/v1/prices",
		Categories:        []string{"bread", "breakfast-cereals", "sweet-snacks"},
		TargetPerCategory: 100,
		PageSize:          100,
		MaxPages:          9,
		Timeout:           30 * time.Second,
		PriceDelay:        500 * time.Millisecond,
		FailureSleep:      2 * time.Second,
		PriceCacheSize:    4096,
		MaxBodySize:       0,
		UserAgent:         "go-food-value/1.0 (+https://github.com/aluiziolira/go-food-value)",
		RawFile:           "data/raw/products_with_prices.csv",
		CleanFile:         "data/processed/clean_products.csv",
		CleanJSONFile:     "data/processed/clean_products.json",
		FigureDir:         "data/processed",
		OutlierQuantile:   0.99,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := validateURL("product search URL", c.ProductSearchURL); err != nil {
		return err
	}
	if err := validateURL("price URL", c.PriceURL); err != nil {
		return err
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("categories cannot be empty")
	}
	for _, category := range c.Categories {
		if category == "" {
			return fmt.Errorf("categories cannot contain an empty name")
		}
	}
	if c.TargetPerCategory <= 0 {
		return fmt.Errorf("target per category must be positive")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.PriceDelay < 0 {
		return fmt.Errorf("price delay cannot be negative")
	}
	if c.FailureSleep < 0 {
		return fmt.Errorf("failure sleep cannot be negative")
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("max body size cannot be negative")
	}
	if c.PriceCacheSize < 0 {
		return fmt.Errorf("price cache size cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.RawFile == "" {
		return fmt.Errorf("raw file cannot be empty")
	}
	if c.CleanFile == "" {
		return fmt.Errorf("clean file cannot be empty")
	}
	if c.CleanJSONFile != "" && c.CleanJSONFile == c.CleanFile {
		return fmt.Errorf("clean JSON file must differ from clean file")
	}
	if c.FigureDir == "" {
		return fmt.Errorf("figure directory cannot be empty")
	}
	if c.OutlierQuantile <= 0 || c.OutlierQuantile > 1 {
		return fmt.Errorf("outlier quantile must be in (0, 1]")
	}

	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
