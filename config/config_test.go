package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty categories",
			mutate: func(cfg *Config) {
				cfg.Categories = nil
			},
			wantErr: "categories",
		},
		{
			name: "blank category",
			mutate: func(cfg *Config) {
				cfg.Categories = []string{"bread", ""}
			},
			wantErr: "categories",
		},
		{
			name: "zero max pages",
			mutate: func(cfg *Config) {
				cfg.MaxPages = 0
			},
			wantErr: "max pages",
		},
		{
			name: "zero target",
			mutate: func(cfg *Config) {
				cfg.TargetPerCategory = 0
			},
			wantErr: "target per category",
		},
		{
			name: "empty search url",
			mutate: func(cfg *Config) {
				cfg.ProductSearchURL = ""
			},
			wantErr: "product search URL",
		},
		{
			name: "price url without host",
			mutate: func(cfg *Config) {
				cfg.PriceURL = "http://"
			},
			wantErr: "price URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative price delay",
			mutate: func(cfg *Config) {
				cfg.PriceDelay = -time.Millisecond
			},
			wantErr: "price delay",
		},
		{
			name: "quantile out of range",
			mutate: func(cfg *Config) {
				cfg.OutlierQuantile = 1.5
			},
			wantErr: "outlier quantile",
		},
		{
			name: "json mirror collides with csv",
			mutate: func(cfg *Config) {
				cfg.CleanJSONFile = cfg.CleanFile
			},
			wantErr: "clean JSON file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.MaxPages != 9 || cfg.PageSize != 100 || cfg.TargetPerCategory != 100 {
		t.Fatalf("unexpected collection defaults: pages=%d size=%d target=%d", cfg.MaxPages, cfg.PageSize, cfg.TargetPerCategory)
	}
}

func TestLoadMergesFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodvalue.yaml")
	body := "categories: [bread]\ntargetPerCategory: 5\npriceDelay: 10ms\nrawFile: /tmp/raw.csv\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(verboseEnv, "true")
	t.Setenv(metricsFileEnv, "  /tmp/collect.prom ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0] != "bread" {
		t.Fatalf("categories = %v, want [bread]", cfg.Categories)
	}
	if cfg.TargetPerCategory != 5 {
		t.Fatalf("target = %d, want 5", cfg.TargetPerCategory)
	}
	if cfg.PriceDelay != 10*time.Millisecond {
		t.Fatalf("price delay = %v, want 10ms", cfg.PriceDelay)
	}
	if cfg.RawFile != "/tmp/raw.csv" {
		t.Fatalf("raw file = %q", cfg.RawFile)
	}
	if cfg.PageSize != 100 {
		t.Fatalf("page size = %d, want default 100", cfg.PageSize)
	}
	if !cfg.Verbose {
		t.Fatalf("expected verbose from environment")
	}
	if cfg.MetricsFile != "/tmp/collect.prom" {
		t.Fatalf("metrics file = %q", cfg.MetricsFile)
	}
}

func TestLoadRejectsInvalidBool(t *testing.T) {
	t.Setenv(interactiveEnv, "sometimes")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), interactiveEnv) {
		t.Fatalf("expected %s error, got %v", interactiveEnv, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadTargetOverride(t *testing.T) {
	t.Setenv(targetEnv, "25")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetPerCategory != 25 {
		t.Fatalf("target = %d, want 25", cfg.TargetPerCategory)
	}

	t.Setenv(targetEnv, "0")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "target per category") {
		t.Fatalf("expected validation error, got %v", err)
	}

	t.Setenv(targetEnv, "lots")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), targetEnv) {
		t.Fatalf("expected %s error, got %v", targetEnv, err)
	}
}

func TestValidateMaxBodySize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBodySize = -1
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "max body size") {
		t.Fatalf("expected max body size error, got %v", err)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("FOODVALUE_TEST_INT", "42")
	value, ok, err := EnvInt("FOODVALUE_TEST_INT")
	if err != nil || !ok || value != 42 {
		t.Fatalf("EnvInt = %d, %v, %v", value, ok, err)
	}

	t.Setenv("FOODVALUE_TEST_INT", "forty")
	if _, _, err := EnvInt("FOODVALUE_TEST_INT"); err == nil {
		t.Fatalf("expected parse error")
	}
}
