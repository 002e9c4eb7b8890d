package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aluiziolira/go-food-value/analysis"
	"github.com/aluiziolira/go-food-value/config"
	"github.com/aluiziolira/go-food-value/logging"
	"github.com/aluiziolira/go-food-value/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Verbose)

	products, err := pipeline.ReadClean(cfg.CleanFile)
	if err != nil {
		slog.Error("loading clean store", slog.Any("error", err))
		os.Exit(1)
	}

	records, cutoff := analysis.Prepare(products, cfg.OutlierQuantile)
	slog.Debug("trimmed price outliers",
		slog.Int("loaded", len(products)),
		slog.Int("retained", len(records)),
		slog.Float64("cutoff", cutoff),
	)

	if err := analysis.WriteReport(os.Stdout, analysis.Aggregate(records, cutoff)); err != nil {
		slog.Error("writing report", slog.Any("error", err))
		os.Exit(1)
	}
}
