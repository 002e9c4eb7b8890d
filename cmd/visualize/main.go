package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aluiziolira/go-food-value/analysis"
	"github.com/aluiziolira/go-food-value/charts"
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

	if err := run(cfg); err != nil {
		slog.Error("visualization failed", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println("Visualization complete")
}

func run(cfg *config.Config) error {
	products, err := pipeline.ReadClean(cfg.CleanFile)
	if err != nil {
		return err
	}
	records, _ := analysis.Prepare(products, cfg.OutlierQuantile)
	figures := charts.Build(records)

	if !cfg.Interactive {
		paths, err := charts.NewRenderer(cfg.FigureDir).RenderAll(figures)
		for _, path := range paths {
			slog.Info("figure written", slog.String("path", path))
		}
		return err
	}

	dir, err := os.MkdirTemp("", "foodvalue-figures-")
	if err != nil {
		return fmt.Errorf("create temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	paths, err := charts.NewRenderer(dir).RenderAll(figures)
	if err != nil {
		return err
	}
	viewer := &charts.Viewer{Open: charts.OpenFile, In: os.Stdin, Out: os.Stdout}
	return viewer.Show(paths)
}
