package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/aluiziolira/go-food-value/config"
	"github.com/aluiziolira/go-food-value/logging"
	"github.com/aluiziolira/go-food-value/models"
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
		slog.Error("cleaning failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	rows, err := pipeline.ReadRaw(cfg.RawFile)
	if err != nil {
		return err
	}
	slog.Info("loaded raw store", slog.String("path", cfg.RawFile), slog.Int("rows", len(rows)))

	writer, err := createWriter(cfg.CleanFile, cfg.CleanJSONFile)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}

	result, err := pipeline.NewPipeline(writer).Run(rows)
	if err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	if err := writer.Validate(); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	slog.Info("clean store written",
		slog.Int("rows_read", result.RowsRead),
		slog.Int("rows_written", result.RowsWritten),
	)
	printSummary(result, cfg.CleanFile)
	return nil
}

func createWriter(csvFile, jsonFile string) (pipeline.OutputWriter, error) {
	if jsonFile == "" {
		return pipeline.NewCSVWriter(csvFile)
	}
	return pipeline.NewDualWriter(csvFile, jsonFile)
}

func printSummary(result *models.CleanResult, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Cleaning complete")
	fmt.Printf("  Rows read:     %d\n", result.RowsRead)
	fmt.Printf("  Rows written:  %d\n", result.RowsWritten)
	if len(result.Dropped) > 0 {
		reasons := make([]string, 0, len(result.Dropped))
		for reason := range result.Dropped {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		parts := make([]string, len(reasons))
		for i, reason := range reasons {
			parts[i] = fmt.Sprintf("%s=%d", reason, result.Dropped[reason])
		}
		fmt.Printf("  Dropped:       %s\n", strings.Join(parts, " "))
	}
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}
