package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-food-value/collector"
	"github.com/aluiziolira/go-food-value/config"
	"github.com/aluiziolira/go-food-value/logging"
	"github.com/aluiziolira/go-food-value/models"
	"github.com/aluiziolira/go-food-value/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Verbose)

	slog.Info("starting collection",
		slog.String("categories", strings.Join(cfg.Categories, ",")),
		slog.Int("target_per_category", cfg.TargetPerCategory),
		slog.Int("max_pages", cfg.MaxPages),
		slog.String("output", cfg.RawFile),
	)

	c, err := collector.NewCollector(cfg)
	if err != nil {
		slog.Error("initialising collector", slog.Any("error", err))
		os.Exit(1)
	}

	out, err := pipeline.NewRawAppender(cfg.RawFile)
	if err != nil {
		slog.Error("creating raw store", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, stopping after the current request")
	}()

	metricsServer := startMetricsServer(cfg.MetricsAddr, c.Metrics)

	result, runErr := c.Run(ctx, out)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}
	if cfg.MetricsFile != "" {
		if err := c.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			slog.Error("writing metrics file", slog.Any("error", err))
		}
	}

	if result != nil {
		printSummary(result, out.Path())
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			slog.Warn("collection interrupted", slog.Int("rows", out.Rows()))
		}
		slog.Error("collection failed", slog.Any("error", runErr))
		os.Exit(1)
	}
}

func startMetricsServer(addr string, metrics *collector.Metrics) *http.Server {
	if addr == "" || metrics == nil {
		return nil
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return server
}

func printSummary(result *models.CollectResult, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Collection complete")

	for _, category := range result.Categories {
		fmt.Printf("  %-18s %d\n", category+":", result.Accepted[category])
	}
	fmt.Printf("  Total rows:    %d\n", result.TotalAccepted())
	fmt.Printf("  Requests:      %d\n", result.RequestCount)
	fmt.Printf("  Pages:         %d\n", result.PageCount)
	fmt.Printf("  Cache hits:    %d\n", result.CacheHits)
	if len(result.Skipped) > 0 {
		fmt.Printf("  Skipped:       %s\n", formatCounts(result.Skipped))
	}
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %s\n", formatCounts(result.ErrorsByType))
	}
	fmt.Printf("  Duration:      %v\n", result.EndTime.Sub(result.StartTime).Round(time.Millisecond))
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}
