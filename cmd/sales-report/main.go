package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Apurer/singgah-pos/internal/app/api"
	orderhttpmapper "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/http/mapper"
	orderingmemory "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/memory"
	orderingpostgres "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/persistence/postgres"
	orderingapp "github.com/Apurer/singgah-pos/internal/domains/ordering/application"
	platformobservability "github.com/Apurer/singgah-pos/internal/platform/observability"
	platformpostgres "github.com/Apurer/singgah-pos/internal/platform/postgres"
)

const defaultRecentOrders = 5

// sales-report prints the admin dashboard for the orders stored in POSTGRES_DSN as JSON.
// Logs go to stderr so stdout carries only the report.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	api.LoadDotEnv()
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := platformobservability.NewLogger(os.Stderr).With(slog.String("service", "singgah-pos-sales-report"))

	db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		logger.Error("sales report requires a reachable POSTGRES_DSN")
		os.Exit(1)
	}

	service := orderingapp.NewService(
		orderingpostgres.NewRepository(db),
		orderingmemory.NewCartStore(),
		orderingapp.WithTaxRate(cfg.TaxRate),
		orderingapp.WithLogger(logger),
	)
	recent := recentFromEnv()
	dash, err := service.Dashboard(ctx, recent)
	if err != nil {
		logger.Error("failed to build sales report", slog.String("error", err.Error()))
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(orderhttpmapper.FromDashboard(dash)); err != nil {
		logger.Error("failed to write sales report", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("sales report written", slog.Int("orders", dash.OrderCount), slog.Int("recent", recent))
}

func recentFromEnv() int {
	raw := strings.TrimSpace(os.Getenv("SALES_REPORT_RECENT"))
	if raw == "" {
		return defaultRecentOrders
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultRecentOrders
	}
	return n
}
