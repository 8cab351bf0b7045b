package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	posserver "github.com/Apurer/singgah-pos/go"

	"github.com/Apurer/singgah-pos/internal/domains/assistant/adapters/external/gemini"
	assistantobs "github.com/Apurer/singgah-pos/internal/domains/assistant/adapters/observability"
	assistantapp "github.com/Apurer/singgah-pos/internal/domains/assistant/application"
	catalogmemory "github.com/Apurer/singgah-pos/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/singgah-pos/internal/domains/catalog/application"
	orderingevents "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/events"
	orderingmemory "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/memory"
	orderingobs "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/observability"
	orderingpostgres "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/persistence/postgres"
	orderingworkflows "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/workflows"
	orderingapp "github.com/Apurer/singgah-pos/internal/domains/ordering/application"
	orderingports "github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
	platformredis "github.com/Apurer/singgah-pos/internal/platform/cache/redis"
	platformrabbitmq "github.com/Apurer/singgah-pos/internal/platform/messaging/rabbitmq"
	platformobservability "github.com/Apurer/singgah-pos/internal/platform/observability"
	platformpostgres "github.com/Apurer/singgah-pos/internal/platform/postgres"
)

const serviceName = "singgah-pos-api"

// Run boots the POS HTTP API with observability, stores, events and workflows
// wired, and serves until ctx is cancelled.
func Run(ctx context.Context) error {
	LoadDotEnv()
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger
	logger.Info("configuration loaded",
		slog.String("env", cfg.Environment),
		slog.String("tax_rate", cfg.TaxRate.String()),
		slog.Int("order_id_length", cfg.IDLength))

	orderRepo, durable, cleanupRepo := buildOrderRepository(ctx, cfg, logger)
	defer cleanupRepo()
	publisher, cleanupEvents := buildEventPublisher(cfg, logger)
	defer cleanupEvents()

	ids, err := orderingapp.NewRandomIDGenerator(cfg.IDLength)
	if err != nil {
		return err
	}
	orderOpts := []orderingapp.Option{
		orderingapp.WithTaxRate(cfg.TaxRate),
		orderingapp.WithIDGenerator(ids),
		orderingapp.WithEventPublisher(publisher),
		orderingapp.WithLogger(logger),
	}
	switch {
	case !durable:
		logger.Info("checkout runs inline; durable workflows need a shared postgres order store")
	default:
		temporalClient, err := connectTemporalClient(cfg, instruments)
		if err != nil {
			logger.Warn("Temporal workflows unavailable, running inline checkout", slog.String("error", err.Error()))
			break
		}
		defer temporalClient.Close()
		orderOpts = append(orderOpts, orderingapp.WithOrderPlacer(orderingworkflows.NewTemporalCheckoutWorkflows(temporalClient)))
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}
	orderService := orderingobs.New(
		orderingapp.NewService(orderRepo, orderingmemory.NewCartStore(), orderOpts...),
		orderingobs.WithLogger(logger),
		orderingobs.WithTracer(instruments.Tracer("internal.ordering.application")),
		orderingobs.WithMeter(instruments.Meter("internal.ordering.application")),
	)
	catalogService := catalogapp.NewService(catalogmemory.NewDefaultCatalog())

	cache, cleanupCache := platformredis.Connect(ctx, cfg.RedisAddr, serviceName, logger)
	defer cleanupCache()
	advisor := buildAdvisor(cfg, instruments, cache)

	handlers := posserver.ApiHandleFunctions{
		MenuAPI:      posserver.NewMenuAPI(catalogService),
		CartAPI:      posserver.NewCartAPI(orderService, catalogService),
		OrderAPI:     posserver.NewOrderAPI(orderService),
		DashboardAPI: posserver.NewDashboardAPI(orderService),
		AssistantAPI: posserver.NewAssistantAPI(advisor, catalogService, orderService),
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName), corsMiddleware(cfg))
	router := posserver.NewRouterWithGinEngine(engine, handlers)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("POS API listening", slog.String("addr", cfg.Addr()))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("POS API server exited", slog.String("addr", cfg.Addr()), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down POS API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildOrderRepository reports durable=true only for the postgres store, which
// the checkout worker can share.
func buildOrderRepository(ctx context.Context, cfg Config, logger *slog.Logger) (orderingports.Repository, bool, func()) {
	db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return orderingmemory.NewRepository(), false, cleanup
	}
	logger.Info("order repository configured with postgres")
	return orderingpostgres.NewRepository(db), true, cleanup
}

func buildEventPublisher(cfg Config, logger *slog.Logger) (orderingports.EventPublisher, func()) {
	logPublisher := orderingevents.NewLogPublisher(logger)
	broker, cleanup := platformrabbitmq.DialURL(cfg.RabbitMQURL, logger)
	if broker == nil {
		return logPublisher, cleanup
	}
	return orderingevents.Fanout{logPublisher, orderingevents.NewRabbitPublisher(broker)}, cleanup
}

func buildAdvisor(cfg Config, instruments *platformobservability.Instruments, cache *platformredis.Cache) *assistantapp.Service {
	logger := effectiveLogger(instruments)
	opts := []assistantapp.Option{
		assistantapp.WithTimeout(cfg.AssistantTimeout),
		assistantapp.WithLogger(logger),
	}
	if cache != nil {
		opts = append(opts, assistantapp.WithCache(cache, cfg.RecommendationCacheTTL))
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, assistant serves fallback answers only")
		return assistantapp.NewService(nil, opts...)
	}
	generator := assistantobs.New(
		gemini.NewClient(cfg.GeminiAPIKey, gemini.WithModel(cfg.GeminiModel), gemini.WithBaseURL(cfg.GeminiBaseURL)),
		assistantobs.WithLogger(logger),
		assistantobs.WithTracer(instruments.Tracer("internal.assistant.gemini")),
		assistantobs.WithMeter(instruments.Meter("internal.assistant.gemini")),
	)
	return assistantapp.NewService(generator, opts...)
}

func corsMiddleware(cfg Config) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", posserver.RoleHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			corsCfg.AllowOrigins = nil
			corsCfg.AllowAllOrigins = true
			corsCfg.AllowCredentials = false
			break
		}
	}
	return cors.New(corsCfg)
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
