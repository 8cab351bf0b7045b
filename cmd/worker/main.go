package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/Apurer/singgah-pos/internal/app/api"
	orderingevents "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/events"
	orderingmemory "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/memory"
	orderingobs "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/observability"
	orderingpostgres "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/persistence/postgres"
	orderingapp "github.com/Apurer/singgah-pos/internal/domains/ordering/application"
	orderingports "github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
	orderingactivities "github.com/Apurer/singgah-pos/internal/durable/temporal/activities/ordering"
	checkoutworkflows "github.com/Apurer/singgah-pos/internal/durable/temporal/workflows/checkout"
	platformrabbitmq "github.com/Apurer/singgah-pos/internal/platform/messaging/rabbitmq"
	platformobservability "github.com/Apurer/singgah-pos/internal/platform/observability"
	platformpostgres "github.com/Apurer/singgah-pos/internal/platform/postgres"
)

func main() {
	ctx := context.Background()
	const serviceName = "singgah-pos-worker"
	api.LoadDotEnv()
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	// Orders placed here must be visible to the API, so the worker refuses to run on a private memory store.
	db, cleanupDB := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()
	if db == nil {
		logger.Error("worker requires a reachable POSTGRES_DSN")
		os.Exit(1)
	}
	var publisher orderingports.EventPublisher = orderingevents.NewLogPublisher(logger)
	broker, cleanupBroker := platformrabbitmq.DialURL(cfg.RabbitMQURL, logger)
	defer cleanupBroker()
	if broker != nil {
		publisher = orderingevents.Fanout{publisher, orderingevents.NewRabbitPublisher(broker)}
	}
	ids, err := orderingapp.NewRandomIDGenerator(cfg.IDLength)
	if err != nil {
		logger.Error("invalid order id length", slog.String("error", err.Error()))
		os.Exit(1)
	}
	orderService := orderingobs.New(
		orderingapp.NewService(
			orderingpostgres.NewRepository(db),
			orderingmemory.NewCartStore(),
			orderingapp.WithTaxRate(cfg.TaxRate),
			orderingapp.WithIDGenerator(ids),
			orderingapp.WithEventPublisher(publisher),
			orderingapp.WithLogger(logger),
		),
		orderingobs.WithLogger(logger),
		orderingobs.WithTracer(instruments.Tracer("internal.ordering.application")),
		orderingobs.WithMeter(instruments.Meter("internal.ordering.application")),
	)
	activities := orderingactivities.NewActivities(orderService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, checkoutworkflows.CheckoutTaskQueue, worker.Options{})
	checkoutworkflows.Register(w, activities)

	logger.Info("worker listening", slog.String("taskQueue", checkoutworkflows.CheckoutTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
