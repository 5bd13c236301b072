package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	verifierclient "github.com/vendibd/vendi-server/internal/clients/http/verifier"
	catalogmemory "github.com/vendibd/vendi-server/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/vendibd/vendi-server/internal/domains/catalog/application"
	dispatchordersbridge "github.com/vendibd/vendi-server/internal/domains/dispatch/adapters/orders"
	dispatchpostgres "github.com/vendibd/vendi-server/internal/domains/dispatch/adapters/persistence/postgres"
	dispatchapp "github.com/vendibd/vendi-server/internal/domains/dispatch/application"
	orderscatalogbridge "github.com/vendibd/vendi-server/internal/domains/orders/adapters/catalog"
	ordersdispatchbridge "github.com/vendibd/vendi-server/internal/domains/orders/adapters/dispatch"
	ordersobs "github.com/vendibd/vendi-server/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/vendibd/vendi-server/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/vendibd/vendi-server/internal/domains/orders/application"
	platformobservability "github.com/vendibd/vendi-server/internal/platform/observability"
	platformpostgres "github.com/vendibd/vendi-server/internal/platform/postgres"
	settlementactivities "github.com/vendibd/vendi-server/internal/platform/temporal/activities/settlement"
	settlementworkflows "github.com/vendibd/vendi-server/internal/platform/temporal/workflows/settlement"
)

func main() {
	ctx := context.Background()
	const serviceName = "vendi-worker"
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

	// The worker settles orders the API created, so it must share the API's
	// durable store. There is no in-memory fallback here.
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		logger.Error("POSTGRES_DSN not set; the settlement worker needs the shared store")
		os.Exit(1)
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		logger.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	verifier, err := verifierclient.NewClient(envOrDefault("VERIFIER_URL", "http://localhost:9090"))
	if err != nil {
		logger.Error("failed to configure banknote verifier", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ordersRepo := orderspostgres.NewRepository(db)
	dispatchService := dispatchapp.NewService(
		dispatchpostgres.NewRepository(db),
		dispatchordersbridge.NewCaptureSource(ordersRepo),
	)
	catalogService := catalogapp.NewService(catalogmemory.NewRepository())
	orderService := ordersobs.New(
		ordersapp.NewService(
			ordersRepo,
			orderscatalogbridge.NewLookup(catalogService),
			verifier,
			ordersdispatchbridge.NewEnqueuer(dispatchService),
		),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	activities := settlementactivities.NewActivities(orderService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, settlementworkflows.CashSettlementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(settlementworkflows.CashSettlementWorkflow, workflow.RegisterOptions{Name: settlementworkflows.CashSettlementWorkflowName})
	w.RegisterActivityWithOptions(activities.SettleCashImage, activity.RegisterOptions{Name: settlementworkflows.SettleCashImageActivityName})

	logger.Info("worker listening", slog.String("taskQueue", settlementworkflows.CashSettlementTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
