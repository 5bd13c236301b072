package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	vendiserver "github.com/vendibd/vendi-server/go"

	verifierclient "github.com/vendibd/vendi-server/internal/clients/http/verifier"
	catalogmemory "github.com/vendibd/vendi-server/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/vendibd/vendi-server/internal/domains/catalog/application"
	catalogports "github.com/vendibd/vendi-server/internal/domains/catalog/ports"
	dispatchmemory "github.com/vendibd/vendi-server/internal/domains/dispatch/adapters/memory"
	dispatchobs "github.com/vendibd/vendi-server/internal/domains/dispatch/adapters/observability"
	dispatchordersbridge "github.com/vendibd/vendi-server/internal/domains/dispatch/adapters/orders"
	dispatchpostgres "github.com/vendibd/vendi-server/internal/domains/dispatch/adapters/persistence/postgres"
	dispatchapp "github.com/vendibd/vendi-server/internal/domains/dispatch/application"
	dispatchports "github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
	orderscatalogbridge "github.com/vendibd/vendi-server/internal/domains/orders/adapters/catalog"
	ordersdispatchbridge "github.com/vendibd/vendi-server/internal/domains/orders/adapters/dispatch"
	ordersmemory "github.com/vendibd/vendi-server/internal/domains/orders/adapters/memory"
	ordersobs "github.com/vendibd/vendi-server/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/vendibd/vendi-server/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/vendibd/vendi-server/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/vendibd/vendi-server/internal/domains/orders/application"
	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
	platformmigrations "github.com/vendibd/vendi-server/internal/platform/migrations"
	platformobservability "github.com/vendibd/vendi-server/internal/platform/observability"
	platformpostgres "github.com/vendibd/vendi-server/internal/platform/postgres"
)

// Run boots the vending coordination HTTP API with observability, repositories,
// and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "vendi-api"
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

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	stores, cleanupStores, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupStores()

	catalogService, err := buildCatalogService(cfg, logger)
	if err != nil {
		return err
	}

	verifier, err := buildVerifier(cfg)
	if err != nil {
		return err
	}

	captureSource := dispatchordersbridge.NewCaptureSource(stores.orders)
	coreDispatchService := dispatchapp.NewService(stores.commands, captureSource)
	dispatchService := dispatchobs.New(
		coreDispatchService,
		dispatchobs.WithLogger(logger),
		dispatchobs.WithTracer(instruments.Tracer("internal.dispatch.application")),
		dispatchobs.WithMeter(instruments.Meter("internal.dispatch.application")),
	)

	coreOrderService := ordersapp.NewService(
		stores.orders,
		orderscatalogbridge.NewLookup(catalogService),
		verifier,
		ordersdispatchbridge.NewEnqueuer(dispatchService),
	)
	orderService := ordersobs.New(
		coreOrderService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	var settlement ordersports.SettlementOrchestrator = ordersworkflows.NewInlineSettlement(orderService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, settling cash inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		settlement = ordersworkflows.NewTemporalSettlement(temporalClient)
		logger.Info("Temporal cash settlement enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := vendiserver.ApiHandleFunctions{
		OrderAPI:   vendiserver.NewOrderAPI(orderService, settlement),
		DeviceAPI:  vendiserver.NewDeviceAPI(dispatchService),
		ProductAPI: vendiserver.NewProductAPI(catalogService),
	}

	router := vendiserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))
	router.GET("/healthz", healthHandler(stores.db))

	addr := ":" + cfg.Port
	logger.Info("vending coordination API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// stores groups the per-context repositories sharing one backing store.
type stores struct {
	orders   ordersports.Repository
	commands dispatchports.Repository
	db       *gorm.DB
}

// buildStores wires postgres when a DSN is configured and falls back to memory
// only when no DSN is set at all. A configured but unreachable store is fatal:
// the process must not serve traffic against a half-initialized backend.
func buildStores(ctx context.Context, cfg Config, logger *slog.Logger) (stores, func(), error) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, using in-memory repositories (orders do not survive restarts)")
		return stores{
			orders:   ordersmemory.NewRepository(),
			commands: dispatchmemory.NewRepository(),
		}, func() {}, nil
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return stores{}, nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := platformmigrations.Run(db); err != nil {
		return stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return stores{}, nil, fmt.Errorf("failed to unwrap postgres connection: %w", err)
	}
	logger.Info("repositories configured with postgres")
	return stores{
		orders:   orderspostgres.NewRepository(db),
		commands: dispatchpostgres.NewRepository(db),
		db:       db,
	}, func() { _ = sqlDB.Close() }, nil
}

func buildCatalogService(cfg Config, logger *slog.Logger) (catalogports.Service, error) {
	if cfg.CatalogFile == "" {
		logger.Info("CATALOG_FILE not set, serving the built-in product catalog")
		return catalogapp.NewService(catalogmemory.NewRepository()), nil
	}
	repo, err := catalogmemory.NewRepositoryFromFile(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("product catalog loaded", slog.String("file", cfg.CatalogFile))
	return catalogapp.NewService(repo), nil
}

func buildVerifier(cfg Config) (ordersports.BanknoteVerifier, error) {
	opts := []verifierclient.Option{}
	if cfg.VerifierTimeout > 0 {
		opts = append(opts, verifierclient.WithTimeout(cfg.VerifierTimeout))
	}
	verifier, err := verifierclient.NewClient(cfg.VerifierURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure banknote verifier: %w", err)
	}
	return verifier, nil
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
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
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
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
