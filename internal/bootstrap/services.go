package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/target/residence-console/config"
	"github.com/target/residence-console/internal/adapters/restapi"
	"github.com/target/residence-console/internal/data"
	"github.com/target/residence-console/internal/domain/resource"
	"github.com/target/residence-console/internal/observability/statsd"
	"github.com/target/residence-console/internal/ports"
	"github.com/target/residence-console/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Catalog   *resource.Catalog
	API       *restapi.Client
	Auth      *service.AuthService
	Resources *service.ResourceService
	Dashboard *service.DashboardService
	Activity  *service.ActivityService
	Metrics   *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
// DB is nil when the activity log is disabled.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// buildMetrics returns the StatsD client; a failed dial degrades to a no-op client.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// activityRecorder picks the Postgres repo when a DB is present, otherwise the discard recorder.
//
//nolint:ireturn // the console runs with or without a database.
func activityRecorder(db *sql.DB) (ports.ActivityRecorder, bool) {
	if db == nil {
		return data.DiscardActivity{}, false
	}
	return data.NewActivityRepo(db), true
}

// NewServices wires adapters into the console services.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service dependencies are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metricsSink := buildMetrics(logger, cfg.Observability.Metrics)
	catalog := resource.DefaultCatalog().WithPaths(cfg.API.PathOverrides())

	api, err := restapi.NewClient(restapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Catalog: catalog,
		Metrics: metricsSink,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create api client: %w", err)
	}

	auth, err := BuildAuthService(ctx, AuthConfig{
		Auth:        cfg.Auth,
		LoginPath:   cfg.API.LoginPath,
		KeyPrefix:   cfg.Redis.KeyPrefix,
		API:         api,
		RedisClient: deps.RedisClient,
		Metrics:     metricsSink,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	recorder, persisted := activityRecorder(deps.DB)

	return ServiceContainer{
		Catalog: catalog,
		API:     api,
		Auth:    auth,
		Resources: service.NewResourceService(service.ResourceServiceOptions{
			Clients:  api,
			Activity: recorder,
			Metrics:  metricsSink,
			Logger:   logger,
		}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{
			Clients:     api,
			Concurrency: cfg.API.CountConcurrency,
			Logger:      logger,
		}),
		Activity: service.NewActivityService(service.ActivityServiceOptions{
			Recorder: recorder,
			Enabled:  persisted,
		}),
		Metrics: metricsSink,
	}, nil
}

// ServiceOrchestrationConfig contains what RunWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// RunWithShutdown serves HTTP until SIGINT/SIGTERM or a server failure, then drains.
func RunWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if !cfg.Config.Auth.EnforceRoles {
		logger.WarnContext(ctx, "role enforcement is off: signed-in users can open every screen by URL",
			"enable_with", "ACCESS_ENFORCE_ROLES=true")
	}

	handler, err := BuildHTTPHandler(HTTPHandlerConfig{
		Config:      cfg.Config,
		Services:    cfg.Services,
		DB:          cfg.DB,
		RedisClient: cfg.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	server := StartHTTPServer(logger, handler, cfg.Config.HTTP.Addr, errCh)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.InfoContext(ctx, "shutting down", "signal", sig.String())
		return ShutdownHTTPServer(ShutdownConfig{
			Context: ctx,
			Server:  server,
			Timeout: cfg.Config.HTTP.ShutdownTimeout,
			Metrics: cfg.Services.Metrics,
			Logger:  logger,
		})
	case err := <-errCh:
		if stopErr := ShutdownHTTPServer(ShutdownConfig{
			Context: ctx,
			Server:  server,
			Timeout: cfg.Config.HTTP.ShutdownTimeout,
			Metrics: cfg.Services.Metrics,
			Logger:  logger,
		}); stopErr != nil && !errors.Is(stopErr, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "graceful stop failed", "error", stopErr)
		}
		return err
	}
}
