package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/target/residence-console/config"
	httpx "github.com/target/residence-console/internal/http"
	"github.com/target/residence-console/internal/observability/statsd"
)

// HTTPHandlerConfig contains what the console handler is built from.
type HTTPHandlerConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildHTTPHandler assembles the router and wraps it for tracing.
func BuildHTTPHandler(cfg HTTPHandlerConfig) (http.Handler, error) {
	if cfg.Config == nil {
		return nil, errors.New("http handler config missing AppConfig")
	}
	appCfg := cfg.Config
	svc := cfg.Services

	router, err := httpx.NewRouter(httpx.RouterServices{
		Auth:      svc.Auth,
		Resources: svc.Resources,
		Dashboard: svc.Dashboard,
		Activity:  svc.Activity,
		Catalog:   svc.Catalog,
		Cookies: httpx.CookieConfig{
			Domain: appCfg.HTTP.CookieDomain,
			Secure: appCfg.HTTP.CookieSecure,
		},
		EnforceRoles:     appCfg.Auth.EnforceRoles,
		Compression:      appCfg.HTTP.CompressionEnabled,
		CompressionLevel: appCfg.HTTP.CompressionLevel,
		Metrics:          svc.Metrics,
		HealthChecks:     HealthChecks(cfg.RedisClient, cfg.DB),
		IsDev:            appCfg.IsDev,
		Logger:           cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	return otelhttp.NewHandler(router, "residence-console",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz"
		}),
	), nil
}

// HealthChecks returns the readiness probes for the connected infrastructure.
func HealthChecks(redisClient redis.UniversalClient, db *sql.DB) []httpx.HealthCheck {
	var checks []httpx.HealthCheck
	if redisClient != nil {
		checks = append(checks, httpx.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	if db != nil {
		checks = append(checks, httpx.HealthCheck{
			Name:  "database",
			Check: db.PingContext,
		})
	}
	return checks
}

// StartHTTPServer starts serving in the background. A listen failure is sent on errCh.
func StartHTTPServer(logger *slog.Logger, handler http.Handler, addr string, errCh chan<- error) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			if errCh != nil {
				errCh <- fmt.Errorf("http server: %w", err)
			}
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Metrics *statsd.Client
	Logger  *slog.Logger
}

// ShutdownHTTPServer drains in-flight requests, then closes the metrics socket.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	err := cfg.Server.Shutdown(shutdownCtx)
	if cerr := cfg.Metrics.Close(); cerr != nil && cfg.Logger != nil {
		cfg.Logger.WarnContext(ctx, "close metrics client", "error", cerr)
	}
	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "HTTP server stopped")
	}
	return nil
}
