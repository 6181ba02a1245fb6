package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/target/residence-console/config"
	"github.com/target/residence-console/internal/bootstrap"
	"github.com/target/residence-console/internal/observability/tracing"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	bootstrap.SetLogLevel(cfg.SlogLevel())

	logStartupInfo(ctx, logger, &cfg)

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.Observability.Tracing.Enabled,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		Insecure:    cfg.Observability.Tracing.Insecure,
		ServiceName: cfg.Observability.Tracing.ServiceName,
		Version:     version,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if serr := shutdownTracing(context.WithoutCancel(ctx)); serr != nil {
			logger.ErrorContext(ctx, "flush traces failed", "error", serr)
		}
	}()

	db, redisClient, err := initInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer closeInfrastructure(ctx, logger, db, redisClient)

	if db != nil {
		if cfg.Postgres.RunMigrationsOnStart {
			if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
				return err
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	services, err := bootstrap.NewServices(ctx, &bootstrap.ServiceDeps{
		Config:      &cfg,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunWithShutdown(ctx, &bootstrap.ServiceOrchestrationConfig{
		Config:      &cfg,
		Services:    services,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting residence console",
		"version", version,
		"addr", cfg.HTTP.Addr,
		"api_base_url", cfg.API.BaseURL,
		"auth_mode", string(cfg.Auth.Mode),
		"enforce_roles", cfg.Auth.EnforceRoles,
		"activity_log", cfg.Postgres.Enabled,
		"dev", cfg.IsDev)
}

// initInfrastructure connects Redis and, when the activity log is enabled, Postgres.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func initInfrastructure(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*sql.DB, redis.UniversalClient, error) {
	infra := bootstrap.InfraConfig{
		Postgres: cfg.Postgres,
		Redis:    cfg.Redis,
		Logger:   logger,
	}

	redisClient, err := bootstrap.ConnectRedis(ctx, infra)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	if !cfg.Postgres.Enabled {
		return nil, redisClient, nil
	}

	db, err := bootstrap.ConnectDB(ctx, infra)
	if err != nil {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis after database connect failure", "error", cerr)
			return nil, nil, fmt.Errorf("connect db: %w", errors.Join(err, fmt.Errorf("close redis: %w", cerr)))
		}
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}
	return db, redisClient, nil
}

func closeInfrastructure(ctx context.Context, logger *slog.Logger, db *sql.DB, redisClient redis.UniversalClient) {
	if db != nil {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}
	if redisClient != nil {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}
}
