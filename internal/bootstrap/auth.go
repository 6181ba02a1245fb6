package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/residence-console/config"
	"github.com/target/residence-console/internal/adapters/authroles"
	"github.com/target/residence-console/internal/adapters/devauth"
	"github.com/target/residence-console/internal/adapters/oidc"
	redisadapter "github.com/target/residence-console/internal/adapters/redis"
	"github.com/target/residence-console/internal/adapters/restapi"
	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/observability/statsd"
	"github.com/target/residence-console/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	LoginPath   string
	KeyPrefix   string
	API         *restapi.Client
	RedisClient redis.UniversalClient
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// BuildAuthService creates the auth service for the configured auth mode.
// Every mode stores sessions in Redis.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	if cfg.RedisClient == nil {
		return nil, errors.New("auth service requires a redis client")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := service.AuthServiceOptions{
		Sessions: redisadapter.NewSessionStoreWithOptions(cfg.RedisClient, redisadapter.SessionStoreOptions{
			Prefix: cfg.KeyPrefix,
		}),
		Settings: service.AuthSettings{
			Mode:         string(cfg.Auth.Mode),
			SessionTTL:   cfg.Auth.SessionTTL,
			Metrics:      cfg.Metrics,
			EnforceRoles: cfg.Auth.EnforceRoles,
		},
	}

	switch cfg.Auth.Mode {
	case config.AuthModeAPI, "":
		if cfg.API == nil {
			return nil, errors.New("auth mode api requires the REST API client")
		}
		opts.Credentials = restapi.NewAuthenticator(cfg.API, restapi.AuthenticatorOptions{
			LoginPath:  cfg.LoginPath,
			SessionTTL: cfg.Auth.SessionTTL,
		})

	case config.AuthModeMock:
		creds, err := buildMockAuthenticator(cfg.Auth)
		if err != nil {
			return nil, err
		}
		logger.WarnContext(ctx, "mock authentication enabled; do not use in production")
		opts.Credentials = creds

	case config.AuthModeOIDC:
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			Issuer:       cfg.Auth.OIDC.Issuer,
			ClientID:     cfg.Auth.OIDC.ClientID,
			ClientSecret: cfg.Auth.OIDC.ClientSecret,
			RedirectURL:  cfg.Auth.OIDC.RedirectURL,
			Scopes:       cfg.Auth.OIDC.Scopes,
			GroupsClaim:  cfg.Auth.OIDC.GroupsClaim,
		})
		if err != nil {
			return nil, fmt.Errorf("create oidc provider: %w", err)
		}
		opts.Provider = prov
		opts.Roles = roleMapper(cfg.Auth.OIDC)

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}

	logger.InfoContext(ctx, "auth configured", "mode", cfg.Auth.Mode, "session_ttl", cfg.Auth.SessionTTL.String())
	return service.NewAuthService(opts), nil
}

func buildMockAuthenticator(cfg config.AuthConfig) (*devauth.Authenticator, error) {
	a, err := devauth.NewAuthenticator(devauth.Config{
		DefaultRole:     domainauth.Role(cfg.Mock.Role),
		Password:        cfg.Mock.Password,
		SessionDuration: cfg.SessionTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("create mock authenticator: %w", err)
	}
	return a, nil
}

func roleMapper(cfg config.OIDCConfig) authroles.StaticRoleMapper {
	return authroles.StaticRoleMapper{
		AdminGroups:      cfg.AdminGroups,
		ManagerGroups:    cfg.ManagerGroups,
		SubmanagerGroups: cfg.SubmanagerGroups,
	}
}
