package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/observability/metrics"
	"github.com/target/residence-console/internal/observability/statsd"
	"github.com/target/residence-console/internal/ports"
)

const defaultSessionTTL = 8 * time.Hour

var (
	// ErrNoConsoleRole is returned, when roles are enforced, for an identity outside the console roles.
	ErrNoConsoleRole = errors.New("account has no console role")
	// ErrSessionExpired is returned by GetSession for a session past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrLoginNotSupported is returned when the configured auth mode lacks the requested flow.
	ErrLoginNotSupported = errors.New("login flow not supported by auth mode")
)

// AuthSettings holds non-dependency configuration for AuthService.
type AuthSettings struct {
	// Mode is the auth mode name used for metric tags (api, oidc, mock).
	Mode       string
	SessionTTL time.Duration
	Metrics    statsd.Sink
	// EnforceRoles refuses logins whose role is not admin, manager or submanager.
	// Off, any role gets a session and the gate decides per page.
	EnforceRoles bool
}

// AuthServiceOptions groups dependencies for AuthService.
// Provider drives the SSO redirect flow; Credentials checks email/password.
// Either may be nil depending on the auth mode.
type AuthServiceOptions struct {
	Provider    ports.AuthProvider
	Credentials ports.CredentialAuthenticator
	Sessions    ports.SessionStore
	Roles       ports.RoleMapper
	Settings    AuthSettings
}

// AuthService orchestrates login flows, role resolution and session persistence.
type AuthService struct {
	provider    ports.AuthProvider
	credentials ports.CredentialAuthenticator
	sessions    ports.SessionStore
	roles       ports.RoleMapper
	mode        string
	ttl         time.Duration
	metrics     statsd.Sink
	enforce     bool
	now         func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.Settings.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{
		provider:    opts.Provider,
		credentials: opts.Credentials,
		sessions:    opts.Sessions,
		roles:       opts.Roles,
		mode:        opts.Settings.Mode,
		ttl:         ttl,
		metrics:     opts.Settings.Metrics,
		enforce:     opts.Settings.EnforceRoles,
		now:         time.Now,
	}
}

// SupportsCredentials reports whether the login screen shows the email/password form.
func (s *AuthService) SupportsCredentials() bool { return s.credentials != nil }

// SupportsSSO reports whether the login screen offers the identity provider redirect.
func (s *AuthService) SupportsSSO() bool { return s.provider != nil }

// Mode returns the configured auth mode name.
func (s *AuthService) Mode() string { return s.mode }

// LoginWithCredentials verifies email/password and persists a new session.
func (s *AuthService) LoginWithCredentials(ctx context.Context, email, password string) (*domainauth.Session, error) {
	if s.credentials == nil {
		return nil, ErrLoginNotSupported
	}

	identity, err := s.credentials.Authenticate(ctx, ports.Credentials{
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		if errors.Is(err, ports.ErrInvalidCredentials) {
			metrics.EmitLogin(s.metrics, s.mode, metrics.ResultDenied)
			return nil, err
		}
		metrics.EmitLogin(s.metrics, s.mode, metrics.ResultError)
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return s.startSession(ctx, identity)
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an SSO flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if s.provider == nil {
		return nil, ErrLoginNotSupported
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the code for an identity, maps its groups to a role
// and persists a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*domainauth.Session, error) {
	if s.provider == nil {
		return nil, ErrLoginNotSupported
	}
	switch {
	case input.Code == "":
		return nil, errors.New("authorization code is required")
	case input.State == "":
		return nil, errors.New("state parameter is required")
	case input.Nonce == "":
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		metrics.EmitLogin(s.metrics, s.mode, metrics.ResultError)
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return s.startSession(ctx, identity)
}

func (s *AuthService) startSession(ctx context.Context, identity domainauth.Identity) (*domainauth.Session, error) {
	role := s.resolveRole(identity)
	if s.enforce && !role.Valid() {
		metrics.EmitLogin(s.metrics, s.mode, metrics.ResultDenied)
		return nil, ErrNoConsoleRole
	}

	expires := s.now().Add(s.ttl)
	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Role:      role,
		ExpiresAt: expires,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		metrics.EmitLogin(s.metrics, s.mode, metrics.ResultError)
		return nil, fmt.Errorf("save session: %w", err)
	}
	metrics.EmitLogin(s.metrics, s.mode, metrics.ResultSuccess)
	return &session, nil
}

// resolveRole prefers a role stated by the provider and falls back to group mapping.
// A stated role outside the console set is kept verbatim.
func (s *AuthService) resolveRole(identity domainauth.Identity) domainauth.Role {
	if identity.Role.Valid() {
		return identity.Role
	}
	if s.roles != nil && len(identity.Groups) > 0 {
		if mapped := s.roles.Map(identity.Groups); mapped.Valid() {
			return mapped
		}
	}
	if identity.Role != "" {
		return identity.Role
	}
	return domainauth.RoleGuest
}

// GetSession retrieves a session by ID. An expired session is deleted.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if s.now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
