package ports

// Package ports defines interfaces (hexagonal ports) for the console's outward dependencies.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/target/residence-console/internal/domain/auth"
)

// ErrInvalidCredentials is returned by a CredentialAuthenticator when the email/password pair is rejected.
var ErrInvalidCredentials = errors.New("invalid credentials")

// BeginInput carries inputs for initiating a redirect-based auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes a redirect-based authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// Credentials is an email/password pair submitted on the login screen.
type Credentials struct {
	Email    string
	Password string
}

// CredentialAuthenticator verifies credentials and returns the identity with its console role.
type CredentialAuthenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (domainauth.Identity, error)
}

// SessionStore persists and retrieves browser sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to console roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
