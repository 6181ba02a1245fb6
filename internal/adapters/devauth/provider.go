package devauth

// Package devauth provides a config-driven credential authenticator for local development.

import (
	"context"
	"errors"
	"strings"
	"time"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/ports"
)

// Config controls the dev authenticator.
type Config struct {
	// DefaultRole is granted unless the email's local part names a role ("manager@dev.local").
	DefaultRole domainauth.Role
	// Password, when set, must match; otherwise any non-empty password is accepted.
	Password        string
	SessionDuration time.Duration // default 8h when zero
}

// Authenticator implements ports.CredentialAuthenticator without any backend.
type Authenticator struct {
	defaultRole     domainauth.Role
	password        string
	sessionDuration time.Duration
	now             func() time.Time
}

var _ ports.CredentialAuthenticator = (*Authenticator)(nil)

// NewAuthenticator constructs a dev authenticator from Config.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	role := cfg.DefaultRole
	if role == "" {
		role = domainauth.RoleAdmin
	}
	if !role.Valid() {
		return nil, errors.New("dev auth: default role must be admin, manager or submanager")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	return &Authenticator{
		defaultRole:     role,
		password:        cfg.Password,
		sessionDuration: dur,
		now:             time.Now,
	}, nil
}

// Authenticate accepts any well-formed email and returns a local identity.
func (a *Authenticator) Authenticate(_ context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	email := strings.TrimSpace(creds.Email)
	local, _, ok := strings.Cut(email, "@")
	if !ok || local == "" || creds.Password == "" {
		return domainauth.Identity{}, ports.ErrInvalidCredentials
	}
	if a.password != "" && creds.Password != a.password {
		return domainauth.Identity{}, ports.ErrInvalidCredentials
	}

	role := a.defaultRole
	if r := domainauth.ParseRole(local); r.Valid() {
		role = r
	}

	return domainauth.Identity{
		UserID:    email,
		FirstName: titleCase(local),
		Email:     email,
		Role:      role,
		ExpiresAt: a.now().Add(a.sessionDuration),
	}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
