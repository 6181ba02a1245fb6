package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/domain/resource"
	"github.com/target/residence-console/internal/ports"
)

// DefaultLoginPath is the credential endpoint of the REST API.
const DefaultLoginPath = "/auth/login"

// Authenticator checks email/password against the REST API login endpoint.
type Authenticator struct {
	c          *Client
	path       string
	sessionTTL time.Duration
	now        func() time.Time
}

var _ ports.CredentialAuthenticator = (*Authenticator)(nil)

// AuthenticatorOptions configures an Authenticator.
type AuthenticatorOptions struct {
	LoginPath  string
	SessionTTL time.Duration
}

// NewAuthenticator returns a credential authenticator backed by c.
func NewAuthenticator(c *Client, opts AuthenticatorOptions) *Authenticator {
	path := strings.TrimSpace(opts.LoginPath)
	if path == "" {
		path = DefaultLoginPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Authenticator{c: c, path: path, sessionTTL: ttl, now: time.Now}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID        any    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// Authenticate posts the credentials; 400/401/403/404 mean the pair was rejected.
func (a *Authenticator) Authenticate(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return domainauth.Identity{}, ports.ErrInvalidCredentials
	}

	var out loginResponse
	status, err := a.c.do(ctx, call{
		resource: "auth",
		op:       "login",
		method:   http.MethodPost,
		path:     a.path,
		body:     loginRequest{Email: strings.TrimSpace(creds.Email), Password: creds.Password},
		out:      &out,
	})
	if err != nil {
		switch status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return domainauth.Identity{}, ports.ErrInvalidCredentials
		}
		return domainauth.Identity{}, fmt.Errorf("login request: %w", err)
	}

	email := out.Email
	if email == "" {
		email = strings.TrimSpace(creds.Email)
	}
	userID := resource.FormatValue(out.ID)
	if userID == "" {
		return domainauth.Identity{}, errors.New("login response missing id")
	}

	return domainauth.Identity{
		UserID:    userID,
		FirstName: out.FirstName,
		LastName:  out.LastName,
		Email:     email,
		Role:      domainauth.ParseRole(out.Role),
		ExpiresAt: a.now().Add(a.sessionTTL),
	}, nil
}
