package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeAPI checks email and password against the REST API login endpoint.
	AuthModeAPI AuthMode = "api"
	// AuthModeOIDC uses an OpenID Connect provider for single sign-on.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock accepts any credentials (for development only).
	AuthModeMock AuthMode = "mock"
)

const defaultSessionTTL = 8 * time.Hour

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "api", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: api, oidc, mock)", v)
	}
}

// OIDCConfig contains OpenID Connect configuration (AUTH_MODE=oidc).
type OIDCConfig struct {
	Issuer       string   `env:"ISSUER"`
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	RedirectURL  string   `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scopes       []string `env:"SCOPES"        envDefault:"openid profile email" envSeparator:" "`
	GroupsClaim  string   `env:"GROUPS_CLAIM"  envDefault:"groups"`

	// Group names granting each console role. Multiple groups are separated by ';'.
	AdminGroups      []string `env:"ADMIN_GROUP"      envSeparator:";"`
	ManagerGroups    []string `env:"MANAGER_GROUP"    envSeparator:";"`
	SubmanagerGroups []string `env:"SUBMANAGER_GROUP" envSeparator:";"`
}

// MockAuthConfig controls mock authentication (AUTH_MODE=mock).
type MockAuthConfig struct {
	// Role is granted unless the email's local part names a role.
	Role string `env:"ROLE" envDefault:"admin"`
	// Password, when set, is required for every mock login.
	Password string `env:"PASSWORD"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which login flow the console offers.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"api"`

	// SessionTTL is how long a console session stays valid after login.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`

	// EnforceRoles turns role mismatches on protected screens into 403 responses.
	// Off by default: logged-in users reach every screen and only the navbar is filtered.
	EnforceRoles bool `env:"ACCESS_ENFORCE_ROLES" envDefault:"false"`

	OIDC OIDCConfig     `envPrefix:"OIDC_"`
	Mock MockAuthConfig `envPrefix:"MOCK_AUTH_"`
}

// Sanitize normalises auth values.
func (a *AuthConfig) Sanitize() {
	if a.Mode == "" {
		a.Mode = AuthModeAPI
	}
	if a.SessionTTL <= 0 {
		a.SessionTTL = defaultSessionTTL
	}
	a.OIDC.Issuer = strings.TrimSpace(a.OIDC.Issuer)
	a.OIDC.AdminGroups = trimAll(a.OIDC.AdminGroups)
	a.OIDC.ManagerGroups = trimAll(a.OIDC.ManagerGroups)
	a.OIDC.SubmanagerGroups = trimAll(a.OIDC.SubmanagerGroups)
	a.Mock.Role = strings.ToLower(strings.TrimSpace(a.Mock.Role))
}

// Validate checks that the selected mode has what it needs.
func (a *AuthConfig) Validate() error {
	if a.Mode != AuthModeOIDC {
		return nil
	}
	var missing []string
	if a.OIDC.Issuer == "" {
		missing = append(missing, "OIDC_ISSUER")
	}
	if a.OIDC.ClientID == "" {
		missing = append(missing, "OIDC_CLIENT_ID")
	}
	if a.OIDC.ClientSecret == "" {
		missing = append(missing, "OIDC_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("auth mode oidc requires %s", strings.Join(missing, ", "))
	}
	if len(a.OIDC.AdminGroups)+len(a.OIDC.ManagerGroups)+len(a.OIDC.SubmanagerGroups) == 0 {
		return errors.New("auth mode oidc requires at least one of OIDC_ADMIN_GROUP, OIDC_MANAGER_GROUP, OIDC_SUBMANAGER_GROUP")
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
