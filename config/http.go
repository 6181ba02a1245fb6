package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CookieSecure forces the Secure cookie attribute (set it behind a TLS-terminating proxy).
	CookieSecure bool `env:"APP_COOKIE_SECURE" envDefault:"false"`

	// CompressionEnabled enables gzip compression for text-based responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	// Clamp compression level to valid gzip range (1-9)
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
	h.CookieDomain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h.CookieDomain), "."))
}

// Validate rejects a cookie domain that is a public suffix (e.g. "co.uk"):
// browsers drop such cookies and no session would ever stick.
func (h *HTTPConfig) Validate() error {
	if h.CookieDomain == "" || !strings.Contains(h.CookieDomain, ".") {
		return nil
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(h.CookieDomain); err != nil {
		return fmt.Errorf("APP_COOKIE_DOMAIN %q: %w", h.CookieDomain, err)
	}
	return nil
}
