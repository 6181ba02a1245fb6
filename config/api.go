package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/target/residence-console/internal/domain/resource"
)

// APIConfig points the console at the REST API that owns all records.
type APIConfig struct {
	BaseURL   string        `env:"BASE_URL,required"`
	Timeout   time.Duration `env:"TIMEOUT"    envDefault:"15s"`
	LoginPath string        `env:"LOGIN_PATH" envDefault:"/auth/login"`

	// CountConcurrency bounds the parallel count fetches behind the Home cards.
	CountConcurrency int `env:"COUNT_CONCURRENCY" envDefault:"4"`

	// Collection path overrides. Empty keeps the catalog default.
	UsersPath         string `env:"USERS_PATH"`
	LeasesPath        string `env:"LEASES_PATH"`
	MaintenancePath   string `env:"MAINTENANCE_PATH"`
	ResidencesPath    string `env:"RESIDENCES_PATH"`
	UnitsPath         string `env:"UNITS_PATH"`
	EventsPath        string `env:"EVENTS_PATH"`
	TransactionsPath  string `env:"TRANSACTIONS_PATH"`
	NotificationsPath string `env:"NOTIFICATIONS_PATH"`
}

// Sanitize trims the base URL and clamps numeric values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if a.Timeout <= 0 {
		a.Timeout = 15 * time.Second
	}
	if a.CountConcurrency < 1 {
		a.CountConcurrency = 1
	}
}

// Validate checks that BaseURL is an absolute http(s) URL.
func (a *APIConfig) Validate() error {
	if a.BaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", a.BaseURL)
	}
	return nil
}

// PathOverrides returns the configured collection paths keyed by resource key.
func (a *APIConfig) PathOverrides() map[string]string {
	return map[string]string{
		resource.Users:         a.UsersPath,
		resource.Leases:        a.LeasesPath,
		resource.Maintenance:   a.MaintenancePath,
		resource.Residences:    a.ResidencesPath,
		resource.Units:         a.UnitsPath,
		resource.Events:        a.EventsPath,
		resource.Transactions:  a.TransactionsPath,
		resource.Notifications: a.NotificationsPath,
	}
}
