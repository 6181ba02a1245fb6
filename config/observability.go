package config

import (
	"strings"
)

const defaultObservabilityName = "residence_console"

// ObservabilityConfig groups configuration that controls metrics and tracing.
type ObservabilityConfig struct {
	Metrics ObservabilityMetricsConfig
	Tracing ObservabilityTracingConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Tracing.Sanitize()
}

// ObservabilityMetricsConfig controls emission of metrics to external sinks such as StatsD.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"residence_console"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
	if c.Prefix = strings.TrimSpace(c.Prefix); c.Prefix == "" {
		c.Prefix = defaultObservabilityName
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// ObservabilityTracingConfig controls OpenTelemetry span export over OTLP/gRPC.
type ObservabilityTracingConfig struct {
	Enabled     bool   `env:"OBSERVABILITY_TRACING_ENABLED" envDefault:"false"`
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"   envDefault:"localhost:4317"`
	Insecure    bool   `env:"OTEL_EXPORTER_OTLP_INSECURE"   envDefault:"true"`
	ServiceName string `env:"OTEL_SERVICE_NAME"             envDefault:"residence-console"`
}

// Sanitize trims the endpoint and disables tracing when it is empty.
func (c *ObservabilityTracingConfig) Sanitize() {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.Endpoint = strings.TrimPrefix(strings.TrimPrefix(c.Endpoint, "http://"), "https://")
	if c.Endpoint == "" {
		c.Enabled = false
	}
	if c.ServiceName = strings.TrimSpace(c.ServiceName); c.ServiceName == "" {
		c.ServiceName = "residence-console"
	}
}
