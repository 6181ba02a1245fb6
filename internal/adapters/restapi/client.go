package restapi

// Package restapi is the outbound client for the residence REST API: generic CRUD over
// every resource collection plus the credential login endpoint.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/target/residence-console/internal/domain/resource"
	"github.com/target/residence-console/internal/observability/metrics"
	"github.com/target/residence-console/internal/observability/statsd"
	"github.com/target/residence-console/internal/ports"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
	maxListBody    = 32 << 20
)

// Config configures the REST API client.
type Config struct {
	BaseURL string
	// Timeout bounds every request; defaults to 15s.
	Timeout time.Duration
	// HTTPClient overrides the transport; its Transport is wrapped for tracing.
	HTTPClient *http.Client
	// Catalog, when set, has its column expressions compiled eagerly.
	Catalog *resource.Catalog
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// Client talks to the REST API. It is safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
	hc      *http.Client
	metrics statsd.Sink
	logger  *slog.Logger

	mappers sync.Map // resource key -> *Mapper
}

var _ ports.ResourceClientFactory = (*Client)(nil)

// NewClient validates the config and compiles catalog mappers.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api base url is required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("api base url must be http(s): %q", base)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		*hc = *cfg.HTTPClient
	}
	transport := hc.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	hc.Transport = otelhttp.NewTransport(transport)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL: base,
		timeout: timeout,
		hc:      hc,
		metrics: cfg.Metrics,
		logger:  logger.With("component", "restapi"),
	}

	if cfg.Catalog != nil {
		for _, def := range cfg.Catalog.All() {
			m, err := NewMapper(def)
			if err != nil {
				return nil, err
			}
			c.mappers.Store(def.Key, m)
		}
	}
	return c, nil
}

// For returns the CRUD client for one resource definition.
func (c *Client) For(def resource.Definition) ports.ResourceClient {
	rc := &ResourceClient{c: c, def: def}
	if m, ok := c.mappers.Load(def.Key); ok {
		rc.mapper, _ = m.(*Mapper)
		return rc
	}
	m, err := NewMapper(def)
	if err != nil {
		rc.mapperErr = err
		return rc
	}
	c.mappers.Store(def.Key, m)
	rc.mapper = m
	return rc
}

// statusError is a non-2xx response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return http.StatusText(e.code)
	}
	return fmt.Sprintf("%s: %s", http.StatusText(e.code), e.body)
}

// StatusCode exposes the upstream status for error classification.
func (e *statusError) StatusCode() int { return e.code }

// call describes one request; out may be nil.
type call struct {
	resource string
	op       Op
	method   string
	path     string
	body     any
	out      any
}

// do sends a JSON request and decodes a JSON response. It returns the HTTP status when one was received.
func (c *Client) do(ctx context.Context, in call) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	status, err := c.roundTrip(ctx, in)
	metrics.EmitAPICall(c.metrics, metrics.APICall{
		Resource: in.resource,
		Op:       string(in.op),
		Status:   status,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "api request failed",
			"resource", in.resource,
			"op", in.op,
			"method", in.method,
			"path", in.path,
			"status", status,
			"error", err,
		)
	}
	return status, err
}

func (c *Client) roundTrip(ctx context.Context, in call) (int, error) {
	var reader io.Reader
	if in.body != nil {
		buf, err := json.Marshal(in.body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, c.baseURL+in.path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(snippet))}
	}

	if in.out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, nil
	}
	if err := decodeJSON(io.LimitReader(resp.Body, maxListBody), in.out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// decodeJSON keeps numbers as json.Number so large ids survive untouched.
func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}
