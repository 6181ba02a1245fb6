package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/target/residence-console/internal/adapters/restapi"
	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/domain/resource"
	authmocks "github.com/target/residence-console/internal/mocks/auth"
	"github.com/target/residence-console/internal/service"
	"github.com/target/residence-console/internal/testutil"
)

const testCSRFToken = "test-csrf-token"

type harnessOptions struct {
	Enforce         bool
	ActivityEnabled bool
	// CredentialLogin wires the real AuthService against the fake API login endpoint
	// instead of the in-memory session table filled by login().
	CredentialLogin bool
}

// consoleHarness runs the full router against a fake REST API and an in-memory session table.
type consoleHarness struct {
	t        *testing.T
	API      *testutil.FakeAPI
	Catalog  *resource.Catalog
	Activity *authmocks.MemoryActivityRecorder
	Handler  http.Handler

	mu       sync.Mutex
	sessions map[string]*domainauth.Session
}

func newConsoleHarness(t *testing.T, opts harnessOptions) *consoleHarness {
	t.Helper()
	if _, err := os.Stat(TemplatePathFromTest); err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
	}

	catalog := resource.DefaultCatalog()
	var paths []string
	for _, def := range catalog.All() {
		paths = append(paths, def.Path, def.AllPath(), def.CreateEndpoint())
	}

	h := &consoleHarness{
		t:        t,
		API:      testutil.NewFakeAPI(t, paths...),
		Catalog:  catalog,
		Activity: &authmocks.MemoryActivityRecorder{},
		sessions: make(map[string]*domainauth.Session),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api, err := restapi.NewClient(restapi.Config{BaseURL: h.API.URL(), Catalog: catalog, Logger: logger})
	require.NoError(t, err)

	var auth AuthService = &mockAuthService{
		credentials: true,
		getSessionFunc: func(_ context.Context, id string) (*domainauth.Session, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			if s, ok := h.sessions[id]; ok {
				return s, nil
			}
			return nil, service.ErrSessionExpired
		},
	}
	if opts.CredentialLogin {
		auth = service.NewAuthService(service.AuthServiceOptions{
			Credentials: restapi.NewAuthenticator(api, restapi.AuthenticatorOptions{}),
			Sessions:    authmocks.NewMemorySessionStore(),
			Settings:    service.AuthSettings{Mode: "api", EnforceRoles: opts.Enforce},
		})
	}

	handler, err := NewRouter(RouterServices{
		Auth: auth,
		Resources: service.NewResourceService(service.ResourceServiceOptions{
			Clients:  api,
			Activity: h.Activity,
			Logger:   logger,
		}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{Clients: api, Logger: logger}),
		Activity: service.NewActivityService(service.ActivityServiceOptions{
			Recorder: h.Activity,
			Enabled:  opts.ActivityEnabled,
		}),
		Catalog:      catalog,
		EnforceRoles: opts.Enforce,
		TemplateFS:   os.DirFS(TemplatePathFromTest),
		StaticFS:     os.DirFS("../../frontend/static"),
		Logger:       logger,
	})
	require.NoError(t, err)
	h.Handler = handler
	return h
}

// login registers a session for role and returns its id.
func (h *consoleHarness) login(role domainauth.Role) string {
	id := "session-" + string(role)
	h.mu.Lock()
	h.sessions[id] = testSession(id, role)
	h.mu.Unlock()
	return id
}

// sessionFrom returns the session cookie set by a login response.
func sessionFrom(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName && c.MaxAge >= 0 {
			return c.Value
		}
	}
	return ""
}

type harnessRequest struct {
	Method  string
	Target  string
	Form    url.Values
	Session string
	HTMX    bool
	// HXTarget sets Hx-Target; implies HTMX.
	HXTarget string
	// NoCSRF omits the csrf cookie and header.
	NoCSRF bool
}

func (h *consoleHarness) do(req harnessRequest) *httptest.ResponseRecorder {
	h.t.Helper()
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
	}
	r := httptest.NewRequest(method, req.Target, body)
	r.Header.Set("Accept", "text/html")
	if req.Form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if !req.NoCSRF {
		r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
		r.Header.Set(DefaultCSRFHeaderName, testCSRFToken)
	}
	if req.Session != "" {
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: req.Session})
	}
	if req.HTMX || req.HXTarget != "" {
		r.Header.Set("Hx-Request", "true")
	}
	if req.HXTarget != "" {
		r.Header.Set("Hx-Target", req.HXTarget)
	}

	rec := httptest.NewRecorder()
	h.Handler.ServeHTTP(rec, r)
	return rec
}
