package httpx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"regexp"

	residence "github.com/target/residence-console"
	"github.com/target/residence-console/internal/domain/resource"
	"github.com/target/residence-console/internal/observability/statsd"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      AuthService
	Resources ResourcesService
	Dashboard DashboardService
	Activity  ActivityService
	Catalog   *resource.Catalog

	Cookies CookieConfig
	// EnforceRoles turns the role check of console screens from a navbar hint into a 403.
	EnforceRoles bool
	Compression  bool
	// CompressionLevel is the gzip level; 0 uses the gzip default.
	CompressionLevel int
	Metrics          statsd.Sink
	HealthChecks     []HealthCheck

	// TemplateFS and StaticFS override the embedded frontend (tests, dev mode).
	TemplateFS fs.FS
	StaticFS   fs.FS
	IsDev      bool         // Development mode: templates and static files are read from disk
	Logger     *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures the console router with its browser middleware chain.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Auth == nil || services.Resources == nil || services.Catalog == nil {
		return nil, errors.New("auth, resources and catalog are required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templateFS, staticFS, err := frontendFS(services)
	if err != nil {
		return nil, err
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("create template renderer: %w", err)
	}

	ui := &UIHandlers{
		T:         tr,
		Catalog:   services.Catalog,
		Auth:      services.Auth,
		Resources: services.Resources,
		Dashboard: services.Dashboard,
		Activity:  services.Activity,
		Cookies:   services.Cookies,
		IsDev:     services.IsDev,
		Logger:    logger,
	}
	authHandlers := &AuthHandlers{Svc: services.Auth, Cookies: services.Cookies, UI: ui, Logger: logger}
	gate := &Gate{
		Enforce: services.EnforceRoles,
		Cookies: services.Cookies,
		Metrics: services.Metrics,
		Denied:  ui.AccessDenied,
	}

	mux := http.NewServeMux()
	mux.Handle("/", rootHandler(ui))
	mux.Handle("GET /static/", staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))
	health := HealthHandler(services.HealthChecks...)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)

	registerAuthRoutes(mux, authHandlers)
	mux.HandleFunc("GET /signup", ui.Signup)
	mux.HandleFunc("POST /signup", ui.SignupSubmit)
	registerResourceRoutes(mux, ui, gate)
	mux.Handle("GET "+activityRoute, gate.ProtectStrict(activityRoles)(http.HandlerFunc(ui.ActivityLog)))

	var handler http.Handler = mux
	handler = CSRFProtection(CSRFConfig{Cookies: services.Cookies})(handler)
	handler = LoadSession(services.Auth, services.Cookies, logger)(handler)
	handler = BrowserDetection()(handler)
	if services.Compression {
		handler = Compression(CompressionConfig{Level: services.CompressionLevel, Logger: logger})(handler)
	}
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler, nil
}

// rootHandler serves "/" and sends every unknown path back to it.
func rootHandler(ui *UIHandlers) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
			ui.Root(w, r)
			return
		}
		if IsHTMX(r) {
			HTMX(w).Redirect("/")
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("GET /auth/sso/login", h.SSOLogin)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

// registerResourceRoutes mounts the list screen of every catalog definition behind the gate.
func registerResourceRoutes(mux *http.ServeMux, h *UIHandlers, gate *Gate) {
	for _, def := range h.Catalog.All() {
		protect := gate.Protect(def.AllowedRoles)
		mux.Handle("GET "+def.Route, protect(h.ResourceList(def)))
		mux.Handle("POST "+def.Route, protect(h.ResourceSubmit(def)))
		mux.Handle("GET "+def.Route+"/{id}/delete", protect(h.ResourceDeleteConfirm(def)))
		mux.Handle("POST "+def.Route+"/{id}/delete", protect(h.ResourceDelete(def)))
	}
}

// frontendFS picks the template and static filesystems: explicit overrides, the working
// tree in dev mode, or the embedded copy.
func frontendFS(services RouterServices) (fs.FS, fs.FS, error) {
	templateFS, staticFS := services.TemplateFS, services.StaticFS
	if services.IsDev {
		if templateFS == nil {
			templateFS = os.DirFS(TemplatePathFromRoot)
		}
		if staticFS == nil {
			staticFS = os.DirFS("frontend/static")
		}
	}

	var err error
	if templateFS == nil {
		templateFS, err = fs.Sub(residence.TemplateFS, "frontend/templates")
		if err != nil {
			return nil, nil, fmt.Errorf("template filesystem: %w", err)
		}
	}
	if staticFS == nil {
		staticFS, err = fs.Sub(residence.StaticFS, "frontend/static")
		if err != nil {
			return nil, nil, fmt.Errorf("static filesystem: %w", err)
		}
	}
	return templateFS, staticFS, nil
}

//nolint:gochecknoglobals // compiled once
var versionedAssetPattern = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if versionedAssetPattern.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}
