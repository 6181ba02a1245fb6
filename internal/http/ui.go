package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/domain/resource"
	"github.com/target/residence-console/internal/http/ui/viewmodel"
	"github.com/target/residence-console/internal/ports"
	"github.com/target/residence-console/internal/service"
)

// AuthService is the subset of the auth service used by browser routes.
type AuthService interface {
	SupportsCredentials() bool
	SupportsSSO() bool
	Mode() string
	LoginWithCredentials(ctx context.Context, email, password string) (*domainauth.Session, error)
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Session, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// ResourcesService is the data flow behind every list screen.
type ResourcesService interface {
	List(ctx context.Context, def resource.Definition, query string) (*service.ListResult, error)
	Find(ctx context.Context, def resource.Definition, id string) (resource.Record, error)
	Save(
		ctx context.Context,
		actor *domainauth.Session,
		def resource.Definition,
		buf resource.EditBuffer,
	) (ports.ActivityAction, error)
	Delete(ctx context.Context, actor *domainauth.Session, def resource.Definition, id string, confirmed bool) error
	SignUp(ctx context.Context, users resource.Definition, buf resource.EditBuffer) error
}

// DashboardService produces the Home cards.
type DashboardService interface {
	Cards(ctx context.Context, defs []resource.Definition) []service.Card
}

// ActivityService reads the activity log.
type ActivityService interface {
	Enabled() bool
	List(ctx context.Context, resourceKey string, page int) (*service.ActivityPage, error)
}

var (
	_ AuthService      = (*service.AuthService)(nil)
	_ ResourcesService = (*service.ResourceService)(nil)
	_ DashboardService = (*service.DashboardService)(nil)
	_ ActivityService  = (*service.ActivityService)(nil)
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T         *TemplateRenderer
	Catalog   *resource.Catalog
	Auth      AuthService
	Resources ResourcesService
	Dashboard DashboardService
	Activity  ActivityService
	Cookies   CookieConfig
	IsDev     bool // Development mode flag for enhanced error reporting
	Logger    *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// renderPage renders a page with htmx partial support: full layout for navigations,
// title + header + content for htmx swaps.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data any) {
	if !WantsPartial(r) {
		if m, ok := data.(map[string]any); ok {
			if _, hasNav := m["Nav"]; !hasNav {
				m["Nav"] = buildNav(h.Catalog, CurrentRole(r.Context()), r.URL.Path)
			}
		}
		if err := h.T.RenderFull(w, r, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.Path})

	layout := extractLayoutInfo(data)

	// htmx updates document.title from a <title> in the swapped content
	if _, err := w.Write([]byte(`<title>` + html.EscapeString(layout.Title) + `</title>`)); err != nil {
		h.logger().Error("failed to write partial document title", "error", err)
		return
	}
	header := `<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` +
		html.EscapeString(layout.PageTitle) + `</h1>`
	if _, err := w.Write([]byte(header)); err != nil {
		h.logger().Error("failed to write partial header title", "error", err)
		return
	}

	if err := h.T.RenderPartial(w, ContentTemplateFor(layout.CurrentPage), data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
	}
}

// redirectAfterPost finishes a successful form post: HX-Redirect for htmx, 303 otherwise.
func redirectAfterPost(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r) {
		HTMX(w).Redirect(target)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// AccessDenied renders the 403 page shown when role enforcement rejects a screen.
func (h *UIHandlers) AccessDenied(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, PageMeta{
		Title:       "Residence Console - Access denied",
		PageTitle:   "Access denied",
		CurrentPage: PageAccessDenied,
	}).Build()
	w.WriteHeader(http.StatusForbidden)
	h.renderPage(w, r, data)
}

func extractLayoutInfo(data any) viewmodel.Layout {
	switch v := data.(type) {
	case viewmodel.LayoutProvider:
		if l := v.LayoutData(); l != nil {
			return *l
		}
	case viewmodel.Layout:
		return v
	case *viewmodel.Layout:
		if v != nil {
			return *v
		}
	case map[string]any:
		layout := viewmodel.Layout{}
		layout.Title, _ = v["Title"].(string)
		layout.PageTitle, _ = v["PageTitle"].(string)
		layout.CurrentPage, _ = v["CurrentPage"].(string)
		return layout
	}
	return viewmodel.Layout{}
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		body := `<div class="template-error"><h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
			`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
			`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`
		if _, writeErr := w.Write([]byte(body)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
