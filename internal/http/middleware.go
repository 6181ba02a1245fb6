package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/observability/metrics"
	"github.com/target/residence-console/internal/observability/statsd"
	"github.com/target/residence-console/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.LogAttrs(r.Context(), slog.LevelInfo, "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
				slog.Bool("htmx", IsHTMX(r)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics, logs them and answers 500.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// browserRequestKey is an unexported context key type for browser request detection.
type browserRequestKey struct{}

// BrowserDetection records whether the request comes from a browser so downstream
// handlers can choose between HTML and JSON responses.
func BrowserDetection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowserRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsBrowserRequest returns true if the current request is from a browser.
func IsBrowserRequest(r *http.Request) bool {
	if isBrowser, ok := r.Context().Value(browserRequestKey{}).(bool); ok {
		return isBrowser
	}
	return isBrowserRequest(r)
}

// isBrowserRequest treats htmx requests, requests accepting text/html and requests
// without an Accept header as browser traffic. Static assets never are.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/static/") {
		return false
	}
	if IsHTMX(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html")
}

// SessionReader loads a session by id.
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

// LoadSession puts the caller's session in the request context when the cookie names a
// live session. An expired or unknown session clears the cookie and continues anonymously.
func LoadSession(sessions SessionReader, cookies CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessionIDFromRequest(r)
			if id == "" || sessions == nil {
				next.ServeHTTP(w, r)
				return
			}
			session, err := sessions.GetSession(r.Context(), id)
			if err != nil {
				if !errors.Is(err, service.ErrSessionExpired) {
					logger.DebugContext(r.Context(), "session lookup failed", "error", err)
				}
				cookies.clear(w, r, sessionCookieName)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
		})
	}
}

// Gate protects console screens. Enforce mirrors ACCESS_ENFORCE_ROLES.
type Gate struct {
	Enforce bool
	Cookies CookieConfig
	Metrics statsd.Sink
	// Denied renders the access denied page for browser requests.
	Denied http.HandlerFunc
}

// Protect gates a screen with the configured enforcement.
func (g *Gate) Protect(allowed domainauth.Roles) func(http.Handler) http.Handler {
	return g.protect(allowed, g.Enforce)
}

// ProtectStrict gates a screen with roles always enforced.
func (g *Gate) ProtectStrict(allowed domainauth.Roles) func(http.Handler) http.Handler {
	return g.protect(allowed, true)
}

func (g *Gate) protect(allowed domainauth.Roles, enforce bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSessionFromContext(r.Context())
			decision := DecideAccess(AccessRequest{
				LoggedIn:     session != nil,
				AllowedRoles: allowed,
				Role:         CurrentRole(r.Context()),
				Enforce:      enforce,
			})

			switch decision {
			case AccessRender:
				next.ServeHTTP(w, r)
			case AccessRedirect:
				if IsBrowserRequest(r) {
					redirectToLogin(w, r, g.Cookies)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
			case AccessDeny:
				metrics.EmitAccessDenied(g.Metrics, r.URL.Path, string(session.Role))
				if IsBrowserRequest(r) && g.Denied != nil {
					g.Denied(w, r)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
			}
		})
	}
}

// redirectToLogin sends a browser to the login screen at "/" and remembers the target.
// htmx requests get HX-Redirect so the whole page navigates instead of swapping a fragment.
func redirectToLogin(w http.ResponseWriter, r *http.Request, cookies CookieConfig) {
	cookies.rememberRedirect(w, r, redirectPathForRequest(r))

	if IsHTMX(r) {
		SetHXRedirect(w, "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func redirectPathForRequest(r *http.Request) string {
	if IsHTMX(r) {
		if current := safeRedirectFromURL(r.Header.Get("Hx-Current-Url")); current != "" {
			return current
		}
		if referer := safeRedirectFromURL(r.Header.Get("Referer")); referer != "" {
			return referer
		}
	}
	if r.Method != http.MethodGet {
		return "/"
	}
	return safeRedirectPath(r.URL.RequestURI())
}
