package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/target/residence-console/internal/ports"
	"github.com/target/residence-console/internal/service"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgNoConsoleRole      = "Your account does not have access to the console."
	msgLoginFailed        = "Sign in failed. Please try again."
)

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc     AuthService
	Cookies CookieConfig
	// UI renders the login screen again after a failed credentials login.
	UI     *UIHandlers
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles the credentials form.
// POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if !h.Svc.SupportsCredentials() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		h.UI.renderLogin(w, r, loginForm{Email: email, Error: msgInvalidCredentials})
		return
	}

	session, err := h.Svc.LoginWithCredentials(r.Context(), email, password)
	if err != nil {
		msg := msgLoginFailed
		switch {
		case errors.Is(err, ports.ErrInvalidCredentials):
			msg = msgInvalidCredentials
		case errors.Is(err, service.ErrNoConsoleRole):
			msg = msgNoConsoleRole
		default:
			h.logger().ErrorContext(r.Context(), "credentials login failed", "error", err)
		}
		h.UI.renderLogin(w, r, loginForm{Email: email, Error: msg})
		return
	}

	h.Cookies.setSession(w, r, session.ID, session.ExpiresAt)
	redirectAfterPost(w, r, h.Cookies.takeRedirect(w, r))
}

// SSOLogin starts the identity provider redirect flow.
// GET /auth/sso/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) SSOLogin(w http.ResponseWriter, r *http.Request) {
	if !h.Svc.SupportsSSO() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin sso login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("unable to start sign in"),
		})
		return
	}

	h.Cookies.set(w, r, oauthStateCookie, result.State, shortLivedCookieAge)
	h.Cookies.set(w, r, oauthNonceCookie, result.Nonce, shortLivedCookieAge)
	h.Cookies.rememberRedirect(w, r, redirectURI)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	session, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	h.Cookies.clear(w, r, oauthStateCookie)
	h.Cookies.clear(w, r, oauthNonceCookie)
	if err != nil {
		if errors.Is(err, service.ErrNoConsoleRole) {
			h.UI.renderLogin(w, r, loginForm{Error: msgNoConsoleRole})
			return
		}
		h.logger().ErrorContext(r.Context(), "sso login completion failed", "error", err)
		h.UI.renderLogin(w, r, loginForm{Error: msgLoginFailed})
		return
	}

	h.Cookies.setSession(w, r, session.ID, session.ExpiresAt)
	http.Redirect(w, r, h.Cookies.takeRedirect(w, r), http.StatusFound)
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if id := sessionIDFromRequest(r); id != "" {
		if err := h.Svc.Logout(r.Context(), id); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	h.Cookies.clear(w, r, sessionCookieName)

	switch {
	case IsHTMX(r):
		HTMX(w).Redirect("/")
	case isAJAX(r):
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": "/",
		})
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
			"mode":          h.Svc.Mode(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"mode":          h.Svc.Mode(),
		"user": map[string]any{
			"id":         session.UserID,
			"first_name": session.FirstName,
			"last_name":  session.LastName,
			"email":      session.Email,
			"role":       session.Role,
		},
		"expires_at": session.ExpiresAt,
	})
}
