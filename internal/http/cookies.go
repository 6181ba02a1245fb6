package httpx

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	sessionCookieName       = "session_id"
	postLoginRedirectCookie = "post_login_redirect"
	oauthStateCookie        = "oauth_state"
	oauthNonceCookie        = "oauth_nonce"

	// shortLivedCookieAge covers one round trip through the identity provider.
	shortLivedCookieAge = 600
)

// CookieConfig holds attributes shared by every cookie the console sets.
type CookieConfig struct {
	Domain string
	// Secure forces the Secure attribute even when TLS terminates upstream without X-Forwarded-Proto.
	Secure bool
}

func (c CookieConfig) secure(r *http.Request) bool {
	return c.Secure || r.TLS != nil || isForwardedHTTPS(r)
}

// set writes an HttpOnly, SameSite=Lax cookie. maxAge <= 0 is a session cookie.
func (c CookieConfig) set(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clear expires a cookie, mirroring the attributes used when it was set.
func (c CookieConfig) clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// setSession writes the session cookie so it expires with the server-side session.
func (c CookieConfig) setSession(w http.ResponseWriter, r *http.Request, id string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 0
	}
	c.set(w, r, sessionCookieName, id, maxAge)
}

// rememberRedirect stores where the visitor wanted to go before logging in.
func (c CookieConfig) rememberRedirect(w http.ResponseWriter, r *http.Request, target string) {
	target = safeRedirectPath(target)
	if target == "/" {
		return
	}
	c.set(w, r, postLoginRedirectCookie, target, shortLivedCookieAge)
}

// takeRedirect returns the remembered post-login target and clears the cookie.
func (c CookieConfig) takeRedirect(w http.ResponseWriter, r *http.Request) string {
	ck, err := r.Cookie(postLoginRedirectCookie)
	if err != nil {
		return "/"
	}
	c.clear(w, r, postLoginRedirectCookie)
	return safeRedirectPath(ck.Value)
}

// sessionIDFromRequest returns the session cookie value, or "".
func sessionIDFromRequest(r *http.Request) string {
	ck, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}

// isForwardedHTTPS checks X-Forwarded-Proto, which may hold comma-separated values.
func isForwardedHTTPS(r *http.Request) bool {
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// safeRedirectPath ensures the redirect is a same-origin relative path starting with "/".
// Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}

// safeRedirectFromURL reduces an absolute or relative URL to a safe in-app path, or "".
func safeRedirectFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	// Reject scheme-relative or host-only references.
	if u.Host != "" && !u.IsAbs() {
		return ""
	}
	if u.IsAbs() {
		return safeRedirectPath(u.RequestURI())
	}
	return safeRedirectPath(raw)
}
