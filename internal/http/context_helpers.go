package httpx

import (
	"context"

	domainauth "github.com/target/residence-console/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the user session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// GetSessionFromContext retrieves the session from the request context, or nil.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if s, ok := GetUserSessionFromContext(ctx); ok {
		return s
	}
	return nil
}

// IsLoggedIn reports whether a session was loaded for the request.
func IsLoggedIn(ctx context.Context) bool {
	_, ok := GetUserSessionFromContext(ctx)
	return ok
}

// CurrentRole returns the session role, or RoleGuest when anonymous.
func CurrentRole(ctx context.Context) domainauth.Role {
	if s, ok := GetUserSessionFromContext(ctx); ok {
		return s.Role
	}
	return domainauth.RoleGuest
}
