package auth

// Package auth contains domain-level types for authentication, sessions and console roles.
// It is pure and free of framework/adapter concerns.

import (
	"slices"
	"strings"
	"time"
)

// Role represents a console authorization role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleSubmanager Role = "submanager"
	// RoleGuest marks an identity that carries no role at all.
	RoleGuest Role = "guest"
)

// ParseRole normalizes a role string. Roles outside the console set are kept
// as given (lowercased); only an empty value maps to RoleGuest.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RoleGuest
	}
	return r
}

// Valid reports whether r is one of the console roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleSubmanager
}

// Roles is a set of roles allowed to reach a navigation target.
type Roles []Role

// AllRoles is every console role.
var AllRoles = Roles{RoleAdmin, RoleManager, RoleSubmanager}

// Allows reports whether r is a member of the set.
func (rs Roles) Allows(r Role) bool {
	return slices.Contains(rs, r)
}

// Identity represents the authenticated principal returned by a credential check or an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	// Role is set by providers that know the console role directly (REST API login, mock).
	Role Role
	// Groups is set by IdP providers and mapped to a Role by a RoleMapper.
	Groups    []string
	ExpiresAt time.Time
}

// Session is the server-side record persisted for a logged-in browser.
// Its existence is what "logged in" means; ID is an opaque session identifier.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// DisplayName returns "First Last", falling back to email then user id.
func (s Session) DisplayName() string {
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	switch {
	case name != "":
		return name
	case s.Email != "":
		return s.Email
	default:
		return s.UserID
	}
}
