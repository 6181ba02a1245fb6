package httpx

import (
	domainauth "github.com/target/residence-console/internal/domain/auth"
)

// AccessDecision is the outcome of checking a protected navigation.
type AccessDecision int

const (
	// AccessRender lets the screen render.
	AccessRender AccessDecision = iota
	// AccessRedirect sends the visitor to the login screen.
	AccessRedirect
	// AccessDeny renders the access denied page. Only produced when roles are enforced.
	AccessDeny
)

func (d AccessDecision) String() string {
	switch d {
	case AccessRender:
		return "render"
	case AccessRedirect:
		return "redirect"
	case AccessDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// AccessRequest is the input of the gate for one navigation.
type AccessRequest struct {
	LoggedIn     bool
	AllowedRoles domainauth.Roles
	Role         domainauth.Role
	// Enforce turns the allowed roles into a hard check.
	Enforce bool
}

// DecideAccess applies the gate. Anonymous visitors are always redirected.
// A logged-in user renders unless Enforce is set and the role is outside AllowedRoles.
// An empty AllowedRoles admits every logged-in user.
func DecideAccess(in AccessRequest) AccessDecision {
	if !in.LoggedIn {
		return AccessRedirect
	}
	if !in.Enforce || len(in.AllowedRoles) == 0 {
		return AccessRender
	}
	if in.AllowedRoles.Allows(in.Role) {
		return AccessRender
	}
	return AccessDeny
}
