package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/residence-console/internal/domain/auth"
)

func TestDecideAccess_AnonymousAlwaysRedirects(t *testing.T) {
	roleSets := []domainauth.Roles{
		nil,
		{domainauth.RoleAdmin},
		{domainauth.RoleAdmin, domainauth.RoleManager},
		domainauth.AllRoles,
	}
	roles := []domainauth.Role{
		domainauth.RoleGuest,
		domainauth.RoleAdmin,
		domainauth.RoleManager,
		domainauth.RoleSubmanager,
	}

	for _, allowed := range roleSets {
		for _, role := range roles {
			for _, enforce := range []bool{false, true} {
				got := DecideAccess(AccessRequest{
					LoggedIn:     false,
					AllowedRoles: allowed,
					Role:         role,
					Enforce:      enforce,
				})
				assert.Equal(t, AccessRedirect, got, "allowed=%v role=%s enforce=%v", allowed, role, enforce)
			}
		}
	}
}

func TestDecideAccess_LoggedIn(t *testing.T) {
	adminOnly := domainauth.Roles{domainauth.RoleAdmin}

	tests := []struct {
		name    string
		allowed domainauth.Roles
		role    domainauth.Role
		enforce bool
		want    AccessDecision
	}{
		{name: "loose manager on admin route renders", allowed: adminOnly, role: domainauth.RoleManager, want: AccessRender},
		{name: "loose submanager on admin route renders", allowed: adminOnly, role: domainauth.RoleSubmanager, want: AccessRender},
		{name: "enforced manager on admin route denied", allowed: adminOnly, role: domainauth.RoleManager, enforce: true, want: AccessDeny},
		{name: "enforced admin on admin route renders", allowed: adminOnly, role: domainauth.RoleAdmin, enforce: true, want: AccessRender},
		{name: "enforced empty set renders", allowed: nil, role: domainauth.RoleSubmanager, enforce: true, want: AccessRender},
		{name: "enforced all roles renders", allowed: domainauth.AllRoles, role: domainauth.RoleSubmanager, enforce: true, want: AccessRender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideAccess(AccessRequest{
				LoggedIn:     true,
				AllowedRoles: tt.allowed,
				Role:         tt.role,
				Enforce:      tt.enforce,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccessDecision_String(t *testing.T) {
	assert.Equal(t, "render", AccessRender.String())
	assert.Equal(t, "redirect", AccessRedirect.String())
	assert.Equal(t, "deny", AccessDeny.String())
}
