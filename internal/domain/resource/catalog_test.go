package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/residence-console/internal/domain/auth"
)

func TestDefaultCatalog_Routes(t *testing.T) {
	want := map[string]struct {
		route string
		roles auth.Roles
	}{
		Users:         {"/account", auth.Roles{auth.RoleAdmin, auth.RoleManager, auth.RoleSubmanager}},
		Leases:        {"/lease", auth.Roles{auth.RoleAdmin, auth.RoleManager}},
		Maintenance:   {"/maintenance", auth.Roles{auth.RoleAdmin, auth.RoleManager, auth.RoleSubmanager}},
		Residences:    {"/residence", auth.Roles{auth.RoleAdmin}},
		Units:         {"/unit", auth.Roles{auth.RoleAdmin, auth.RoleManager}},
		Events:        {"/events", auth.Roles{auth.RoleAdmin, auth.RoleManager}},
		Transactions:  {"/transactions", auth.Roles{auth.RoleAdmin, auth.RoleManager}},
		Notifications: {"/notification", auth.Roles{auth.RoleAdmin, auth.RoleManager, auth.RoleSubmanager}},
	}

	cat := DefaultCatalog()
	require.Len(t, cat.All(), len(want))
	for key, w := range want {
		def, ok := cat.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, w.route, def.Route, key)
		assert.ElementsMatch(t, w.roles, def.AllowedRoles, key)
		assert.NotEmpty(t, def.Fields, key)
		assert.NotEmpty(t, def.Columns, key)
	}
}

func TestCatalog_AllowedFor(t *testing.T) {
	cat := DefaultCatalog()
	assert.Len(t, cat.AllowedFor(auth.RoleAdmin), 8)
	assert.Len(t, cat.AllowedFor(auth.RoleManager), 7)
	assert.Len(t, cat.AllowedFor(auth.RoleSubmanager), 3)
	assert.Empty(t, cat.AllowedFor(auth.RoleGuest))
}

func TestCatalog_WithPaths(t *testing.T) {
	base := DefaultCatalog()
	cat := base.WithPaths(map[string]string{Users: "accounts", Leases: " "})

	users, _ := cat.Get(Users)
	assert.Equal(t, "/accounts", users.Path)
	leases, _ := cat.Get(Leases)
	assert.Equal(t, "/leases", leases.Path)

	orig, _ := base.Get(Users)
	assert.Equal(t, "/users", orig.Path)
}
