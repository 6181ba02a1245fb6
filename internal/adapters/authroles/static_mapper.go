package authroles

import (
	"strings"

	domainauth "github.com/target/residence-console/internal/domain/auth"
)

// StaticRoleMapper maps IdP groups to console roles by membership.
// Admin wins over manager, manager over submanager. Group names compare case-insensitively.
type StaticRoleMapper struct {
	AdminGroups      []string
	ManagerGroups    []string
	SubmanagerGroups []string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	switch {
	case intersects(groups, m.AdminGroups):
		return domainauth.RoleAdmin
	case intersects(groups, m.ManagerGroups):
		return domainauth.RoleManager
	case intersects(groups, m.SubmanagerGroups):
		return domainauth.RoleSubmanager
	default:
		return domainauth.RoleGuest
	}
}

func intersects(have, want []string) bool {
	for _, w := range want {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(h), w) {
				return true
			}
		}
	}
	return false
}
