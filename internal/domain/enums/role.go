package enums

import "strings"

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
	RoleResident   Role = "resident"
	RoleGuest      Role = "guest"
)

func ParseRole(raw string) Role {
	switch role := Role(strings.ToLower(strings.TrimSpace(raw))); role {
	case RoleSuperAdmin, RoleAdmin, RoleModerator, RoleResident:
		return role
	default:
		return RoleGuest
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}
