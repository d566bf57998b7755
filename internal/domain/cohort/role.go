// internal/domain/cohort/role.go
package cohort

import "strings"

// Role is the account kind stored on a profile.
type Role string

const (
	RoleUser         Role = "user"
	RoleCoordination Role = "coordination" // REGISS technical area (program coordinators)
	RoleAdmin        Role = "admin"
)

// ParseRole maps a stored role string to a Role. Unknown and empty values are
// treated as regular users.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "coordination", "coordinator", "coordenacao", "coordenação":
		return RoleCoordination
	case "admin", "administrator", "administrador":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// IsStaff reports whether the role may use coordinator tools.
func (r Role) IsStaff() bool {
	return r == RoleCoordination || r == RoleAdmin
}
