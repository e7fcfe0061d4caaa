package domain

import "strings"

// Role is the application role stored on backend profile records.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleDistributor Role = "distributor"
	// RoleDirect is what the backend stores for corporate (direct-order) users.
	RoleDirect  Role = "direct"
	RoleUnknown Role = "unknown"
)

// RoleType selects a profile endpoint and is the cached resolution hint.
type RoleType string

const (
	TypeAdmin       RoleType = "admin"
	TypeDistributor RoleType = "distributor"
	TypeCorporate   RoleType = "corporate"
)

// ProbeOrder is the fixed order profile endpoints are tried in.
var ProbeOrder = []RoleType{TypeAdmin, TypeDistributor, TypeCorporate}

func ParseRoleType(s string) (RoleType, bool) {
	switch RoleType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeAdmin:
		return TypeAdmin, true
	case TypeDistributor:
		return TypeDistributor, true
	case TypeCorporate:
		return TypeCorporate, true
	default:
		return "", false
	}
}

// DefaultRole is the role assumed for a profile of t that carries no role field.
func (t RoleType) DefaultRole() Role {
	switch t {
	case TypeAdmin:
		return RoleAdmin
	case TypeDistributor:
		return RoleDistributor
	case TypeCorporate:
		return RoleDirect
	default:
		return RoleUnknown
	}
}

// ParseRole reads a role string as stored by the backend. "corporate" is
// accepted as an alias of direct.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "distributor":
		return RoleDistributor, true
	case "direct", "corporate":
		return RoleDirect, true
	case "unknown":
		return RoleUnknown, true
	default:
		return "", false
	}
}

// Landing is the page a freshly logged-in user is sent to.
func Landing(role Role) string {
	switch role {
	case RoleDirect:
		return "/corporate"
	case RoleAdmin:
		return "/admin"
	case RoleDistributor:
		return "/distributor"
	default:
		return "/unauthorized"
	}
}
