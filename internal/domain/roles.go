package domain

// Role is a named privilege level from the fixed closed set. The data
// model permits multiple role rows per identity; EffectiveRole imposes
// an explicit precedence instead of relying on query order.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleAdmin        Role = "admin"
	RoleSalesSupport Role = "sales_support"
	RoleSales        Role = "sales"
	RoleNone         Role = ""
)

// rolePrecedence orders roles by privilege, highest first.
var rolePrecedence = []Role{RoleSuperAdmin, RoleAdmin, RoleSalesSupport, RoleSales}

// ValidRole reports whether r names a known role.
func ValidRole(r Role) bool {
	for _, known := range rolePrecedence {
		if r == known {
			return true
		}
	}
	return false
}

// EffectiveRole picks the highest-privilege role among the given
// assignments. An empty slice yields RoleNone.
func EffectiveRole(roles []Role) Role {
	for _, candidate := range rolePrecedence {
		for _, r := range roles {
			if r == candidate {
				return candidate
			}
		}
	}
	return RoleNone
}

// IsAdmin reports whether the role grants the admin view: seeing and
// switching between every dashboard binding, plus user management.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}
