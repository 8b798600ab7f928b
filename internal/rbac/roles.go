package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAdmin      = "admin"
	RoleClient     = "client"
	RoleSuperAdmin = "super_admin"
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

// IsAdminRole reports whether the role may authenticate against the admin
// console signing domain.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleClient, RoleSuperAdmin:
		return true
	default:
		return false
	}
}
