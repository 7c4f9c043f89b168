package accounts

// RoleName names a role from the fixed catalog
type RoleName = string

const (
	// RoleUser is the default membership every account receives
	RoleUser RoleName = "user"
	// RoleAdmin grants access to the administrative surface
	RoleAdmin RoleName = "admin"
)

// RoleCatalog returns every role the backend knows about. The catalog is
// seeded into storage at startup; see Roles.EnsureCatalog.
func RoleCatalog() []RoleName {
	return []RoleName{
		RoleUser,
		RoleAdmin,
	}
}

// IsValidRole checks if the name is part of the catalog
func IsValidRole(name RoleName) bool {
	switch name {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a RoleName
func ParseRole(roleStr string) (RoleName, bool) {
	role := RoleName(roleStr)
	return role, IsValidRole(role)
}

// HasRole checks if roles contains role
func HasRole(roles []RoleName, role RoleName) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize reports whether an identity holding roles may perform an action
// requiring any of required. Requirements are OR-combined: one shared role
// is enough. An empty requirement means the action is open.
func Authorize(roles []RoleName, required ...RoleName) bool {
	if len(required) == 0 {
		return true
	}

	for _, want := range required {
		if HasRole(roles, want) {
			return true
		}
	}

	return false
}
