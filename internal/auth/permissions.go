package auth

// Permission represents a named capability.
type Permission string

// Permission constants.
const (
	PermProjectRead    Permission = "project:read"
	PermProjectWrite   Permission = "project:write"
	PermProjectExport  Permission = "project:export"
	PermProjectImport  Permission = "project:import"
	PermProjectReadAll Permission = "project:read:all"
)

// rolePermissions maps each role to its granted permissions.
var rolePermissions = map[Role][]Permission{
	RoleUser: {
		PermProjectRead,
		PermProjectWrite,
		PermProjectExport,
		PermProjectImport,
	},
	RoleAdmin: {
		PermProjectRead,
		PermProjectWrite,
		PermProjectExport,
		PermProjectImport,
		PermProjectReadAll,
	},
}

// HasPermission returns true if the given role has the specified permission.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns all permissions granted to a role.
// Returns nil for unknown roles.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	result := make([]Permission, len(perms))
	copy(result, perms)
	return result
}
