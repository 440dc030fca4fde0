package auth

import (
	"errors"
	"regexp"
)

// subjectPattern is the accepted format of a token subject.
var subjectPattern = regexp.MustCompile(`^[a-zA-Z0-9._@-]{1,64}$`)

// IsValidSubject reports whether s can be used as a token subject and
// project owner id.
func IsValidSubject(s string) bool {
	return subjectPattern.MatchString(s)
}

// Role is an authorisation tier.
type Role string

const (
	// RoleUser owns projects and is scoped to them.
	RoleUser Role = "user"

	// RoleAdmin sees and edits every project.
	RoleAdmin Role = "admin"
)

// ValidRoles lists the roles a token may carry.
var ValidRoles = []Role{RoleUser, RoleAdmin}

// IsValidRole reports whether r is a known role.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Principal is the authenticated caller of a request.
type Principal struct {
	Subject string
	Role    Role
}

// CanAccess reports whether the principal may see a project owned by ownerID.
func (p Principal) CanAccess(ownerID string) bool {
	return p.Role == RoleAdmin || p.Subject == ownerID
}

// OwnerFilter is the owner id to list projects by. Empty means all.
func (p Principal) OwnerFilter() string {
	if p.Role == RoleAdmin {
		return ""
	}
	return p.Subject
}

// Sentinel errors for auth operations.
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrInvalidSubject = errors.New("invalid subject")
	ErrInvalidRole    = errors.New("invalid role")
	ErrWeakSecret     = errors.New("signing secret too short")
	ErrForbidden      = errors.New("insufficient permissions")
)
