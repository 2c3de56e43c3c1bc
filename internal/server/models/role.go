package models

// Role is an identity's effective role. Higher values take precedence.
type Role int

const (
	RoleAnonymous Role = iota
	RoleVerified
	RoleAdmin
	RoleSuperAdmin
)

func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return "super_admin"
	case RoleAdmin:
		return "admin"
	case RoleVerified:
		return "verified"
	default:
		return "anonymous"
	}
}

// IsAdmin reports whether r bypasses verification and quota.
func (r Role) IsAdmin() bool {
	return r >= RoleAdmin
}
