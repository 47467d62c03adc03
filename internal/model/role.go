package model

// Role is a principal's relation to a project
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleMember Role = "MEMBER"
	RoleNone   Role = "NONE"
)

// HasAccess reports whether the role may see the project at all
func (r Role) HasAccess() bool {
	return r == RoleOwner || r == RoleMember
}
