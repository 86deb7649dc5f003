package domain

import "fmt"

// Role is an access role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// ValidRoles returns every role.
func ValidRoles() []Role {
	return []Role{RoleAdmin, RoleUser, RoleGuest}
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	for _, r := range ValidRoles() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}
