package models

import "fmt"

type Role string

const (
	RoleUser       Role = "user"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleUser, RoleTechnician, RoleAdmin:
		return Role(value), nil
	}
	return "", fmt.Errorf("unknown role %q", value)
}

// LandingPath maps a role to its client landing route. An empty role lands
// on the role-selection flow.
func (r Role) LandingPath() string {
	switch r {
	case RoleTechnician:
		return "/technician-home"
	case RoleAdmin:
		return "/admin-home"
	case RoleUser:
		return "/user-home"
	}
	return "/role-selection"
}

const (
	UserActive   = "Active"
	UserInactive = "Inactive"
)

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Status     string `json:"status"`
	Department string `json:"department,omitempty"`
}

// Session is the per-request identity snapshot attached by the access
// middleware. Handlers read role and status from here instead of re-fetching
// the user record ad hoc.
type Session struct {
	UserID string
	Role   Role
	Status string
}

func (s Session) Active() bool {
	return s.Status != UserInactive
}
