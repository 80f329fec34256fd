package session

import (
	"errors"
	"strings"
	"time"
)

// Role is the backend's user role, using its wire values.
type Role string

// Role constants
const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
	RoleOwner    Role = "OWNER"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleAdmin, RoleCustomer, RoleOwner}

// Domain errors
var (
	ErrInvalidRole   = errors.New("invalid user role")
	ErrInvalidUserID = errors.New("user id must be positive")
)

// Session is the logged-in user's identity for the lifetime of a browser session.
// It is created once at login and passed explicitly to whatever needs it.
type Session struct {
	UserID    int
	Role      Role
	FullName  string
	Email     string
	CreatedAt time.Time
}

// ParseRole maps a backend role string to a Role.
// PRE: none
// POST: Returns ErrInvalidRole for anything outside ValidRoles
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range ValidRoles {
		if r == v {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s Session) Validate() error {
	if s.UserID <= 0 {
		return ErrInvalidUserID
	}
	if _, err := ParseRole(string(s.Role)); err != nil {
		return err
	}
	return nil
}

// DashboardPath returns the post-login landing page for the session's role.
// INVARIANT: Session fields are not mutated
func (s Session) DashboardPath() string {
	return DashboardPathFor(s.Role)
}

// IsExpired reports whether the session is older than ttl.
func (s Session) IsExpired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.CreatedAt) > ttl
}

// DashboardPathFor returns the dashboard route for a role, or the login page for an unknown role.
func DashboardPathFor(r Role) string {
	switch r {
	case RoleAdmin:
		return "/dashboard/admin"
	case RoleCustomer:
		return "/dashboard/customer"
	case RoleOwner:
		return "/dashboard/owner"
	}
	return "/login"
}

// Slug is the lowercase role name used in dashboard routes.
func (r Role) Slug() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleCustomer:
		return "customer"
	case RoleOwner:
		return "owner"
	}
	return ""
}

// RoleFromSlug is the inverse of Slug.
func RoleFromSlug(slug string) (Role, bool) {
	for _, r := range ValidRoles {
		if r.Slug() == slug {
			return r, true
		}
	}
	return "", false
}
