package domain

import "time"

// UserRole enumerates account roles.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleStaff    UserRole = "staff"
	UserRoleAdmin    UserRole = "admin"
)

// Valid reports whether the role is one of the known variants.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleCustomer, UserRoleStaff, UserRoleAdmin:
		return true
	}
	return false
}

// User is the domain model for a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
