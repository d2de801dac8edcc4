package model // model declares the domain entities shared by repositories, handlers and core logic

import "time"

// Roles recognised by the portal.  Self-registration always yields RoleUser;
// staff and admin accounts are provisioned through the admin console.
const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// ValidRole reports whether s is one of the three known roles.
func ValidRole(s string) bool {
	return s == RoleUser || s == RoleStaff || s == RoleAdmin
}

// User mirrors the 'users' table.  PasswordHash is never serialized.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
