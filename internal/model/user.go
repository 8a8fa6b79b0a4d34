package model

import "time"

// Global role values stored in user_roles.role.  A user holds at most one
// active role at a time; role assignment deletes any existing rows before
// inserting the new one (last-write-wins, no history).
const (
	RoleAdministrator = "administrator"
	RoleTechnician    = "technician"
	RoleFrontDesk     = "front_desk"
	RoleNone          = "none" // synthetic value for "no role row found"
)

// User is an authenticated principal.  This struct corresponds to a row in
// the `users` table.  Authentication artifacts (refresh tokens) live in
// their own table.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// UserRole is one row of the user_roles table.  Duplicate rows for a user
// are a known historical bug; readers must pick the first deterministically.
type UserRole struct {
	ID     uint64 // user_roles.id
	UserID uint64 // user_roles.user_id
	Role   string // user_roles.role
}
