package model

import "time"

// Membership role values stored in garage_members.member_role.  "owner" is
// assigned when the member also owns the garage; "staff" is the generic
// role used by legacy join paths.
const (
	MemberRoleOwner         = "owner"
	MemberRoleAdministrator = "administrator"
	MemberRoleTechnician    = "technician"
	MemberRoleFrontDesk     = "front_desk"
	MemberRoleStaff         = "staff"
)

// Garage is one isolated business account (a tenant).  All customer-facing
// data (clients, vehicles, appointments, job tickets) is scoped to exactly
// one garage.  This struct corresponds to a row in the `garages` table.
//
// Fields:
//
//	ID           - primary key identifier.
//	OwnerID      - user ID of the garage owner.
//	Name         - display name of the garage.
//	Slug         - unique URL-safe identifier derived from Name.
//	Address      - street address.
//	ContactEmail - public contact email.
//	ContactPhone - public contact phone.
//	CreatedAt    - timestamp when the garage was created.
//	UpdatedAt    - timestamp of last update.
type Garage struct {
	ID           uint64    // garages.id
	OwnerID      uint64    // garages.owner_id
	Name         string    // garages.name
	Slug         string    // garages.slug
	Address      string    // garages.address
	ContactEmail string    // garages.contact_email
	ContactPhone string    // garages.contact_phone
	CreatedAt    time.Time // garages.created_at
	UpdatedAt    time.Time // garages.updated_at
}

// Membership links a user to a garage with a member role.  It is distinct
// from the profile's convenience pointer: memberships are the explicit link
// records, the pointer is a cache.  UNIQUE(garage_id, user_id) makes repair
// writes idempotent.
type Membership struct {
	ID         uint64    // garage_members.id
	GarageID   uint64    // garage_members.garage_id
	UserID     uint64    // garage_members.user_id
	MemberRole string    // garage_members.member_role
	CreatedAt  time.Time // garage_members.created_at
}

// Profile holds the denormalized "current garage" pointer for a user.  The
// pointer should always reference a garage the user is linked to via
// ownership or membership; that invariant is routinely found violated and
// repaired at sign-in time.
type Profile struct {
	UserID    uint64    // profiles.user_id
	GarageID  *uint64   // profiles.garage_id (nullable)
	CreatedAt time.Time // profiles.created_at
	UpdatedAt time.Time // profiles.updated_at
}
