// Package tenant decides which garage an authenticated user belongs to and
// repairs inconsistent associations between the three overlapping membership
// records: the profile pointer, the membership table and the ownership
// column. It is consumed by the sign-in flow and by dashboard bootstrapping.
package tenant

import (
	"context"
	"log"

	"github.com/iliyamo/garage-hub/internal/model"
)

// RoleUnknown is the synthetic role returned when the role row cannot be
// read at all. Callers must treat it as "deny access", never as a grant.
const RoleUnknown = "unknown"

// RoleSource reads the user's global role.
type RoleSource interface {
	Get(ctx context.Context, userID uint64) (string, error)
}

// GarageSource exposes the garage reads the resolver needs.
type GarageSource interface {
	Exists(ctx context.Context, id uint64) (bool, error)
	ListOwnedIDs(ctx context.Context, ownerID uint64) ([]uint64, error)
	GetBySlug(ctx context.Context, slug string) (*model.Garage, error)
	AnyID(ctx context.Context) (uint64, error)
}

// MembershipSource reads and repairs explicit membership rows.
type MembershipSource interface {
	ListGarageIDsByUser(ctx context.Context, userID uint64) ([]uint64, error)
	Upsert(ctx context.Context, garageID, userID uint64, memberRole string) error
}

// PointerStore reads and repairs the profile's convenience pointer.
type PointerStore interface {
	GetPointer(ctx context.Context, userID uint64) (*uint64, error)
	SetPointer(ctx context.Context, userID, garageID uint64) error
}

// LookupRole fetches the user's global role. Zero rows is a valid answer
// (model.RoleNone); a backend failure is logged and surfaced as RoleUnknown
// rather than an error, so higher-level flows degrade to "deny" instead of
// breaking sign-in.
func LookupRole(ctx context.Context, roles RoleSource, userID uint64) string {
	role, err := roles.Get(ctx, userID)
	if err != nil {
		log.Printf("tenant: role lookup failed for user %d: %v", userID, err)
		return RoleUnknown
	}
	return role
}

// MembershipIndex returns the deduplicated union of garage ids the user is
// linked to: ownership-derived entries first (id order), then explicit
// membership rows (id order). A garage satisfying both appears exactly
// once. The stable order makes fallback tie-breaks deterministic.
func MembershipIndex(ctx context.Context, garages GarageSource, members MembershipSource, userID uint64) ([]uint64, error) {
	owned, err := garages.ListOwnedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	member, err := members.ListGarageIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint64]bool, len(owned)+len(member))
	out := make([]uint64, 0, len(owned)+len(member))
	for _, id := range owned {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range member {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}
