package tenant

import (
	"context"
	"errors"
	"log"

	"github.com/iliyamo/garage-hub/internal/model"
	"github.com/iliyamo/garage-hub/internal/repository"
)

// ErrNoTenant is returned when no garage is assignable anywhere in the
// system. Callers should route the user to garage creation instead of a
// dashboard.
var ErrNoTenant = errors.New("no tenant assignable")

// Reconciler resolves the garage a user should use this session and writes
// back consistent pointers. It runs on every sign-in: the profile pointer
// and membership rows are routinely found violated (dangling pointer,
// missing membership for an owned garage) and are repaired here rather than
// by manual fix-up.
type Reconciler struct {
	Garages  GarageSource
	Members  MembershipSource
	Profiles PointerStore

	// DefaultSlug names the fallback garage for accounts pre-dating the
	// ownership/membership model. LastResortEnabled gates the final "any
	// garage" step.
	DefaultSlug       string
	LastResortEnabled bool

	// Audit, when set, is invoked after a last-resort assignment so the
	// event lands somewhere an operator will see it. Failures inside the
	// callback are the callback's problem; resolution never depends on it.
	Audit func(ctx context.Context, userID, garageID uint64)
}

// Resolve determines the single garage id the user should use now and
// repairs the profile pointer and membership row to match. The repair
// writes are idempotent: a second call with no intervening state change
// performs no additional writes. Repair failures are logged and swallowed;
// read access is never blocked by a failed convenience-write.
func (r *Reconciler) Resolve(ctx context.Context, userID uint64, role string) (uint64, error) {
	s := r.gather(ctx, userID)
	d := Choose(s)
	if d.Step == StepNone {
		return 0, ErrNoTenant
	}
	if d.Step == StepLastResort {
		// Cross-tenant assignment of an orphaned account. Permitted to keep
		// migrated accounts usable, but always flagged for operator review.
		log.Printf("tenant: last-resort fallback assigned user %d to garage %d", userID, d.GarageID)
		if r.Audit != nil {
			r.Audit(ctx, userID, d.GarageID)
		}
	}
	r.repair(ctx, userID, role, d, s)
	return d.GarageID, nil
}

// gather collects the resolution signals. Individual read failures are
// logged and leave that signal empty so the chain can keep descending; a
// transient failure on one source should not take sign-in down with it.
func (r *Reconciler) gather(ctx context.Context, userID uint64) Signals {
	var s Signals
	var err error

	if s.Pointer, err = r.Profiles.GetPointer(ctx, userID); err != nil {
		log.Printf("tenant: profile pointer read failed for user %d: %v", userID, err)
		s.Pointer = nil
	}
	if s.Pointer != nil {
		ok, err := r.Garages.Exists(ctx, *s.Pointer)
		if err != nil {
			log.Printf("tenant: pointer validation failed for user %d: %v", userID, err)
		}
		s.PointerValid = ok
	}
	if s.Owned, err = r.Garages.ListOwnedIDs(ctx, userID); err != nil {
		log.Printf("tenant: ownership lookup failed for user %d: %v", userID, err)
		s.Owned = nil
	}
	if s.Member, err = r.Members.ListGarageIDsByUser(ctx, userID); err != nil {
		log.Printf("tenant: membership lookup failed for user %d: %v", userID, err)
		s.Member = nil
	}
	// The named default and the any-garage signal are only consulted when
	// the chain gets that far; skip the queries when an earlier step will
	// already win.
	if s.PointerValid || len(s.Owned) > 0 || len(s.Member) > 0 {
		s.LastResort = r.LastResortEnabled
		return s
	}
	if r.DefaultSlug != "" {
		g, err := r.Garages.GetBySlug(ctx, r.DefaultSlug)
		switch {
		case err == nil:
			s.NamedDefault = g.ID
		case errors.Is(err, repository.ErrGarageNotFound):
			// no default garage configured in this deployment
		default:
			log.Printf("tenant: default garage lookup failed: %v", err)
		}
	}
	s.LastResort = r.LastResortEnabled
	if s.NamedDefault == 0 && r.LastResortEnabled {
		id, err := r.Garages.AnyID(ctx)
		switch {
		case err == nil:
			s.Any = id
		case errors.Is(err, repository.ErrGarageNotFound):
			// system has no garages at all
		default:
			log.Printf("tenant: any-garage lookup failed: %v", err)
		}
	}
	return s
}

// repair writes the resolved assignment back: the profile pointer when it
// differed, and a membership row when none exists. Both writes are keyed so
// repeating them is a no-op.
func (r *Reconciler) repair(ctx context.Context, userID uint64, role string, d Decision, s Signals) {
	if s.Pointer == nil || *s.Pointer != d.GarageID {
		if err := r.Profiles.SetPointer(ctx, userID, d.GarageID); err != nil {
			log.Printf("tenant: pointer repair failed for user %d: %v", userID, err)
		}
	}
	if !contains(s.Member, d.GarageID) {
		memberRole := deriveMemberRole(role, contains(s.Owned, d.GarageID))
		if err := r.Members.Upsert(ctx, d.GarageID, userID, memberRole); err != nil {
			log.Printf("tenant: membership repair failed for user %d: %v", userID, err)
		}
	}
}

// deriveMemberRole maps the global role onto a membership role. Owners get
// the owner membership role regardless of global role; unknown or absent
// global roles land on the generic staff role.
func deriveMemberRole(role string, ownsGarage bool) string {
	if ownsGarage {
		return model.MemberRoleOwner
	}
	switch role {
	case model.RoleAdministrator:
		return model.MemberRoleAdministrator
	case model.RoleTechnician:
		return model.MemberRoleTechnician
	case model.RoleFrontDesk:
		return model.MemberRoleFrontDesk
	}
	return model.MemberRoleStaff
}

func contains(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
