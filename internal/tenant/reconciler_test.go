package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/garage-hub/internal/model"
	"github.com/iliyamo/garage-hub/internal/repository"
)

// fakeWorld is an in-memory stand-in for the garage/membership/profile
// repositories. It counts writes so idempotence can be asserted directly.
type fakeWorld struct {
	garages      map[uint64]bool
	slugs        map[string]uint64
	ownedByUser  map[uint64][]uint64
	memberOf     map[uint64][]uint64
	pointers     map[uint64]uint64
	pointerSets  int
	memberUpsert int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		garages:     map[uint64]bool{},
		slugs:       map[string]uint64{},
		ownedByUser: map[uint64][]uint64{},
		memberOf:    map[uint64][]uint64{},
		pointers:    map[uint64]uint64{},
	}
}

func (f *fakeWorld) addGarage(id uint64, slug string, owner uint64) {
	f.garages[id] = true
	if slug != "" {
		f.slugs[slug] = id
	}
	if owner != 0 {
		f.ownedByUser[owner] = append(f.ownedByUser[owner], id)
	}
}

func (f *fakeWorld) Exists(_ context.Context, id uint64) (bool, error) {
	return f.garages[id], nil
}

func (f *fakeWorld) ListOwnedIDs(_ context.Context, ownerID uint64) ([]uint64, error) {
	return f.ownedByUser[ownerID], nil
}

func (f *fakeWorld) GetBySlug(_ context.Context, slug string) (*model.Garage, error) {
	if id, ok := f.slugs[slug]; ok {
		return &model.Garage{ID: id, Slug: slug}, nil
	}
	return nil, repository.ErrGarageNotFound
}

func (f *fakeWorld) AnyID(_ context.Context) (uint64, error) {
	var best uint64
	for id := range f.garages {
		if best == 0 || id < best {
			best = id
		}
	}
	if best == 0 {
		return 0, repository.ErrGarageNotFound
	}
	return best, nil
}

func (f *fakeWorld) ListGarageIDsByUser(_ context.Context, userID uint64) ([]uint64, error) {
	return f.memberOf[userID], nil
}

func (f *fakeWorld) Upsert(_ context.Context, garageID, userID uint64, _ string) error {
	for _, id := range f.memberOf[userID] {
		if id == garageID {
			return nil
		}
	}
	f.memberOf[userID] = append(f.memberOf[userID], garageID)
	f.memberUpsert++
	return nil
}

func (f *fakeWorld) GetPointer(_ context.Context, userID uint64) (*uint64, error) {
	if id, ok := f.pointers[userID]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *fakeWorld) SetPointer(_ context.Context, userID, garageID uint64) error {
	f.pointers[userID] = garageID
	f.pointerSets++
	return nil
}

func newReconciler(w *fakeWorld) *Reconciler {
	return &Reconciler{
		Garages:           w,
		Members:           w,
		Profiles:          w,
		DefaultSlug:       "default-garage",
		LastResortEnabled: true,
	}
}

func TestChooseFallbackOrder(t *testing.T) {
	ptr := func(id uint64) *uint64 { return &id }

	cases := []struct {
		name string
		in   Signals
		want Decision
	}{
		{
			name: "valid pointer wins",
			in:   Signals{Pointer: ptr(7), PointerValid: true, Owned: []uint64{3}, Member: []uint64{4}},
			want: Decision{GarageID: 7, Step: StepPointer},
		},
		{
			name: "dangling pointer falls to ownership",
			in:   Signals{Pointer: ptr(99), PointerValid: false, Owned: []uint64{3, 5}, Member: []uint64{4}},
			want: Decision{GarageID: 3, Step: StepOwned},
		},
		{
			name: "membership when nothing owned",
			in:   Signals{Member: []uint64{4, 6}},
			want: Decision{GarageID: 4, Step: StepMember},
		},
		{
			name: "named default for legacy accounts",
			in:   Signals{NamedDefault: 11, Any: 2, LastResort: true},
			want: Decision{GarageID: 11, Step: StepNamedDefault},
		},
		{
			name: "any garage as last resort",
			in:   Signals{Any: 2, LastResort: true},
			want: Decision{GarageID: 2, Step: StepLastResort},
		},
		{
			name: "last resort disabled",
			in:   Signals{Any: 2, LastResort: false},
			want: Decision{Step: StepNone},
		},
		{
			name: "nothing anywhere",
			in:   Signals{},
			want: Decision{Step: StepNone},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Choose(tc.in))
		})
	}
}

func TestMembershipIndexDeduplicates(t *testing.T) {
	w := newFakeWorld()
	w.addGarage(1, "joes", 42)
	w.addGarage(2, "mias", 0)
	// user 42 owns garage 1 and also holds an explicit membership for it,
	// plus a membership in garage 2
	w.memberOf[42] = []uint64{1, 2}

	ids, err := MembershipIndex(context.Background(), w, w, 42)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids, "owned entries first, no double-count")
}

func TestResolveRepairsDanglingPointer(t *testing.T) {
	w := newFakeWorld()
	w.addGarage(3, "joes", 42)
	w.pointers[42] = 99 // points at a garage that no longer exists

	got, err := newReconciler(w).Resolve(context.Background(), 42, model.RoleAdministrator)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got, "owned garage, not the default or any-garage step")
	assert.Equal(t, uint64(3), w.pointers[42], "pointer repaired")
	assert.Equal(t, []uint64{3}, w.memberOf[42], "membership row created for owner")
}

func TestResolveIdempotent(t *testing.T) {
	w := newFakeWorld()
	w.addGarage(3, "joes", 42)

	r := newReconciler(w)
	first, err := r.Resolve(context.Background(), 42, model.RoleTechnician)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), 42, model.RoleTechnician)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, w.pointerSets, "one net pointer write across both calls")
	assert.Equal(t, 1, w.memberUpsert, "one net membership write across both calls")
}

func TestResolveFallsThroughToNamedDefault(t *testing.T) {
	w := newFakeWorld()
	w.addGarage(11, "default-garage", 7)

	got, err := newReconciler(w).Resolve(context.Background(), 42, model.RoleFrontDesk)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), got)
	assert.Equal(t, []uint64{11}, w.memberOf[42], "joined the default garage")
}

func TestResolveLastResortAudited(t *testing.T) {
	w := newFakeWorld()
	w.addGarage(2, "unrelated", 7)

	var audited []uint64
	r := newReconciler(w)
	r.Audit = func(_ context.Context, userID, garageID uint64) {
		audited = append(audited, userID, garageID)
	}
	got, err := r.Resolve(context.Background(), 42, model.RoleNone)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got)
	assert.Equal(t, []uint64{42, 2}, audited, "last-resort assignment emits an audit event")
}

func TestResolveNoTenantAnywhere(t *testing.T) {
	w := newFakeWorld()
	_, err := newReconciler(w).Resolve(context.Background(), 42, model.RoleNone)
	assert.ErrorIs(t, err, ErrNoTenant)
	assert.Zero(t, w.pointerSets, "no writes when nothing is assignable")
}

func TestDeriveMemberRole(t *testing.T) {
	assert.Equal(t, model.MemberRoleOwner, deriveMemberRole(model.RoleAdministrator, true))
	assert.Equal(t, model.MemberRoleAdministrator, deriveMemberRole(model.RoleAdministrator, false))
	assert.Equal(t, model.MemberRoleTechnician, deriveMemberRole(model.RoleTechnician, false))
	assert.Equal(t, model.MemberRoleFrontDesk, deriveMemberRole(model.RoleFrontDesk, false))
	assert.Equal(t, model.MemberRoleStaff, deriveMemberRole(model.RoleNone, false))
	assert.Equal(t, model.MemberRoleStaff, deriveMemberRole(RoleUnknown, false))
}
