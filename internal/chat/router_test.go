package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/garage-hub/internal/model"
	"github.com/iliyamo/garage-hub/internal/repository"
)

// fakeStore keeps conversation state in memory, mimicking the one-row-per-
// user semantics of the durable table.
type fakeStore struct {
	states map[uint64]*model.ConversationState
}

func newFakeStore() *fakeStore {
	return &fakeStore{states: map[uint64]*model.ConversationState{}}
}

func (f *fakeStore) Get(_ context.Context, userID uint64) (*model.ConversationState, error) {
	return f.states[userID], nil
}

func (f *fakeStore) Save(_ context.Context, userID uint64, stage string, payload []byte) error {
	f.states[userID] = &model.ConversationState{
		UserID: userID, Stage: stage, Payload: payload, CreatedAt: fixedNow,
	}
	return nil
}

func (f *fakeStore) IncrementAttempts(_ context.Context, userID uint64) (int, error) {
	s := f.states[userID]
	if s == nil {
		return 0, nil
	}
	s.Attempts++
	return s.Attempts, nil
}

func (f *fakeStore) Clear(_ context.Context, userID uint64) error {
	delete(f.states, userID)
	return nil
}

type fakeData struct {
	clients      []*model.Client
	appointments map[uint64]*model.Appointment
	windowWrites int
	created      []*model.Appointment
}

func (f *fakeData) SearchByName(_ context.Context, _ uint64, name string) ([]*model.Client, error) {
	var out []*model.Client
	for _, c := range f.clients {
		if containsFold(c.FullName, name) {
			out = append(out, c)
		}
	}
	return out, nil
}

func containsFold(haystack, needle string) bool {
	return len(needle) > 0 && len(haystack) >= len(needle) &&
		stringsIndexFold(haystack, needle) >= 0
}

func stringsIndexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		match := true
		for j := 0; j < len(substr); j++ {
			a, b := s[i+j], substr[j]
			if a >= 'A' && a <= 'Z' {
				a += 'a' - 'A'
			}
			if b >= 'A' && b <= 'Z' {
				b += 'a' - 'A'
			}
			if a != b {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func (f *fakeData) Create(_ context.Context, a *model.Appointment) error {
	a.ID = uint64(len(f.appointments) + 100)
	f.appointments[a.ID] = a
	f.created = append(f.created, a)
	return nil
}

func (f *fakeData) GetByIDAndGarage(_ context.Context, id, _ uint64) (*model.Appointment, error) {
	if a, ok := f.appointments[id]; ok {
		return a, nil
	}
	return nil, repository.ErrAppointmentNotFound
}

func (f *fakeData) NextUpcomingForClient(_ context.Context, _, clientID uint64, after time.Time) (*model.Appointment, error) {
	var best *model.Appointment
	for _, a := range f.appointments {
		if a.ClientID != clientID || !a.StartsAt.After(after) {
			continue
		}
		if best == nil || a.StartsAt.Before(best.StartsAt) {
			best = a
		}
	}
	if best == nil {
		return nil, repository.ErrAppointmentNotFound
	}
	return best, nil
}

func (f *fakeData) UpdateWindow(_ context.Context, id, _ uint64, startsAt, endsAt time.Time) error {
	a, ok := f.appointments[id]
	if !ok {
		return repository.ErrAppointmentNotFound
	}
	a.StartsAt, a.EndsAt = startsAt, endsAt
	f.windowWrites++
	return nil
}

func (f *fakeData) ListByClient(_ context.Context, _, _ uint64) ([]*model.Vehicle, error) {
	return nil, nil
}

func (f *fakeData) ListByGarage(_ context.Context, _, _ uint64) ([]*model.JobTicket, error) {
	return nil, nil
}

type fakeLog struct{ rows []*model.ChatMessage }

func (f *fakeLog) Insert(_ context.Context, m *model.ChatMessage) error {
	f.rows = append(f.rows, m)
	return nil
}

func (f *fakeLog) ListRecent(_ context.Context, _ uint64, n int) ([]*model.ChatMessage, error) {
	out := make([]*model.ChatMessage, 0, n)
	for i := len(f.rows) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, f.rows[i])
	}
	return out, nil
}

// Monday, March 4 2024, 12:00 UTC.
var fixedNow = time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)

func newTestRouter() (*Router, *fakeData, *fakeStore) {
	data := &fakeData{
		clients: []*model.Client{
			{ID: 1, GarageID: 9, FullName: "John Smith", Phone: "555-0101"},
		},
		appointments: map[uint64]*model.Appointment{
			50: {
				ID: 50, GarageID: 9, ClientID: 1, ServiceType: "oil change", Bay: "2",
				StartsAt: time.Date(2024, time.March, 8, 9, 0, 0, 0, time.UTC),
				EndsAt:   time.Date(2024, time.March, 8, 10, 0, 0, 0, time.UTC),
				Status:   model.AppointmentScheduled,
			},
		},
	}
	store := newFakeStore()
	r := &Router{
		Clients:      data,
		Vehicles:     data,
		Appointments: data,
		Tickets:      data,
		States:       store,
		Log:          &fakeLog{},
		StateTTL:     10 * time.Minute,
		MaxAttempts:  3,
		HistoryDepth: 5,
		Now:          func() time.Time { return fixedNow },
	}
	return r, data, store
}

func TestNewWindowPreservesDurationAndTimeOfDay(t *testing.T) {
	origStart := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	origEnd := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	target := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)

	start, end := NewWindow(origStart, origEnd, target, nil)
	assert.Equal(t, time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC), end)

	// An explicit time overrides the time-of-day but the duration still
	// comes from the original row.
	start, end = NewWindow(origStart, origEnd, target, &Clock{Hour: 14, Minute: 30})
	assert.Equal(t, time.Date(2024, time.March, 12, 14, 30, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 12, 15, 30, 0, 0, time.UTC), end)
}

func TestModificationProposalAndConfirm(t *testing.T) {
	r, data, store := newTestRouter()
	ctx := context.Background()

	res := r.Handle(ctx, 9, 42, "move John Smith's appointment to March 12")
	assert.Equal(t, string(IntentModification), res.Metadata.QueryType)
	require.NotNil(t, res.Metadata.State)
	assert.Equal(t, model.StageModificationConfirm, *res.Metadata.State)
	assert.Zero(t, data.windowWrites, "nothing written before confirmation")

	res = r.Handle(ctx, 9, 42, "yes")
	assert.Equal(t, 1, data.windowWrites)
	assert.Contains(t, res.Response, "oil change")
	assert.Contains(t, res.Response, "bay 2")
	assert.Nil(t, res.Metadata.State, "state cleared after apply")

	appt := data.appointments[50]
	assert.Equal(t, time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC), appt.StartsAt)
	assert.Equal(t, time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC), appt.EndsAt)

	_, ok := store.states[42]
	assert.False(t, ok)
}

func TestModificationRejectionPerformsNoWrites(t *testing.T) {
	r, data, store := newTestRouter()
	ctx := context.Background()

	r.Handle(ctx, 9, 42, "reschedule John Smith to March 12")
	res := r.Handle(ctx, 9, 42, "no")
	assert.Zero(t, data.windowWrites)
	assert.Nil(t, res.Metadata.State)
	_, ok := store.states[42]
	assert.False(t, ok, "rejection clears the state")

	// A later "yes" arrives with no open state: it must be a neutral
	// message, not a stale confirmation.
	res = r.Handle(ctx, 9, 42, "yes")
	assert.Zero(t, data.windowWrites)
	assert.NotEqual(t, string(IntentModification), res.Metadata.QueryType)
}

func TestOpenStateOutranksBookingKeywords(t *testing.T) {
	r, data, _ := newTestRouter()
	ctx := context.Background()

	r.Handle(ctx, 9, 42, "move John Smith's appointment to March 12")
	// Booking keywords everywhere, but the open confirmation wins.
	res := r.Handle(ctx, 9, 42, "book a bay appointment slot")
	assert.Equal(t, string(IntentModification), res.Metadata.QueryType)
	assert.Zero(t, data.windowWrites)
}

func TestUnrecognizedRepliesCapOut(t *testing.T) {
	r, data, store := newTestRouter()
	ctx := context.Background()

	r.Handle(ctx, 9, 42, "move John Smith's appointment to March 12")
	r.Handle(ctx, 9, 42, "purple")
	r.Handle(ctx, 9, 42, "what was the question")
	res := r.Handle(ctx, 9, 42, "seventeen")

	assert.Zero(t, data.windowWrites)
	_, ok := store.states[42]
	assert.False(t, ok, "attempt cap cancels the flow")
	assert.Contains(t, res.Response, "unchanged")
}

func TestStaleStateIsIgnored(t *testing.T) {
	r, data, store := newTestRouter()
	ctx := context.Background()

	r.Handle(ctx, 9, 42, "move John Smith's appointment to March 12")
	// Age the state past the TTL.
	store.states[42].CreatedAt = fixedNow.Add(-time.Hour)

	res := r.Handle(ctx, 9, 42, "yes")
	assert.Zero(t, data.windowWrites, "stale proposal must not apply")
	assert.NotEqual(t, string(IntentModification), res.Metadata.QueryType)
	_, ok := store.states[42]
	assert.False(t, ok, "stale state cleared on read")
}

func TestModificationWithoutDatePromptsStatelessly(t *testing.T) {
	r, _, store := newTestRouter()
	ctx := context.Background()

	res := r.Handle(ctx, 9, 42, "reschedule John Smith's appointment")
	assert.Contains(t, res.Response, "What date")
	assert.Nil(t, res.Metadata.State)
	_, ok := store.states[42]
	assert.False(t, ok, "no state persisted until a target window exists")
}

func TestAmbiguousClientAsksForClarification(t *testing.T) {
	r, data, store := newTestRouter()
	data.clients = append(data.clients, &model.Client{ID: 2, GarageID: 9, FullName: "John Smithers"})
	ctx := context.Background()

	res := r.Handle(ctx, 9, 42, "move John Smith's appointment to March 12")
	assert.Contains(t, res.Response, "several clients")
	assert.Contains(t, res.Response, "John Smithers")
	_, ok := store.states[42]
	assert.False(t, ok, "no proposal stored while the client is ambiguous")
}

func TestBookingCreatesAppointment(t *testing.T) {
	r, data, _ := newTestRouter()
	ctx := context.Background()

	res := r.Handle(ctx, 9, 42, "book an oil change for John Smith next Tuesday at 10am")
	require.Len(t, data.created, 1)
	a := data.created[0]
	assert.Equal(t, "oil change", a.ServiceType)
	// fixedNow is Monday March 4; next Tuesday is March 5
	assert.Equal(t, time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC), a.StartsAt)
	assert.Equal(t, time.Date(2024, time.March, 5, 11, 0, 0, 0, time.UTC), a.EndsAt)
	assert.Equal(t, string(IntentBooking), res.Metadata.QueryType)
	assert.Equal(t, "John Smith", res.Metadata.Entities["name"])
	assert.Equal(t, "10am", res.Metadata.Entities["time"])
}

func TestBookingPromptsForMissingSlots(t *testing.T) {
	r, data, _ := newTestRouter()
	ctx := context.Background()

	res := r.Handle(ctx, 9, 42, "book an appointment for John Smith")
	assert.Contains(t, res.Response, "What date")
	res = r.Handle(ctx, 9, 42, "book an appointment for John Smith tomorrow")
	assert.Contains(t, res.Response, "What time")
	assert.Empty(t, data.created)
}
