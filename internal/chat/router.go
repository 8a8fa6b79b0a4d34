package chat

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/garage-hub/internal/model"
)

// ClientSource is the client lookup the router needs.
type ClientSource interface {
	SearchByName(ctx context.Context, garageID uint64, name string) ([]*model.Client, error)
}

// VehicleSource lists a client's vehicles.
type VehicleSource interface {
	ListByClient(ctx context.Context, garageID, clientID uint64) ([]*model.Vehicle, error)
}

// AppointmentSource covers the appointment reads and writes the booking and
// modification intents perform.
type AppointmentSource interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByIDAndGarage(ctx context.Context, id, garageID uint64) (*model.Appointment, error)
	NextUpcomingForClient(ctx context.Context, garageID, clientID uint64, after time.Time) (*model.Appointment, error)
	UpdateWindow(ctx context.Context, id, garageID uint64, startsAt, endsAt time.Time) error
}

// TicketSource lists job tickets for the jobSheet intent.
type TicketSource interface {
	ListByGarage(ctx context.Context, garageID, clientID uint64) ([]*model.JobTicket, error)
}

// MessageLog appends turns to the audit trail and replays recent history.
type MessageLog interface {
	Insert(ctx context.Context, m *model.ChatMessage) error
	ListRecent(ctx context.Context, userID uint64, n int) ([]*model.ChatMessage, error)
}

// Metadata mirrors the wire shape of the chat response envelope.
type Metadata struct {
	QueryType  string            `json:"query_type"`
	Confidence float64           `json:"confidence"`
	Entities   map[string]string `json:"entities"`
	Context    string            `json:"context"`
	State      *string           `json:"state"`
}

// Result is one completed router turn.
type Result struct {
	Response string   `json:"response"`
	Metadata Metadata `json:"metadata"`
}

// Router dispatches chat messages: forced continuation of an open flow
// first, fresh classification otherwise. All behavior is determined by the
// message text, the user id and persisted state/history; there are no other
// knobs.
type Router struct {
	Clients      ClientSource
	Vehicles     VehicleSource
	Appointments AppointmentSource
	Tickets      TicketSource
	States       StateStore
	Log          MessageLog

	StateTTL     time.Duration
	MaxAttempts  int
	HistoryDepth int

	// Publish, when set, emits a domain event after a booking is created or
	// a reschedule is applied. Failures are the publisher's to log; the
	// chat turn never depends on it.
	Publish func(ctx context.Context, action string, a *model.Appointment, clientName string)

	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

// outcome is what an intent handler produces: the reply text and the stage
// tag of whatever state is open after the turn (nil when none).
type outcome struct {
	text  string
	state *string
}

const tryAgainLater = "Sorry, something went wrong on my end. Please try again in a moment."

func (r *Router) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Handle runs one chat turn for the user within their garage. Backend
// failures are logged and converted to a generic reply; the method itself
// never errors.
func (r *Router) Handle(ctx context.Context, garageID, userID uint64, message string) Result {
	now := r.now()

	state, err := r.States.Get(ctx, userID)
	if err != nil {
		log.Printf("chat: state read failed for user %d: %v", userID, err)
		return r.finish(ctx, garageID, userID, message, IntentUnknown, Entities{}, outcome{text: tryAgainLater})
	}
	state = fresh(ctx, r.States, state, r.StateTTL, now)

	// An open confirmation dialog always outranks fresh classification:
	// intent is forced, the classifier is bypassed entirely.
	if state != nil && state.Stage == model.StageModificationConfirm {
		out := r.continueModification(ctx, garageID, userID, state, message)
		return r.finish(ctx, garageID, userID, message, IntentModification, Entities{}, out)
	}

	intent := Classify(message)
	ents := Extract(message, now)

	var out outcome
	switch intent {
	case IntentBooking:
		out = r.handleBooking(ctx, garageID, ents, now)
	case IntentModification:
		out = r.startModification(ctx, garageID, userID, ents, now)
	case IntentClient:
		out = r.handleClient(ctx, garageID, ents)
	case IntentVehicle:
		out = r.handleVehicle(ctx, garageID, ents)
	case IntentSafety:
		out = r.handleSafety(ctx, garageID, ents)
	case IntentJobSheet:
		out = r.handleJobSheet(ctx, garageID, ents)
	case IntentAutomotive:
		out = r.handleAutomotive(ents)
	default:
		out = outcome{text: "I can book and reschedule appointments, look up clients, vehicles, job sheets and safety information. What would you like to do?"}
	}
	return r.finish(ctx, garageID, userID, message, intent, ents, out)
}

// finish assembles the response envelope, rebuilds the conversation context
// from the message log and appends this turn to it.
func (r *Router) finish(ctx context.Context, garageID, userID uint64, message string, intent Intent, ents Entities, out outcome) Result {
	res := Result{
		Response: out.text,
		Metadata: Metadata{
			QueryType:  string(intent),
			Confidence: Confidence(intent),
			Entities:   ents.Map(),
			Context:    r.buildContext(ctx, userID),
			State:      out.state,
		},
	}
	entJSON, err := json.Marshal(ents.Map())
	if err != nil {
		entJSON = []byte("{}")
	}
	row := &model.ChatMessage{
		GarageID:  garageID,
		UserID:    userID,
		Message:   message,
		Response:  out.text,
		Intent:    string(intent),
		Entities:  entJSON,
		RequestID: uuid.NewString(),
	}
	if err := r.Log.Insert(ctx, row); err != nil {
		log.Printf("chat: message log append failed for user %d: %v", userID, err)
	}
	return res
}

// buildContext replays the last few turns into a flat string. There is no
// server-side session: this string is the only conversational memory and is
// reconstructed on every request.
func (r *Router) buildContext(ctx context.Context, userID uint64) string {
	depth := r.HistoryDepth
	if depth <= 0 {
		depth = 5
	}
	msgs, err := r.Log.ListRecent(ctx, userID, depth)
	if err != nil {
		log.Printf("chat: history read failed for user %d: %v", userID, err)
		return ""
	}
	// ListRecent returns newest first; replay oldest first.
	var b strings.Builder
	for i := len(msgs) - 1; i >= 0; i-- {
		if b.Len() > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("user: ")
		b.WriteString(msgs[i].Message)
		b.WriteString(" / assistant: ")
		b.WriteString(msgs[i].Response)
	}
	return b.String()
}
