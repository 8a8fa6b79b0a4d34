package chat

import (
	"context"
	"regexp"
	"time"

	"github.com/iliyamo/garage-hub/internal/model"
)

// StateStore is the durable per-user record of a pending multi-turn
// operation. Implementations must survive across separate requests of a
// stateless handler; this is not an in-process session. At most one open
// state exists per user (Save overwrites), and Clear must run on both the
// confirm and reject paths; a state left behind hijacks intent
// classification on the user's next unrelated message.
type StateStore interface {
	Get(ctx context.Context, userID uint64) (*model.ConversationState, error)
	Save(ctx context.Context, userID uint64, stage string, payload []byte) error
	IncrementAttempts(ctx context.Context, userID uint64) (int, error)
	Clear(ctx context.Context, userID uint64) error
}

// Proposal is the payload persisted while a reschedule awaits the user's
// yes/no. Display strings are precomputed so the confirmation turn needs no
// further lookups.
type Proposal struct {
	AppointmentID uint64    `json:"appointment_id"`
	GarageID      uint64    `json:"garage_id"`
	ClientName    string    `json:"client_name"`
	ServiceType   string    `json:"service_type"`
	Bay           string    `json:"bay"`
	NewStart      time.Time `json:"new_start"`
	NewEnd        time.Time `json:"new_end"`
}

// Confirmation and rejection phrase sets for the pending-proposal turn.
// Matched on word boundaries: plain substring matching would let "booking"
// confirm via its embedded "ok" and "now" cancel via "no".
var (
	reConfirm = regexp.MustCompile(`(?i)\b(yes|correct|confirm|sure|yeah|yep|ok|okay)\b`)
	reReject  = regexp.MustCompile(`(?i)\b(no|wrong|incorrect|cancel|nevermind|never mind|stop)\b`)
)

// IsConfirmation reports whether the reply accepts a pending proposal.
func IsConfirmation(text string) bool { return reConfirm.MatchString(text) }

// IsRejection reports whether the reply declines a pending proposal.
// Rejection is checked before confirmation by the caller so "no, that's ok"
// cancels.
func IsRejection(text string) bool { return reReject.MatchString(text) }

// NewWindow computes the proposed appointment window for a move to `date`.
// The original duration (end minus start of the existing row) is always
// preserved, never a fixed default. When the message carried no explicit
// time the original time-of-day is kept as well.
func NewWindow(origStart, origEnd, date time.Time, clock *Clock) (time.Time, time.Time) {
	duration := origEnd.Sub(origStart)
	hour, minute := origStart.Hour(), origStart.Minute()
	if clock != nil {
		hour, minute = clock.Hour, clock.Minute
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, origStart.Location())
	return start, start.Add(duration)
}

// fresh applies the staleness rule: a pending state older than ttl is
// treated as absent and cleared so it cannot resurface days later.
func fresh(ctx context.Context, store StateStore, s *model.ConversationState, ttl time.Duration, now time.Time) *model.ConversationState {
	if s == nil {
		return nil
	}
	if ttl > 0 && now.Sub(s.CreatedAt) > ttl {
		_ = store.Clear(ctx, s.UserID)
		return nil
	}
	return s
}
