package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAppointmentLine(t *testing.T) {
	line := formatAppointmentLine(AppointmentEvent{
		Action:        "booked",
		AppointmentID: 50,
		GarageID:      7,
		ClientID:      3,
		ClientName:    "John Smith",
		ServiceType:   "oil change",
		Bay:           "2",
		StartsAt:      "2024-03-05T10:00:00Z",
		EndsAt:        "2024-03-05T11:00:00Z",
		OccurredAt:    "2024-03-01T12:00:00Z",
	})

	assert.Equal(t, "[2024-03-01T12:00:00Z] Appointment booked | appointment_id=50 | garage_id=7 | client=\"John Smith\" | service=\"oil change\" | bay=\"2\" | starts_at=2024-03-05T10:00:00Z | ends_at=2024-03-05T11:00:00Z\n", line)
}

func TestFormatAuditLine(t *testing.T) {
	line := formatAuditLine(TenantAuditEvent{
		UserID:     42,
		GarageID:   7,
		OccurredAt: "2024-03-01T12:00:00Z",
	})

	assert.Equal(t, "[2024-03-01T12:00:00Z] Last-resort tenant assignment | user_id=42 | garage_id=7\n", line)
}

// The audit stream must round-trip through the consumer handler path: a
// published payload unmarshals back into the event the formatter expects.
func TestAuditEventRoundTrip(t *testing.T) {
	body, err := json.Marshal(TenantAuditEvent{UserID: 42, GarageID: 7, OccurredAt: "2024-03-01T12:00:00Z"})
	require.NoError(t, err)

	var ev TenantAuditEvent
	require.NoError(t, json.Unmarshal(body, &ev))
	assert.Equal(t, uint64(42), ev.UserID)
	assert.Equal(t, uint64(7), ev.GarageID)
}

func TestHandleMessageRejectsMalformedBody(t *testing.T) {
	assert.Error(t, handleAppointmentMessage([]byte("not json")))
	assert.Error(t, handleAuditMessage([]byte("{")))
}
