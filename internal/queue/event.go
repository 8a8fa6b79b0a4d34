// Package queue defines message payloads exchanged over the message broker.
package queue

// AppointmentEvent is published when the chat flow books or reschedules an
// appointment. It carries enough detail for downstream consumers to log or
// notify without querying the primary database. Action is "booked" or
// "rescheduled".
type AppointmentEvent struct {
	Action        string `json:"action"`
	AppointmentID uint64 `json:"appointment_id"`
	GarageID      uint64 `json:"garage_id"`
	ClientID      uint64 `json:"client_id"`
	ClientName    string `json:"client_name"`
	ServiceType   string `json:"service_type"`
	Bay           string `json:"bay"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	OccurredAt    string `json:"occurred_at"`
}

// TenantAuditEvent records that tenant resolution fell all the way through to
// the last-resort step and handed a user an arbitrary garage. These events
// exist so operators can spot onboarding gaps instead of silently growing
// memberships.
type TenantAuditEvent struct {
	UserID     uint64 `json:"user_id"`
	GarageID   uint64 `json:"garage_id"`
	OccurredAt string `json:"occurred_at"`
}
