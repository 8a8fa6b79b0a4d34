package model

import "time"

// Job ticket status values.
const (
	TicketOpen       = "OPEN"
	TicketInProgress = "IN_PROGRESS"
	TicketDone       = "DONE"
)

// JobTicket tracks a unit of workshop work for a client, independent of any
// appointment.  This struct corresponds to a row in the `job_tickets` table.
type JobTicket struct {
	ID        uint64    // job_tickets.id
	GarageID  uint64    // job_tickets.garage_id
	ClientID  uint64    // job_tickets.client_id
	VehicleID *uint64   // job_tickets.vehicle_id (nullable)
	Title     string    // job_tickets.title
	Status    string    // job_tickets.status
	Notes     string    // job_tickets.notes
	CreatedAt time.Time // job_tickets.created_at
	UpdatedAt time.Time // job_tickets.updated_at
}
