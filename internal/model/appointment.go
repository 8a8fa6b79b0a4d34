package model

import "time"

// Appointment status values.
const (
	AppointmentScheduled = "SCHEDULED"
	AppointmentCompleted = "COMPLETED"
	AppointmentCancelled = "CANCELLED"
)

// Appointment is a booked service slot for a client's vehicle in a bay.
// This struct corresponds to a row in the `appointments` table.
//
// Fields:
//
//	ID          - primary key identifier.
//	GarageID    - garage the appointment belongs to.
//	ClientID    - client being served.
//	VehicleID   - vehicle being serviced (nullable).
//	ServiceType - free-text service description (e.g. "oil change").
//	Bay         - workshop bay label.
//	StartsAt    - scheduled start (UTC).
//	EndsAt      - scheduled end (UTC).
//	Status      - SCHEDULED, COMPLETED or CANCELLED.
type Appointment struct {
	ID          uint64    // appointments.id
	GarageID    uint64    // appointments.garage_id
	ClientID    uint64    // appointments.client_id
	VehicleID   *uint64   // appointments.vehicle_id (nullable)
	ServiceType string    // appointments.service_type
	Bay         string    // appointments.bay
	StartsAt    time.Time // appointments.starts_at
	EndsAt      time.Time // appointments.ends_at
	Status      string    // appointments.status
	CreatedAt   time.Time // appointments.created_at
	UpdatedAt   time.Time // appointments.updated_at
}
