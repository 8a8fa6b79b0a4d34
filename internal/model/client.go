package model

import "time"

// Client is a customer record scoped to one garage.  This struct corresponds
// to a row in the `clients` table.
type Client struct {
	ID        uint64    // clients.id
	GarageID  uint64    // clients.garage_id
	FullName  string    // clients.full_name
	Email     string    // clients.email
	Phone     string    // clients.phone
	Notes     string    // clients.notes
	CreatedAt time.Time // clients.created_at
	UpdatedAt time.Time // clients.updated_at
}

// Vehicle belongs to a client within a garage.  This struct corresponds to
// a row in the `vehicles` table.
type Vehicle struct {
	ID        uint64    // vehicles.id
	GarageID  uint64    // vehicles.garage_id
	ClientID  uint64    // vehicles.client_id
	Make      string    // vehicles.make
	Model     string    // vehicles.model
	Year      uint16    // vehicles.year
	Plate     string    // vehicles.plate
	VIN       string    // vehicles.vin
	CreatedAt time.Time // vehicles.created_at
	UpdatedAt time.Time // vehicles.updated_at
}
