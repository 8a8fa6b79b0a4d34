// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios. For example,
// ErrForbidden indicates that the current user is not authorized to perform
// an operation on a resource owned by someone else, while ErrConflict
// signals that an operation cannot proceed due to existing dependent
// records.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP 403
// response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering a user with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrSlugExists is returned when creating a garage whose derived slug
// collides with an existing one.
var ErrSlugExists = errors.New("slug already exists")

// Per-entity not-found sentinels. Handlers map these to HTTP 404; the chat
// router maps them to natural-language "not found" replies.
var (
	ErrGarageNotFound      = errors.New("garage not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrTicketNotFound      = errors.New("job ticket not found")
)
