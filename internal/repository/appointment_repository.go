package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/garage-hub/internal/model"
)

// AppointmentRepo provides garage-scoped access to the appointments table.
type AppointmentRepo struct{ DB *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{DB: db} }

const apptCols = "id, garage_id, client_id, vehicle_id, service_type, bay, starts_at, ends_at, status, created_at, updated_at"

func scanAppt(row interface{ Scan(...any) error }, a *model.Appointment) error {
	return row.Scan(&a.ID, &a.GarageID, &a.ClientID, &a.VehicleID, &a.ServiceType,
		&a.Bay, &a.StartsAt, &a.EndsAt, &a.Status, &a.CreatedAt, &a.UpdatedAt)
}

// Filter is the explicit, typed set of predicates an appointment listing
// can apply. The filter is assembled up front and executed as one query;
// no conditional string concatenation of column names happens outside this
// file.
type Filter struct {
	Status   string     // exact status match when non-empty
	ClientID uint64     // restrict to one client when non-zero
	From     *time.Time // starts_at >= From when set
	To       *time.Time // starts_at < To when set
}

// Create inserts an appointment and populates the generated id and
// timestamps.
func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO appointments (garage_id, client_id, vehicle_id, service_type, bay, starts_at, ends_at, status)
		 VALUES (?,?,?,?,?,?,?,?)`,
		a.GarageID, a.ClientID, a.VehicleID, a.ServiceType, a.Bay,
		a.StartsAt.UTC(), a.EndsAt.UTC(), a.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	const q = "SELECT " + apptCols + " FROM appointments WHERE id = ?"
	return scanAppt(r.DB.QueryRowContext(ctx, q, a.ID), a)
}

// GetByIDAndGarage fetches an appointment only when it belongs to the garage.
func (r *AppointmentRepo) GetByIDAndGarage(ctx context.Context, id, garageID uint64) (*model.Appointment, error) {
	const q = "SELECT " + apptCols + " FROM appointments WHERE id = ? AND garage_id = ?"
	var a model.Appointment
	if err := scanAppt(r.DB.QueryRowContext(ctx, q, id, garageID), &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

// List returns the garage's appointments matching the filter, ordered by
// start time.
func (r *AppointmentRepo) List(ctx context.Context, garageID uint64, f Filter) ([]*model.Appointment, error) {
	conds := []string{"garage_id = ?"}
	args := []any{garageID}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.ClientID != 0 {
		conds = append(conds, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.From != nil {
		conds = append(conds, "starts_at >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		conds = append(conds, "starts_at < ?")
		args = append(args, f.To.UTC())
	}
	q := "SELECT " + apptCols + " FROM appointments WHERE " + strings.Join(conds, " AND ") + " ORDER BY starts_at, id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Appointment
	for rows.Next() {
		a := new(model.Appointment)
		if err := scanAppt(rows, a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// NextUpcomingForClient returns the chronologically nearest appointment of
// the client that starts after the given instant and is still scheduled.
// The modification flow uses this to decide which appointment "move my
// appointment" refers to.
func (r *AppointmentRepo) NextUpcomingForClient(ctx context.Context, garageID, clientID uint64, after time.Time) (*model.Appointment, error) {
	const q = "SELECT " + apptCols + ` FROM appointments
	           WHERE garage_id = ? AND client_id = ? AND status = ? AND starts_at > ?
	           ORDER BY starts_at LIMIT 1`
	var a model.Appointment
	err := scanAppt(r.DB.QueryRowContext(ctx, q, garageID, clientID, model.AppointmentScheduled, after.UTC()), &a)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

// UpdateWindow moves an appointment to a new start/end. Service type, bay
// and status are deliberately untouched.
func (r *AppointmentRepo) UpdateWindow(ctx context.Context, id, garageID uint64, startsAt, endsAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE appointments SET starts_at=?, ends_at=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=? AND garage_id=?`,
		startsAt.UTC(), endsAt.UTC(), id, garageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus transitions the appointment status.
func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id, garageID uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE appointments SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=? AND garage_id=?",
		status, id, garageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an appointment.
func (r *AppointmentRepo) Delete(ctx context.Context, id, garageID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM appointments WHERE id=? AND garage_id=?", id, garageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
