package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/garage-hub/internal/model"
)

type JobTicketRepo struct{ DB *sql.DB }

func NewJobTicketRepo(db *sql.DB) *JobTicketRepo { return &JobTicketRepo{DB: db} }

const ticketCols = "id, garage_id, client_id, vehicle_id, title, status, notes, created_at, updated_at"

func scanTicket(row interface{ Scan(...any) error }, t *model.JobTicket) error {
	return row.Scan(&t.ID, &t.GarageID, &t.ClientID, &t.VehicleID, &t.Title, &t.Status, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
}

// Create inserts a job ticket and populates the generated id and timestamps.
func (r *JobTicketRepo) Create(ctx context.Context, t *model.JobTicket) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO job_tickets (garage_id, client_id, vehicle_id, title, status, notes) VALUES (?,?,?,?,?,?)",
		t.GarageID, t.ClientID, t.VehicleID, t.Title, t.Status, t.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const q = "SELECT " + ticketCols + " FROM job_tickets WHERE id = ?"
	return scanTicket(r.DB.QueryRowContext(ctx, q, t.ID), t)
}

// GetByIDAndGarage fetches a ticket only when it belongs to the garage.
func (r *JobTicketRepo) GetByIDAndGarage(ctx context.Context, id, garageID uint64) (*model.JobTicket, error) {
	const q = "SELECT " + ticketCols + " FROM job_tickets WHERE id = ? AND garage_id = ?"
	var t model.JobTicket
	if err := scanTicket(r.DB.QueryRowContext(ctx, q, id, garageID), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByGarage returns the garage's tickets, optionally restricted to one
// client (clientID != 0), newest first.
func (r *JobTicketRepo) ListByGarage(ctx context.Context, garageID, clientID uint64) ([]*model.JobTicket, error) {
	q := "SELECT " + ticketCols + " FROM job_tickets WHERE garage_id = ?"
	args := []any{garageID}
	if clientID != 0 {
		q += " AND client_id = ?"
		args = append(args, clientID)
	}
	q += " ORDER BY id DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.JobTicket
	for rows.Next() {
		t := new(model.JobTicket)
		if err := scanTicket(rows, t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites title, status and notes. Returns sql.ErrNoRows when the
// ticket does not exist in this garage.
func (r *JobTicketRepo) Update(ctx context.Context, id, garageID uint64, title, status, notes string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE job_tickets SET title=?, status=?, notes=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=? AND garage_id=?`,
		title, status, notes, id, garageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a ticket.
func (r *JobTicketRepo) Delete(ctx context.Context, id, garageID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM job_tickets WHERE id=? AND garage_id=?", id, garageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
