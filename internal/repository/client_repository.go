package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/garage-hub/internal/model"
)

// ClientRepo provides garage-scoped access to customer records. Every query
// carries the garage id so one tenant can never read another's clients.
type ClientRepo struct{ DB *sql.DB }

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{DB: db} }

const clientCols = "id, garage_id, full_name, email, phone, notes, created_at, updated_at"

func scanClient(row interface{ Scan(...any) error }, c *model.Client) error {
	return row.Scan(&c.ID, &c.GarageID, &c.FullName, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
}

// Create inserts a client and populates the generated id and timestamps.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO clients (garage_id, full_name, email, phone, notes) VALUES (?,?,?,?,?)",
		c.GarageID, c.FullName, c.Email, c.Phone, c.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	const q = "SELECT " + clientCols + " FROM clients WHERE id = ?"
	return scanClient(r.DB.QueryRowContext(ctx, q, c.ID), c)
}

// GetByIDAndGarage fetches a client only when it belongs to the garage.
func (r *ClientRepo) GetByIDAndGarage(ctx context.Context, id, garageID uint64) (*model.Client, error) {
	const q = "SELECT " + clientCols + " FROM clients WHERE id = ? AND garage_id = ?"
	var c model.Client
	if err := scanClient(r.DB.QueryRowContext(ctx, q, id, garageID), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByGarage returns all clients of a garage ordered by name.
func (r *ClientRepo) ListByGarage(ctx context.Context, garageID uint64) ([]*model.Client, error) {
	const q = "SELECT " + clientCols + " FROM clients WHERE garage_id = ? ORDER BY full_name, id"
	rows, err := r.DB.QueryContext(ctx, q, garageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Client
	for rows.Next() {
		c := new(model.Client)
		if err := scanClient(rows, c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SearchByName returns every client of the garage whose name contains the
// query, case-insensitively. The chat router uses this for fuzzy lookup;
// returning all matches (not a best guess) lets it ask a disambiguation
// question when more than one client fits.
func (r *ClientRepo) SearchByName(ctx context.Context, garageID uint64, name string) ([]*model.Client, error) {
	pattern := "%" + strings.TrimSpace(name) + "%"
	const q = "SELECT " + clientCols + ` FROM clients
	           WHERE garage_id = ? AND LOWER(full_name) LIKE LOWER(?) ORDER BY full_name, id`
	rows, err := r.DB.QueryContext(ctx, q, garageID, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Client
	for rows.Next() {
		c := new(model.Client)
		if err := scanClient(rows, c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites the mutable client fields. Returns sql.ErrNoRows when the
// client does not exist in this garage.
func (r *ClientRepo) Update(ctx context.Context, id, garageID uint64, fullName, email, phone, notes string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE clients SET full_name=?, email=?, phone=?, notes=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=? AND garage_id=?`,
		fullName, email, phone, notes, id, garageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a client and its dependent vehicles, appointments and job
// tickets in one transaction.
func (r *ClientRepo) Delete(ctx context.Context, id, garageID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var exists int
	if err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM clients WHERE id=? AND garage_id=?", id, garageID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClientNotFound
		}
		return err
	}
	for _, q := range []string{
		"DELETE FROM appointments WHERE client_id=? AND garage_id=?",
		"DELETE FROM job_tickets WHERE client_id=? AND garage_id=?",
		"DELETE FROM vehicles WHERE client_id=? AND garage_id=?",
		"DELETE FROM clients WHERE id=? AND garage_id=?",
	} {
		if _, err = tx.ExecContext(ctx, q, id, garageID); err != nil {
			return err
		}
	}
	return nil
}
