// This file defines repository methods for garages (tenants). A garage is
// the unit of isolation: every client, vehicle, appointment and job ticket
// belongs to exactly one garage. Only minimal fields (name, slug, contact
// info) should be exposed in public API responses.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/garage-hub/internal/model"
)

// GarageRepo encapsulates all database queries related to garages.
type GarageRepo struct {
	db *sql.DB
}

// NewGarageRepo constructs a GarageRepo with the provided DB handle. This
// function allows dependency injection of the database in tests and at
// startup.
func NewGarageRepo(db *sql.DB) *GarageRepo {
	return &GarageRepo{db: db}
}

const garageCols = "id, owner_id, name, slug, address, contact_email, contact_phone, created_at, updated_at"

func scanGarage(row interface{ Scan(...any) error }, g *model.Garage) error {
	return row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Slug, &g.Address,
		&g.ContactEmail, &g.ContactPhone, &g.CreatedAt, &g.UpdatedAt)
}

// Create inserts a new garage. On success the ID field is populated with the
// auto-generated value and a follow-up SELECT fills the timestamp fields so
// callers receive a fully populated record. A duplicate slug surfaces as
// ErrSlugExists.
func (r *GarageRepo) Create(ctx context.Context, g *model.Garage) error {
	const qInsert = `INSERT INTO garages (owner_id, name, slug, address, contact_email, contact_phone)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		g.OwnerID, g.Name, g.Slug, g.Address, g.ContactEmail, g.ContactPhone)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrSlugExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)

	const qSelect = "SELECT " + garageCols + " FROM garages WHERE id = ?"
	return scanGarage(r.db.QueryRowContext(ctx, qSelect, g.ID), g)
}

// GetByID fetches a garage by its ID regardless of owner. It returns
// ErrGarageNotFound if no row is found.
func (r *GarageRepo) GetByID(ctx context.Context, id uint64) (*model.Garage, error) {
	const q = "SELECT " + garageCols + " FROM garages WHERE id = ?"
	var g model.Garage
	if err := scanGarage(r.db.QueryRowContext(ctx, q, id), &g); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGarageNotFound
		}
		return nil, err
	}
	return &g, nil
}

// GetBySlug fetches a garage by its unique slug.
func (r *GarageRepo) GetBySlug(ctx context.Context, slug string) (*model.Garage, error) {
	const q = "SELECT " + garageCols + " FROM garages WHERE slug = ?"
	var g model.Garage
	if err := scanGarage(r.db.QueryRowContext(ctx, q, slug), &g); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGarageNotFound
		}
		return nil, err
	}
	return &g, nil
}

// Exists reports whether a garage row with the given id is present. Used by
// the tenant resolver to validate the profile pointer without loading the
// full record.
func (r *GarageRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM garages WHERE id = ? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListOwnedIDs returns the ids of all garages owned by the user, in id
// order. Ownership-derived entries sort before membership-derived ones in
// the membership index, so a stable order here keeps fallback tie-breaks
// deterministic.
func (r *GarageRepo) ListOwnedIDs(ctx context.Context, ownerID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM garages WHERE owner_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListByOwner returns all garages for a specific owner ordered by id.
func (r *GarageRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Garage, error) {
	const q = "SELECT " + garageCols + " FROM garages WHERE owner_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Garage
	for rows.Next() {
		g := new(model.Garage)
		if err := scanGarage(rows, g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListAll returns all garages. It is used for public browsing endpoints;
// handlers are responsible for stripping owner and timestamp fields before
// responding.
func (r *GarageRepo) ListAll(ctx context.Context) ([]*model.Garage, error) {
	const q = "SELECT " + garageCols + " FROM garages ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Garage
	for rows.Next() {
		g := new(model.Garage)
		if err := scanGarage(rows, g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AnyID returns the id of an arbitrary garage (lowest id), or
// ErrGarageNotFound when the system has none. This backs the last-resort
// fallback step; callers must audit its use.
func (r *GarageRepo) AnyID(ctx context.Context) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM garages ORDER BY id LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrGarageNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update modifies the mutable fields (name, address, contact info) if the
// garage belongs to the provided owner. The slug is not regenerated on
// rename: published URLs keep working. Returns sql.ErrNoRows when no row is
// affected (not found / not owned).
func (r *GarageRepo) Update(ctx context.Context, id, ownerID uint64, name, address, email, phone string) error {
	const q = `UPDATE garages
	           SET name = ?, address = ?, contact_email = ?, contact_phone = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, name, address, email, phone, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByIDAndOwner removes a garage and all dependent records (members,
// profiles pointing at it, clients, vehicles, appointments, job tickets,
// chat messages) provided it belongs to the specified owner. If the garage
// does not exist, sql.ErrNoRows is returned. If it exists but is owned by a
// different user, ErrForbidden is returned. The deletion occurs within a
// transaction to maintain integrity.
func (r *GarageRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
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
	// Verify garage exists and ownership
	var dbOwnerID uint64
	if err = tx.QueryRowContext(ctx, `SELECT owner_id FROM garages WHERE id = ?`, id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	// Null out profile pointers referencing this garage so sign-in
	// reconciliation starts from a clean slate instead of a dangling id.
	if _, err = tx.ExecContext(ctx, `UPDATE profiles SET garage_id = NULL WHERE garage_id = ?`, id); err != nil {
		return err
	}
	for _, q := range []string{
		`DELETE FROM chat_messages WHERE garage_id = ?`,
		`DELETE FROM appointments WHERE garage_id = ?`,
		`DELETE FROM job_tickets WHERE garage_id = ?`,
		`DELETE FROM vehicles WHERE garage_id = ?`,
		`DELETE FROM clients WHERE garage_id = ?`,
		`DELETE FROM garage_members WHERE garage_id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM garages WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
