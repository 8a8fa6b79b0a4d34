package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/garage-hub/internal/model"
)

// RoleRepo reads and writes the user_roles table. A user holds at most one
// active role; Set deletes any existing rows before inserting, and Get picks
// the lowest id when duplicates exist (a known historical bug left some
// users with more than one row).
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Get returns the user's current role, or model.RoleNone when no row
// exists. Zero rows is not an error: a freshly registered user simply has
// no role yet.
func (r *RoleRepo) Get(ctx context.Context, userID uint64) (string, error) {
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT role FROM user_roles WHERE user_id=? ORDER BY id LIMIT 1",
		userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RoleNone, nil
		}
		return "", err
	}
	return role, nil
}

// Set replaces the user's role: delete-then-insert inside one transaction,
// last-write-wins, no history kept.
func (r *RoleRepo) Set(ctx context.Context, userID uint64, role string) error {
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
	if _, err = tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id=?", userID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "INSERT INTO user_roles (user_id, role) VALUES (?,?)", userID, role); err != nil {
		return err
	}
	return nil
}
