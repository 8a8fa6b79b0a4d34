package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ProfileRepo manages the profiles table, which exists solely to hold the
// denormalized "current garage" pointer per user. The pointer is a cache of
// resolved tenant assignment, not a source of truth; it may dangle or be
// missing entirely and the reconciler repairs it at sign-in.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// GetPointer returns the user's current garage pointer. A missing profile
// row or a NULL pointer both come back as nil with no error.
func (r *ProfileRepo) GetPointer(ctx context.Context, userID uint64) (*uint64, error) {
	var garageID sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		"SELECT garage_id FROM profiles WHERE user_id=? LIMIT 1", userID).Scan(&garageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !garageID.Valid {
		return nil, nil
	}
	id := uint64(garageID.Int64)
	return &id, nil
}

// SetPointer writes the resolved garage id into the profile, creating the
// profile row when absent. The write is idempotent: repeating it with the
// same value changes nothing.
func (r *ProfileRepo) SetPointer(ctx context.Context, userID, garageID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO profiles (user_id, garage_id) VALUES (?,?)
		 ON DUPLICATE KEY UPDATE garage_id=VALUES(garage_id), updated_at=CURRENT_TIMESTAMP`,
		userID, garageID)
	return err
}
