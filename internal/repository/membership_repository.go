package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/garage-hub/internal/model"
)

// MembershipRepo manages garage_members rows. The UNIQUE(garage_id, user_id)
// index makes Upsert a no-op on repeat calls, which is what keeps the
// sign-in reconciler idempotent.
type MembershipRepo struct{ DB *sql.DB }

func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{DB: db} }

// Upsert ensures a membership row exists linking the user to the garage.
// An existing row is left untouched, including its member_role; repair
// writes never demote or promote an established membership.
func (r *MembershipRepo) Upsert(ctx context.Context, garageID, userID uint64, memberRole string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO garage_members (garage_id, user_id, member_role) VALUES (?,?,?)",
		garageID, userID, memberRole)
	return err
}

// ListGarageIDsByUser returns the ids of garages where the user has an
// explicit membership row, in id order.
func (r *MembershipRepo) ListGarageIDsByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT garage_id FROM garage_members WHERE user_id=? ORDER BY id", userID)
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

// ListMembers returns all membership rows for a garage.
func (r *MembershipRepo) ListMembers(ctx context.Context, garageID uint64) ([]*model.Membership, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, garage_id, user_id, member_role, created_at
		 FROM garage_members WHERE garage_id=? ORDER BY id`, garageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Membership
	for rows.Next() {
		m := new(model.Membership)
		if err := rows.Scan(&m.ID, &m.GarageID, &m.UserID, &m.MemberRole, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// IsMember reports whether the user is linked to the garage, either as the
// recorded owner or via a membership row. Garage-scoped handlers use this
// as their access check.
func (r *MembershipRepo) IsMember(ctx context.Context, garageID, userID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM garage_members WHERE garage_id=? AND user_id=?
		 UNION SELECT 1 FROM garages WHERE id=? AND owner_id=? LIMIT 1`,
		garageID, userID, garageID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a member from a garage. Returns sql.ErrNoRows when no row
// was removed.
func (r *MembershipRepo) Delete(ctx context.Context, garageID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM garage_members WHERE garage_id=? AND user_id=?", garageID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
