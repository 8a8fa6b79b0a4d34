package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/garage-hub/internal/model"
)

type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

const vehicleCols = "id, garage_id, client_id, make, model, year, plate, vin, created_at, updated_at"

func scanVehicle(row interface{ Scan(...any) error }, v *model.Vehicle) error {
	return row.Scan(&v.ID, &v.GarageID, &v.ClientID, &v.Make, &v.Model, &v.Year, &v.Plate, &v.VIN, &v.CreatedAt, &v.UpdatedAt)
}

// Create inserts a vehicle for a client of the garage.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO vehicles (garage_id, client_id, make, model, year, plate, vin) VALUES (?,?,?,?,?,?,?)",
		v.GarageID, v.ClientID, v.Make, v.Model, v.Year, v.Plate, v.VIN)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	const q = "SELECT " + vehicleCols + " FROM vehicles WHERE id = ?"
	return scanVehicle(r.DB.QueryRowContext(ctx, q, v.ID), v)
}

// GetByIDAndGarage fetches a vehicle only when it belongs to the garage.
func (r *VehicleRepo) GetByIDAndGarage(ctx context.Context, id, garageID uint64) (*model.Vehicle, error) {
	const q = "SELECT " + vehicleCols + " FROM vehicles WHERE id = ? AND garage_id = ?"
	var v model.Vehicle
	if err := scanVehicle(r.DB.QueryRowContext(ctx, q, id, garageID), &v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListByClient returns a client's vehicles in id order.
func (r *VehicleRepo) ListByClient(ctx context.Context, garageID, clientID uint64) ([]*model.Vehicle, error) {
	const q = "SELECT " + vehicleCols + " FROM vehicles WHERE garage_id = ? AND client_id = ? ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, q, garageID, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Vehicle
	for rows.Next() {
		v := new(model.Vehicle)
		if err := scanVehicle(rows, v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update rewrites the vehicle fields. Returns sql.ErrNoRows when the
// vehicle does not exist in this garage.
func (r *VehicleRepo) Update(ctx context.Context, id, garageID uint64, make, mdl string, year uint16, plate, vin string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE vehicles SET make=?, model=?, year=?, plate=?, vin=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=? AND garage_id=?`,
		make, mdl, year, plate, vin, id, garageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a vehicle. Appointments referencing it keep their row but
// lose the link (vehicle_id set NULL) so history survives.
func (r *VehicleRepo) Delete(ctx context.Context, id, garageID uint64) error {
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
	if _, err = tx.ExecContext(ctx,
		"UPDATE appointments SET vehicle_id=NULL WHERE vehicle_id=? AND garage_id=?", id, garageID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE job_tickets SET vehicle_id=NULL WHERE vehicle_id=? AND garage_id=?", id, garageID); err != nil {
		return err
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx, "DELETE FROM vehicles WHERE id=? AND garage_id=?", id, garageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = sql.ErrNoRows
		return err
	}
	return nil
}
