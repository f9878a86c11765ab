package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const vehicleColumns = `id, ticket, plate, vehicle_type, color, driver_name, driver_id_type,
	driver_id_number, driver_phone, driver_residence, check_in_at, COALESCE(check_out_at, 0), status`

type scanner interface {
	Scan(dest ...any) error
}

func scanVehicle(s scanner) (*Vehicle, error) {
	var v Vehicle
	err := s.Scan(&v.ID, &v.Ticket, &v.Plate, &v.Type, &v.Color, &v.DriverName, &v.DriverIDType,
		&v.DriverIDNumber, &v.DriverPhone, &v.DriverResidence, &v.CheckInAt, &v.CheckOutAt, &v.Status)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CheckIn records v as parked and takes one space of its type. It fails
// with ErrNoSpace when the type is unknown or full and with ErrAlreadyParked
// when the plate is already active. v.ID, CheckInAt and Status are filled in.
func (db *DB) CheckIn(v *Vehicle) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var total, occupied int
	err = tx.QueryRow(`SELECT total, occupied FROM parking_spaces WHERE vehicle_type = ?`, v.Type).Scan(&total, &occupied)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && occupied >= total) {
		return ErrNoSpace
	}
	if err != nil {
		return fmt.Errorf("read space: %w", err)
	}

	var exists bool
	err = tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM vehicles WHERE plate = ? AND status = 'active')`, v.Plate).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check plate: %w", err)
	}
	if exists {
		return ErrAlreadyParked
	}

	now := time.Now().UnixMilli()
	res, err := tx.Exec(`
		INSERT INTO vehicles (ticket, plate, vehicle_type, color, driver_name, driver_id_type,
			driver_id_number, driver_phone, driver_residence, check_in_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'active')`,
		v.Ticket, v.Plate, v.Type, v.Color, v.DriverName, v.DriverIDType,
		v.DriverIDNumber, v.DriverPhone, v.DriverResidence, now)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE parking_spaces SET occupied = occupied + 1, updated_at = ? WHERE vehicle_type = ?`, now, v.Type); err != nil {
		return fmt.Errorf("take space: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	v.ID = id
	v.CheckInAt = now
	v.CheckOutAt = 0
	v.Status = StatusActive
	return nil
}

// CheckOut completes the active visit of plate and frees its space.
func (db *DB) CheckOut(plate string) (*Vehicle, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	v, err := scanVehicle(tx.QueryRow(`SELECT `+vehicleColumns+` FROM vehicles WHERE plate = ? AND status = 'active'`, plate))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotParked
	}
	if err != nil {
		return nil, fmt.Errorf("find vehicle: %w", err)
	}

	now := time.Now().UnixMilli()
	if _, err := tx.Exec(`UPDATE vehicles SET status = 'completed', check_out_at = ? WHERE id = ?`, now, v.ID); err != nil {
		return nil, fmt.Errorf("complete vehicle: %w", err)
	}
	if _, err := tx.Exec(`UPDATE parking_spaces SET occupied = MAX(0, occupied - 1), updated_at = ? WHERE vehicle_type = ?`, now, v.Type); err != nil {
		return nil, fmt.Errorf("free space: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	v.Status = StatusCompleted
	v.CheckOutAt = now
	return v, nil
}

// ActiveVehicle returns the parked vehicle with plate, or ErrNotParked.
func (db *DB) ActiveVehicle(plate string) (*Vehicle, error) {
	v, err := scanVehicle(db.QueryRow(`SELECT `+vehicleColumns+` FROM vehicles WHERE plate = ? AND status = 'active'`, plate))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotParked
	}
	return v, err
}

// ListActiveVehicles returns parked vehicles, oldest first.
func (db *DB) ListActiveVehicles() ([]Vehicle, error) {
	rows, err := db.Query(`SELECT ` + vehicleColumns + ` FROM vehicles WHERE status = 'active' ORDER BY check_in_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var vehicles []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

// Revision increases with every check-in and check-out. Clients use it to
// tell whether data they hold is current.
func (db *DB) Revision() (int64, error) {
	var rev int64
	err := db.QueryRow(`SELECT COUNT(*) + COUNT(check_out_at) FROM vehicles`).Scan(&rev)
	return rev, err
}
