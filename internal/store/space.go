package store

import (
	"database/sql"
	"errors"
)

// ListSpaces returns every vehicle type's capacity, largest first.
func (db *DB) ListSpaces() ([]Space, error) {
	rows, err := db.Query(`SELECT vehicle_type, total, occupied, updated_at FROM parking_spaces ORDER BY total DESC, vehicle_type ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var spaces []Space
	for rows.Next() {
		var s Space
		if err := rows.Scan(&s.Type, &s.Total, &s.Occupied, &s.UpdatedAt); err != nil {
			return nil, err
		}
		spaces = append(spaces, s)
	}
	return spaces, rows.Err()
}

// GetSpace returns the capacity of one vehicle type, or nil when unknown.
func (db *DB) GetSpace(vehicleType string) (*Space, error) {
	var s Space
	err := db.QueryRow(`SELECT vehicle_type, total, occupied, updated_at FROM parking_spaces WHERE vehicle_type = ?`, vehicleType).
		Scan(&s.Type, &s.Total, &s.Occupied, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
