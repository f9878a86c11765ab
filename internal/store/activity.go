package store

// InsertActivity appends a journal row. Replays of the same kind and ticket
// are ignored.
func (db *DB) InsertActivity(a Activity) error {
	_, err := db.Exec(`
		INSERT INTO activity (kind, ticket, plate, vehicle_type, at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, ticket) DO NOTHING`,
		a.Kind, a.Ticket, a.Plate, a.Type, a.At)
	return err
}

// RecentActivity returns up to limit journal rows, newest first.
func (db *DB) RecentActivity(limit int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT id, kind, ticket, plate, vehicle_type, at
		FROM activity ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Kind, &a.Ticket, &a.Plate, &a.Type, &a.At); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
