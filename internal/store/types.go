package store

import "errors"

// Vehicle statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

var (
	ErrNoSpace       = errors.New("no available spaces for this vehicle type")
	ErrAlreadyParked = errors.New("vehicle is already parked")
	ErrNotParked     = errors.New("vehicle not found or already checked out")
)

// Vehicle is one parking visit.
type Vehicle struct {
	ID              int64
	Ticket          string
	Plate           string
	Type            string
	Color           string
	DriverName      string
	DriverIDType    string
	DriverIDNumber  string
	DriverPhone     string
	DriverResidence string
	CheckInAt       int64
	CheckOutAt      int64 // 0 while parked
	Status          string
}

// Space is the capacity of one vehicle type.
type Space struct {
	Type      string
	Total     int
	Occupied  int
	UpdatedAt int64
}

// Available returns the number of free spaces.
func (s Space) Available() int {
	if s.Occupied >= s.Total {
		return 0
	}
	return s.Total - s.Occupied
}

// Activity is a journal row for a check-in or check-out.
type Activity struct {
	ID     int64
	Kind   string
	Ticket string
	Plate  string
	Type   string
	At     int64
}
