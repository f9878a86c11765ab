// Package parking implements check-in, check-out and occupancy reporting.
package parking

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"go.uber.org/zap"

	"github.com/matheus3301/chinopark/internal/bus"
	"github.com/matheus3301/chinopark/internal/plate"
	"github.com/matheus3301/chinopark/internal/store"
)

// VehicleTypes lists the vehicle types with seeded capacity.
var VehicleTypes = []string{"motorcycle", "bajaj", "car"}

// DriverIDTypes lists the accepted driver identification documents.
var DriverIDTypes = []string{"national_id", "passport", "driving_license"}

// Domain errors. They wrap the store sentinels so errors.Is works on both.
var (
	ErrInvalidPlate  = plate.ErrInvalid
	ErrNoSpace       = store.ErrNoSpace
	ErrAlreadyParked = store.ErrAlreadyParked
	ErrNotFound      = store.ErrNotParked
	ErrBadRequest    = errors.New("invalid check-in details")
)

const ticketLen = 10

// CheckInRequest carries the check-in form.
type CheckInRequest struct {
	Plate           string
	Type            string
	Color           string
	DriverName      string
	DriverIDType    string
	DriverIDNumber  string
	DriverPhone     string
	DriverResidence string
}

// Movement is the payload of check-in and check-out events.
type Movement struct {
	Ticket string    `json:"ticket"`
	Plate  string    `json:"plate_number"`
	Type   string    `json:"vehicle_type"`
	At     time.Time `json:"at"`
}

// Report is the occupancy overview.
type Report struct {
	Spaces   []store.Space
	Vehicles []store.Vehicle
	Activity []store.Activity
	Revision int64
}

// Service owns the parking rules on top of the store.
type Service struct {
	db        *store.DB
	bus       *bus.Bus
	logger    *zap.Logger
	newTicket func() string
}

// NewService creates a parking service.
func NewService(db *store.DB, b *bus.Bus, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		bus:    b,
		logger: logger,
		newTicket: func() string {
			return strings.ToUpper(shortuuid.New()[:ticketLen])
		},
	}
}

// NormalizePlate validates p and returns its canonical upper-case form.
func NormalizePlate(p string) (string, error) {
	if err := plate.Validate(p); err != nil {
		return "", err
	}
	return strings.ToUpper(p), nil
}

// CheckIn parks a vehicle and returns the stored record with its ticket.
func (s *Service) CheckIn(req CheckInRequest) (*store.Vehicle, error) {
	p, err := NormalizePlate(req.Plate)
	if err != nil {
		return nil, err
	}
	if req.DriverIDType != "" && !slices.Contains(DriverIDTypes, req.DriverIDType) {
		return nil, fmt.Errorf("%w: unknown driver id type %q", ErrBadRequest, req.DriverIDType)
	}

	v := &store.Vehicle{
		Ticket:          s.newTicket(),
		Plate:           p,
		Type:            strings.ToLower(strings.TrimSpace(req.Type)),
		Color:           strings.TrimSpace(req.Color),
		DriverName:      strings.TrimSpace(req.DriverName),
		DriverIDType:    req.DriverIDType,
		DriverIDNumber:  strings.TrimSpace(req.DriverIDNumber),
		DriverPhone:     strings.TrimSpace(req.DriverPhone),
		DriverResidence: strings.TrimSpace(req.DriverResidence),
	}
	if err := s.db.CheckIn(v); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle checked in", zap.String("plate", v.Plate), zap.String("type", v.Type), zap.String("ticket", v.Ticket))
	s.bus.Emit(bus.KindCheckedIn, Movement{Ticket: v.Ticket, Plate: v.Plate, Type: v.Type, At: time.UnixMilli(v.CheckInAt)})
	return v, nil
}

// CheckOut ends the visit of the vehicle with the given plate.
func (s *Service) CheckOut(rawPlate string) (*store.Vehicle, error) {
	p, err := NormalizePlate(rawPlate)
	if err != nil {
		return nil, err
	}
	v, err := s.db.CheckOut(p)
	if err != nil {
		return nil, err
	}

	s.logger.Info("vehicle checked out", zap.String("plate", v.Plate), zap.String("ticket", v.Ticket),
		zap.Duration("stay", time.Duration(v.CheckOutAt-v.CheckInAt)*time.Millisecond))
	s.bus.Emit(bus.KindCheckedOut, Movement{Ticket: v.Ticket, Plate: v.Plate, Type: v.Type, At: time.UnixMilli(v.CheckOutAt)})
	return v, nil
}

// Spaces returns capacity per vehicle type.
func (s *Service) Spaces() ([]store.Space, error) {
	return s.db.ListSpaces()
}

// Revision changes whenever occupancy changes.
func (s *Service) Revision() (int64, error) {
	return s.db.Revision()
}

// Report returns the spaces, the parked vehicles and the latest activity.
func (s *Service) Report(activityLimit int) (*Report, error) {
	spaces, err := s.db.ListSpaces()
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	vehicles, err := s.db.ListActiveVehicles()
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	activity, err := s.db.RecentActivity(activityLimit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	rev, err := s.db.Revision()
	if err != nil {
		return nil, fmt.Errorf("revision: %w", err)
	}
	return &Report{Spaces: spaces, Vehicles: vehicles, Activity: activity, Revision: rev}, nil
}

// Message returns the text shown to a user for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidPlate):
		return plate.InvalidMessage
	case errors.Is(err, ErrNoSpace):
		return "No available spaces for this vehicle type!"
	case errors.Is(err, ErrAlreadyParked):
		return "Vehicle is already parked!"
	case errors.Is(err, ErrNotFound):
		return "Vehicle not found or already checked out!"
	case errors.Is(err, ErrBadRequest):
		return err.Error()
	default:
		return "Something went wrong, please try again."
	}
}

// Success messages shown after a completed action.
const (
	CheckedInMessage  = "Vehicle checked in successfully!"
	CheckedOutMessage = "Vehicle checked out successfully!"
)

// IsUserError reports whether err is caused by the request rather than the server.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidPlate) || errors.Is(err, ErrNoSpace) ||
		errors.Is(err, ErrAlreadyParked) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBadRequest)
}
