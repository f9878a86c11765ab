package api

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/matheus3301/chinopark/internal/bus"
	"github.com/matheus3301/chinopark/internal/config"
	"github.com/matheus3301/chinopark/internal/parking"
)

// Status is the GetStatus response.
type Status struct {
	Site           string    `json:"site" yaml:"site"`
	PID            int       `json:"pid" yaml:"pid"`
	StartedAt      time.Time `json:"started_at" yaml:"started_at"`
	UptimeMs       int64     `json:"uptime_ms" yaml:"uptime_ms"`
	HTTPAddr       string    `json:"http_addr" yaml:"http_addr"`
	Revision       int64     `json:"revision" yaml:"revision"`
	ParkedVehicles int       `json:"parked_vehicles" yaml:"parked_vehicles"`
	OfflineVersion string    `json:"offline_version" yaml:"offline_version"`
	OfflineProfile string    `json:"offline_profile" yaml:"offline_profile"`
}

// CheckInArgs is the CheckIn request body.
type CheckInArgs struct {
	Plate           string `json:"plate_number"`
	Type            string `json:"vehicle_type"`
	Color           string `json:"vehicle_color,omitempty"`
	DriverName      string `json:"driver_name,omitempty"`
	DriverIDType    string `json:"driver_id_type,omitempty"`
	DriverIDNumber  string `json:"driver_id_number,omitempty"`
	DriverPhone     string `json:"driver_phone,omitempty"`
	DriverResidence string `json:"driver_residence,omitempty"`
}

// CheckOutArgs is the CheckOut request body.
type CheckOutArgs struct {
	Plate string `json:"plate_number"`
}

// WatchArgs is the WatchEvents request body.
type WatchArgs struct {
	// Prefix filters event kinds; empty means "parking.".
	Prefix string `json:"prefix,omitempty"`
}

// Event is one WatchEvents message.
type Event struct {
	ID         string         `json:"event_id" yaml:"event_id"`
	Site       string         `json:"site" yaml:"site"`
	Kind       string         `json:"kind" yaml:"kind"`
	OccurredAt time.Time      `json:"occurred_at" yaml:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
}

type spacesDoc struct {
	Spaces []parking.SpaceView `json:"spaces"`
}

// ParkingService implements ParkingServer over a parking.Service.
type ParkingService struct {
	site      string
	startedAt time.Time
	cfg       *config.Config
	svc       *parking.Service
	bus       *bus.Bus
	logger    *zap.Logger
}

var _ ParkingServer = (*ParkingService)(nil)

// NewParkingService creates the control API for one site.
func NewParkingService(site string, cfg *config.Config, svc *parking.Service, b *bus.Bus, logger *zap.Logger) *ParkingService {
	return &ParkingService{
		site:      site,
		startedAt: time.Now(),
		cfg:       cfg,
		svc:       svc,
		bus:       b,
		logger:    logger,
	}
}

func (s *ParkingService) GetStatus(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	report, err := s.svc.Report(0)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(Status{
		Site:           s.site,
		PID:            os.Getpid(),
		StartedAt:      s.startedAt.UTC(),
		UptimeMs:       time.Since(s.startedAt).Milliseconds(),
		HTTPAddr:       s.cfg.Server.HTTPAddr,
		Revision:       report.Revision,
		ParkedVehicles: len(report.Vehicles),
		OfflineVersion: s.cfg.Offline.Version,
		OfflineProfile: s.cfg.Offline.Profile,
	})
}

func (s *ParkingService) ListSpaces(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	spaces, err := s.svc.Spaces()
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(spacesDoc{Spaces: parking.NewSpaceViews(spaces)})
}

func (s *ParkingService) GetReport(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	limit := 20
	if v, ok := in.GetFields()["activity_limit"]; ok {
		limit = int(v.GetNumberValue())
	}
	report, err := s.svc.Report(limit)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(parking.NewReportView(report))
}

func (s *ParkingService) CheckIn(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var args CheckInArgs
	if err := Decode(in, &args); err != nil {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	v, err := s.svc.CheckIn(parking.CheckInRequest{
		Plate:           args.Plate,
		Type:            args.Type,
		Color:           args.Color,
		DriverName:      args.DriverName,
		DriverIDType:    args.DriverIDType,
		DriverIDNumber:  args.DriverIDNumber,
		DriverPhone:     args.DriverPhone,
		DriverResidence: args.DriverResidence,
	})
	if err != nil {
		return nil, s.fail("check-in", err)
	}
	return encode(parking.NewVehicleView(v))
}

func (s *ParkingService) CheckOut(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var args CheckOutArgs
	if err := Decode(in, &args); err != nil {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	v, err := s.svc.CheckOut(args.Plate)
	if err != nil {
		return nil, s.fail("check-out", err)
	}
	return encode(parking.NewVehicleView(v))
}

func (s *ParkingService) WatchEvents(in *structpb.Struct, stream EventStream) error {
	var args WatchArgs
	if err := Decode(in, &args); err != nil {
		return grpcstatus.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	prefix := args.Prefix
	if prefix == "" {
		prefix = "parking."
	}
	if !strings.HasPrefix(prefix, "parking.") && !strings.HasPrefix("parking.", prefix) {
		return grpcstatus.Errorf(codes.InvalidArgument, "unknown event namespace %q", prefix)
	}

	ch, unsub := s.bus.Subscribe(prefix, 256)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			msg, err := s.envelope(evt)
			if err != nil {
				s.logger.Warn("dropping unencodable event", zap.String("kind", evt.Kind), zap.Error(err))
				continue
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

func (s *ParkingService) envelope(evt bus.Event) (*structpb.Struct, error) {
	e := Event{
		ID:         uuid.NewString(),
		Site:       s.site,
		Kind:       evt.Kind,
		OccurredAt: evt.Timestamp.UTC(),
	}
	if evt.Payload != nil {
		p, err := Encode(evt.Payload)
		if err != nil {
			return nil, err
		}
		e.Payload = p.AsMap()
	}
	return Encode(e)
}

func (s *ParkingService) fail(action string, err error) error {
	st := toStatus(err)
	if grpcstatus.Code(st) == codes.Internal {
		s.logger.Error(action+" failed", zap.Error(err))
	}
	return st
}

// toStatus maps parking errors to gRPC status codes carrying the user message.
func toStatus(err error) error {
	msg := parking.Message(err)
	switch {
	case errors.Is(err, parking.ErrInvalidPlate), errors.Is(err, parking.ErrBadRequest):
		return grpcstatus.Error(codes.InvalidArgument, msg)
	case errors.Is(err, parking.ErrNoSpace):
		return grpcstatus.Error(codes.ResourceExhausted, msg)
	case errors.Is(err, parking.ErrAlreadyParked):
		return grpcstatus.Error(codes.AlreadyExists, msg)
	case errors.Is(err, parking.ErrNotFound):
		return grpcstatus.Error(codes.NotFound, msg)
	default:
		return grpcstatus.Error(codes.Internal, err.Error())
	}
}

func encode(v any) (*structpb.Struct, error) {
	out, err := Encode(v)
	if err != nil {
		return nil, grpcstatus.Error(codes.Internal, err.Error())
	}
	return out, nil
}
