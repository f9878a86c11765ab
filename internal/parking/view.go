package parking

import (
	"time"

	"github.com/matheus3301/chinopark/internal/store"
)

// SpaceView is the wire form of a store.Space shared by the HTTP API, the
// control API and parkctl output.
type SpaceView struct {
	Type      string `json:"vehicle_type" yaml:"vehicle_type"`
	Total     int    `json:"total" yaml:"total"`
	Occupied  int    `json:"occupied" yaml:"occupied"`
	Available int    `json:"available" yaml:"available"`
}

// VehicleView is the wire form of a store.Vehicle.
type VehicleView struct {
	ID              int64      `json:"id" yaml:"id"`
	Ticket          string     `json:"ticket" yaml:"ticket"`
	Plate           string     `json:"plate_number" yaml:"plate_number"`
	Type            string     `json:"vehicle_type" yaml:"vehicle_type"`
	Color           string     `json:"vehicle_color,omitempty" yaml:"vehicle_color,omitempty"`
	DriverName      string     `json:"driver_name,omitempty" yaml:"driver_name,omitempty"`
	DriverIDType    string     `json:"driver_id_type,omitempty" yaml:"driver_id_type,omitempty"`
	DriverIDNumber  string     `json:"driver_id_number,omitempty" yaml:"driver_id_number,omitempty"`
	DriverPhone     string     `json:"driver_phone,omitempty" yaml:"driver_phone,omitempty"`
	DriverResidence string     `json:"driver_residence,omitempty" yaml:"driver_residence,omitempty"`
	CheckInTime     time.Time  `json:"check_in_time" yaml:"check_in_time"`
	CheckOutTime    *time.Time `json:"check_out_time,omitempty" yaml:"check_out_time,omitempty"`
	Status          string     `json:"status" yaml:"status"`
}

// ActivityView is the wire form of a journal row.
type ActivityView struct {
	Kind   string    `json:"kind" yaml:"kind"`
	Ticket string    `json:"ticket" yaml:"ticket"`
	Plate  string    `json:"plate_number" yaml:"plate_number"`
	Type   string    `json:"vehicle_type" yaml:"vehicle_type"`
	At     time.Time `json:"at" yaml:"at"`
}

// ReportView is the wire form of a Report.
type ReportView struct {
	Revision int64          `json:"revision" yaml:"revision"`
	Spaces   []SpaceView    `json:"spaces" yaml:"spaces"`
	Vehicles []VehicleView  `json:"vehicles" yaml:"vehicles"`
	Activity []ActivityView `json:"activity" yaml:"activity"`
}

func NewSpaceView(s store.Space) SpaceView {
	return SpaceView{Type: s.Type, Total: s.Total, Occupied: s.Occupied, Available: s.Available()}
}

func NewSpaceViews(spaces []store.Space) []SpaceView {
	out := make([]SpaceView, 0, len(spaces))
	for _, s := range spaces {
		out = append(out, NewSpaceView(s))
	}
	return out
}

func NewVehicleView(v *store.Vehicle) VehicleView {
	vv := VehicleView{
		ID:              v.ID,
		Ticket:          v.Ticket,
		Plate:           v.Plate,
		Type:            v.Type,
		Color:           v.Color,
		DriverName:      v.DriverName,
		DriverIDType:    v.DriverIDType,
		DriverIDNumber:  v.DriverIDNumber,
		DriverPhone:     v.DriverPhone,
		DriverResidence: v.DriverResidence,
		CheckInTime:     time.UnixMilli(v.CheckInAt).UTC(),
		Status:          v.Status,
	}
	if v.CheckOutAt != 0 {
		t := time.UnixMilli(v.CheckOutAt).UTC()
		vv.CheckOutTime = &t
	}
	return vv
}

func NewReportView(r *Report) ReportView {
	view := ReportView{
		Revision: r.Revision,
		Spaces:   NewSpaceViews(r.Spaces),
		Vehicles: make([]VehicleView, 0, len(r.Vehicles)),
		Activity: make([]ActivityView, 0, len(r.Activity)),
	}
	for i := range r.Vehicles {
		view.Vehicles = append(view.Vehicles, NewVehicleView(&r.Vehicles[i]))
	}
	for _, a := range r.Activity {
		view.Activity = append(view.Activity, ActivityView{
			Kind:   a.Kind,
			Ticket: a.Ticket,
			Plate:  a.Plate,
			Type:   a.Type,
			At:     time.UnixMilli(a.At).UTC(),
		})
	}
	return view
}
