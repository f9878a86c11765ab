package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matheus3301/chinopark/internal/api"
	"github.com/matheus3301/chinopark/internal/parking"
)

// printer renders command results as an aligned table, JSON or YAML.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(format string, w io.Writer) (*printer, error) {
	switch format {
	case "table", "json", "yaml":
		return &printer{format: format, w: w}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// structured writes v as JSON or YAML and reports whether it did.
func (p *printer) structured(v any) (bool, error) {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

func (p *printer) table(fn func(tw *tabwriter.Writer)) error {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fn(tw)
	return tw.Flush()
}

func (p *printer) status(st *api.Status) error {
	if ok, err := p.structured(st); ok {
		return err
	}
	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Site:\t%s\n", st.Site)
		fmt.Fprintf(tw, "PID:\t%d\n", st.PID)
		fmt.Fprintf(tw, "Uptime:\t%s\n", (time.Duration(st.UptimeMs) * time.Millisecond).Round(time.Second))
		fmt.Fprintf(tw, "Web:\thttp://%s\n", st.HTTPAddr)
		fmt.Fprintf(tw, "Parked:\t%d\n", st.ParkedVehicles)
		fmt.Fprintf(tw, "Revision:\t%d\n", st.Revision)
		fmt.Fprintf(tw, "Offline cache:\t%s (%s)\n", st.OfflineVersion, st.OfflineProfile)
	})
}

func (p *printer) spaces(spaces []parking.SpaceView) error {
	if ok, err := p.structured(spaces); ok {
		return err
	}
	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "TYPE\tTOTAL\tOCCUPIED\tAVAILABLE")
		for _, s := range spaces {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", s.Type, s.Total, s.Occupied, s.Available)
		}
	})
}

func (p *printer) report(r *parking.ReportView) error {
	if ok, err := p.structured(r); ok {
		return err
	}
	if err := p.spaces(r.Spaces); err != nil {
		return err
	}
	fmt.Fprintln(p.w)
	err := p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "TICKET\tPLATE\tTYPE\tDRIVER\tSINCE")
		for _, v := range r.Vehicles {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.Ticket, v.Plate, v.Type, dash(v.DriverName), v.CheckInTime.Local().Format("2006-01-02 15:04"))
		}
	})
	if err != nil || len(r.Activity) == 0 {
		return err
	}
	fmt.Fprintln(p.w)
	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "WHEN\tEVENT\tTICKET\tPLATE")
		for _, a := range r.Activity {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.At.Local().Format("2006-01-02 15:04:05"), a.Kind, a.Ticket, a.Plate)
		}
	})
}

func (p *printer) vehicle(v *parking.VehicleView) error {
	if ok, err := p.structured(v); ok {
		return err
	}
	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Ticket:\t%s\n", v.Ticket)
		fmt.Fprintf(tw, "Plate:\t%s\n", v.Plate)
		fmt.Fprintf(tw, "Type:\t%s\n", v.Type)
		fmt.Fprintf(tw, "Status:\t%s\n", v.Status)
		fmt.Fprintf(tw, "Checked in:\t%s\n", v.CheckInTime.Local().Format("2006-01-02 15:04:05"))
		if v.CheckOutTime != nil {
			fmt.Fprintf(tw, "Checked out:\t%s\n", v.CheckOutTime.Local().Format("2006-01-02 15:04:05"))
		}
	})
}

func (p *printer) event(e api.Event) error {
	if ok, err := p.structured(e); ok {
		return err
	}
	plate, _ := e.Payload["plate_number"].(string)
	ticket, _ := e.Payload["ticket"].(string)
	_, err := fmt.Fprintf(p.w, "%s  %-22s %-10s %s\n", e.OccurredAt.Local().Format("15:04:05"), e.Kind, ticket, plate)
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
