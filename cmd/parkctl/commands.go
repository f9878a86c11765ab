package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/status"

	"github.com/matheus3301/chinopark/internal/api"
	"github.com/matheus3301/chinopark/internal/lock"
	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/plate"
	"github.com/matheus3301/chinopark/internal/site"
	"github.com/matheus3301/chinopark/internal/tui/views"
)

// userError strips the gRPC envelope so scripts see parkd's own message.
func userError(err error) error {
	if s, ok := status.FromError(err); ok {
		return errors.New(s.Message())
	}
	return err
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, ctx, done, err := opts.connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer done()
			st, err := c.GetStatus(ctx)
			if err != nil {
				return userError(err)
			}
			p, _ := newPrinter(opts.output, cmd.OutOrStdout())
			return p.status(st)
		},
	}
}

func newSpacesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "spaces",
		Short: "List capacity per vehicle type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, ctx, done, err := opts.connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer done()
			spaces, err := c.ListSpaces(ctx)
			if err != nil {
				return userError(err)
			}
			p, _ := newPrinter(opts.output, cmd.OutOrStdout())
			return p.spaces(spaces)
		},
	}
}

func newReportCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show parked vehicles, capacity and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, ctx, done, err := opts.connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer done()
			r, err := c.GetReport(ctx, limit)
			if err != nil {
				return userError(err)
			}
			p, _ := newPrinter(opts.output, cmd.OutOrStdout())
			return p.report(r)
		},
	}
	cmd.Flags().IntVar(&limit, "activity", 20, "number of activity rows")
	return cmd
}

func newCheckInCmd(opts *options) *cobra.Command {
	var (
		args api.CheckInArgs
		qr   bool
	)
	cmd := &cobra.Command{
		Use:   "checkin <plate>",
		Short: "Park a vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, pos []string) error {
			if !plate.Valid(pos[0]) {
				return plate.ErrInvalid
			}
			args.Plate = pos[0]
			c, ctx, done, err := opts.connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer done()
			v, err := c.CheckIn(ctx, args)
			if err != nil {
				return userError(err)
			}
			p, _ := newPrinter(opts.output, cmd.OutOrStdout())
			if err := p.vehicle(v); err != nil {
				return err
			}
			if qr {
				_, err = fmt.Fprint(cmd.OutOrStdout(), "\n"+views.RenderQR(v.Ticket))
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&args.Type, "type", "t", "car", "vehicle type: "+strings.Join(parking.VehicleTypes, ", "))
	f.StringVar(&args.Color, "color", "", "vehicle color")
	f.StringVar(&args.DriverName, "driver", "", "driver name")
	f.StringVar(&args.DriverIDType, "id-type", "", "driver ID type: "+strings.Join(parking.DriverIDTypes, ", "))
	f.StringVar(&args.DriverIDNumber, "id-number", "", "driver ID number")
	f.StringVar(&args.DriverPhone, "phone", "", "driver phone")
	f.StringVar(&args.DriverResidence, "residence", "", "driver residence")
	f.BoolVar(&qr, "qr", false, "print the ticket as a QR code")
	return cmd
}

func newCheckOutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <plate>",
		Short: "End a vehicle's visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, pos []string) error {
			if !plate.Valid(pos[0]) {
				return plate.ErrInvalid
			}
			c, ctx, done, err := opts.connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer done()
			v, err := c.CheckOut(ctx, pos[0])
			if err != nil {
				return userError(err)
			}
			p, _ := newPrinter(opts.output, cmd.OutOrStdout())
			return p.vehicle(v)
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream parking events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parent, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			c, ctx, done, err := opts.connect(parent, false)
			if err != nil {
				return err
			}
			defer done()
			events, errc, err := c.WatchEvents(ctx, prefix)
			if err != nil {
				return userError(err)
			}
			p, _ := newPrinter(opts.output, cmd.OutOrStdout())
			for evt := range events {
				if err := p.event(evt); err != nil {
					return err
				}
			}
			select {
			case err := <-errc:
				return userError(err)
			default:
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "parking.", "event kind prefix")
	return cmd
}

func newLockCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Show which process holds the site lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := lock.Inspect(site.Dir(opts.site))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if h == nil {
				_, err = fmt.Fprintf(out, "site %q is not locked\n", opts.site)
				return err
			}
			_, err = fmt.Fprintf(out, "site %q locked by pid %d since %s\n", opts.site, h.PID, h.Since.Local().Format("2006-01-02 15:04:05"))
			return err
		},
	}
}
