// Package client talks to parkd's control API over its Unix socket.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/matheus3301/chinopark/internal/api"
	"github.com/matheus3301/chinopark/internal/parking"
)

// Client wraps the gRPC connection to the daemon.
type Client struct {
	conn *grpc.ClientConn
}

// New dials the daemon's Unix domain socket. The connection is lazy; the
// first call reports an unreachable daemon.
func New(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, in, out any) error {
	req, err := api.Encode(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return api.Decode(resp, out)
}

// GetStatus returns daemon status.
func (c *Client) GetStatus(ctx context.Context) (*api.Status, error) {
	var st api.Status
	if err := c.call(ctx, api.MethodGetStatus, struct{}{}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListSpaces returns capacity per vehicle type.
func (c *Client) ListSpaces(ctx context.Context) ([]parking.SpaceView, error) {
	var doc struct {
		Spaces []parking.SpaceView `json:"spaces"`
	}
	if err := c.call(ctx, api.MethodListSpaces, struct{}{}, &doc); err != nil {
		return nil, err
	}
	return doc.Spaces, nil
}

// GetReport returns the occupancy report with up to activityLimit journal rows.
func (c *Client) GetReport(ctx context.Context, activityLimit int) (*parking.ReportView, error) {
	var r parking.ReportView
	in := map[string]any{"activity_limit": activityLimit}
	if err := c.call(ctx, api.MethodGetReport, in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CheckIn parks a vehicle.
func (c *Client) CheckIn(ctx context.Context, args api.CheckInArgs) (*parking.VehicleView, error) {
	var v parking.VehicleView
	if err := c.call(ctx, api.MethodCheckIn, args, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CheckOut ends a visit.
func (c *Client) CheckOut(ctx context.Context, plate string) (*parking.VehicleView, error) {
	var v parking.VehicleView
	if err := c.call(ctx, api.MethodCheckOut, api.CheckOutArgs{Plate: plate}, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// WatchEvents streams bus events under prefix until ctx ends or the stream fails.
// The returned channel is closed when the stream ends; the error, if any, is
// delivered on errc.
func (c *Client) WatchEvents(ctx context.Context, prefix string) (<-chan api.Event, <-chan error, error) {
	stream, err := c.conn.NewStream(ctx, &api.ServiceDesc.Streams[0], api.MethodWatchEvents)
	if err != nil {
		return nil, nil, err
	}
	req, err := api.Encode(api.WatchArgs{Prefix: prefix})
	if err != nil {
		return nil, nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, nil, err
	}

	events := make(chan api.Event, 16)
	errc := make(chan error, 1)
	go func() {
		defer close(events)
		for {
			msg := new(structpb.Struct)
			if err := stream.RecvMsg(msg); err != nil {
				if ctx.Err() == nil {
					errc <- err
				}
				return
			}
			var evt api.Event
			if err := api.Decode(msg, &evt); err != nil {
				errc <- err
				return
			}
			select {
			case events <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, errc, nil
}
