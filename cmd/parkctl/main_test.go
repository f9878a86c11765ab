package main

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/matheus3301/chinopark/internal/api"
	"github.com/matheus3301/chinopark/internal/bus"
	"github.com/matheus3301/chinopark/internal/config"
	"github.com/matheus3301/chinopark/internal/lock"
	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/plate"
	"github.com/matheus3301/chinopark/internal/site"
	"github.com/matheus3301/chinopark/internal/store"
	"github.com/matheus3301/chinopark/internal/tui/client"
)

// startDaemon serves the control API on a temporary socket and returns a
// dial func that ignores the site path.
func startDaemon(t *testing.T) func(string) (*client.Client, error) {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "parkctl-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	db, err := store.Open(filepath.Join(dir, "park.db"))
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	svc := parking.NewService(db, b, zap.NewNop())
	srv := grpc.NewServer()
	api.RegisterParkingServer(srv, api.NewParkingService("test", config.Default(), svc, b, zap.NewNop()))

	socket := filepath.Join(dir, "d.sock")
	ln, err := net.Listen("unix", socket)
	require.NoError(t, err)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(srv.Stop)

	return func(string) (*client.Client, error) { return client.New(socket) }
}

func run(t *testing.T, opts *options, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out bytes.Buffer
	cmd := newRootCmd(opts)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func noDial(t *testing.T) func(string) (*client.Client, error) {
	return func(string) (*client.Client, error) {
		t.Fatal("unexpected dial")
		return nil, nil
	}
}

func TestCheckInRejectsInvalidPlateBeforeDialing(t *testing.T) {
	_, err := run(t, &options{dial: noDial(t)}, "checkin", "AB")
	require.ErrorIs(t, err, plate.ErrInvalid)

	_, err = run(t, &options{dial: noDial(t)}, "checkout", "AB-12")
	require.ErrorIs(t, err, plate.ErrInvalid)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, &options{dial: noDial(t)}, "-o", "xml", "spaces")
	require.ErrorContains(t, err, "unknown output format")
}

func TestInvalidSiteName(t *testing.T) {
	_, err := run(t, &options{dial: noDial(t)}, "--site", "Bad Site", "status")
	require.Error(t, err)
}

func TestCheckInCheckOutRoundTrip(t *testing.T) {
	dial := startDaemon(t)

	out, err := run(t, &options{dial: dial}, "-o", "json", "checkin", "ab123", "--type", "bajaj")
	require.NoError(t, err)
	var v parking.VehicleView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	require.Equal(t, "AB123", v.Plate)
	require.Equal(t, "bajaj", v.Type)
	require.NotEmpty(t, v.Ticket)

	_, err = run(t, &options{dial: dial}, "checkin", "AB123")
	require.EqualError(t, err, "Vehicle is already parked!")

	out, err = run(t, &options{dial: dial}, "spaces")
	require.NoError(t, err)
	require.Contains(t, out, "AVAILABLE")
	require.Regexp(t, `bajaj\s+30\s+1\s+29`, out)

	out, err = run(t, &options{dial: dial}, "checkout", "AB123")
	require.NoError(t, err)
	require.Contains(t, out, "completed")

	_, err = run(t, &options{dial: dial}, "checkout", "AB123")
	require.EqualError(t, err, "Vehicle not found or already checked out!")
}

func TestCheckInPrintsQR(t *testing.T) {
	dial := startDaemon(t)
	out, err := run(t, &options{dial: dial}, "checkin", "QR777", "--qr")
	require.NoError(t, err)
	require.Contains(t, out, "Ticket:")
	require.Contains(t, out, "█")
}

func TestLockCommand(t *testing.T) {
	home := t.TempDir()
	opts := &options{dial: noDial(t)}
	cmd := newRootCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--site", "lot", "lock"})

	t.Setenv("HOME", home)
	require.NoError(t, cmd.Execute())
	require.Equal(t, "site \"lot\" is not locked\n", out.String())

	require.NoError(t, os.MkdirAll(site.Dir("lot"), 0o700))
	lk, err := lock.Acquire(site.Dir("lot"))
	require.NoError(t, err)
	defer func() { _ = lk.Release() }()

	out.Reset()
	cmd = newRootCmd(&options{dial: noDial(t)})
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--site", "lot", "lock"})
	require.NoError(t, cmd.Execute())
	require.True(t, strings.HasPrefix(out.String(), "site \"lot\" locked by pid "), out.String())
}
