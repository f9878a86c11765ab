// Package model holds parktui state fetched from the parkd web API.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/matheus3301/chinopark/internal/parking"
)

// RevisionHeader mirrors the header parkd sets on API responses.
const RevisionHeader = "X-Park-Revision"

// APIError is a 4xx/5xx answer from parkd carrying its user-facing message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// CheckInForm is the body of POST /api/v1/vehicles.
type CheckInForm struct {
	Plate           string `json:"plate_number"`
	Type            string `json:"vehicle_type"`
	Color           string `json:"vehicle_color,omitempty"`
	DriverName      string `json:"driver_name,omitempty"`
	DriverIDType    string `json:"driver_id_type,omitempty"`
	DriverIDNumber  string `json:"driver_id_number,omitempty"`
	DriverPhone     string `json:"driver_phone,omitempty"`
	DriverResidence string `json:"driver_residence,omitempty"`
}

// ViewModel caches the occupancy report and signals UI refreshes.
//
// Reads are keyed by revision: a HEAD probe asks parkd for the current
// revision and the report is then fetched as /api/v1/report?rev=N, which the
// offline worker answers from cache when it has seen that revision. When the
// probe fails the last known revision is served from cache.
type ViewModel struct {
	mu sync.RWMutex

	client   *http.Client
	origin   string
	report   *parking.ReportView
	revision int64
	known    bool
	online   bool

	refreshCh chan struct{}
}

// NewViewModel creates a view model that talks to the web app at origin.
func NewViewModel(c *http.Client, origin string) *ViewModel {
	return &ViewModel{
		client:    c,
		origin:    strings.TrimRight(origin, "/"),
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// Refresh reloads the report. It fails only when parkd is unreachable and no
// revision has been seen yet, or when the report itself cannot be loaded.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	rev, probeErr := vm.probeRevision(ctx)
	online := probeErr == nil
	if !online {
		vm.mu.RLock()
		known, last := vm.known, vm.revision
		vm.mu.RUnlock()
		if !known {
			vm.setOnline(false)
			return fmt.Errorf("parkd unreachable: %w", probeErr)
		}
		rev = last
	}

	var report parking.ReportView
	if err := vm.getJSON(ctx, "/api/v1/report?rev="+strconv.FormatInt(rev, 10), &report); err != nil {
		vm.setOnline(false)
		return err
	}

	vm.mu.Lock()
	vm.report = &report
	vm.revision = rev
	vm.known = true
	vm.online = online
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// CheckIn parks a vehicle through the web API.
func (vm *ViewModel) CheckIn(ctx context.Context, form CheckInForm) (*parking.VehicleView, error) {
	var v parking.VehicleView
	if err := vm.postJSON(ctx, "/api/v1/vehicles", form, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CheckOut ends a visit through the web API.
func (vm *ViewModel) CheckOut(ctx context.Context, plate string) (*parking.VehicleView, error) {
	var v parking.VehicleView
	path := "/api/v1/vehicles/" + url.PathEscape(strings.TrimSpace(plate)) + "/checkout"
	if err := vm.postJSON(ctx, path, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Report returns the last loaded report, or nil.
func (vm *ViewModel) Report() *parking.ReportView {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.report
}

// Online reports whether the last refresh reached parkd.
func (vm *ViewModel) Online() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.online
}

// Revision returns the revision of the report on screen.
func (vm *ViewModel) Revision() int64 {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.revision
}

func (vm *ViewModel) setOnline(v bool) {
	vm.mu.Lock()
	vm.online = v
	vm.mu.Unlock()
}

func (vm *ViewModel) probeRevision(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, vm.origin+"/api/v1/revision", nil)
	if err != nil {
		return 0, err
	}
	resp, err := vm.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, &APIError{Status: resp.StatusCode, Message: resp.Status}
	}
	rev, err := strconv.ParseInt(resp.Header.Get(RevisionHeader), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s header: %w", RevisionHeader, err)
	}
	return rev, nil
}

func (vm *ViewModel) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, vm.origin+path, nil)
	if err != nil {
		return err
	}
	return vm.do(req, out)
}

func (vm *ViewModel) postJSON(ctx context.Context, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, vm.origin+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return vm.do(req, out)
}

func (vm *ViewModel) do(req *http.Request, out any) error {
	resp, err := vm.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var doc struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil || doc.Error == "" {
			doc.Error = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: doc.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}
