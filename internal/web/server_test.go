package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matheus3301/chinopark/internal/bus"
	"github.com/matheus3301/chinopark/internal/config"
	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/plate"
	"github.com/matheus3301/chinopark/internal/store"
)

func testServer(t *testing.T, mutate ...func(*Options)) *Server {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "park.db"))
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	opts := Options{Offline: config.Default().Offline, FormRate: 1000, FormBurst: 1000}
	for _, m := range mutate {
		m(&opts)
	}
	s, err := New(parking.NewService(db, bus.New(), zap.NewNop()), opts, zap.NewNop())
	require.NoError(t, err)
	return s
}

func do(s *Server, method, target, contentType, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(s *Server, target string, form url.Values) *httptest.ResponseRecorder {
	return do(s, http.MethodPost, target, "application/x-www-form-urlencoded", form.Encode())
}

func flashCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie {
			return c
		}
	}
	t.Fatal("no flash cookie set")
	return nil
}

func TestIndexRendersGuardedForms(t *testing.T) {
	s := testServer(t)
	rec := do(s, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, want := range []string{
		`id="checkInForm"`, `id="plateNumber"`,
		`id="checkOutForm"`, `id="checkOutPlateNumber"`,
		`data-bs-toggle="tooltip"`, `/static/js/parking.js`,
		"motorcycle", "bajaj",
	} {
		require.Contains(t, body, want)
	}
}

func TestCheckInFlow(t *testing.T) {
	s := testServer(t)

	rec := postForm(s, "/check-in", url.Values{"plate_number": {"KDA123A"}, "vehicle_type": {"car"}, "driver_name": {"Amina"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	page := do(s, http.MethodGet, "/", "", "", flashCookieFrom(t, rec))
	require.Contains(t, page.Body.String(), `class="alert alert-success"`)
	require.Contains(t, page.Body.String(), parking.CheckedInMessage)

	rec = postForm(s, "/check-in", url.Values{"plate_number": {"kda123a"}, "vehicle_type": {"motorcycle"}})
	page = do(s, http.MethodGet, "/", "", "", flashCookieFrom(t, rec))
	require.Contains(t, page.Body.String(), "Vehicle is already parked!")
	require.Contains(t, page.Body.String(), "alert-error")
}

func TestCheckInRejectsInvalidPlate(t *testing.T) {
	s := testServer(t)
	rec := postForm(s, "/check-in", url.Values{"plate_number": {"KD-1"}, "vehicle_type": {"car"}})
	page := do(s, http.MethodGet, "/", "", "", flashCookieFrom(t, rec))
	require.Contains(t, page.Body.String(), plate.InvalidMessage)

	report := do(s, http.MethodGet, "/api/v1/report", "", "")
	var view parking.ReportView
	require.NoError(t, json.Unmarshal(report.Body.Bytes(), &view))
	require.Empty(t, view.Vehicles)
}

func TestCheckOutUnknownPlate(t *testing.T) {
	s := testServer(t)
	rec := postForm(s, "/check-out", url.Values{"plate_number": {"NOPE123"}})
	page := do(s, http.MethodGet, "/", "", "", flashCookieFrom(t, rec))
	require.Contains(t, page.Body.String(), "Vehicle not found or already checked out!")
}

func TestReportPage(t *testing.T) {
	s := testServer(t)
	postForm(s, "/check-in", url.Values{"plate_number": {"BAJ777"}, "vehicle_type": {"bajaj"}, "vehicle_color": {"red"}})

	rec := do(s, http.MethodGet, "/report", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "BAJ777")
	require.Contains(t, rec.Body.String(), "red")
}

func TestAPIVehicleLifecycle(t *testing.T) {
	s := testServer(t)

	rec := do(s, http.MethodPost, "/api/v1/vehicles", "application/json", `{"plate_number":"abc123","vehicle_type":"car"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var v parking.VehicleView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.Equal(t, "ABC123", v.Plate)
	require.NotEmpty(t, v.Ticket)

	rec = do(s, http.MethodPost, "/api/v1/vehicles", "application/json", `{"plate_number":"ABC123","vehicle_type":"car"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.JSONEq(t, `{"error":"Vehicle is already parked!"}`, rec.Body.String())

	rec = do(s, http.MethodPost, "/api/v1/vehicles", "application/json", `{"plate_number":"A","vehicle_type":"car"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/api/v1/vehicles/ABC123/checkout", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.Equal(t, "completed", v.Status)
	require.NotNil(t, v.CheckOutTime)

	rec = do(s, http.MethodPost, "/api/v1/vehicles/ABC123/checkout", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSpacesAndRevision(t *testing.T) {
	s := testServer(t)

	rec := do(s, http.MethodGet, "/api/v1/spaces", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "0", rec.Header().Get(RevisionHeader))
	var spaces []parking.SpaceView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spaces))
	require.Len(t, spaces, 3)

	do(s, http.MethodPost, "/api/v1/vehicles", "application/json", `{"plate_number":"MOTO1","vehicle_type":"motorcycle"}`)

	rec = do(s, http.MethodHead, "/api/v1/revision", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1", rec.Header().Get(RevisionHeader))
	require.Zero(t, rec.Body.Len())
}

func TestOfflineManifest(t *testing.T) {
	s := testServer(t)
	rec := do(s, http.MethodGet, "/offline-manifest.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc manifestDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, config.DefaultCacheVersion, doc.Version)
	require.Equal(t, "strict", doc.Profile)
	require.Contains(t, doc.Resources, "/static/js/parking.js")

	// Every manifest entry must be served, or installs would fail.
	for _, r := range doc.Resources {
		rec := do(s, http.MethodGet, r, "", "")
		require.Equal(t, http.StatusOK, rec.Code, r)
	}
}

func TestStaticAssets(t *testing.T) {
	s := testServer(t)
	rec := do(s, http.MethodGet, "/static/js/parking.js", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), plate.InvalidMessage)

	rec = do(s, http.MethodGet, "/static/nope.css", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormRateLimit(t *testing.T) {
	s := testServer(t, func(o *Options) { o.FormRate = 0.001; o.FormBurst = 2 })

	for n := 0; n < 2; n++ {
		rec := postForm(s, "/check-out", url.Values{"plate_number": {"ABC123"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}
	rec := postForm(s, "/check-out", url.Values{"plate_number": {"ABC123"}})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads are not limited.
	require.Equal(t, http.StatusOK, do(s, http.MethodGet, "/healthz", "", "").Code)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, StatusFor(parking.ErrInvalidPlate))
	require.Equal(t, http.StatusConflict, StatusFor(parking.ErrNoSpace))
	require.Equal(t, http.StatusNotFound, StatusFor(parking.ErrNotFound))
	require.Equal(t, http.StatusInternalServerError, StatusFor(http.ErrServerClosed))
}
