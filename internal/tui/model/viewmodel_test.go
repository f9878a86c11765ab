package model

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/matheus3301/chinopark/internal/offline"
	"github.com/matheus3301/chinopark/internal/parking"
)

const origin = "http://parkd.test"

func revisionResponder(rev string) httpmock.Responder {
	return func(*http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(http.StatusOK, "")
		resp.Header.Set(RevisionHeader, rev)
		return resp, nil
	}
}

func reportAt(rev int64, plates ...string) parking.ReportView {
	r := parking.ReportView{Revision: rev}
	for _, p := range plates {
		r.Vehicles = append(r.Vehicles, parking.VehicleView{Plate: p, Type: "car", Status: "active"})
	}
	return r
}

// newOfflineVM wires a view model through an activated worker over mt.
func newOfflineVM(t *testing.T, mt *httpmock.MockTransport) *ViewModel {
	t.Helper()
	mt.RegisterResponder(http.MethodGet, origin+"/", httpmock.NewStringResponder(http.StatusOK, "<html></html>"))

	base, err := url.Parse(origin)
	require.NoError(t, err)
	controller := offline.NewController(nil)
	storage := offline.NewMemoryStorage()
	w, err := offline.NewWorker(offline.Options{
		Version:  "test-v1",
		Origin:   origin,
		Manifest: []string{"/"},
		Storage:  storage,
		Fetcher:  &offline.HTTPFetcher{Client: &http.Client{Transport: mt}, Origin: base},
		Clients:  controller,
	})
	require.NoError(t, err)
	require.NoError(t, offline.NewRegistration(storage, nil).Register(context.Background(), w))

	client := offline.NewClient(&offline.Transport{Controller: controller, Base: mt})
	return NewViewModel(client, origin+"/")
}

func TestRefreshCachesPerRevision(t *testing.T) {
	mt := httpmock.NewMockTransport()
	vm := newOfflineVM(t, mt)

	mt.RegisterResponder(http.MethodHead, origin+"/api/v1/revision", revisionResponder("1"))
	mt.RegisterResponderWithQuery(http.MethodGet, origin+"/api/v1/report", "rev=1",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, reportAt(1, "AB123")))

	ctx := context.Background()
	require.NoError(t, vm.Refresh(ctx))
	require.True(t, vm.Online())
	require.Equal(t, int64(1), vm.Revision())
	require.Len(t, vm.Report().Vehicles, 1)

	require.NoError(t, vm.Refresh(ctx))
	info := mt.GetCallCountInfo()
	require.Equal(t, 1, info["GET "+origin+"/api/v1/report?rev=1"], "second read of the same revision is served from cache")
	require.Equal(t, 2, info["HEAD "+origin+"/api/v1/revision"])

	mt.RegisterResponder(http.MethodHead, origin+"/api/v1/revision", revisionResponder("2"))
	mt.RegisterResponderWithQuery(http.MethodGet, origin+"/api/v1/report", "rev=2",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, reportAt(2)))

	require.NoError(t, vm.Refresh(ctx))
	require.Equal(t, int64(2), vm.Revision())
	require.Empty(t, vm.Report().Vehicles)
}

func TestRefreshOfflineServesLastRevision(t *testing.T) {
	mt := httpmock.NewMockTransport()
	vm := newOfflineVM(t, mt)

	mt.RegisterResponder(http.MethodHead, origin+"/api/v1/revision", revisionResponder("3"))
	mt.RegisterResponderWithQuery(http.MethodGet, origin+"/api/v1/report", "rev=3",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, reportAt(3, "XYZ789")))

	ctx := context.Background()
	require.NoError(t, vm.Refresh(ctx))

	down := httpmock.NewErrorResponder(errors.New("connection refused"))
	mt.RegisterResponder(http.MethodHead, origin+"/api/v1/revision", down)
	mt.RegisterResponderWithQuery(http.MethodGet, origin+"/api/v1/report", "rev=3", down)

	require.NoError(t, vm.Refresh(ctx))
	require.False(t, vm.Online())
	require.Equal(t, "XYZ789", vm.Report().Vehicles[0].Plate)
}

func TestRefreshUnreachableWithoutHistory(t *testing.T) {
	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodHead, origin+"/api/v1/revision",
		httpmock.NewErrorResponder(errors.New("connection refused")))
	vm := NewViewModel(&http.Client{Transport: mt}, origin)

	err := vm.Refresh(context.Background())
	require.ErrorContains(t, err, "parkd unreachable")
	require.False(t, vm.Online())
	require.Nil(t, vm.Report())
}

func TestCheckInSurfacesServerMessage(t *testing.T) {
	mt := httpmock.NewMockTransport()
	vm := newOfflineVM(t, mt)
	mt.RegisterResponder(http.MethodPost, origin+"/api/v1/vehicles",
		httpmock.NewJsonResponderOrPanic(http.StatusConflict, map[string]string{"error": "Vehicle is already parked!"}))

	_, err := vm.CheckIn(context.Background(), CheckInForm{Plate: "AB123", Type: "car"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "Vehicle is already parked!", err.Error())
}

func TestCheckOutPostsToPlateRoute(t *testing.T) {
	mt := httpmock.NewMockTransport()
	vm := newOfflineVM(t, mt)
	mt.RegisterResponder(http.MethodPost, origin+"/api/v1/vehicles/AB123/checkout",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, parking.VehicleView{Plate: "AB123", Status: "completed"}))

	v, err := vm.CheckOut(context.Background(), " AB123 ")
	require.NoError(t, err)
	require.Equal(t, "completed", v.Status)
	require.Equal(t, 1, mt.GetCallCountInfo()["POST "+origin+"/api/v1/vehicles/AB123/checkout"])
}

func TestBannersPopClears(t *testing.T) {
	var b Banners
	b.Push(BannerSuccess, "ok")
	b.Push(BannerDanger, "bad")
	require.Equal(t, []Banner{{BannerSuccess, "ok"}, {BannerDanger, "bad"}}, b.Pop())
	require.Empty(t, b.Pop())
}
