package offline

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, c *http.Client, method, url string) (int, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, strings.NewReader(""))
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestTransportWithoutWorkerUsesBase(t *testing.T) {
	mt := mockNetwork(t, "/report")
	client := NewClient(&Transport{Controller: NewController(nil), Base: mt})

	status, body := get(t, client, http.MethodGet, testOrigin+"/report")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "body of /report", body)
	require.Equal(t, 1, mt.GetTotalCallCount())
}

func TestTransportServesFromCache(t *testing.T) {
	mt := mockManifest(t)
	controller := NewController(nil)
	installed(t, NewMemoryStorage(), mt, func(o *Options) { o.Clients = controller })
	client := NewClient(&Transport{Controller: controller, Base: mt})

	status, body := get(t, client, http.MethodGet, testOrigin+"/static/css/style.css")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "body of /static/css/style.css", body)
	require.Zero(t, mt.GetTotalCallCount())
}

func TestTransportPassesThroughPost(t *testing.T) {
	mt := mockManifest(t)
	controller := NewController(nil)
	installed(t, NewMemoryStorage(), mt, func(o *Options) { o.Clients = controller })
	mt.RegisterResponder(http.MethodPost, testOrigin+"/check-in", httpmock.NewStringResponder(http.StatusSeeOther, ""))
	client := NewClient(&Transport{Controller: controller, Base: mt})
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	status, _ := get(t, client, http.MethodPost, testOrigin+"/check-in")
	require.Equal(t, http.StatusSeeOther, status)
	require.Equal(t, 1, mt.GetCallCountInfo()["POST "+testOrigin+"/check-in"])
}

func TestTransportSurfacesNetworkError(t *testing.T) {
	mt := mockManifest(t)
	controller := NewController(nil)
	installed(t, NewMemoryStorage(), mt, func(o *Options) { o.Clients = controller })
	client := NewClient(&Transport{Controller: controller, Base: mt})

	_, err := client.Get(testOrigin + "/unregistered")
	require.Error(t, err)
}
