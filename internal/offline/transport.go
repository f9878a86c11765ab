package offline

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Transport is an http.RoundTripper that routes requests through the
// worker claimed by Controller. Requests the worker does not intercept, and
// all requests while no worker is in control, go to Base.
type Transport struct {
	Controller *Controller
	Base       http.RoundTripper
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var w *Worker
	if t.Controller != nil {
		w = t.Controller.Current()
	}
	if w == nil {
		return t.base().RoundTrip(req)
	}

	resp, handled, err := w.Handle(req.Context(), Request{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header,
	})
	if !handled {
		return t.base().RoundTrip(req)
	}
	if err != nil {
		return nil, err
	}
	if req.Body != nil {
		_ = req.Body.Close()
	}
	return toHTTP(req, resp), nil
}

func toHTTP(req *http.Request, resp *Response) *http.Response {
	header := resp.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.Status, http.StatusText(resp.Status)),
		StatusCode:    resp.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       req,
	}
}

// NewClient returns an http.Client whose requests go through t.
func NewClient(t *Transport) *http.Client {
	return &http.Client{Transport: t}
}
