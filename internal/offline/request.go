package offline

import (
	"fmt"
	"net/http"
	"net/url"
)

// Request is a fetch issued by a client of the worker.
type Request struct {
	Method string
	URL    string
	Header http.Header
}

// ResponseType tells where a response came from relative to the worker origin.
type ResponseType string

const (
	TypeBasic  ResponseType = "basic"
	TypeCORS   ResponseType = "cors"
	TypeOpaque ResponseType = "opaque"
)

// Response is a fully buffered fetch result. Body can be read any number of
// times, but callers that mutate it must Clone first.
type Response struct {
	URL    string
	Status int
	Header http.Header
	Body   []byte
	Type   ResponseType
}

// OK reports whether Status is in the 2xx range.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status <= 299
}

// Clone returns a deep copy of r.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := *r
	c.Header = r.Header.Clone()
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return &c
}

// Entry is a cache key paired with the response stored under it.
type Entry struct {
	Key      string
	Response *Response
}

// Key returns the cache identity of rawURL resolved against base: the
// absolute URL without its fragment.
func Key(base *url.URL, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if !u.IsAbs() {
		if base == nil {
			return "", fmt.Errorf("relative url %q without origin", rawURL)
		}
		u = base.ResolveReference(u)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

func sameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && a.Host == b.Host
}

// httpMethod normalises an empty method to GET like net/http does.
func httpMethod(m string) string {
	if m == "" {
		return http.MethodGet
	}
	return m
}
