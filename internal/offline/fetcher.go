package offline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Fetcher performs the network side of a fetch.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPFetcher fetches over an http.Client and types responses relative to Origin.
type HTTPFetcher struct {
	Client *http.Client
	Origin *url.URL
}

// Fetch issues req and buffers the whole body. Non-2xx statuses are not errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, httpMethod(req.Method), req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", req.URL, err)
	}

	// Final URL after redirects decides the response type.
	final := httpReq.URL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}
	typ := TypeCORS
	if f.Origin != nil && sameOrigin(final, f.Origin) {
		typ = TypeBasic
	}
	return &Response{
		URL:    final.String(),
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
		Type:   typ,
	}, nil
}
