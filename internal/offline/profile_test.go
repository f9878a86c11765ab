package offline

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseProfile(t *testing.T) {
	for in, want := range map[string]Profile{"": ProfileStrict, "strict": ProfileStrict, "permissive": ProfilePermissive} {
		got, err := ParseProfile(in)
		if err != nil || got != want {
			t.Errorf("ParseProfile(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseProfile("loose"); err == nil {
		t.Error("ParseProfile(loose) should fail")
	}
}

func TestIntercepts(t *testing.T) {
	tests := []struct {
		profile Profile
		method  string
		url     string
		want    bool
	}{
		{ProfileStrict, http.MethodGet, "/", true},
		{ProfileStrict, "", "http://a.test/x", true},
		{ProfileStrict, http.MethodPost, "http://a.test/x", false},
		{ProfilePermissive, http.MethodGet, "http://a.test/x", true},
		{ProfilePermissive, http.MethodGet, "https://a.test/x", true},
		{ProfilePermissive, http.MethodGet, "/x", false},
		{ProfilePermissive, http.MethodGet, "ftp://a.test/x", false},
		{ProfilePermissive, http.MethodHead, "http://a.test/x", false},
	}
	for _, tt := range tests {
		if got := tt.profile.Intercepts(tt.method, tt.url); got != tt.want {
			t.Errorf("%s.Intercepts(%s %s) = %v, want %v", tt.profile, tt.method, tt.url, got, tt.want)
		}
	}
}

func TestCacheable(t *testing.T) {
	tests := []struct {
		profile Profile
		resp    *Response
		want    bool
	}{
		{ProfileStrict, &Response{Status: 200, Type: TypeBasic}, true},
		{ProfileStrict, &Response{Status: 200, Type: TypeCORS}, false},
		{ProfileStrict, &Response{Status: 200, Type: TypeOpaque}, false},
		{ProfileStrict, &Response{Status: 204, Type: TypeBasic}, false},
		{ProfilePermissive, &Response{Status: 200, Type: TypeCORS}, true},
		{ProfilePermissive, &Response{Status: 404, Type: TypeBasic}, false},
		{ProfilePermissive, nil, false},
	}
	for i, tt := range tests {
		if got := tt.profile.Cacheable(tt.resp); got != tt.want {
			t.Errorf("case %d: Cacheable = %v, want %v", i, got, tt.want)
		}
	}
}

func TestResolveManifest(t *testing.T) {
	origin, _ := url.Parse("http://park.test:5001")
	got, err := ResolveManifest(origin, []string{
		"/",
		"/static/css/style.css",
		"https://cdn.example.com/a.css#v1",
		"/static/css/style.css",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"http://park.test:5001/",
		"http://park.test:5001/static/css/style.css",
		"https://cdn.example.com/a.css",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveManifest mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultManifestsDiffer(t *testing.T) {
	strict := DefaultManifest(ProfileStrict)
	permissive := DefaultManifest(ProfilePermissive)
	if len(permissive) <= len(strict) {
		t.Errorf("permissive manifest should extend strict: %v vs %v", permissive, strict)
	}
	strict[0] = "mutated"
	if DefaultManifest(ProfileStrict)[0] != "/" {
		t.Error("DefaultManifest must return a fresh slice")
	}
}

func TestResponseClone(t *testing.T) {
	r := &Response{Status: 200, Header: http.Header{"A": {"1"}}, Body: []byte("abc")}
	c := r.Clone()
	c.Body[0] = 'x'
	c.Header.Set("A", "2")
	if string(r.Body) != "abc" || r.Header.Get("A") != "1" {
		t.Errorf("Clone shares state: %+v", r)
	}
}
