package offline

import (
	"fmt"
	"net/http"
	"net/url"
)

// Profile selects which requests the worker intercepts and which network
// responses it writes back to the cache.
type Profile string

const (
	// ProfileStrict intercepts every GET and stores only same-origin 200s.
	ProfileStrict Profile = "strict"
	// ProfilePermissive intercepts GETs with an absolute http(s) URL and
	// stores any 200.
	ProfilePermissive Profile = "permissive"
)

// ParseProfile validates a profile name from configuration.
func ParseProfile(s string) (Profile, error) {
	switch p := Profile(s); p {
	case ProfileStrict, ProfilePermissive:
		return p, nil
	case "":
		return ProfileStrict, nil
	default:
		return "", fmt.Errorf("unknown offline profile %q (want strict or permissive)", s)
	}
}

// Intercepts reports whether a request with this method and raw URL goes
// through the cache at all.
func (p Profile) Intercepts(method, rawURL string) bool {
	if httpMethod(method) != http.MethodGet {
		return false
	}
	if p != ProfilePermissive {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Cacheable reports whether a network response may be written back.
func (p Profile) Cacheable(resp *Response) bool {
	if resp == nil || resp.Status != http.StatusOK {
		return false
	}
	if p == ProfilePermissive {
		return true
	}
	return resp.Type == TypeBasic
}
