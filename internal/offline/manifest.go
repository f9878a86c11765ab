package offline

import (
	"net/url"
	"slices"
)

var localResources = []string{
	"/",
	"/static/css/style.css",
	"/static/js/parking.js",
	"/static/icons/icon-192x192.svg",
	"/static/icons/icon-512x512.svg",
}

// DefaultManifest returns the built-in install list for a profile.
func DefaultManifest(p Profile) []string {
	m := slices.Clone(localResources)
	if p == ProfilePermissive {
		m = append(m, "/report", "/offline-manifest.json")
	}
	return m
}

// ResolveManifest turns manifest entries into cache keys, keeping order and
// dropping duplicates.
func ResolveManifest(origin *url.URL, entries []string) ([]string, error) {
	keys := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		k, err := Key(origin, e)
		if err != nil {
			return nil, err
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys, nil
}
