package offline

import (
	"context"
	"errors"
)

// ErrNoRegistration is returned by RegistrationStore when nothing was activated yet.
var ErrNoRegistration = errors.New("no active registration")

// CacheStorage is a set of named caches.
type CacheStorage interface {
	// Open returns the named cache, creating it if needed.
	Open(ctx context.Context, name string) (Cache, error)
	// Lookup returns the named cache without creating it. ok is false when
	// no such cache exists.
	Lookup(ctx context.Context, name string) (c Cache, ok bool, err error)
	// Keys lists cache names in creation order.
	Keys(ctx context.Context) ([]string, error)
	// Delete removes a cache and all its entries. It reports whether the cache existed.
	Delete(ctx context.Context, name string) (bool, error)
}

// Cache maps request identities to stored responses.
type Cache interface {
	// Match returns a copy of the stored response, or nil when key is absent.
	Match(ctx context.Context, key string) (*Response, error)
	Put(ctx context.Context, key string, resp *Response) error
	// PutAll stores every entry or none of them.
	PutAll(ctx context.Context, entries []Entry) error
	Keys(ctx context.Context) ([]string, error)
}

// RegistrationStore persists which cache version was last activated.
type RegistrationStore interface {
	ActiveVersion(ctx context.Context) (string, error)
	SetActiveVersion(ctx context.Context, version string) error
}
