// Package offline is a cache-first fetch layer with versioned cache stores.
//
// A Worker owns one cache version. Install fills that version's cache from a
// manifest, Activate deletes every other version and claims the clients, and
// Handle answers GET requests from the cache before falling back to the
// network. Registration drives the lifecycle for a host program and
// Transport plugs the claimed worker into an http.Client.
package offline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matheus3301/chinopark/internal/bus"
)

// Clients is the set of open clients a worker takes control of on activation.
type Clients interface {
	Claim(ctx context.Context, w *Worker) error
}

// CacheWrite is the payload of bus.KindWorkerCacheWrite events.
type CacheWrite struct {
	Version string
	Key     string
}

// Options configures a Worker.
type Options struct {
	// Version names the worker's cache store.
	Version string
	// Origin is the scope relative manifest entries and requests resolve against.
	Origin string
	// Profile defaults to ProfileStrict.
	Profile Profile
	// Manifest defaults to DefaultManifest(Profile).
	Manifest []string
	Storage  CacheStorage
	Fetcher  Fetcher
	Clients  Clients
	Bus      *bus.Bus
	Logger   *zap.Logger
}

// Worker is one versioned instance of the offline cache.
type Worker struct {
	version  string
	origin   *url.URL
	profile  Profile
	manifest []string
	storage  CacheStorage
	fetcher  Fetcher
	clients  Clients
	bus      *bus.Bus
	log      *zap.Logger
	state    *machine

	retireMu sync.RWMutex
	retiring bool
}

// NewWorker validates opts and returns a worker in the Parsed state.
func NewWorker(opts Options) (*Worker, error) {
	if opts.Version == "" {
		return nil, errors.New("worker version is required")
	}
	if opts.Storage == nil || opts.Fetcher == nil {
		return nil, errors.New("worker needs a cache storage and a fetcher")
	}
	origin, err := url.Parse(opts.Origin)
	if err != nil || !origin.IsAbs() {
		return nil, fmt.Errorf("worker origin %q must be an absolute URL", opts.Origin)
	}
	profile, err := ParseProfile(string(opts.Profile))
	if err != nil {
		return nil, err
	}
	entries := opts.Manifest
	if len(entries) == 0 {
		entries = DefaultManifest(profile)
	}
	manifest, err := ResolveManifest(origin, entries)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Worker{
		version:  opts.Version,
		origin:   origin,
		profile:  profile,
		manifest: manifest,
		storage:  opts.Storage,
		fetcher:  opts.Fetcher,
		clients:  opts.Clients,
		bus:      opts.Bus,
		log:      log.With(zap.String("cache", opts.Version)),
		state:    newMachine(opts.Version, opts.Bus),
	}, nil
}

// Version returns the cache name this worker owns.
func (w *Worker) Version() string { return w.version }

// Profile returns the fetch profile in use.
func (w *Worker) Profile() Profile { return w.profile }

// Manifest returns the resolved install list.
func (w *Worker) Manifest() []string { return append([]string(nil), w.manifest...) }

// State returns the current lifecycle state.
func (w *Worker) State() State { return w.state.Current() }

// Install fetches every manifest entry and stores them in one atomic write.
// Any fetch error or non-2xx status fails the install, leaves the cache
// untouched and makes the worker redundant.
func (w *Worker) Install(ctx context.Context) error {
	if err := w.state.Transition(Installing); err != nil {
		return err
	}
	w.log.Info("installing", zap.Int("resources", len(w.manifest)))

	if err := w.precache(ctx); err != nil {
		w.log.Error("install failed", zap.Error(err))
		_ = w.state.Transition(Redundant)
		return fmt.Errorf("install %s: %w", w.version, err)
	}

	w.log.Info("installed")
	return w.state.Transition(Installed)
}

func (w *Worker) precache(ctx context.Context) error {
	entries := make([]Entry, len(w.manifest))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range w.manifest {
		i, key := i, key
		g.Go(func() error {
			resp, err := w.fetcher.Fetch(gctx, Request{Method: "GET", URL: key})
			if err != nil {
				return fmt.Errorf("fetch %s: %w", key, err)
			}
			if !resp.OK() {
				return fmt.Errorf("fetch %s: status %d", key, resp.Status)
			}
			entries[i] = Entry{Key: key, Response: resp}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	cache, err := w.storage.Open(ctx, w.version)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if err := cache.PutAll(ctx, entries); err != nil {
		return fmt.Errorf("store manifest: %w", err)
	}
	return nil
}

// restore marks a worker whose cache survived from an earlier run as installed.
func (w *Worker) restore() error {
	return w.state.Transition(Installed)
}

// Activate deletes every cache other than this worker's version, waits for
// all deletions, then claims the clients. If a deletion fails the worker
// stays Installed and Activate may be retried.
func (w *Worker) Activate(ctx context.Context) error {
	if err := w.state.Transition(Activating); err != nil {
		return err
	}

	// The worker still in control must not refill a cache this purge removes.
	outgoing := w.controlling()
	if outgoing != nil {
		outgoing.retire()
	}
	fail := func(err error) error {
		if outgoing != nil {
			outgoing.resume()
		}
		_ = w.state.Transition(Installed)
		return err
	}

	if err := w.purge(ctx); err != nil {
		w.log.Error("activation failed", zap.Error(err))
		return fail(fmt.Errorf("activate %s: %w", w.version, err))
	}

	if w.clients != nil {
		if err := w.clients.Claim(ctx, w); err != nil {
			return fail(fmt.Errorf("claim clients: %w", err))
		}
	}

	w.log.Info("activated")
	return w.state.Transition(Activated)
}

// controlling returns the other worker currently in control of w's clients,
// when the clients can report it.
func (w *Worker) controlling() *Worker {
	c, ok := w.clients.(interface{ Current() *Worker })
	if !ok {
		return nil
	}
	if cur := c.Current(); cur != w {
		return cur
	}
	return nil
}

func (w *Worker) purge(ctx context.Context) error {
	names, err := w.storage.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list caches: %w", err)
	}

	var g errgroup.Group
	for _, name := range names {
		if name == w.version {
			continue
		}
		name := name
		g.Go(func() error {
			if _, err := w.storage.Delete(ctx, name); err != nil {
				return fmt.Errorf("delete cache %s: %w", name, err)
			}
			w.log.Info("deleted old cache", zap.String("name", name))
			return nil
		})
	}
	return g.Wait()
}

// supersede retires an activated worker once a newer one took over.
func (w *Worker) supersede() {
	if w.State() == Activated {
		_ = w.state.Transition(Redundant)
	}
}

// ErrRedundant is returned by Handle on a worker that was superseded or
// failed to install.
var ErrRedundant = errors.New("worker is redundant")

// Handle answers req cache-first. handled is false for requests the profile
// does not intercept; those must go to the network unchanged. A redundant
// worker handles nothing and returns ErrRedundant. A network error is
// returned as is.
//
// Lookups never create the cache store. Fetched responses are written back
// only while the worker is activated and not being retired.
func (w *Worker) Handle(ctx context.Context, req Request) (resp *Response, handled bool, err error) {
	if w.State() == Redundant {
		return nil, false, ErrRedundant
	}
	if !w.profile.Intercepts(req.Method, req.URL) {
		return nil, false, nil
	}
	key, err := Key(w.origin, req.URL)
	if err != nil {
		return nil, true, err
	}

	cached, err := w.match(ctx, key)
	if err != nil {
		w.log.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	if cached != nil {
		w.log.Debug("serving from cache", zap.String("key", key))
		return cached, true, nil
	}

	fetched, err := w.fetcher.Fetch(ctx, Request{Method: "GET", URL: key, Header: req.Header})
	if err != nil {
		w.log.Warn("fetch failed", zap.String("key", key), zap.Error(err))
		return nil, true, err
	}
	if w.profile.Cacheable(fetched) {
		w.writeBack(ctx, key, fetched)
	}
	return fetched, true, nil
}

func (w *Worker) match(ctx context.Context, key string) (*Response, error) {
	cache, ok, err := w.storage.Lookup(ctx, w.version)
	if err != nil || !ok {
		return nil, err
	}
	return cache.Match(ctx, key)
}

// writeBack stores a clone of resp under key. It holds the read side of
// retireMu so retire cannot return while a write is in flight.
func (w *Worker) writeBack(ctx context.Context, key string, resp *Response) {
	w.retireMu.RLock()
	defer w.retireMu.RUnlock()
	if w.retiring || w.State() != Activated {
		w.log.Debug("write-back skipped", zap.String("key", key), zap.String("state", string(w.State())))
		return
	}

	cache, err := w.storage.Open(ctx, w.version)
	if err == nil {
		err = cache.Put(ctx, key, resp.Clone())
	}
	if err != nil {
		w.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	w.log.Debug("cached new resource", zap.String("key", key))
	w.bus.Emit(bus.KindWorkerCacheWrite, CacheWrite{Version: w.version, Key: key})
}

// retire stops write-back while a successor purges old caches. Lookups keep
// serving until the successor claims the clients. When retire returns no
// write-back is in flight.
func (w *Worker) retire() {
	w.retireMu.Lock()
	w.retiring = true
	w.retireMu.Unlock()
}

// resume undoes retire after the successor failed to activate.
func (w *Worker) resume() {
	w.retireMu.Lock()
	w.retiring = false
	w.retireMu.Unlock()
}
