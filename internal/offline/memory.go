package offline

import (
	"context"
	"slices"
	"sync"
)

// MemoryStorage is an in-process CacheStorage and RegistrationStore.
type MemoryStorage struct {
	mu     sync.Mutex
	order  []string
	caches map[string]*memoryCache
	active string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{caches: make(map[string]*memoryCache)}
}

func (s *MemoryStorage) Open(_ context.Context, name string) (Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caches[name]
	if !ok {
		c = &memoryCache{entries: make(map[string]*Response)}
		s.caches[name] = c
		s.order = append(s.order, name)
	}
	return c, nil
}

func (s *MemoryStorage) Lookup(_ context.Context, name string) (Cache, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caches[name]
	if !ok {
		return nil, false, nil
	}
	return c, true, nil
}

func (s *MemoryStorage) Keys(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order), nil
}

func (s *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.caches[name]; !ok {
		return false, nil
	}
	delete(s.caches, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return true, nil
}

func (s *MemoryStorage) ActiveVersion(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == "" {
		return "", ErrNoRegistration
	}
	return s.active, nil
}

func (s *MemoryStorage) SetActiveVersion(_ context.Context, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = version
	return nil
}

type memoryCache struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*Response
}

func (c *memoryCache) Match(_ context.Context, key string) (*Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[key].Clone(), nil
}

func (c *memoryCache) Put(_ context.Context, key string, resp *Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, resp)
	return nil
}

func (c *memoryCache) PutAll(_ context.Context, entries []Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		c.put(e.Key, e.Response)
	}
	return nil
}

func (c *memoryCache) put(key string, resp *Response) {
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = resp.Clone()
}

func (c *memoryCache) Keys(context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order), nil
}
