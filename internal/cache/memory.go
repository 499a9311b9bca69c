package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/models"
)

// MemoryStorage keeps caches in process memory. Used for ephemeral runs and tests.
type MemoryStorage struct {
	mu     sync.Mutex
	caches map[string]*memoryCache
	order  []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{caches: make(map[string]*memoryCache)}
}

func (s *MemoryStorage) Open(_ context.Context, name string) (Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.caches[name]
	if !ok {
		c = &memoryCache{entries: make(map[string]*models.CachedResponse)}
		s.caches[name] = c
		s.order = append(s.order, name)
	}
	return c, nil
}

func (s *MemoryStorage) Has(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.caches[name]
	return ok, nil
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

func (s *MemoryStorage) Names(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order), nil
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*models.CachedResponse
	keys    []string
}

func (c *memoryCache) Match(_ context.Context, url string) (*models.CachedResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[url]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneEntry(e), nil
}

func (c *memoryCache) Put(_ context.Context, entry *models.CachedResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[entry.URL]; !ok {
		c.keys = append(c.keys, entry.URL)
	}
	c.entries[entry.URL] = cloneEntry(entry)
	return nil
}

func (c *memoryCache) Delete(_ context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[url]; ok {
		delete(c.entries, url)
		c.keys = slices.DeleteFunc(c.keys, func(k string) bool { return k == url })
	}
	return nil
}

func (c *memoryCache) Keys(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.keys), nil
}
