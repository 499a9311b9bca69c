// Package cache implements versioned named response caches and the manager
// that installs and activates one generation of them.
//
// A generation is the set of three logical caches (static shell, API
// responses, images) sharing one version tag. Storage backends keep any
// number of named caches; Manager.Activate removes every name that does not
// belong to the current generation.
package cache

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/berbagi/internal/models"
)

const (
	staticPrefix = "berbagi-story-"
	apiPrefix    = "api-cache-"
	imagePrefix  = "image-cache-"
)

// Names holds the cache names of one generation.
type Names struct {
	Static string
	API    string
	Image  string
}

func NamesFor(version string) Names {
	return Names{
		Static: staticPrefix + version,
		API:    apiPrefix + version,
		Image:  imagePrefix + version,
	}
}

func (n Names) All() []string {
	return []string{n.Static, n.API, n.Image}
}

func (n Names) Has(name string) bool {
	return slices.Contains(n.All(), name)
}

// Cache is a single named URL-keyed response cache.
// Match returns common.ErrorNotFound on a miss.
type Cache interface {
	Match(ctx context.Context, url string) (*models.CachedResponse, error)
	Put(ctx context.Context, entry *models.CachedResponse) error
	Delete(ctx context.Context, url string) error
	Keys(ctx context.Context) ([]string, error)
}

// Storage keeps named caches. Open creates the cache when it does not
// exist. Delete reports whether the cache existed.
type Storage interface {
	Open(ctx context.Context, name string) (Cache, error)
	Has(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) (bool, error)
	Names(ctx context.Context) ([]string, error)
}

func cloneEntry(e *models.CachedResponse) *models.CachedResponse {
	c := *e
	c.Header = e.Header.Clone()
	c.Body = slices.Clone(e.Body)
	return &c
}
