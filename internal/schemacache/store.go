package schemacache

import (
	"context"
	"fmt"

	"applyflow/internal/config"
	"applyflow/pkg/models"
)

// Store persists derived form schemas keyed by site host. A schema stored for
// a host is reused for every later page on that host until cleared.
type Store interface {
	// Get returns the cached schema for a site key, with a hit indicator
	Get(ctx context.Context, siteKey string) (*models.FormSchema, bool, error)

	// Put stores the schema for a site key, replacing any previous entry
	Put(ctx context.Context, siteKey string, schema *models.FormSchema) error

	// Clear removes the entry for a site key if present
	Clear(ctx context.Context, siteKey string) error

	// Close releases any resources held by the store
	Close() error
}

// NewStore creates a schema store based on the configured backend
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.Cache.Backend {
	case "file":
		return NewFileStore(cfg.Cache.Path)
	case "redis":
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Cache.Backend)
	}
}
