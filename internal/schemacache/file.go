package schemacache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"applyflow/internal/logging"
	"applyflow/pkg/models"
)

// FileStore persists schemas as a single JSON document on disk, loaded eagerly
// at construction. A corrupt or missing file starts the store empty rather
// than failing.
type FileStore struct {
	path    string
	mu      sync.RWMutex
	schemas map[string]*models.FormSchema
}

// NewFileStore creates a file-backed schema store at the given path
func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{
		path:    path,
		schemas: make(map[string]*models.FormSchema),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read schema cache file: %w", err)
	}

	if err := json.Unmarshal(data, &store.schemas); err != nil {
		logging.GetGlobalLogger().Warn("Schema cache file is corrupted, starting fresh", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		store.schemas = make(map[string]*models.FormSchema)
	}

	return store, nil
}

// Get returns the cached schema for a site key
func (s *FileStore) Get(ctx context.Context, siteKey string) (*models.FormSchema, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, ok := s.schemas[siteKey]
	return schema, ok, nil
}

// Put stores the schema for a site key and rewrites the backing file
func (s *FileStore) Put(ctx context.Context, siteKey string, schema *models.FormSchema) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schemas[siteKey] = schema
	return s.flush()
}

// Clear removes a site key and rewrites the backing file
func (s *FileStore) Clear(ctx context.Context, siteKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schemas[siteKey]; !ok {
		return nil
	}

	delete(s.schemas, siteKey)
	return s.flush()
}

// Close is a no-op for the file store
func (s *FileStore) Close() error {
	return nil
}

// flush writes the full schema map to disk. Caller holds the write lock.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.schemas, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema cache: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema cache file: %w", err)
	}

	return nil
}
