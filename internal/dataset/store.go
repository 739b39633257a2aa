// Package dataset holds the merged dataset served by the dashboard and keeps it in
// sync with the file the wrangler writes.
package dataset

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/squirrel-census/internal/adapter/geojson"
	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/couchcryptid/squirrel-census/internal/observability"
)

// ErrNotLoaded is reported by the readiness check until a dataset is available.
var ErrNotLoaded = errors.New("dataset not loaded")

// Store is the dashboard's read-only view of the merged dataset. Readers always see
// one complete dataset; a reload swaps the whole pointer.
type Store struct {
	path    string
	current atomic.Pointer[domain.Dataset]
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStore creates an empty store backed by the dataset file at path.
func NewStore(path string, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{path: path, logger: logger, metrics: metrics}
}

// Path is the dataset file the store loads from.
func (s *Store) Path() string {
	return s.path
}

// Load reads the dataset file and publishes it. On error the previous dataset, if
// any, stays in place.
func (s *Store) Load() error {
	ds, err := geojson.LoadDataset(s.path)
	if err != nil {
		return err
	}
	s.Set(ds)
	s.logger.Info("dataset loaded", "path", s.path, "zones", len(ds.Features))
	return nil
}

// Set publishes ds to readers.
func (s *Store) Set(ds *domain.Dataset) {
	s.current.Store(ds)
	if s.metrics != nil {
		s.metrics.DatasetZones.Set(float64(len(ds.Features)))
	}
}

// Dataset returns the current dataset, or nil before the first load.
func (s *Store) Dataset() *domain.Dataset {
	return s.current.Load()
}

// CheckReadiness reports ready once a dataset has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if s.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}
