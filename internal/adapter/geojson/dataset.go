package geojson

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/squirrel-census/internal/adapter/atomicfile"
	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// DatasetWriter writes the merged dataset as a GeoJSON FeatureCollection.
type DatasetWriter struct {
	path   string
	logger *slog.Logger
}

// NewDatasetWriter creates a writer for the file at path.
func NewDatasetWriter(path string, logger *slog.Logger) *DatasetWriter {
	return &DatasetWriter{path: path, logger: logger}
}

// Name identifies the sink in logs.
func (w *DatasetWriter) Name() string { return "geojson" }

// WriteDataset replaces the file atomically: the dataset is written to a temporary
// file in the same directory and renamed over the target, so readers never see a
// partial file.
func (w *DatasetWriter) WriteDataset(_ context.Context, ds *domain.Dataset, _ domain.RunSummary) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	data = append(data, '\n')

	if err := atomicfile.Write(w.path, data); err != nil {
		return err
	}
	w.logger.Info("dataset written", "path", w.path, "zones", len(ds.Features), "bytes", len(data))
	return nil
}

// LoadDataset reads a merged dataset file.
func LoadDataset(path string) (*domain.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return DecodeDataset(data)
}

// DecodeDataset parses merged dataset GeoJSON.
func DecodeDataset(data []byte) (*domain.Dataset, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	ds, err := domain.DatasetFromFeatureCollection(fc)
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}
