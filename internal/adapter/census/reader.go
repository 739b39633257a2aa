// Package census reads squirrel census observations from the NYC OpenData CSV export.
package census

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/squirrel-census/internal/domain"
)

// Reader loads observations from a census CSV file.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a reader for the file at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Observations reads and parses every row. The first malformed row aborts the read.
func (r *Reader) Observations(ctx context.Context) ([]domain.Observation, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open census: %w", err)
	}
	defer f.Close()

	obs, err := Decode(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("census %s: %w", r.path, err)
	}
	r.logger.Info("census loaded", "path", r.path, "observations", len(obs))
	return obs, nil
}

// Decode parses a census CSV stream. Row numbers in errors count the header as row 1.
func Decode(ctx context.Context, src io.Reader) ([]domain.Observation, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := domain.NewColumns(header)
	if err != nil {
		return nil, err
	}

	var out []domain.Observation
	for row := 2; ; row++ {
		if row%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		obs, err := domain.ParseObservation(cols, record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, obs)
	}
	return out, nil
}
