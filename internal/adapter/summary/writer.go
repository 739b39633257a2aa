// Package summary writes the per-zone aggregate table as CSV.
package summary

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/squirrel-census/internal/adapter/atomicfile"
	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Columns are the table headers, named like the merged dataset properties.
var Columns = []string{
	domain.PropSitename,
	domain.PropShortName,
	domain.PropCount,
	domain.PropClimbing,
	domain.PropApproaches,
	domain.PropVocalizations,
	domain.PropRunningOrChasing,
	domain.PropEatingOrForaging,
	domain.PropCountAM,
	domain.PropCountPM,
	domain.PropCountDiff,
}

var columnTypes = map[string]series.Type{
	domain.PropSitename:         series.String,
	domain.PropShortName:        series.String,
	domain.PropCount:            series.Int,
	domain.PropClimbing:         series.Int,
	domain.PropApproaches:       series.Int,
	domain.PropVocalizations:    series.Int,
	domain.PropRunningOrChasing: series.Int,
	domain.PropEatingOrForaging: series.Int,
	// Shift counts may be missing and are kept as text so that blanks survive.
	domain.PropCountAM:   series.String,
	domain.PropCountPM:   series.String,
	domain.PropCountDiff: series.String,
}

// Writer writes the aggregate table to a CSV file.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a writer for the file at path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Name identifies the sink in logs.
func (w *Writer) Name() string { return "summary" }

// WriteDataset writes one row per zone ordered by count ascending. The file is
// replaced atomically.
func (w *Writer) WriteDataset(_ context.Context, ds *domain.Dataset, _ domain.RunSummary) error {
	var buf bytes.Buffer
	if err := Encode(&buf, ds.Aggregates()); err != nil {
		return err
	}
	if err := atomicfile.Write(w.path, buf.Bytes()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	w.logger.Info("summary written", "path", w.path, "zones", len(ds.Features))
	return nil
}

// Encode writes aggregates as CSV with a header row.
func Encode(out io.Writer, aggs []domain.ZoneAggregate) error {
	if len(aggs) == 0 {
		cw := csv.NewWriter(out)
		if err := cw.Write(Columns); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		cw.Flush()
		return cw.Error()
	}
	df := Frame(aggs)
	if df.Err != nil {
		return fmt.Errorf("build summary frame: %w", df.Err)
	}
	if err := df.WriteCSV(out); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// Frame builds the aggregate table sorted by count, ties broken by sitename. aggs must
// not be empty.
func Frame(aggs []domain.ZoneAggregate) dataframe.DataFrame {
	records := make([][]string, 0, len(aggs)+1)
	records = append(records, Columns)
	for _, a := range aggs {
		records = append(records, []string{
			a.Sitename,
			stringOrBlank(a.ShortName),
			strconv.Itoa(a.Count),
			strconv.Itoa(a.Climbing),
			strconv.Itoa(a.Approaches),
			strconv.Itoa(a.Vocalizations),
			strconv.Itoa(a.RunningOrChasing),
			strconv.Itoa(a.EatingOrForaging),
			intOrBlank(a.AMCount),
			intOrBlank(a.PMCount),
			intOrBlank(a.CountDiff),
		})
	}

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.WithTypes(columnTypes),
	)
	return df.Arrange(dataframe.Sort(domain.PropCount), dataframe.Sort(domain.PropSitename))
}

func stringOrBlank(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrBlank(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
