package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// Census CSV column names.
const (
	ColumnID          = "Unique Squirrel ID"
	ColumnHectare     = "Hectare"
	ColumnShift       = "Shift"
	ColumnDate        = "Date"
	ColumnAge         = "Age"
	ColumnFurColor    = "Primary Fur Color"
	ColumnLocation    = "Location"
	ColumnPosition    = "Lat/Long"
	ColumnRunning     = "Running"
	ColumnChasing     = "Chasing"
	ColumnClimbing    = "Climbing"
	ColumnEating      = "Eating"
	ColumnForaging    = "Foraging"
	ColumnKuks        = "Kuks"
	ColumnQuaas       = "Quaas"
	ColumnMoans       = "Moans"
	ColumnApproaches  = "Approaches"
	ColumnIndifferent = "Indifferent"
	ColumnRunsFrom    = "Runs from"
)

// requiredColumns are the columns every aggregate depends on.
var requiredColumns = []string{
	ColumnID, ColumnShift, ColumnPosition,
	ColumnRunning, ColumnChasing, ColumnClimbing, ColumnEating, ColumnForaging,
	ColumnKuks, ColumnQuaas, ColumnMoans, ColumnApproaches,
}

// Columns maps census header names to record positions.
type Columns map[string]int

// NewColumns indexes a CSV header and verifies that every required column is present.
func NewColumns(header []string) (Columns, error) {
	cols := make(Columns, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

// cell returns the trimmed value of a column, or "" when the column is absent or the
// record is short.
func (c Columns) cell(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ParseObservation converts one census record into an Observation. Blank cells become
// nil/unknown values; anything present but unparseable is an error.
func ParseObservation(cols Columns, record []string) (Observation, error) {
	pos, err := parsePosition(cols.cell(record, ColumnPosition))
	if err != nil {
		return Observation{}, err
	}
	shift, err := parseShift(cols.cell(record, ColumnShift))
	if err != nil {
		return Observation{}, err
	}

	obs := Observation{
		ID:       cols.cell(record, ColumnID),
		Hectare:  optional(cols.cell(record, ColumnHectare)),
		Date:     optional(cols.cell(record, ColumnDate)),
		Age:      optional(cols.cell(record, ColumnAge)),
		FurColor: optional(cols.cell(record, ColumnFurColor)),
		Location: optional(cols.cell(record, ColumnLocation)),
		Position: pos,
		Shift:    shift,
	}

	flags := []struct {
		column string
		dst    *Flag
	}{
		{ColumnRunning, &obs.Running},
		{ColumnChasing, &obs.Chasing},
		{ColumnClimbing, &obs.Climbing},
		{ColumnEating, &obs.Eating},
		{ColumnForaging, &obs.Foraging},
		{ColumnKuks, &obs.Kuks},
		{ColumnQuaas, &obs.Quaas},
		{ColumnMoans, &obs.Moans},
		{ColumnApproaches, &obs.Approaches},
		{ColumnIndifferent, &obs.Indifferent},
		{ColumnRunsFrom, &obs.RunsFrom},
	}
	for _, f := range flags {
		v, err := parseFlag(cols.cell(record, f.column))
		if err != nil {
			return Observation{}, fmt.Errorf("column %q: %w", f.column, err)
		}
		*f.dst = v
	}

	return obs, nil
}

// parsePosition parses a WKT point such as "POINT (-73.9561 40.7940)".
func parsePosition(s string) (orb.Point, error) {
	if s == "" {
		return orb.Point{}, fmt.Errorf("%w: empty", ErrMalformedPosition)
	}
	p, err := wkt.UnmarshalPoint(s)
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %q: %v", ErrMalformedPosition, s, err)
	}
	if !finite(p.X()) || !finite(p.Y()) {
		return orb.Point{}, fmt.Errorf("%w: %q: non-finite coordinate", ErrMalformedPosition, s)
	}
	return p, nil
}

func parseShift(s string) (Shift, error) {
	switch strings.ToUpper(s) {
	case "":
		return ShiftUnknown, nil
	case "AM":
		return ShiftAM, nil
	case "PM":
		return ShiftPM, nil
	default:
		return ShiftUnknown, fmt.Errorf("%w: %q", ErrMalformedShift, s)
	}
}

func parseFlag(s string) (Flag, error) {
	switch strings.ToLower(s) {
	case "":
		return FlagUnknown, nil
	case "true":
		return FlagTrue, nil
	case "false":
		return FlagFalse, nil
	default:
		return FlagUnknown, fmt.Errorf("%w: %q", ErrMalformedFlag, s)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
