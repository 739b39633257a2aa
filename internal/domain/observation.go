package domain

import (
	"errors"

	"github.com/paulmach/orb"
)

var (
	// ErrMissingColumn is returned when a required census column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformedPosition is returned when a position cannot be parsed as a WKT point.
	ErrMalformedPosition = errors.New("malformed position")
	// ErrMalformedFlag is returned when a behavior cell is neither true, false, nor blank.
	ErrMalformedFlag = errors.New("malformed behavior flag")
	// ErrMalformedShift is returned when a shift cell is neither AM, PM, nor blank.
	ErrMalformedShift = errors.New("malformed shift")
)

// Shift is the census session a sighting was recorded in.
type Shift uint8

const (
	ShiftUnknown Shift = iota
	ShiftAM
	ShiftPM
)

func (s Shift) String() string {
	switch s {
	case ShiftAM:
		return "AM"
	case ShiftPM:
		return "PM"
	default:
		return "unknown"
	}
}

// Flag is a tri-state behavior indicator. The zero value is FlagUnknown.
type Flag uint8

const (
	FlagUnknown Flag = iota
	FlagFalse
	FlagTrue
)

// Count returns 1 for FlagTrue and 0 otherwise.
func (f Flag) Count() int {
	if f == FlagTrue {
		return 1
	}
	return 0
}

// Behaviors holds the per-sighting behavior flags recorded by census volunteers.
type Behaviors struct {
	Running     Flag
	Chasing     Flag
	Climbing    Flag
	Eating      Flag
	Foraging    Flag
	Kuks        Flag
	Quaas       Flag
	Moans       Flag
	Approaches  Flag
	Indifferent Flag
	RunsFrom    Flag
}

// Observation is a single squirrel sighting. Optional text fields are nil when the
// census left them blank.
type Observation struct {
	ID       string
	Hectare  *string
	Date     *string
	Age      *string
	FurColor *string
	Location *string // "Ground Plane" or "Above Ground"
	Position orb.Point
	Shift    Shift
	Behaviors
}
