package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedCategory is returned for a behavior category the dashboard cannot chart.
var ErrUnsupportedCategory = errors.New("unsupported behavior category")

// BehaviorCategory names a per-zone behavior count that can be charted. The value is
// the dataset property key holding the count.
type BehaviorCategory string

const (
	RunningOrChasing BehaviorCategory = PropRunningOrChasing
	Climbing         BehaviorCategory = PropClimbing
	EatingOrForaging BehaviorCategory = PropEatingOrForaging
	Vocalizations    BehaviorCategory = PropVocalizations
	Approaches       BehaviorCategory = PropApproaches
)

// DefaultCategory is charted when no category is requested.
const DefaultCategory = RunningOrChasing

// Categories lists the chartable categories in dropdown order.
func Categories() []BehaviorCategory {
	return []BehaviorCategory{RunningOrChasing, Climbing, EatingOrForaging, Vocalizations, Approaches}
}

// ParseBehaviorCategory validates a category name. Matching is exact.
func ParseBehaviorCategory(s string) (BehaviorCategory, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedCategory, s)
}

// Label is the dropdown text for the category.
func (c BehaviorCategory) Label() string {
	switch c {
	case RunningOrChasing:
		return "Running or Chasing"
	case Climbing:
		return "Climbing"
	case EatingOrForaging:
		return "Eating or Foraging"
	case Vocalizations:
		return "Vocalizing"
	case Approaches:
		return "Approaches Humans"
	default:
		return string(c)
	}
}

// Title is the category name with underscores replaced by spaces, used in chart
// titles and tooltips.
func (c BehaviorCategory) Title() string {
	return strings.ReplaceAll(string(c), "_", " ")
}

// Value returns the aggregate's count for the category.
func (c BehaviorCategory) Value(a ZoneAggregate) (int, error) {
	switch c {
	case RunningOrChasing:
		return a.RunningOrChasing, nil
	case Climbing:
		return a.Climbing, nil
	case EatingOrForaging:
		return a.EatingOrForaging, nil
	case Vocalizations:
		return a.Vocalizations, nil
	case Approaches:
		return a.Approaches, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCategory, string(c))
	}
}
