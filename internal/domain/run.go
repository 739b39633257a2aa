package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunSummary records what a single wrangler run read, matched and wrote.
type RunSummary struct {
	RunID        string
	Observations int
	Matched      int
	Unmatched    int
	Overlaps     int
	Zones        int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// StartRun opens a summary with a fresh run ID and the current time.
func StartRun() RunSummary {
	return RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: Now(),
	}
}

// Finish stamps the completion time.
func (s *RunSummary) Finish() {
	s.FinishedAt = Now()
}

// Duration is the wall time between start and finish.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
