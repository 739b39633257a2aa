package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestRunSummaryTiming(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2018, time.October, 6, 7, 0, 0, 0, time.UTC))
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	run := StartRun()
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, time.Date(2018, time.October, 6, 7, 0, 0, 0, time.UTC), run.StartedAt)

	fake.Advance(90 * time.Second)
	run.Finish()
	assert.Equal(t, 90*time.Second, run.Duration())
}

func TestStartRunIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, StartRun().RunID, StartRun().RunID)
}
