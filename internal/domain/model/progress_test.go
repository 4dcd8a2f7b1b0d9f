package model

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestNextProgressFirstAttempt(t *testing.T) {
	is := is.New(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	failed := NextProgress(nil, "u1", "p1", false, now)
	is.Equal(failed.TotalAttempts, 1)
	is.True(failed.IsAttempted)
	is.True(!failed.IsSolved)
	is.True(failed.FirstSolvedAt == nil)
	is.Equal(failed.LastAttemptedAt, now)

	solved := NextProgress(nil, "u1", "p1", true, now)
	is.True(solved.IsSolved)
	is.True(solved.FirstSolvedAt != nil)
	is.Equal(*solved.FirstSolvedAt, now)
}

func TestNextProgressSolvedLatch(t *testing.T) {
	is := is.New(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var prev *UserProblemProgress
	outcomes := []bool{false, true, false, false, true, false}
	for i, accepted := range outcomes {
		now := t0.Add(time.Duration(i) * time.Minute)
		next := NextProgress(prev, "u1", "p1", accepted, now)
		prev = &next
	}

	is.Equal(prev.TotalAttempts, len(outcomes))
	is.True(prev.IsSolved)
	is.Equal(*prev.FirstSolvedAt, t0.Add(time.Minute)) // first acceptance is kept
	is.Equal(prev.LastAttemptedAt, t0.Add(5*time.Minute))
}

func TestStatusIsFinal(t *testing.T) {
	is := is.New(t)
	is.True(!StatusPending.IsFinal())
	is.True(StatusAccepted.IsFinal())
	is.True(StatusWrongAnswer.IsFinal())
	is.True(StatusRuntimeError.IsFinal())
	is.True(StatusRateLimited.IsFinal())
}
