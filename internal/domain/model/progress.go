package model

import "time"

type UserProblemProgress struct {
	UserID          string     `json:"user_id"`
	ProblemID       string     `json:"problem_id"`
	IsSolved        bool       `json:"is_solved"` // one-way latch
	IsAttempted     bool       `json:"is_attempted"`
	TotalAttempts   int        `json:"total_attempts"`
	FirstSolvedAt   *time.Time `json:"first_solved_at,omitempty"`
	LastAttemptedAt time.Time  `json:"last_attempted_at"`
}

// NextProgress folds one judged attempt into the previous row (nil when the
// user never attempted the problem).
func NextProgress(prev *UserProblemProgress, userID, problemID string, accepted bool, now time.Time) UserProblemProgress {
	next := UserProblemProgress{
		UserID:          userID,
		ProblemID:       problemID,
		IsSolved:        accepted,
		IsAttempted:     true,
		TotalAttempts:   1,
		LastAttemptedAt: now,
	}
	if prev != nil {
		next.IsSolved = accepted || prev.IsSolved
		next.TotalAttempts = prev.TotalAttempts + 1
		next.FirstSolvedAt = prev.FirstSolvedAt
	}
	if accepted && next.FirstSolvedAt == nil {
		solvedAt := now
		next.FirstSolvedAt = &solvedAt
	}
	return next
}
