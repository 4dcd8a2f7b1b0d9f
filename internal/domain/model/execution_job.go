package model

import "time"

const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed" // rejected before a submission row existed, or the store failed
)

// SubmissionRequest is the judging entry point's input, shared by the
// synchronous endpoint and queued jobs.
type SubmissionRequest struct {
	ProblemID         string            `json:"problemId" validate:"required"`
	UserID            string            `json:"userId" validate:"required"`
	Code              string            `json:"code" validate:"required"`
	Language          Language          `json:"language" validate:"required,language"`
	ExecutionProvider ExecutionProvider `json:"executionProvider,omitempty" validate:"omitempty,provider"`
}

// JudgeOutcome is what one submit call returns.
type JudgeOutcome struct {
	Submission  *Submission      `json:"submission"`
	TestResults []TestCaseResult `json:"test_results"`
	RateLimited bool             `json:"rate_limited"`
}

// ExecutionJob is an asynchronous judge request parked in Redis.
type ExecutionJob struct {
	ID        string            `json:"id"`
	Request   SubmissionRequest `json:"request"`
	Status    string            `json:"status"`
	Attempts  int               `json:"attempts"`
	Outcome   *JudgeOutcome     `json:"outcome,omitempty"`
	LastError *string           `json:"last_error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
