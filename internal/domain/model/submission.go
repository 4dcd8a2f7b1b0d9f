package model

import "time"

type SubmissionStatus string

const (
	StatusPending      SubmissionStatus = "pending"
	StatusAccepted     SubmissionStatus = "accepted"
	StatusWrongAnswer  SubmissionStatus = "wrong_answer"
	StatusRuntimeError SubmissionStatus = "runtime_error"
	StatusRateLimited  SubmissionStatus = "rate_limited" // provider throttled us; not a judged attempt
)

// IsFinal reports whether the status is one a judged submission may rest in.
func (s SubmissionStatus) IsFinal() bool {
	switch s {
	case StatusAccepted, StatusWrongAnswer, StatusRuntimeError, StatusRateLimited:
		return true
	}
	return false
}

type Submission struct {
	ID                  string           `json:"id"`
	ProblemID           string           `json:"problem_id"`
	UserID              string           `json:"user_id"`
	Language            Language         `json:"language"`
	Code                string           `json:"code"`
	Status              SubmissionStatus `json:"status"`
	RuntimeMs           int              `json:"runtime_ms"`
	MemoryMb            int              `json:"memory_mb"`
	PassedTestCases     int              `json:"passed_test_cases"`
	TotalTestCases      int              `json:"total_test_cases"`
	FailedTestCaseIndex *int             `json:"failed_test_case_index,omitempty"`
	ErrorMessage        *string          `json:"error_message,omitempty"`
	SubmittedAt         time.Time        `json:"submitted_at"`
	JudgedAt            *time.Time       `json:"judged_at,omitempty"`
}

// TestCaseResult is produced per attempted test case and returned to the
// caller; it is never stored on its own.
type TestCaseResult struct {
	TestCaseIndex  int     `json:"test_case_index"`
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expected_output"`
	ActualOutput   *string `json:"actual_output,omitempty"`
	Passed         bool    `json:"passed"`
	RuntimeMs      float64 `json:"runtime_ms"`
	MemoryMb       float64 `json:"memory_mb"`
}
