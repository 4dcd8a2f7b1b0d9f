package model

import "time"

// TestCase is authored elsewhere and read-only to judging. OrderIndex is
// unique per problem and fixes execution order.
type TestCase struct {
	ID             string    `json:"id"`
	ProblemID      string    `json:"problem_id"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output"`
	IsExample      bool      `json:"is_example"`
	OrderIndex     int       `json:"order_index"`
	CreatedAt      time.Time `json:"created_at"`
}
