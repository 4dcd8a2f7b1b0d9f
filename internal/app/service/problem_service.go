package service

import (
	"context"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/repository"
)

// ProblemService exposes the parts of a problem's test data a solver may see.
type ProblemService struct {
	problemRepo repository.ProblemRepository
}

func NewProblemService(problemRepo repository.ProblemRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo}
}

// ListExampleTestCases returns only the example cases, in execution order.
// Hidden cases never leave the judge.
func (s *ProblemService) ListExampleTestCases(ctx context.Context, problemID string) ([]model.TestCase, error) {
	if problemID == "" {
		return nil, common.Errorf("problem id is required: %w", common.ErrBadRequest)
	}
	cases, err := s.problemRepo.GetTestCasesByProblemID(ctx, problemID)
	if err != nil {
		return nil, common.Errorf("load test cases for problem %s: %w", problemID, err)
	}
	if len(cases) == 0 {
		return nil, common.Errorf("problem %s: %w", problemID, common.ErrNotFound)
	}

	examples := make([]model.TestCase, 0, len(cases))
	for _, tc := range cases {
		if tc.IsExample {
			examples = append(examples, tc)
		}
	}
	return examples, nil
}
