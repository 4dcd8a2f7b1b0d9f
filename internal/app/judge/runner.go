// Package judge drives one piece of code through a problem's test cases and
// folds the per-case results into a verdict.
package judge

import (
	"context"
	"sort"
	"strings"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/executor"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"go.uber.org/zap"
)

// RunOutcome is everything Aggregate needs from a run.
type RunOutcome struct {
	Results      []model.TestCaseResult
	Total        int
	FailedIndex  *int    // first case that did not pass
	ErrorMessage *string // first hard error, or the rate-limit notice
	HardError    bool
	RateLimited  bool
}

// Attempted reports how many cases produced a result.
func (o RunOutcome) Attempted() int { return len(o.Results) }

type Runner struct {
	log *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{log: log.Named("runner")}
}

// Run executes cases one at a time in OrderIndex order. It stops at the first
// hard error, at the first failing hidden case, and when the provider
// throttles.
func (r *Runner) Run(ctx context.Context, exec executor.Executor, code string, lang model.Language, cases []model.TestCase) RunOutcome {
	var out RunOutcome
	r.RunInto(ctx, exec, code, lang, cases, &out)
	return out
}

// RunInto is Run with results appended to out as each case finishes, so a
// caller that recovers from a panic still sees how far the run got.
func (r *Runner) RunInto(ctx context.Context, exec executor.Executor, code string, lang model.Language, cases []model.TestCase, out *RunOutcome) {
	ordered := make([]model.TestCase, len(cases))
	copy(ordered, cases)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].OrderIndex < ordered[j].OrderIndex })

	*out = RunOutcome{Total: len(ordered), Results: make([]model.TestCaseResult, 0, len(ordered))}
	for i, tc := range ordered {
		res := exec.Execute(ctx, code, tc.Input, lang)

		if res.IsRateLimited {
			msg := res.Output
			out.RateLimited = true
			out.ErrorMessage = &msg
			r.log.Warn("run stopped by provider rate limit", zap.Int("test_case_index", i))
			return
		}

		result := model.TestCaseResult{
			TestCaseIndex:  i,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			RuntimeMs:      res.RuntimeMs(),
			MemoryMb:       res.MemoryMb(),
		}

		if res.Failed() {
			out.Results = append(out.Results, result)
			out.HardError = true
			out.ErrorMessage = res.Error
			out.markFailed(i)
			r.log.Debug("run stopped by execution error", zap.Int("test_case_index", i), zap.String("error", *res.Error))
			return
		}

		actual := res.Output
		result.ActualOutput = &actual
		result.Passed = strings.TrimSpace(actual) == strings.TrimSpace(tc.ExpectedOutput)
		out.Results = append(out.Results, result)

		if !result.Passed {
			out.markFailed(i)
			if !tc.IsExample {
				return
			}
		}
	}
}

func (o *RunOutcome) markFailed(i int) {
	if o.FailedIndex == nil {
		idx := i
		o.FailedIndex = &idx
	}
}
