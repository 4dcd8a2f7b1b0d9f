package judge

import (
	"math"
	"time"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
)

type Verdict struct {
	Status              model.SubmissionStatus
	PassedTestCases     int
	TotalTestCases      int
	RuntimeMs           int
	MemoryMb            int
	FailedTestCaseIndex *int
	ErrorMessage        *string
}

// Aggregate reduces a run to a single status. Precedence: rate limit, hard
// error, mismatch, accepted. Runtime is averaged over every case of the
// problem, so unreached cases count as zero.
func Aggregate(out RunOutcome) Verdict {
	v := Verdict{
		TotalTestCases:      out.Total,
		FailedTestCaseIndex: out.FailedIndex,
	}

	var runtimeSum, maxMemory float64
	for _, r := range out.Results {
		if r.Passed {
			v.PassedTestCases++
		}
		runtimeSum += r.RuntimeMs
		maxMemory = math.Max(maxMemory, r.MemoryMb)
	}
	if out.Total > 0 {
		v.RuntimeMs = int(math.Round(runtimeSum / float64(out.Total)))
	}
	v.MemoryMb = int(math.Round(maxMemory))

	switch {
	case out.RateLimited:
		v.Status = model.StatusRateLimited
		v.ErrorMessage = out.ErrorMessage
	case out.HardError:
		v.Status = model.StatusRuntimeError
		v.ErrorMessage = out.ErrorMessage
	case out.Attempted() == out.Total && v.PassedTestCases == out.Total && out.Total > 0:
		v.Status = model.StatusAccepted
	default:
		v.Status = model.StatusWrongAnswer
	}
	return v
}

// Apply copies the verdict onto a pending submission.
func (v Verdict) Apply(s *model.Submission, judgedAt time.Time) {
	s.Status = v.Status
	s.PassedTestCases = v.PassedTestCases
	s.TotalTestCases = v.TotalTestCases
	s.RuntimeMs = v.RuntimeMs
	s.MemoryMb = v.MemoryMb
	s.FailedTestCaseIndex = v.FailedTestCaseIndex
	s.ErrorMessage = v.ErrorMessage
	s.JudgedAt = &judgedAt
}
