package service

import (
	"context"
	"fmt"
	"time"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/executor"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/judge"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/repository"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/platform/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubmissionService struct {
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	progressRepo   repository.ProgressRepository
	selector       *executor.Selector
	runner         *judge.Runner
	validate       *validator.Validate
	log            *zap.Logger
	now            func() time.Time
}

func NewSubmissionService(
	probRepo repository.ProblemRepository,
	subRepo repository.SubmissionRepository,
	progRepo repository.ProgressRepository,
	selector *executor.Selector,
	log *zap.Logger,
) *SubmissionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubmissionService{
		problemRepo:    probRepo,
		submissionRepo: subRepo,
		progressRepo:   progRepo,
		selector:       selector,
		runner:         judge.NewRunner(log),
		validate:       NewValidator(),
		log:            log.Named("submission"),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Submit judges req against every test case of the problem. Errors are only
// returned for bad input or when the store fails; once the pending row exists
// it is always finalized, and a rate-limited run comes back with
// RateLimited set rather than an error.
func (s *SubmissionService) Submit(ctx context.Context, req model.SubmissionRequest) (*model.JudgeOutcome, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}
	exec, err := s.selector.Select(req.ExecutionProvider)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrBadRequest)
	}

	cases, err := s.problemRepo.GetTestCasesByProblemID(ctx, req.ProblemID)
	if err != nil {
		return nil, common.Errorf("load test cases for problem %s: %w", req.ProblemID, err)
	}
	if len(cases) == 0 {
		return nil, common.Errorf("problem %s: %w", req.ProblemID, common.ErrNoTestCases)
	}

	sub := &model.Submission{
		ID:             uuid.NewString(),
		ProblemID:      req.ProblemID,
		UserID:         req.UserID,
		Language:       req.Language,
		Code:           req.Code,
		Status:         model.StatusPending,
		TotalTestCases: len(cases),
		SubmittedAt:    s.now(),
	}
	if err := s.submissionRepo.CreateSubmission(ctx, sub); err != nil {
		return nil, common.Errorf("create submission: %w", err)
	}
	log := s.log.With(zap.String("submission_id", sub.ID), zap.String("problem_id", sub.ProblemID), zap.String("user_id", sub.UserID))

	verdict, results := s.runJudging(ctx, log, exec, req, cases)
	verdict.Apply(sub, s.now())

	// The pending row must be finalized even if the caller went away.
	finalizeCtx := context.WithoutCancel(ctx)
	if err := s.submissionRepo.UpdateSubmissionResult(finalizeCtx, sub); err != nil {
		log.Error("failed to finalize submission", zap.Error(err))
		return nil, common.Errorf("finalize submission %s: %w", sub.ID, err)
	}
	metrics.SubmissionsJudged.WithLabelValues(string(sub.Status)).Inc()
	log.Info("submission judged",
		zap.String("status", string(sub.Status)),
		zap.Int("passed", sub.PassedTestCases),
		zap.Int("total", sub.TotalTestCases),
		zap.Int("runtime_ms", sub.RuntimeMs))

	outcome := &model.JudgeOutcome{Submission: sub, TestResults: results}
	if sub.Status == model.StatusRateLimited {
		outcome.RateLimited = true
		return outcome, nil
	}

	if err := s.recordAttempt(finalizeCtx, sub); err != nil {
		log.Error("failed to update progress", zap.Error(err))
		return nil, err
	}
	return outcome, nil
}

// runJudging never panics: a panic in the run becomes a runtime_error verdict
// that keeps the results recorded before it.
func (s *SubmissionService) runJudging(ctx context.Context, log *zap.Logger, exec executor.Executor, req model.SubmissionRequest, cases []model.TestCase) (v judge.Verdict, results []model.TestCaseResult) {
	var out judge.RunOutcome
	defer func() {
		if r := recover(); r != nil {
			log.Error("judging panicked", zap.Any("panic", r), zap.Stack("stack"))
			msg := fmt.Sprintf("%sjudging aborted: %v", executor.InternalErrorPrefix, r)
			results = out.Results
			if results == nil {
				results = []model.TestCaseResult{}
			}
			stoppedAt := len(results)
			if out.FailedIndex != nil {
				stoppedAt = *out.FailedIndex
			}
			v = judge.Verdict{
				Status:              model.StatusRuntimeError,
				TotalTestCases:      len(cases),
				FailedTestCaseIndex: &stoppedAt,
				ErrorMessage:        &msg,
			}
			for _, res := range results {
				if res.Passed {
					v.PassedTestCases++
				}
			}
		}
	}()

	// A run that has started finishes even if the caller goes away; provider
	// calls are bounded by the client timeout instead.
	s.runner.RunInto(context.WithoutCancel(ctx), exec, req.Code, req.Language, cases, &out)
	return judge.Aggregate(out), out.Results
}

func (s *SubmissionService) recordAttempt(ctx context.Context, sub *model.Submission) error {
	prev, err := s.progressRepo.GetProgress(ctx, sub.UserID, sub.ProblemID)
	if err != nil {
		return common.Errorf("read progress: %w", err)
	}
	next := model.NextProgress(prev, sub.UserID, sub.ProblemID, sub.Status == model.StatusAccepted, s.now())
	if err := s.progressRepo.UpsertProgress(ctx, &next); err != nil {
		return common.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.Errorf("invalid submission id %q: %w", id, common.ErrBadRequest)
	}
	return s.submissionRepo.GetSubmissionByID(ctx, id)
}

func (s *SubmissionService) GetProgress(ctx context.Context, userID, problemID string) (*model.UserProblemProgress, error) {
	if userID == "" || problemID == "" {
		return nil, common.Errorf("user and problem are required: %w", common.ErrBadRequest)
	}
	p, err := s.progressRepo.GetProgress(ctx, userID, problemID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, common.ErrNotFound
	}
	return p, nil
}

// RunCode executes code once on the chosen provider. Nothing is stored.
func (s *SubmissionService) RunCode(ctx context.Context, req RunCodeRequest) (executor.Result, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return executor.Result{}, err
	}
	exec, err := s.selector.Select(req.ExecutionProvider)
	if err != nil {
		return executor.Result{}, fmt.Errorf("%v: %w", err, common.ErrBadRequest)
	}
	res := exec.Execute(ctx, req.Code, req.Stdin, req.Language)
	if res.IsRateLimited {
		return res, common.ErrRateLimited
	}
	return res, nil
}
