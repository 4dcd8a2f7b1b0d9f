package service

import (
	"context"
	"time"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ExecutionJobService struct {
	jobRepo   repository.ExecutionJobRepository
	rdb       *redis.Client
	queueName string
	validate  *validator.Validate
	log       *zap.Logger
}

func NewExecutionJobService(jobRepo repository.ExecutionJobRepository, rdb *redis.Client, queueName string, log *zap.Logger) *ExecutionJobService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExecutionJobService{
		jobRepo:   jobRepo,
		rdb:       rdb,
		queueName: queueName,
		validate:  NewValidator(),
		log:       log.Named("jobs"),
	}
}

// EnqueueSubmission stores a judge job and pushes its id onto the queue.
// Requests are validated here so that bad input is rejected synchronously.
func (s *ExecutionJobService) EnqueueSubmission(ctx context.Context, req model.SubmissionRequest) (*model.ExecutionJob, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &model.ExecutionJob{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    model.JobStatusQueued,
		CreatedAt: now,
	}
	if err := s.jobRepo.SaveJob(ctx, job); err != nil {
		return nil, common.Errorf("save job: %v: %w", err, common.ErrServiceUnavailable)
	}

	if err := s.rdb.LPush(ctx, s.queueName, job.ID).Err(); err != nil {
		// The job record exists but nothing will ever pick it up.
		msg := "failed to enqueue: " + err.Error()
		if uErr := s.jobRepo.UpdateJobStatus(ctx, job.ID, model.JobStatusFailed, &msg); uErr != nil {
			s.log.Error("failed to mark orphaned job", zap.String("job_id", job.ID), zap.Error(uErr))
		}
		return nil, common.Errorf("push job %s to %s: %v: %w", job.ID, s.queueName, err, common.ErrServiceUnavailable)
	}

	s.log.Info("judge job enqueued", zap.String("job_id", job.ID), zap.String("problem_id", req.ProblemID), zap.String("user_id", req.UserID))
	return job, nil
}

func (s *ExecutionJobService) GetJob(ctx context.Context, id string) (*model.ExecutionJob, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.Errorf("invalid job id %q: %w", id, common.ErrBadRequest)
	}
	return s.jobRepo.GetJobByID(ctx, id)
}
