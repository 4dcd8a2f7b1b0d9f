package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// ExecutionJobRepository stores asynchronous judge jobs. Jobs are transient,
// so they live in Redis next to the queue and expire after a TTL.
type ExecutionJobRepository interface {
	SaveJob(ctx context.Context, job *model.ExecutionJob) error
	GetJobByID(ctx context.Context, id string) (*model.ExecutionJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status string, lastError *string) error
	CompleteJob(ctx context.Context, jobID string, outcome *model.JudgeOutcome) error
	IncrementJobAttempts(ctx context.Context, jobID string) error
}

type redisExecutionJobRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisExecutionJobRepository(rdb *redis.Client, ttl time.Duration) ExecutionJobRepository {
	return &redisExecutionJobRepository{rdb: rdb, ttl: ttl}
}

func jobKey(id string) string { return "judge:job:" + id }

func (r *redisExecutionJobRepository) SaveJob(ctx context.Context, job *model.ExecutionJob) error {
	job.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("redisExecutionJobRepository.SaveJob marshal: %w", err)
	}
	if err := r.rdb.Set(ctx, jobKey(job.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redisExecutionJobRepository.SaveJob: %w", err)
	}
	return nil
}

func (r *redisExecutionJobRepository) GetJobByID(ctx context.Context, id string) (*model.ExecutionJob, error) {
	data, err := r.rdb.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("redisExecutionJobRepository.GetJobByID: %w", err)
	}
	job := &model.ExecutionJob{}
	if err := json.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("redisExecutionJobRepository.GetJobByID unmarshal: %w", err)
	}
	return job, nil
}

func (r *redisExecutionJobRepository) update(ctx context.Context, jobID string, mutate func(*model.ExecutionJob)) error {
	job, err := r.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}
	mutate(job)
	return r.SaveJob(ctx, job)
}

func (r *redisExecutionJobRepository) UpdateJobStatus(ctx context.Context, jobID string, status string, lastError *string) error {
	return r.update(ctx, jobID, func(job *model.ExecutionJob) {
		job.Status = status
		job.LastError = lastError
	})
}

func (r *redisExecutionJobRepository) CompleteJob(ctx context.Context, jobID string, outcome *model.JudgeOutcome) error {
	return r.update(ctx, jobID, func(job *model.ExecutionJob) {
		job.Status = model.JobStatusCompleted
		job.Outcome = outcome
		job.LastError = nil
	})
}

func (r *redisExecutionJobRepository) IncrementJobAttempts(ctx context.Context, jobID string) error {
	return r.update(ctx, jobID, func(job *model.ExecutionJob) {
		job.Attempts++
	})
}
