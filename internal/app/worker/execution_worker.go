package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/repository"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/platform/metrics"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/platform/queue"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Submitter judges one request; *service.SubmissionService satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req model.SubmissionRequest) (*model.JudgeOutcome, error)
}

type Options struct {
	QueueName    string
	LockPrefix   string
	LockTTL      time.Duration
	PopTimeout   time.Duration // how long one BRPOP blocks before the loop rechecks ctx
	RequeueDelay time.Duration // pause before retrying a job whose lock is busy
	MaxAttempts  int           // pops before a job waiting on a busy lock is failed
}

type ExecutionWorker struct {
	rdb       *redis.Client
	jobRepo   repository.ExecutionJobRepository
	submitter Submitter
	opts      Options
	log       *zap.Logger
}

func NewExecutionWorker(rdb *redis.Client, jobRepo repository.ExecutionJobRepository, submitter Submitter, opts Options, log *zap.Logger) *ExecutionWorker {
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = 2 * time.Second
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Minute
	}
	if opts.RequeueDelay <= 0 {
		opts.RequeueDelay = 500 * time.Millisecond
	}
	if opts.MaxAttempts <= 0 {
		// Outwait the lock TTL so a lock left by a dead worker expires first.
		opts.MaxAttempts = int(opts.LockTTL/opts.RequeueDelay) + 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ExecutionWorker{rdb: rdb, jobRepo: jobRepo, submitter: submitter, opts: opts, log: log.Named("worker")}
}

// Start pops job ids until ctx is cancelled.
func (w *ExecutionWorker) Start(ctx context.Context) error {
	w.log.Info("execution worker started", zap.String("queue", w.opts.QueueName))
	for {
		if ctx.Err() != nil {
			w.log.Info("execution worker stopping")
			return nil
		}
		jobID, err := w.pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Error("failed to pop from queue", zap.String("queue", w.opts.QueueName), zap.Error(err))
			sleep(ctx, 5*time.Second)
			continue
		}
		if jobID == "" {
			continue
		}
		w.processJobWithLock(ctx, jobID)
	}
}

// pop returns "" when BRPOP timed out.
func (w *ExecutionWorker) pop(ctx context.Context) (string, error) {
	res, err := w.rdb.BRPop(ctx, w.opts.PopTimeout, w.opts.QueueName).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	// [queue, value]
	if len(res) < 2 {
		return "", nil
	}
	return res[1], nil
}

// processJobWithLock serializes jobs of the same user on the same problem so
// their progress updates never race.
func (w *ExecutionWorker) processJobWithLock(ctx context.Context, jobID string) {
	log := w.log.With(zap.String("job_id", jobID))

	job, err := w.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Warn("job expired before it was picked up")
			metrics.WorkerJobs.WithLabelValues("missing").Inc()
			return
		}
		log.Error("failed to load job", zap.Error(err))
		sleep(ctx, w.opts.RequeueDelay)
		w.requeueJob(ctx, jobID)
		return
	}

	if err := w.jobRepo.IncrementJobAttempts(ctx, jobID); err != nil {
		log.Warn("failed to bump job attempts", zap.Error(err))
	}
	attempts := job.Attempts + 1

	key := fmt.Sprintf("%s:%s:%s", w.opts.LockPrefix, job.Request.UserID, job.Request.ProblemID)
	lock, err := queue.AcquireLock(ctx, w.rdb, key, w.opts.LockTTL)
	if err != nil {
		if errors.Is(err, queue.ErrLockNotAcquired) {
			log.Debug("submission lock busy, re-queueing", zap.String("lock", key))
			metrics.WorkerJobs.WithLabelValues("requeued").Inc()
		} else {
			log.Error("failed to acquire submission lock", zap.String("lock", key), zap.Error(err))
		}
		if attempts >= w.opts.MaxAttempts {
			msg := fmt.Sprintf("gave up after %d attempts waiting for lock %s", attempts, key)
			log.Warn("abandoning job", zap.String("reason", msg))
			metrics.WorkerJobs.WithLabelValues("abandoned").Inc()
			if uErr := w.jobRepo.UpdateJobStatus(context.WithoutCancel(ctx), jobID, model.JobStatusFailed, &msg); uErr != nil {
				log.Error("failed to mark job failed", zap.Error(uErr))
			}
			return
		}
		sleep(ctx, w.opts.RequeueDelay)
		w.requeueJob(ctx, jobID)
		return
	}
	defer func() {
		// Release even when ctx is already cancelled.
		released, err := lock.Release(context.WithoutCancel(ctx))
		switch {
		case err != nil:
			log.Error("failed to release submission lock", zap.String("lock", lock.Key()), zap.Error(err))
		case !released:
			log.Warn("submission lock expired before release", zap.String("lock", lock.Key()))
		}
	}()

	w.handleJob(ctx, log, job)
}

func (w *ExecutionWorker) handleJob(ctx context.Context, log *zap.Logger, job *model.ExecutionJob) {
	if err := w.jobRepo.UpdateJobStatus(ctx, job.ID, model.JobStatusProcessing, nil); err != nil {
		log.Warn("failed to mark job processing", zap.Error(err))
	}

	outcome, err := w.submitter.Submit(ctx, job.Request)
	// Job bookkeeping outlives a shutdown signal that arrives mid-judging.
	storeCtx := context.WithoutCancel(ctx)
	if err != nil {
		msg := err.Error()
		log.Warn("judge job failed", zap.Error(err))
		metrics.WorkerJobs.WithLabelValues("failed").Inc()
		if uErr := w.jobRepo.UpdateJobStatus(storeCtx, job.ID, model.JobStatusFailed, &msg); uErr != nil {
			log.Error("failed to mark job failed", zap.Error(uErr))
		}
		return
	}

	if err := w.jobRepo.CompleteJob(storeCtx, job.ID, outcome); err != nil {
		log.Error("failed to store job outcome", zap.Error(err))
		return
	}
	result := "completed"
	if outcome.RateLimited {
		result = "rate_limited"
	}
	metrics.WorkerJobs.WithLabelValues(result).Inc()
	log.Info("judge job done", zap.String("submission_id", outcome.Submission.ID), zap.String("status", string(outcome.Submission.Status)))
}

func (w *ExecutionWorker) requeueJob(ctx context.Context, jobID string) {
	// LPUSH puts it behind whatever is already waiting.
	if err := w.rdb.LPush(context.WithoutCancel(ctx), w.opts.QueueName, jobID).Err(); err != nil {
		w.log.Error("failed to re-queue job", zap.String("job_id", jobID), zap.Error(err))
	}
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
