// Command worker drains the asynchronous judge queue without serving HTTP, so
// judging capacity can be scaled apart from the API.
package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/executor"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/service"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/worker"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/repository"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/platform/config"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/platform/database"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/platform/logger"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/platform/queue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		stdlog.Fatalf("init logger: %v", err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("worker exited", zap.Error(err))
	}
	log.Info("workers exited cleanly")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaultProvider := model.ExecutionProvider(cfg.DefaultProvider)
	if !defaultProvider.Valid() {
		return fmt.Errorf("DEFAULT_EXECUTION_PROVIDER must be judge0 or onecompiler, got %q", cfg.DefaultProvider)
	}

	db, err := database.Connect(ctx, cfg.DBConnStr)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := queue.Connect(ctx, queue.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	selector := executor.NewSelector(defaultProvider,
		executor.NewJudge0Client(executor.ClientOptions{
			BaseURL: cfg.Judge0APIURL,
			APIKey:  cfg.Judge0APIKey,
			APIHost: cfg.Judge0APIHost,
			Timeout: cfg.ExecutorTimeout,
			Logger:  log,
		}),
		executor.NewOneCompilerClient(executor.ClientOptions{
			BaseURL: cfg.OneCompilerAPIURL,
			APIKey:  cfg.OneCompilerAPIKey,
			APIHost: cfg.OneCompilerAPIHost,
			Timeout: cfg.ExecutorTimeout,
			Logger:  log,
		}),
	)
	submissionService := service.NewSubmissionService(
		repository.NewPgProblemRepository(db),
		repository.NewPgSubmissionRepository(db),
		repository.NewPgProgressRepository(db),
		selector,
		log,
	)
	jobRepo := repository.NewRedisExecutionJobRepository(rdb, time.Duration(cfg.ExecutionJobTTLSeconds)*time.Second)

	opts := worker.Options{
		QueueName:  cfg.ExecutionQueueName,
		LockPrefix: cfg.ExecutionLockPrefix,
		LockTTL:    time.Duration(cfg.ExecutionLockTTLSeconds) * time.Second,
	}
	n := max(cfg.WorkerConcurrency, 1)
	log.Info("starting workers", zap.Int("count", n), zap.String("queue", cfg.ExecutionQueueName))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		w := worker.NewExecutionWorker(rdb, jobRepo, submissionService, opts, log.With(zap.Int("worker", i)))
		g.Go(func() error { return w.Start(gctx) })
	}
	return g.Wait()
}
