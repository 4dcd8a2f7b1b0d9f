package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/api"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/executor"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/service"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/worker"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common/security"
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
		log.Fatal("server exited", zap.Error(err))
	}
	log.Info("server and workers stopped gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaultProvider := model.ExecutionProvider(cfg.DefaultProvider)
	if !defaultProvider.Valid() {
		return errors.New("DEFAULT_EXECUTION_PROVIDER must be judge0 or onecompiler, got " + cfg.DefaultProvider)
	}

	db, err := database.Connect(ctx, cfg.DBConnStr)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database connected", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("database schema applied")
	}

	rdb, err := queue.Connect(ctx, queue.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info("redis connected", zap.String("addr", cfg.RedisAddr))

	problemRepo := repository.NewPgProblemRepository(db)
	submissionRepo := repository.NewPgSubmissionRepository(db)
	progressRepo := repository.NewPgProgressRepository(db)
	jobRepo := repository.NewRedisExecutionJobRepository(rdb, time.Duration(cfg.ExecutionJobTTLSeconds)*time.Second)

	judge0 := executor.NewJudge0Client(executor.ClientOptions{
		BaseURL: cfg.Judge0APIURL,
		APIKey:  cfg.Judge0APIKey,
		APIHost: cfg.Judge0APIHost,
		Timeout: cfg.ExecutorTimeout,
		Logger:  log,
	})
	oneCompiler := executor.NewOneCompilerClient(executor.ClientOptions{
		BaseURL: cfg.OneCompilerAPIURL,
		APIKey:  cfg.OneCompilerAPIKey,
		APIHost: cfg.OneCompilerAPIHost,
		Timeout: cfg.ExecutorTimeout,
		Logger:  log,
	})
	selector := executor.NewSelector(defaultProvider, judge0, oneCompiler)

	submissionService := service.NewSubmissionService(problemRepo, submissionRepo, progressRepo, selector, log)
	jobService := service.NewExecutionJobService(jobRepo, rdb, cfg.ExecutionQueueName, log)
	problemService := service.NewProblemService(problemRepo)

	tokenAuth := security.NewTokenAuth(cfg.JWTKey)
	if tokenAuth == nil {
		log.Warn("SUPABASE_JWT_SECRET is not set; requests are identified by the userId they carry")
	}
	router := api.NewRouter(submissionService, jobService, problemService, api.RouterOptions{
		TokenAuth:      tokenAuth,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 6 * time.Minute, // a synchronous submission runs every test case
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	workerOpts := worker.Options{
		QueueName:  cfg.ExecutionQueueName,
		LockPrefix: cfg.ExecutionLockPrefix,
		LockTTL:    time.Duration(cfg.ExecutionLockTTLSeconds) * time.Second,
	}
	// WORKER_CONCURRENCY=0 leaves the queue to cmd/worker processes.
	for i := 0; i < cfg.WorkerConcurrency; i++ {
		w := worker.NewExecutionWorker(rdb, jobRepo, submissionService, workerOpts, log.With(zap.Int("worker", i)))
		g.Go(func() error { return w.Start(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
