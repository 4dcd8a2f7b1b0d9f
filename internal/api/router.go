package api

import (
	"net/http"
	"time"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/api/handler"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/api/middleware"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/service"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

type RouterOptions struct {
	TokenAuth      *jwtauth.JWTAuth // nil disables token verification
	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewRouter(
	submissionService *service.SubmissionService,
	jobService *service.ExecutionJobService,
	problemService *service.ProblemService,
	opts RouterOptions,
) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		// Judging waits on the provider for every test case.
		v1.Use(chiMiddleware.Timeout(5 * time.Minute))
		if opts.TokenAuth != nil {
			v1.Use(jwtauth.Verifier(opts.TokenAuth))
		}
		v1.Use(middleware.Identify)

		submissionHandler := handler.NewSubmissionHandler(submissionService, jobService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)
		v1.Route("/progress", submissionHandler.RegisterProgressRoutes)

		problemHandler := handler.NewProblemHandler(problemService)
		v1.Route("/problems", problemHandler.RegisterRoutes)

		executionHandler := handler.NewExecutionHandler(submissionService)
		v1.Group(executionHandler.RegisterRoutes)
	})

	return r
}
