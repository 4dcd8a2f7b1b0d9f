package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ExecutorRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "judge",
		Name:      "executor_requests_total",
		Help:      "Calls to external code-execution providers by outcome.",
	}, []string{"provider", "outcome"})

	ExecutorLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "judge",
		Name:      "executor_request_duration_seconds",
		Help:      "Round-trip latency of external code-execution calls.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	}, []string{"provider"})

	SubmissionsJudged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "judge",
		Name:      "submissions_total",
		Help:      "Finalized submissions by verdict.",
	}, []string{"status"})

	WorkerJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "judge",
		Name:      "worker_jobs_total",
		Help:      "Asynchronous judge jobs handled by the worker, by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(ExecutorRequests, ExecutorLatency, SubmissionsJudged, WorkerJobs)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
