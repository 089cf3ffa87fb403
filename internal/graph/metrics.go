package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
	outcomeEmpty = "empty_state"
)

var (
	pipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bench_pipeline_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"pipeline", "outcome"},
	)

	pipelineRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bench_pipeline_run_duration_seconds",
			Help:    "Pipeline run latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pipeline"},
	)
)

func observeRun(pipeline, outcome string, start time.Time) {
	pipelineRunsTotal.WithLabelValues(pipeline, outcome).Inc()
	pipelineRunDuration.WithLabelValues(pipeline).Observe(time.Since(start).Seconds())
}
