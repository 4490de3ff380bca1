// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	TrainersExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_trainers_excluded_total",
			Help: "Trainers removed by hard exclusion rules, by exclusion type",
		},
		[]string{"exclusion_type"},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_score",
			Help:    "Distribution of final trainer match scores",
			Buckets: prometheus.LinearBuckets(45, 5, 12),
		},
	)

	ConfigPublishes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_config_publishes_total",
			Help: "Algorithm config versions published",
		},
	)
)
