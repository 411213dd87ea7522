package matches

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	poolJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_pool_job_runs_total",
			Help: "Total number of daily pool generation runs",
		},
		[]string{"status"},
	)

	poolJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matches_pool_job_duration_seconds",
			Help:    "Duration of daily pool generation runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	poolSizes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matches_pool_size",
			Help:    "Distribution of generated pool sizes",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_deliveries_total",
			Help: "Total number of daily match delivery requests",
		},
		[]string{"outcome"},
	)

	matchesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_delivered_total",
			Help: "Total number of individual matches delivered",
		},
		[]string{"type"},
	)

	matchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matches_match_scores",
			Help:    "Distribution of delivered match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)

func RecordPoolJobRun(status string, duration time.Duration) {
	poolJobRuns.WithLabelValues(status).Inc()
	poolJobDuration.Observe(duration.Seconds())
}

func RecordPoolSize(size int) {
	poolSizes.Observe(float64(size))
}

// RecordDelivery tags a delivery attempt with its journey outcome, e.g.
// "ready", "waiting", "pool_pending", "not_onboarded" or "error".
func RecordDelivery(outcome string) {
	deliveriesTotal.WithLabelValues(outcome).Inc()
}

func RecordMatchDelivered(matchType string, score int) {
	matchesDelivered.WithLabelValues(matchType).Inc()
	matchScores.Observe(float64(score))
}
