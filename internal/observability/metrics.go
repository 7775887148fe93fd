// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultJob is the Pushgateway job name for CLI runs.
const DefaultJob = "copytrade"

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "stellar_copytrade"

// Metrics holds all Prometheus metrics for a run.
type Metrics struct {
	// Ingestion metrics
	WalletsFetched   *prometheus.CounterVec
	OperationsLoaded prometheus.Counter
	DomainErrors     prometheus.Counter

	// Normalization metrics
	RowsNormalized prometheus.Counter
	RowsRejected   *prometheus.CounterVec

	// Estimation metrics
	WalletsEstimated  prometheus.Counter
	RoundTripsMatched prometheus.Counter

	// Selection metrics
	CandidatesFiltered *prometheus.CounterVec
	CandidatesRanked   *prometheus.CounterVec

	// Output metrics
	SnapshotsPublished prometheus.Counter

	// Run metrics
	RunsTotal         *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
	PhaseDuration     *prometheus.HistogramVec
	LastSuccessfulRun *prometheus.GaugeVec
}

// NewMetrics creates a Metrics instance registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	f := promauto.With(reg)

	return &Metrics{
		// Ingestion metrics
		WalletsFetched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "wallets_fetched_total",
			Help:      "Total number of wallets fetched by source",
		}, []string{"source"}),
		OperationsLoaded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "operations_loaded_total",
			Help:      "Total number of raw ledger operations loaded",
		}),
		DomainErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "domain_resolve_errors_total",
			Help:      "Total number of home domains that failed to resolve",
		}),

		// Normalization metrics
		RowsNormalized: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalization",
			Name:      "rows_normalized_total",
			Help:      "Total number of ledger rows converted into swap events",
		}),
		RowsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalization",
			Name:      "rows_rejected_total",
			Help:      "Total number of ledger rows rejected by reason",
		}, []string{"reason"}),

		// Estimation metrics
		WalletsEstimated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pnl",
			Name:      "wallets_estimated_total",
			Help:      "Total number of wallet P&L summaries produced",
		}),
		RoundTripsMatched: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pnl",
			Name:      "round_trips_matched_total",
			Help:      "Total number of matched round trips",
		}),

		// Selection metrics
		CandidatesFiltered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "selection",
			Name:      "candidates_filtered_total",
			Help:      "Total number of wallets evaluated by the candidate filter by outcome",
		}, []string{"outcome"}),
		CandidatesRanked: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "selection",
			Name:      "candidates_ranked_total",
			Help:      "Total number of ranked candidates by tier",
		}, []string{"tier"}),

		// Output metrics
		SnapshotsPublished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "snapshots_published_total",
			Help:      "Total number of candidate snapshots published",
		}),

		// Run metrics
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "runs_total",
			Help:      "Total number of runs by source and status",
		}, []string{"source", "status"}),
		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"source"}),
		PhaseDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "phase_duration_seconds",
			Help:      "Phase duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		LastSuccessfulRun: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last successful run by source",
		}, []string{"source"}),
	}
}

// Handler returns an HTTP handler serving the metrics gathered from g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Push replaces the job's metric group on the Pushgateway at url with
// everything gathered from g.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

// ObservePhase records how long a phase took since start.
func (m *Metrics) ObservePhase(phase string, start time.Time) {
	m.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(source, status string, start time.Time) {
	m.RunsTotal.WithLabelValues(source, status).Inc()
	m.RunDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if status == StatusSuccess {
		m.LastSuccessfulRun.WithLabelValues(source).SetToCurrentTime()
	}
}

// Run status labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)
