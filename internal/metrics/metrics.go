package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Reconciliation
	DepositChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deposit_checks_total",
			Help: "Reconciliation attempts by outcome",
		},
		[]string{"outcome"}, // success|pending|upstream_error|error
	)
	CreditedNanoTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credited_nanoton_total",
			Help: "Total nanotons credited to user balances",
		},
	)

	// Sweep
	SweepRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "Completed sweep passes",
		},
	)
	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Duration of a sweep pass",
			Buckets: prometheus.DefBuckets,
		},
	)
	SweepPendingIntents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sweep_pending_intents",
			Help: "Pending intents seen by the last sweep",
		},
	)

	// Upstream
	UpstreamErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tonapi_errors_total",
			Help: "Failed tonapi fetches",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(DepositChecksTotal)
	prometheus.MustRegister(CreditedNanoTotal)
	prometheus.MustRegister(SweepRunsTotal)
	prometheus.MustRegister(SweepDuration)
	prometheus.MustRegister(SweepPendingIntents)
	prometheus.MustRegister(UpstreamErrorsTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
