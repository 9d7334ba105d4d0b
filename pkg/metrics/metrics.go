package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_sync_runs_total",
		Help: "Sync runs per organization firing, by outcome",
	}, []string{"status"})

	SyncRunsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ads_sync_runs_skipped_total",
		Help: "Timer firings skipped because the organization already had a run in flight",
	})

	SyncRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ads_sync_run_duration_seconds",
		Help:    "Wall time of one organization sync run",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	AccountResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_sync_account_results_total",
		Help: "Per-account pipeline terminal states",
	}, []string{"status"})

	UnitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_sync_unit_failures_total",
		Help: "Failed units of work by error class and entity kind",
	}, []string{"class", "kind"})

	EntityUpserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_sync_entity_upserts_total",
		Help: "Entities written after being flagged stale",
	}, []string{"kind"})

	EntitiesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_sync_entities_unchanged_total",
		Help: "Entities skipped by the change detector",
	}, []string{"kind"})

	AnalyticsUpserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_sync_analytics_upserts_total",
		Help: "Analytics records written",
	}, []string{"kind", "granularity"})

	OrphanedEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ads_sync_orphaned_entities",
		Help: "Entities left without a resolved parent after the last reconciliation",
	}, []string{"organization_id"})

	ReconciledEntities = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_sync_reconciled_entities_total",
		Help: "Orphaned entities repaired by the reconciliation sweep",
	}, []string{"kind"})

	PlatformCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_platform_calls_total",
		Help: "Outbound platform calls by endpoint and result class",
	}, []string{"platform", "endpoint", "result"})

	LimiterInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ads_platform_limiter_in_flight",
		Help: "Calls currently holding a limiter slot",
	}, []string{"platform"})

	LimiterWait = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ads_platform_limiter_wait_seconds",
		Help:    "Time spent waiting for a limiter slot and pacing token",
		Buckets: prometheus.DefBuckets,
	}, []string{"platform"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ads_platform_circuit_breaker_state",
		Help: "Circuit breaker state per platform (0=closed, 1=half-open, 2=open)",
	}, []string{"platform"})
)
