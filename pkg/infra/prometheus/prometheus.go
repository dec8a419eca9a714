package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds. Tier-1 is expected well under 500ms,
	// Tier-2 in the low seconds.
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptguard_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptguard_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"path"},
	)

	DecisionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptguard_decisions_total",
			Help: "Final routing decisions by action and deciding tier",
		},
		[]string{"action", "tier"},
	)

	TierLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptguard_tier_latency_ms",
			Help:    "Latency of each detection tier in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"tier"},
	)

	Tier1Labels = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptguard_tier1_labels_total",
			Help: "Normalised Tier-1 labels",
		},
		[]string{"label"},
	)

	Tier1Failures = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptguard_tier1_failures_total",
			Help: "Tier-1 calls that failed and were treated as SUSPICIOUS, by reason",
		},
		[]string{"reason"},
	)

	Escalations = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptguard_escalations_total",
			Help: "Prompts sent to Tier-2 by reason",
		},
		[]string{"reason"},
	)

	Tier2Errors = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptguard_tier2_errors_total",
			Help: "Tier-2 failures by kind",
		},
		[]string{"kind"},
	)

	ActiveSessions = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "promptguard_active_sessions",
			Help: "Sessions currently held by the in-memory registry",
		},
	)

	ExportedDecisions = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptguard_exported_decisions_total",
			Help: "Decisions handed to telemetry exporters",
		},
		[]string{"exporter", "status"},
	)
)

type MetricsConfig struct {
	EnableLatency     bool // HTTP latency histogram
	EnableTierLatency bool // per-tier latency histogram
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency:     true,
		EnableTierLatency: true,
	}
}

var Config = DefaultMetricsConfig()

func Initialize(cfg MetricsConfig) {
	Config = cfg
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

func Gatherer() prometheus.Gatherer {
	return registry
}
