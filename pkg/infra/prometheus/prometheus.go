package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in microseconds; admission checks are expected to
	// resolve well under a millisecond.
	latencyBuckets = []float64{
		10, 25, 50,
		100, 250, 500,
		1000, 2500, 5000,
	}

	AdmissionTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "floodgate_admission_total",
			Help: "Total number of admission checks by decision",
		},
		[]string{"decision", "rule"},
	)

	AdmissionLatency = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "floodgate_admission_latency_us",
			Help:    "Admission check latency in microseconds",
			Buckets: latencyBuckets,
		},
	)

	SweeperEvictions = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "floodgate_sweeper_evictions_total",
			Help: "Total number of stale counter records evicted",
		},
	)

	UsageRecords = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "floodgate_usage_records",
			Help: "Number of live counter records after the last sweep",
		},
	)
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}
