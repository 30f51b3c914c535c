// Package metrics provides Prometheus metrics for the race timing engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the timing engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Business metrics
	finishesRecorded prometheus.Counter
	unknownFinishers prometheus.Counter
	invalidBibInputs prometheus.Counter
	rostersLoaded    prometheus.Counter
	recordLatency    prometheus.Histogram

	// Operational health
	raceState     prometheus.Gauge
	resultCount   prometheus.Gauge
	runnersLoaded prometheus.Gauge

	// Store metrics
	storeAppendLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram
	storeErrors        prometheus.Counter

	// Chime metrics
	chimeFailures prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "finishline",
		subsystem:        "race",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.finishesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "finishes_recorded_total",
		Help:      "Total number of finish events recorded",
	})

	m.unknownFinishers = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unknown_finishers_total",
		Help:      "Total number of bib-0 placeholder finishes recorded",
	})

	m.invalidBibInputs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "invalid_bib_inputs_total",
		Help:      "Total number of rejected non-numeric bib inputs",
	})

	m.rostersLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rosters_loaded_total",
		Help:      "Total number of roster imports",
	})

	m.recordLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "record_latency_milliseconds",
		Help:      "Histogram of finish recording latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.raceState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "clock_state",
		Help:      "Race clock state (0=not started, 1=running, 2=stopped)",
	})

	m.resultCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "result_count",
		Help:      "Number of finish events in the results store",
	})

	m.runnersLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runners_loaded",
		Help:      "Number of runners in the directory",
	})

	m.storeAppendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_append_latency_milliseconds",
		Help:      "Histogram of results store append latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Histogram of results store snapshot latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Total number of results store failures",
	})

	m.chimeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chime_failures_total",
		Help:      "Total number of failed finish confirmation chimes",
	})
}

// Package-level helpers on the global manager.

// RecordFinish increments the recorded finish counter.
func RecordFinish() {
	globalManager.finishesRecorded.Inc()
}

// RecordUnknownFinisher increments the bib-0 placeholder counter.
func RecordUnknownFinisher() {
	globalManager.unknownFinishers.Inc()
}

// RecordInvalidBib increments the rejected input counter.
func RecordInvalidBib() {
	globalManager.invalidBibInputs.Inc()
}

// RecordRosterLoad increments the roster import counter.
func RecordRosterLoad() {
	globalManager.rostersLoaded.Inc()
}

// RecordRecordLatency observes end-to-end finish recording latency.
func RecordRecordLatency(latencyMs float64) {
	globalManager.recordLatency.Observe(latencyMs)
}

// UpdateRaceState sets the clock state gauge.
func UpdateRaceState(state int) {
	globalManager.raceState.Set(float64(state))
}

// UpdateResultCount sets the results store size gauge.
func UpdateResultCount(count int) {
	globalManager.resultCount.Set(float64(count))
}

// UpdateRunnersLoaded sets the runner directory size gauge.
func UpdateRunnersLoaded(count int) {
	globalManager.runnersLoaded.Set(float64(count))
}

// RecordStoreAppendLatency observes a store append duration.
func RecordStoreAppendLatency(latencyMs float64) {
	globalManager.storeAppendLatency.Observe(latencyMs)
}

// RecordStoreQueryLatency observes a store snapshot duration.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordStoreError increments the store failure counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordChimeFailure increments the chime failure counter.
func RecordChimeFailure() {
	globalManager.chimeFailures.Inc()
}

// GetRegistry returns the custom registry for exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
