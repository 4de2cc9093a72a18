package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Dispatch metrics
	NotificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoconnect_notifications_dispatched_total",
			Help: "Total number of notifications dispatched by type and addressing (broadcast or targeted)",
		},
		[]string{"type", "addressing"},
	)

	DispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hoconnect_dispatch_duration_seconds",
			Help:    "Time taken to record and persist a notification in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	LedgerSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoconnect_ledger_size",
			Help: "Number of records in the notification ledger as last seen by this process",
		},
	)

	// Signal bus metrics
	SignalsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoconnect_signals_published_total",
			Help: "Total number of change signals published by key",
		},
		[]string{"key"},
	)

	SignalsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoconnect_signals_received_total",
			Help: "Total number of change signals handled by instances by key",
		},
		[]string{"key"},
	)

	SignalsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hoconnect_signals_dropped_total",
			Help: "Total number of change signals dropped because a subscriber buffer was full",
		},
	)

	SignalParseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoconnect_signal_parse_failures_total",
			Help: "Total number of signal or stored payloads that failed to parse, by key",
		},
		[]string{"key"},
	)

	// Toast metrics
	ToastsShown = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoconnect_toasts_shown_total",
			Help: "Total number of toasts shown by delivery path (local or remote)",
		},
		[]string{"path"},
	)

	ToastsRemoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoconnect_toasts_removed_total",
			Help: "Total number of toasts removed by reason (expired, dismissed, evicted)",
		},
		[]string{"reason"},
	)

	// Presence metrics
	EmployeesOnline = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoconnect_employees_online",
			Help: "Number of employees active within the presence window",
		},
	)

	EmployeesOffline = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoconnect_employees_offline",
			Help: "Number of employees outside the presence window",
		},
	)

	// Content generator metrics
	GeneratorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoconnect_generator_requests_total",
			Help: "Total number of content generator requests by operation and result",
		},
		[]string{"operation", "result"},
	)

	GeneratorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoconnect_generator_duration_seconds",
			Help:    "Time taken by content generator requests in seconds, by operation",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(NotificationsDispatched)
	prometheus.MustRegister(DispatchDuration)
	prometheus.MustRegister(LedgerSize)
	prometheus.MustRegister(SignalsPublished)
	prometheus.MustRegister(SignalsReceived)
	prometheus.MustRegister(SignalsDropped)
	prometheus.MustRegister(SignalParseFailures)
	prometheus.MustRegister(ToastsShown)
	prometheus.MustRegister(ToastsRemoved)
	prometheus.MustRegister(EmployeesOnline)
	prometheus.MustRegister(EmployeesOffline)
	prometheus.MustRegister(GeneratorRequests)
	prometheus.MustRegister(GeneratorDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
