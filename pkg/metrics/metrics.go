package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters shared by the API and the outbox worker.
type Metrics struct {
	// Appointment lifecycle
	AppointmentTransitions *prometheus.CounterVec
	TransitionFailures     *prometheus.CounterVec
	LiveQueueDepth         *prometheus.GaugeVec
	LiveQueueDropped       prometheus.Counter

	// Outbox draining
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
	OutboxQueueSize         prometheus.Gauge
	OutboxRetries           *prometheus.CounterVec

	// Database
	DatabaseOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics on the default
// registry.
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		AppointmentTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "appointment_transitions_total",
			Help:      "Total number of applied appointment state transitions",
		}, []string{"action", "to_status"}),
		TransitionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "appointment_transition_failures_total",
			Help:      "Total number of rejected appointment state transitions",
		}, []string{"action"}),
		LiveQueueDepth: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "live_queue_depth",
			Help:      "Number of waiting appointments in the live queue",
		}, []string{"clinic_id"}),
		LiveQueueDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "live_queue_dropped_total",
			Help:      "Total number of live queue rows dropped for unknown status",
		}),

		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent draining one outbox batch",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		OutboxQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_queue_size",
			Help:      "Pending events picked up in the last poll",
		}),
		OutboxRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_retry_attempts_total",
			Help:      "Total number of retry attempts for outbox events",
		}, []string{"event_type"}),

		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}

// NewUnregistered builds the same set without registering it, for tests
// that construct more than one Metrics value in a process.
func NewUnregistered() *Metrics {
	return &Metrics{
		AppointmentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_transitions_total",
		}, []string{"action", "to_status"}),
		TransitionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_transition_failures_total",
		}, []string{"action"}),
		LiveQueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "live_queue_depth",
		}, []string{"clinic_id"}),
		LiveQueueDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "live_queue_dropped_total",
		}),
		OutboxEventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbox_events_processed_total",
		}),
		OutboxEventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbox_events_failed_total",
		}),
		OutboxProcessingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "outbox_processing_duration_seconds",
		}),
		OutboxQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_queue_size",
		}),
		OutboxRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_retry_attempts_total",
		}, []string{"event_type"}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "database_operations_total",
		}, []string{"operation", "status"}),
	}
}
