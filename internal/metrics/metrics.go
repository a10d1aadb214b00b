package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	// Message metrics
	MessagesReceivedTotal *prometheus.CounterVec
	MessagesFilteredTotal *prometheus.CounterVec
	RepliesSentTotal      *prometheus.CounterVec
	ReplyErrorsTotal      prometheus.Counter
	ApologiesTotal        prometheus.Counter

	// Routing metrics
	CommandsTotal          *prometheus.CounterVec
	DetectedLanguagesTotal *prometheus.CounterVec

	// Diagnosis metrics
	DiagnosisRequestsTotal *prometheus.CounterVec
	DiagnosisDuration      prometheus.Histogram
	DiagnosisServiceUp     prometheus.Gauge

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter

	// Conversation lane metrics
	QueueTasksTotal   *prometheus.CounterVec
	QueuePendingTasks prometheus.Gauge
	QueueTaskDuration *prometheus.HistogramVec
	QueueTaskWait     prometheus.Histogram
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		MessagesReceivedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_messages_received_total",
				Help: "Total number of inbound chat messages",
			},
			[]string{"channel"},
		),
		MessagesFilteredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_messages_filtered_total",
				Help: "Total number of inbound messages dropped before routing",
			},
			[]string{"reason"},
		),
		RepliesSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_replies_sent_total",
				Help: "Total number of replies sent",
			},
			[]string{"kind"},
		),
		ReplyErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chat_reply_errors_total",
				Help: "Total number of replies that failed to send",
			},
		),
		ApologiesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chat_apologies_total",
				Help: "Total number of error apologies sent",
			},
		),

		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commands_total",
				Help: "Total number of routed commands",
			},
			[]string{"command"},
		),
		DetectedLanguagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "detected_languages_total",
				Help: "Total number of messages per detected language",
			},
			[]string{"language"},
		),

		DiagnosisRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagnosis_requests_total",
				Help: "Total number of diagnosis service calls",
			},
			[]string{"status"},
		),
		DiagnosisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diagnosis_request_duration_seconds",
				Help:    "Duration of diagnosis service calls in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
		),
		DiagnosisServiceUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "diagnosis_service_up",
				Help: "Whether the last diagnosis service health probe succeeded",
			},
		),

		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sessions_active",
				Help: "Number of conversation sessions held in memory",
			},
		),
		SessionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sessions_total",
				Help: "Total number of sessions created",
			},
		),

		QueueTasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_tasks_total",
				Help: "Total number of tasks accepted by the lane queue",
			},
			[]string{"lane_kind"},
		),
		QueuePendingTasks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "queue_pending_tasks",
				Help: "Number of accepted tasks that have not finished",
			},
		),
		QueueTaskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "queue_task_duration_seconds",
				Help:    "Duration of lane tasks in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		QueueTaskWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "queue_task_wait_seconds",
				Help:    "Time tasks spent waiting behind earlier tasks in their lane",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
			},
		),
	}

	m.registerMetrics()

	return m
}

// registerMetrics registers all metrics with the registry
func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.MessagesReceivedTotal)
	m.registry.MustRegister(m.MessagesFilteredTotal)
	m.registry.MustRegister(m.RepliesSentTotal)
	m.registry.MustRegister(m.ReplyErrorsTotal)
	m.registry.MustRegister(m.ApologiesTotal)

	m.registry.MustRegister(m.CommandsTotal)
	m.registry.MustRegister(m.DetectedLanguagesTotal)

	m.registry.MustRegister(m.DiagnosisRequestsTotal)
	m.registry.MustRegister(m.DiagnosisDuration)
	m.registry.MustRegister(m.DiagnosisServiceUp)

	m.registry.MustRegister(m.SessionsActive)
	m.registry.MustRegister(m.SessionsTotal)

	m.registry.MustRegister(m.QueueTasksTotal)
	m.registry.MustRegister(m.QueuePendingTasks)
	m.registry.MustRegister(m.QueueTaskDuration)
	m.registry.MustRegister(m.QueueTaskWait)
}

// RecordSessionCreated updates the session counters
func (m *Metrics) RecordSessionCreated() {
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()
}

// TaskQueued records a task accepted by the lane queue. Lanes are labelled
// by their prefix ("conversation" for "conversation:42") to keep
// cardinality bounded.
func (m *Metrics) TaskQueued(lane string, queueSize int) {
	m.QueueTasksTotal.WithLabelValues(laneKind(lane)).Inc()
	m.QueuePendingTasks.Inc()
}

// TaskFinished records a finished lane task
func (m *Metrics) TaskFinished(lane string, waited, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.QueuePendingTasks.Dec()
	m.QueueTaskDuration.WithLabelValues(result).Observe(duration.Seconds())
	m.QueueTaskWait.Observe(waited.Seconds())
}

func laneKind(lane string) string {
	if kind, _, ok := strings.Cut(lane, ":"); ok {
		return kind
	}
	return lane
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
