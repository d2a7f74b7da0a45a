package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bizmate"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Remote API metrics
	APIRequests *prometheus.CounterVec
	APIDuration *prometheus.HistogramVec
	BreakerOpen *prometheus.GaugeVec

	// Session metrics
	SessionEvents *prometheus.CounterVec

	// Workflow metrics
	WorkflowTransitions *prometheus.CounterVec
	Redirects           *prometheus.CounterVec
	ChatMessages        *prometheus.CounterVec

	// Bridge metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	WSConnections   prometheus.Gauge
	WSMessages      *prometheus.CounterVec
}

// New creates the metric set and registers it on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Remote API requests by endpoint and outcome",
			},
			[]string{"endpoint", "method", "outcome"},
		),
		APIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Remote API request duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint", "method"},
		),
		BreakerOpen: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "api_breaker_open",
				Help:      "1 while the API circuit breaker is not closed",
			},
			[]string{"name"},
		),
		SessionEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_events_total",
				Help:      "Session token lifecycle events",
			},
			[]string{"event"},
		),
		WorkflowTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_transitions_total",
				Help:      "Workflow state transitions",
			},
			[]string{"workflow", "from", "to"},
		),
		Redirects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_login_redirects_total",
				Help:      "Redirect-to-login signals emitted by workflows",
			},
			[]string{"workflow"},
		),
		ChatMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_messages_total",
				Help:      "Chat messages appended to conversation logs",
			},
			[]string{"sender"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_http_requests_total",
				Help:      "Bridge HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bridge_http_request_duration_seconds",
				Help:      "Bridge HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "bridge_ws_connections",
				Help:      "Open bridge event streams",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_ws_messages_total",
				Help:      "Bridge event stream messages",
			},
			[]string{"direction", "type"},
		),
	}
}

// RecordAPIRequest records one remote API call.
func (m *Metrics) RecordAPIRequest(endpoint, method, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(endpoint, method, outcome).Inc()
	m.APIDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// SetBreakerOpen tracks whether the named breaker currently rejects calls.
func (m *Metrics) SetBreakerOpen(name string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerOpen.WithLabelValues(name).Set(v)
}

// RecordSessionEvent records a session lifecycle event.
func (m *Metrics) RecordSessionEvent(event string) {
	if m == nil {
		return
	}
	m.SessionEvents.WithLabelValues(event).Inc()
}

// RecordTransition records a workflow state change.
func (m *Metrics) RecordTransition(workflow, from, to string) {
	if m == nil {
		return
	}
	m.WorkflowTransitions.WithLabelValues(workflow, from, to).Inc()
}

// RecordRedirect records a redirect-to-login signal.
func (m *Metrics) RecordRedirect(workflow string) {
	if m == nil {
		return
	}
	m.Redirects.WithLabelValues(workflow).Inc()
}

// RecordChatMessage records an appended chat message.
func (m *Metrics) RecordChatMessage(sender string) {
	if m == nil {
		return
	}
	m.ChatMessages.WithLabelValues(sender).Inc()
}

// RecordHTTPRequest records a bridge HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordWSMessage records an event stream message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments open event streams
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements open event streams
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}
