package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors the payment flow reports to. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Reconciliations   *prometheus.CounterVec
	GatewayRequests   *prometheus.CounterVec
	GatewayLatency    *prometheus.HistogramVec
	WebhookRejections prometheus.Counter
	LateCompletions   prometheus.Counter
	ReaperExpired     prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gasdepot",
			Name:      "reconciliations_total",
			Help:      "Reconciliation attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gasdepot",
			Name:      "gateway_requests_total",
			Help:      "Payment provider requests by operation and result.",
		}, []string{"operation", "result"}),
		GatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gasdepot",
			Name:      "gateway_request_duration_seconds",
			Help:      "Payment provider request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		WebhookRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gasdepot",
			Name:      "webhook_rejections_total",
			Help:      "Webhooks rejected for a bad or missing signature.",
		}),
		LateCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gasdepot",
			Name:      "late_completions_total",
			Help:      "Complete signals received for transactions already marked failed.",
		}),
		ReaperExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gasdepot",
			Name:      "reaper_expired_total",
			Help:      "Pending transactions marked failed by the reaper.",
		}),
	}
	reg.MustRegister(
		m.Reconciliations,
		m.GatewayRequests,
		m.GatewayLatency,
		m.WebhookRejections,
		m.LateCompletions,
		m.ReaperExpired,
	)
	return m
}

func (m *Metrics) ObserveReconcile(channel, outcome string) {
	if m == nil {
		return
	}
	m.Reconciliations.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) ObserveGateway(operation, result string, seconds float64) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(operation, result).Inc()
	m.GatewayLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) IncWebhookRejection() {
	if m == nil {
		return
	}
	m.WebhookRejections.Inc()
}

func (m *Metrics) IncLateCompletion() {
	if m == nil {
		return
	}
	m.LateCompletions.Inc()
}

func (m *Metrics) AddReaperExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ReaperExpired.Add(float64(n))
}
