package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa os coletores do gateway. Todos os métodos aceitam receiver
// nil para que componentes funcionem sem métricas (ex: testes).
type Metrics struct {
	InteractionsTotal      *prometheus.CounterVec
	AdmissionsTotal        *prometheus.CounterVec
	RemoteFallbacksTotal   prometheus.Counter
	ConcurrencyRejected    prometheus.Counter
	UpstreamAttemptsTotal  *prometheus.CounterVec
	UpstreamAttemptSeconds *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InteractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interactions_total",
				Help:      "Interactions handled, by terminal outcome",
			},
			[]string{"outcome"},
		),
		AdmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admissions_total",
				Help:      "Rate limit decisions, by tier and result",
			},
			[]string{"tier", "allowed"},
		),
		RemoteFallbacksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_remote_fallbacks_total",
				Help:      "Times the remote counter failed and the local window decided",
			},
		),
		ConcurrencyRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "concurrency_rejected_total",
				Help:      "Interactions rejected because no slot was available",
			},
		),
		UpstreamAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_attempts_total",
				Help:      "Outbound API attempts, by method and status (0 = network error)",
			},
			[]string{"method", "status"},
		),
		UpstreamAttemptSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_attempt_seconds",
				Help:      "Outbound API attempt latency in seconds",
				Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method"},
		),
	}
}

func (m *Metrics) ObserveInteraction(outcome string) {
	if m == nil {
		return
	}
	m.InteractionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAdmission(tier string, allowed bool) {
	if m == nil {
		return
	}
	m.AdmissionsTotal.WithLabelValues(tier, strconv.FormatBool(allowed)).Inc()
}

func (m *Metrics) ObserveRemoteFallback() {
	if m == nil {
		return
	}
	m.RemoteFallbacksTotal.Inc()
}

func (m *Metrics) ObserveConcurrencyReject() {
	if m == nil {
		return
	}
	m.ConcurrencyRejected.Inc()
}

func (m *Metrics) ObserveUpstreamAttempt(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamAttemptsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.UpstreamAttemptSeconds.WithLabelValues(method).Observe(elapsed.Seconds())
}
