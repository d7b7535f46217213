package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Payments - счётчики платёжных сценариев. Методы безопасно вызывать на nil.
type Payments struct {
	escrowInitiated  prometheus.Counter
	escrowReleased   prometheus.Counter
	webhooks         *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	reconciled       *prometheus.CounterVec
}

func NewPayments(registerer prometheus.Registerer) *Payments {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Payments{
		escrowInitiated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "honeyjobs_escrow_initiated_total",
			Help: "Escrow payments created at the payment provider.",
		}),
		escrowReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "honeyjobs_escrow_released_total",
			Help: "Escrow payments released to freelancers.",
		}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "honeyjobs_payment_webhooks_total",
			Help: "Payment webhooks by purpose and outcome.",
		}, []string{"purpose", "outcome"}),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "honeyjobs_payment_provider_requests_total",
			Help: "Requests to the payment provider by operation and result.",
		}, []string{"operation", "result"}),
		reconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "honeyjobs_escrow_reconciled_total",
			Help: "Pending escrows checked by the reconciler.",
		}, []string{"result"}),
	}

	registerer.MustRegister(m.escrowInitiated, m.escrowReleased, m.webhooks, m.providerRequests, m.reconciled)
	return m
}

func (m *Payments) EscrowInitiated() {
	if m == nil {
		return
	}
	m.escrowInitiated.Inc()
}

func (m *Payments) EscrowReleased() {
	if m == nil {
		return
	}
	m.escrowReleased.Inc()
}

func (m *Payments) Webhook(purpose, outcome string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(purpose, outcome).Inc()
}

func (m *Payments) ProviderRequest(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.providerRequests.WithLabelValues(operation, result).Inc()
}

func (m *Payments) Reconciled(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reconciled.WithLabelValues(result).Inc()
}

// HTTP - метрики входящих запросов.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTP(registerer prometheus.Registerer) *HTTP {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "honeyjobs_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "honeyjobs_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registerer.MustRegister(m.requests, m.duration)
	return m
}

func (m *HTTP) Observe(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(seconds)
}
