package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the payment flow counters exported on /metrics.
type Metrics struct {
	PaymentRequestsTotal    *prometheus.CounterVec
	PaymentCallbacksTotal   *prometheus.CounterVec
	StatusTransitionsTotal  *prometheus.CounterVec
	GatewayRequestDuration  *prometheus.HistogramVec
	OTPRequestsTotal        *prometheus.CounterVec
	RedirectClassifications *prometheus.CounterVec
}

// New registers every collector on reg. Pass prometheus.DefaultRegisterer in main.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "farmstay"
	}
	factory := promauto.With(reg)

	return &Metrics{
		PaymentRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "requests_total",
				Help:      "Total number of payment requests by outcome",
			},
			[]string{"outcome"}, // outcome: created, reused, gateway_error
		),
		PaymentCallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "callbacks_total",
				Help:      "Total number of gateway callbacks by outcome",
			},
			[]string{"outcome"}, // outcome: applied, noop, signature_mismatch, amount_mismatch, not_found
		),
		StatusTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "booking",
				Name:      "status_transitions_total",
				Help:      "Total number of booking payment status transitions",
			},
			[]string{"from", "to", "source"},
		),
		GatewayRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "NoqoodyPay request duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation", "status"},
		),
		OTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "otp_requests_total",
				Help:      "Total number of OTP requests by outcome",
			},
			[]string{"outcome"}, // outcome: sent, rate_limited, verified, invalid, expired
		),
		RedirectClassifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "return_classifications_total",
				Help:      "Total number of classified payment return URLs",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) RecordPaymentRequest(outcome string) {
	m.PaymentRequestsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCallback(outcome string) {
	m.PaymentCallbacksTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordTransition(from, to, source string) {
	m.StatusTransitionsTotal.WithLabelValues(from, to, source).Inc()
}

func (m *Metrics) RecordGatewayRequest(operation, status string, duration time.Duration) {
	m.GatewayRequestDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

func (m *Metrics) RecordOTP(outcome string) {
	m.OTPRequestsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRedirect(outcome string) {
	m.RedirectClassifications.WithLabelValues(outcome).Inc()
}
