package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// PaymentMetrics tracks state machine activity and refund volume.
type PaymentMetrics struct {
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	refunds     prometheus.Histogram
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_transitions_total",
		Help: "Successful payment intent transitions by operation.",
	}, []string{"operation", "to_status"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_transition_rejections_total",
		Help: "Payment operations rejected by the transition table.",
	}, []string{"operation", "from_status"})
	refunds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_refund_amount",
		Help:    "Refunded amounts in major currency units.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
	reg.MustRegister(transitions, rejections, refunds)
	return &PaymentMetrics{
		transitions: transitions,
		rejections:  rejections,
		refunds:     refunds,
	}
}

// ObserveTransition counts one successful transition.
func (p *PaymentMetrics) ObserveTransition(operation, toStatus string) {
	if p == nil || p.transitions == nil {
		return
	}
	p.transitions.WithLabelValues(normalizeLabel(operation), normalizeLabel(toStatus)).Inc()
}

// ObserveRejection counts one transition-table rejection.
func (p *PaymentMetrics) ObserveRejection(operation, fromStatus string) {
	if p == nil || p.rejections == nil {
		return
	}
	p.rejections.WithLabelValues(normalizeLabel(operation), normalizeLabel(fromStatus)).Inc()
}

// ObserveRefund records the refunded amount.
func (p *PaymentMetrics) ObserveRefund(amount decimal.Decimal) {
	if p == nil || p.refunds == nil {
		return
	}
	value, _ := amount.Float64()
	p.refunds.Observe(value)
}
