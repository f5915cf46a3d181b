package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records checkout and order lifecycle counters.
type OrderMetrics struct {
	ordersCreated        prometheus.Counter
	statusTransitions    *prometheus.CounterVec
	checkoutRejections   *prometheus.CounterVec
	notificationFailures prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders accepted at checkout.",
	})
	statusTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions applied, by target status.",
	}, []string{"status"})
	checkoutRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_rejections_total",
		Help: "Checkout attempts rejected before any mutation, by error code.",
	}, []string{"code"})
	notificationFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_dispatch_failures_total",
		Help: "Notification dispatches that failed in at least one sink.",
	})
	reg.MustRegister(ordersCreated, statusTransitions, checkoutRejections, notificationFailures)
	return &OrderMetrics{
		ordersCreated:        ordersCreated,
		statusTransitions:    statusTransitions,
		checkoutRejections:   checkoutRejections,
		notificationFailures: notificationFailures,
	}
}

// IncOrderCreated increments the created-orders counter.
func (m *OrderMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncStatusTransition counts a transition into the named status.
func (m *OrderMetrics) IncStatusTransition(status string) {
	if m == nil || m.statusTransitions == nil {
		return
	}
	m.statusTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncCheckoutRejection counts a rejected checkout by error code.
func (m *OrderMetrics) IncCheckoutRejection(code string) {
	if m == nil || m.checkoutRejections == nil {
		return
	}
	m.checkoutRejections.WithLabelValues(normalizeLabel(code)).Inc()
}

// IncNotificationFailure counts a failed notification dispatch.
func (m *OrderMetrics) IncNotificationFailure() {
	if m == nil || m.notificationFailures == nil {
		return
	}
	m.notificationFailures.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
