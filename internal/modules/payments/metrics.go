package payments

import "github.com/prometheus/client_golang/prometheus"

var (
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrollment_payment_transitions_total",
			Help: "Committed enrollment payment status transitions",
		},
		[]string{"status", "source"},
	)

	signatureFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_signature_failures_total",
			Help: "Rejected payment or webhook signatures",
		},
		[]string{"path"},
	)

	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Verified webhook deliveries by type and outcome",
		},
		[]string{"type", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(transitionsTotal)
	prometheus.MustRegister(signatureFailuresTotal)
	prometheus.MustRegister(webhookEventsTotal)
}

func RecordSignatureFailure(path string) {
	signatureFailuresTotal.WithLabelValues(path).Inc()
}
