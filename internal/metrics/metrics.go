package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Processed payment notifications by order type and outcome",
		},
		[]string{"order_type", "outcome"}, // outcome: applied|duplicate|ignored|failed
	)
	SignatureFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_signature_failures_total",
			Help: "Notifications rejected for an invalid signature",
		},
	)
	SecondaryFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_secondary_failures_total",
			Help: "Payments applied with a failed secondary effect",
		},
	)
	SweptRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweeper_expired_total",
			Help: "Records expired by the background sweeper",
		},
		[]string{"entity"}, // boost|subscription
	)
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

func Init() {
	prometheus.MustRegister(PaymentsTotal)
	prometheus.MustRegister(SignatureFailures)
	prometheus.MustRegister(SecondaryFailures)
	prometheus.MustRegister(SweptRecords)
	prometheus.MustRegister(WorkerQueueDepth)
}
