package counters

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"time"
)

var ConnectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "server",
	Name:      "connections_active",
	Help:      "Number of active ws connections",
})

var InboundCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "inbound_call_count",
	Help:      "Total number of calls received from charge points by action.",
}, []string{"action"})

var OutboundCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "outbound_call_count",
	Help:      "Total number of operator commands by action and outcome.",
}, []string{"action", "outcome"})

var OutboundDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "ocpp",
	Name:      "outbound_call_seconds",
	Help:      "Round trip time of operator commands.",
	Buckets:   prometheus.DefBuckets,
}, []string{"action"})

var TransactionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "transaction_count",
	Help:      "Total number of transactions.",
}, []string{"charge_point_id"})

var ErrorCounts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "vendor_error_count",
	Help:      "Total number of errors by vendor code.",
}, []string{"code", "charge_point_id"})

func ObserveConnections(count int) {
	ConnectionsGauge.Set(float64(count))
}

func ObserveInboundCall(action string) {
	if len(action) == 0 {
		return
	}
	InboundCalls.With(prometheus.Labels{"action": action}).Inc()
}

func ObserveOutboundCall(action, outcome string, elapsed time.Duration) {
	if len(action) == 0 {
		return
	}
	OutboundCalls.With(prometheus.Labels{"action": action, "outcome": outcome}).Inc()
	OutboundDuration.With(prometheus.Labels{"action": action}).Observe(elapsed.Seconds())
}

func CountTransaction(chargePointId string) {
	if len(chargePointId) == 0 {
		return
	}
	TransactionCounter.With(prometheus.Labels{"charge_point_id": chargePointId}).Inc()
}

func ObserveError(chargePointId, code string) {
	if len(code) == 0 || len(chargePointId) == 0 {
		return
	}
	ErrorCounts.With(prometheus.Labels{"code": code, "charge_point_id": chargePointId}).Inc()
}
