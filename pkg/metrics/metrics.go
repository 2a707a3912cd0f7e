package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todo", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter backend and policy."},
		[]string{"backend", "limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todo", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter backend and policy."},
		[]string{"backend", "limiter"},
	)
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todo", Name: "auth_attempts_total", Help: "Register and login attempts by outcome."},
		[]string{"action", "outcome"},
	)
	ItemOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todo", Name: "item_operations_total", Help: "Item store operations by kind and outcome."},
		[]string{"op", "outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(ItemOperations)
}
