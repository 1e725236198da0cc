package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docvault", Name: "searches_total", Help: "Number of prefix searches served, by outcome."},
		[]string{"outcome"},
	)
	StoreWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docvault", Name: "store_writes_total", Help: "Number of record store writes by backend and result."},
		[]string{"backend", "result"},
	)
	IndexDesync = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "docvault", Name: "index_desync_total", Help: "Number of index mutations that failed after a committed store write."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docvault", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docvault", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(SearchesTotal)
	reg.MustRegister(StoreWrites)
	reg.MustRegister(IndexDesync)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
