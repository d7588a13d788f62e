package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CacheSaveFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "jobhunt", Name: "cache_save_failures_total", Help: "Local cache writes that failed and were swallowed."},
	)
	RemotePulls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "jobhunt", Name: "remote_pulls_total", Help: "Sign-in remote pulls by outcome."},
		[]string{"outcome"},
	)
	RemoteSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "jobhunt", Name: "remote_saves_total", Help: "Debounced remote writes by outcome."},
		[]string{"outcome"},
	)
	SyncSaving = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "jobhunt", Name: "sync_saving", Help: "1 while a debounced remote write is pending or in flight."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "jobhunt", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "jobhunt", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(CacheSaveFailures)
	reg.MustRegister(RemotePulls)
	reg.MustRegister(RemoteSaves)
	reg.MustRegister(SyncSaving)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
