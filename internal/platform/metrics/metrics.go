package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oncoserve_requests_total",
		Help: "Requests handled, by route and status class",
	}, []string{"route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oncoserve_request_duration_seconds",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	RateLimitRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oncoserve_rate_limit_rejects_total",
		Help: "Requests rejected by the rate limiter, by bucket",
	}, []string{"bucket"})

	RateLimitStoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oncoserve_rate_limit_store_errors_total",
		Help: "Counter store failures (requests fail open)",
	})

	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oncoserve_audit_write_failures_total",
		Help: "Audit entries that could not be persisted",
	})

	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oncoserve_auth_failures_total",
		Help: "Authentication and authorization rejections, by kind",
	}, []string{"kind"})
)
