package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docserve", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docserve", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	DocumentsServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docserve", Name: "documents_served_total", Help: "Document delivery decisions by outcome (redirect, local, not_found)."},
		[]string{"outcome"},
	)
	DocumentsUploaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docserve", Name: "documents_uploaded_total", Help: "Stored document uploads by storage backend."},
		[]string{"backend"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(DocumentsServed)
	reg.MustRegister(DocumentsUploaded)
}
