package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of passkey registration attempts.",
		},
		[]string{"service", "result"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of passkey login attempts.",
		},
		[]string{"service", "result"},
	)

	InvitationsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_invitations_issued_total",
			Help: "Total number of invitations issued.",
		},
		[]string{"service", "result"},
	)

	SessionsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_sessions_issued_total",
			Help: "Total number of sessions issued.",
		},
		[]string{"service", "flow", "result"},
	)

	CleanupDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_cleanup_deleted_total",
			Help: "Total number of expired rows removed by cleanup sweeps.",
		},
		[]string{"service", "kind"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName}).(*prometheus.HistogramVec)
	RegistrationsTotal = RegistrationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	LoginsTotal = LoginsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	InvitationsIssuedTotal = InvitationsIssuedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	SessionsIssuedTotal = SessionsIssuedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	CleanupDeletedTotal = CleanupDeletedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		RegistrationsTotal,
		LoginsTotal,
		InvitationsIssuedTotal,
		SessionsIssuedTotal,
		CleanupDeletedTotal,
	)
}
