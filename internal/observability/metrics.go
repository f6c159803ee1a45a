package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "tripmate", Name: "matches_total", Help: "Total trip match records created"})
	MatchScores  = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tripmate",
		Name:      "match_score",
		Help:      "Distribution of pairwise compatibility scores",
		Buckets:   prometheus.LinearBuckets(0, 25, 11),
	})
	MatchPassFailures = promauto.NewCounter(prometheus.CounterOpts{Namespace: "tripmate", Name: "match_pass_failures_total", Help: "Matching passes that failed and were dropped"})

	GeocodeFailures = promauto.NewCounter(prometheus.CounterOpts{Namespace: "tripmate", Name: "geocode_failures_total", Help: "Geocoder lookups that returned no result or errored"})
	RouteFallbacks  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "tripmate", Name: "route_fallbacks_total", Help: "Trips created with a synthetic straight-line route"})

	SOSAlertsTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "tripmate", Name: "sos_alerts_total", Help: "SOS alerts recorded"})
	SOSSendFailures = promauto.NewCounter(prometheus.CounterOpts{Namespace: "tripmate", Name: "sos_send_failures_total", Help: "Per-recipient SOS notification failures"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tripmate", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tripmate",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
