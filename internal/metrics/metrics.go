/*
Package metrics declares the Prometheus collectors of the portal client.
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "portal"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// SessionOperationsTotal counts settled login, register and logout calls.
	SessionOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_operations_total",
		Help:      "Count of settled session operations.",
	}, []string{"operation", "outcome"})

	// GateDecisionsTotal counts access gate evaluations made for HTTP requests and commands.
	GateDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Count of access gate decisions.",
	}, []string{"required_role", "decision"})

	// RemoteRequestsTotal counts calls to the remote complaint service.
	RemoteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_requests_total",
		Help:      "Count of requests sent to the remote complaint service.",
	}, []string{"operation", "outcome"})

	// RemoteRequestDuration observes remote call latency.
	RemoteRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_request_duration_seconds",
		Help:      "Latency of requests sent to the remote complaint service.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// Outcome maps an error to an outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
