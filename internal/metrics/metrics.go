// Package metrics exposes the server's Prometheus counters. It is an
// ambient concern, not part of the core dispatch/session logic: callers
// hold a *Metrics and increment it inline, and main wires the collector
// behind an optional /metrics endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the counters the dispatcher, auth handler, and presence
// engine publish.
type Metrics struct {
	PacketsDispatched *prometheus.CounterVec
	LoginAttempts     *prometheus.CounterVec
	PresenceFanoutErr prometheus.Counter
}

// New registers all counters with the default Prometheus registry (via
// promauto) and returns the Metrics handle. Handler serves that registry.
func New() *Metrics {
	return &Metrics{
		PacketsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bancho",
			Name:      "packets_dispatched_total",
			Help:      "Number of client->server packets dispatched, by packet id.",
		}, []string{"packet_id"}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bancho",
			Name:      "login_attempts_total",
			Help:      "Number of login attempts, by outcome.",
		}, []string{"outcome"}),
		PresenceFanoutErr: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "bancho",
			Name:      "presence_fanout_errors_total",
			Help:      "Number of errors encountered appending a broadcast packet to a peer's buffer.",
		}),
	}
}

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
