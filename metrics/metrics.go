// Package metrics registers net-sync's Prometheus collectors, the way
// ws/metrics.go registers the teacher server's.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netsync_sessions_connected",
		Help: "Current number of connected client sessions",
	})

	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netsync_messages_sent_total",
		Help: "Total application messages sent to clients",
	})

	MessagesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netsync_messages_received_total",
		Help: "Total application messages received from clients",
	})

	CommandsByOutcome = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netsync_commands_total",
		Help: "Total commands pushed to the server command buffer by outcome",
	}, []string{"outcome"}) // accepted, too_old, too_new

	ResimulationsTriggered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netsync_resimulations_triggered_total",
		Help: "Total resimulation spans pushed after a correction",
	})

	CommandFrameOffset = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "netsync_command_frame_offset",
		Help:    "Distribution of client-vs-server command frame offset",
		Buckets: []float64{-20, -10, -5, -2, -1, 0, 1, 2, 5, 10, 20},
	})

	SessionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netsync_sessions_rejected_total",
		Help: "Total new sessions rejected by reason",
	}, []string{"reason"}) // cpu, memory, max_sessions

	BroadcastDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "netsync_broadcast_duration_seconds",
		Help:    "Time spent cloning and enqueueing a WorldState broadcast across all sessions",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		SessionsConnected,
		MessagesSent,
		MessagesReceived,
		CommandsByOutcome,
		ResimulationsTriggered,
		CommandFrameOffset,
		SessionsRejected,
		BroadcastDuration,
	)
}

// Serve starts an HTTP server exposing /metrics on addr. Callers run it in
// a goroutine; it blocks until the server stops or errors.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
