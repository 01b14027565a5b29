// Package metrics exposes the client's Prometheus counters and gauges and
// the HTTP server that serves them, scoped to the single-session concerns
// this client has: messages sent and received, handshake outcomes,
// decode/checksum failures, and queue depth.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Handshake metrics
	HandshakeAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "btc_handshake_attempts_total",
		Help: "Total number of handshake attempts",
	})

	HandshakeSuccesses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "btc_handshake_successes_total",
		Help: "Total number of successful handshakes",
	})

	HandshakeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "btc_handshake_failures_total",
		Help: "Total number of failed handshakes",
	})

	// Message traffic metrics
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "btc_messages_sent_total",
		Help: "Total number of messages sent, by command",
	}, []string{"command"})

	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "btc_messages_received_total",
		Help: "Total number of messages received, by command",
	}, []string{"command"})

	// Error metrics
	DecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "btc_decode_errors_total",
		Help: "Total number of message decode errors",
	})

	ChecksumMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "btc_checksum_mismatches_total",
		Help: "Total number of checksum mismatches",
	})

	UnsupportedCommands = promauto.NewCounter(prometheus.CounterOpts{
		Name: "btc_unsupported_commands_total",
		Help: "Total number of messages with an unrecognized command",
	})

	// Session metrics
	SessionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "btc_session_state",
		Help: "Current session state (0=disconnected, 1=handshaking, 2=connected)",
	})

	PingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "btc_ping_latency_ms",
		Help:    "Round-trip ping latency in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 200, 500, 1000, 2000, 5000},
	})

	CommandQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "btc_command_queue_depth",
		Help: "Number of commands drained from the command queue in the last tick",
	})
)

// corsHandler wraps a handler with CORS headers
func corsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartMetricsServer starts the Prometheus metrics HTTP server.
func StartMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", corsHandler(promhttp.Handler()))
	go http.ListenAndServe(addr, mux)
}
