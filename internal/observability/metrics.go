// Package observability provides Prometheus metrics for the ledger.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for ledger operations.
var (
	// loginsTotal counts authentication attempts by outcome.
	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kvrdb_logins_total",
		Help: "Total number of authentication attempts",
	}, []string{"outcome"})

	// sessionsActive tracks the number of live sessions.
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kvrdb_sessions_active",
		Help: "Number of currently active sessions",
	})

	// transfersTotal counts transfer attempts by outcome.
	transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kvrdb_transfers_total",
		Help: "Total number of transfer operations",
	}, []string{"outcome"})

	// transferConflicts counts optimistic-concurrency retries during transfers.
	transferConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvrdb_transfer_conflicts_total",
		Help: "Total number of transfer commit conflicts that triggered a retry",
	})
)

// RecordLogin records an authentication attempt.
func RecordLogin(outcome string) {
	loginsTotal.WithLabelValues(outcome).Inc()
}

// SessionOpened increments the active session gauge.
func SessionOpened() {
	sessionsActive.Inc()
}

// SessionClosed decrements the active session gauge.
func SessionClosed() {
	sessionsActive.Dec()
}

// RecordTransfer records a completed transfer attempt.
func RecordTransfer(outcome string) {
	transfersTotal.WithLabelValues(outcome).Inc()
}

// RecordTransferConflict records a commit conflict inside the retry loop.
func RecordTransferConflict() {
	transferConflicts.Inc()
}
