// Package metrics holds the Prometheus collectors shared by the client and
// the server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SyncWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patungan_sync_writes_total",
			Help: "Debounced remote writes grouped by outcome",
		},
		[]string{"outcome"},
	)
	SyncCoalescedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "patungan_sync_coalesced_total",
			Help: "Pending remote writes replaced by a newer change",
		},
	)
	SyncPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "patungan_sync_pending",
			Help: "Remote writes waiting for their debounce window",
		},
	)
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patungan_rpc_requests_total",
			Help: "RPC requests grouped by procedure and status code",
		},
		[]string{"procedure", "code"},
	)
	DraftErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patungan_draft_errors_total",
			Help: "Local draft store failures grouped by operation",
		},
		[]string{"op"},
	)
)

// Sync write outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

func init() {
	prometheus.MustRegister(
		SyncWritesTotal,
		SyncCoalescedTotal,
		SyncPending,
		RPCRequestsTotal,
		DraftErrorsTotal,
	)
}
