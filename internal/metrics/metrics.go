// Package metrics defines the Prometheus collectors exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "groupledger"

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	entriesCreated        *prometheus.CounterVec
	entriesDeleted        prometheus.Counter
	settlements           prometheus.Counter
	balanceRejections     *prometheus.CounterVec
	splitTransitions      *prometheus.CounterVec
	remindersSent         prometheus.Counter
	remindersFailed       prometheus.Counter
	reconcileRepairs      prometheus.Counter
	reconcileInconsistent prometheus.Counter
	rpcDuration           *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		entriesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_created_total",
			Help:      "Ledger entries recorded, by entry type.",
		}, []string{"type"}),
		entriesDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_deleted_total",
			Help:      "Ledger entries reversed by deletion.",
		}),
		settlements: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settlements recorded between group members.",
		}),
		balanceRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_adjustments_rejected_total",
			Help:      "Balance adjustments refused before any write, by reason.",
		}, []string{"reason"}),
		splitTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_request_transitions_total",
			Help:      "Split request status transitions, by new status.",
		}, []string{"status"}),
		remindersSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Payment reminders published.",
		}),
		remindersFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_failed_total",
			Help:      "Payment reminders that failed to publish.",
		}),
		reconcileRepairs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_repairs_total",
			Help:      "Split request statuses corrected by reconciliation.",
		}),
		reconcileInconsistent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_inconsistent_total",
			Help:      "Terminal split requests found disagreeing with their participants.",
		}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC latency, by procedure and code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}
}

func (m *Metrics) EntryCreated(entryType string) {
	if m == nil {
		return
	}
	m.entriesCreated.WithLabelValues(entryType).Inc()
}

func (m *Metrics) EntryDeleted() {
	if m == nil {
		return
	}
	m.entriesDeleted.Inc()
}

func (m *Metrics) SettlementRecorded() {
	if m == nil {
		return
	}
	m.settlements.Inc()
}

// BalanceRejected counts an adjustment refused for reason (e.g. "nonzero_sum").
func (m *Metrics) BalanceRejected(reason string) {
	if m == nil {
		return
	}
	m.balanceRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) SplitTransition(status string) {
	if m == nil {
		return
	}
	m.splitTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) ReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}

func (m *Metrics) ReminderFailed() {
	if m == nil {
		return
	}
	m.remindersFailed.Inc()
}

func (m *Metrics) ReconcileRepaired(n int) {
	if m == nil {
		return
	}
	m.reconcileRepairs.Add(float64(n))
}

func (m *Metrics) ReconcileInconsistent(n int) {
	if m == nil {
		return
	}
	m.reconcileInconsistent.Add(float64(n))
}

// ObserveRPC records one RPC's duration in seconds.
func (m *Metrics) ObserveRPC(procedure, code string, seconds float64) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(procedure, code).Observe(seconds)
}
