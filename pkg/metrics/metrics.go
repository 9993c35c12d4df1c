// Package metrics registers the small set of Prometheus collectors exposed
// on each process's /metrics endpoint (pkg/masterapi, pkg/agentapi).
//
// Kept deliberately thin per spec.md §1: shipping metrics to an external
// pipeline is out of scope, but exposing a scrape endpoint from the same
// prometheus/client_golang dependency the teacher already carries is not.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Master collectors, registered against the default registry by NewMaster.
type Master struct {
	ReconcileDuration  prometheus.Histogram
	SchedulerDecisions *prometheus.CounterVec
	NodeHeartbeatAge   *prometheus.GaugeVec
}

// NewMaster constructs and registers the master's collectors. Safe to call
// once per process; registering twice against the same registry panics, as
// is standard for prometheus.MustRegister.
func NewMaster() *Master {
	m := &Master{
		ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kago_reconcile_duration_seconds",
			Help:    "Duration of a single reconcile tick.",
			Buckets: prometheus.DefBuckets,
		}),
		SchedulerDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kago_scheduler_decisions_total",
			Help: "Count of scheduler placement decisions by outcome (placed, unschedulable).",
		}, []string{"outcome"}),
		NodeHeartbeatAge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kago_node_heartbeat_age_seconds",
			Help: "Per-node heartbeat age; set to 0 each time a heartbeat from the node is received and not updated between heartbeats.",
		}, []string{"node"}),
	}
	prometheus.MustRegister(m.ReconcileDuration, m.SchedulerDecisions, m.NodeHeartbeatAge)
	return m
}

// Agent collectors.
type Agent struct {
	HeartbeatsSent *prometheus.CounterVec
}

// NewAgent constructs and registers the agent's collectors.
func NewAgent() *Agent {
	a := &Agent{
		HeartbeatsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kago_agent_heartbeats_total",
			Help: "Count of heartbeat attempts sent to the master by outcome.",
		}, []string{"outcome"}),
	}
	prometheus.MustRegister(a.HeartbeatsSent)
	return a
}
