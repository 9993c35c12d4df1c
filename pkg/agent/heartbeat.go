package agent

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/masterclient"
)

// DefaultHeartbeatInterval matches the master's reconcile tick (spec.md
// §4.4: heartbeats are sent on the same 5s cadence the reconciler expects
// them at).
const DefaultHeartbeatInterval = 5 * time.Second

// RunHeartbeatLoop sends a heartbeat every interval until ctx is
// cancelled. Each heartbeat first syncs pod statuses from the runtime, so
// the master's view of this node is never older than one runtime poll
// behind (original_source/src/agent.rs's run_heartbeat_loop).
func (s *State) RunHeartbeatLoop(ctx context.Context, client *masterclient.Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("heartbeat loop stopping")
			return
		case <-ticker.C:
			s.sendHeartbeat(ctx, client)
		}
	}
}

// SetHeartbeatsMetric wires a counter vec (pkg/metrics.Agent's
// HeartbeatsSent in production), incremented once per heartbeat attempt
// with an "outcome" label of "ok" or "error". Optional -- a nil vec is a
// no-op.
func (s *State) SetHeartbeatsMetric(c *prometheus.CounterVec) {
	s.heartbeats = c
}

func (s *State) sendHeartbeat(ctx context.Context, client *masterclient.Client) {
	s.SyncFromRuntime(ctx)

	req := v1.HeartbeatRequest{
		Used:        s.UsedResources(),
		PodStatuses: s.PodStatusReports(),
	}
	if err := client.Heartbeat(ctx, s.NodeName, req); err != nil {
		s.log.Error(err, "heartbeat failed")
		if s.heartbeats != nil {
			s.heartbeats.WithLabelValues("error").Inc()
		}
		return
	}
	s.log.V(1).Info("heartbeat sent")
	if s.heartbeats != nil {
		s.heartbeats.WithLabelValues("ok").Inc()
	}
}
