// Package reconciler implements the periodic driver of spec.md §4.3: per
// tick, check node liveness, reconcile each deployment (scale or rolling
// update), run the scheduler, and garbage-collect terminated pods.
//
// The ticker-loop shape (time.NewTicker, for { select { case <-ticker.C }})
// is grounded on availability-prober/availability_prober.go's check()
// polling loop, the clearest example of a periodic HTTP-calling loop in
// the teacher pack.
package reconciler

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lapla-cogito/kago/pkg/agentclient"
	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/scheduler"
	"github.com/lapla-cogito/kago/pkg/store"
)

// DefaultTickInterval is the reconcile cadence of spec.md §2.
const DefaultTickInterval = 5 * time.Second

// DefaultHeartbeatTimeout is the node-liveness threshold of spec.md §4.3.
const DefaultHeartbeatTimeout = 30 * time.Second

// AgentClient is the subset of agentclient.Client the reconciler needs for
// pod termination RPCs (spec.md §4.3.3).
type AgentClient interface {
	DeletePod(ctx context.Context, endpoint, name string) (statusCode int, err error)
}

// Reconciler is the master's single periodic writer of pod/deployment
// lifecycle state (spec.md §5).
type Reconciler struct {
	store            *store.Store
	scheduler        *scheduler.Scheduler
	agentClient      AgentClient
	heartbeatTimeout time.Duration
	log              logr.Logger

	// tick accumulates per-tick counters for the end-of-cycle summary log
	// line, recovered from original_source/src/controller.rs (dropped by
	// the distillation, not excluded by any Non-goal -- pure observability).
	tick tickStats

	reconcileDuration prometheus.Observer
}

type tickStats struct {
	created    int
	terminated int
	nodesDown  int
}

// New builds a Reconciler. sched must already be wired to the same store.
func New(s *store.Store, sched *scheduler.Scheduler, agentClient *agentclient.Client, heartbeatTimeout time.Duration, log logr.Logger) *Reconciler {
	return &Reconciler{
		store:            s,
		scheduler:        sched,
		agentClient:      agentClient,
		heartbeatTimeout: heartbeatTimeout,
		log:              log.WithValues("component", "reconciler"),
	}
}

// SetReconcileDurationMetric wires an observer (pkg/metrics.Master's
// ReconcileDuration histogram in production) that records the wall time of
// each ReconcileOnce call. Optional -- a nil/unset observer is a no-op.
func (r *Reconciler) SetReconcileDurationMetric(o prometheus.Observer) {
	r.reconcileDuration = o
}

// Run ticks ReconcileOnce every interval until ctx is cancelled
// (spec.md §2, §5: "reconciler task is aborted" on shutdown).
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("reconciler stopping")
			return
		case <-ticker.C:
			r.ReconcileOnce(ctx)
		}
	}
}

// ReconcileOnce runs exactly one tick of spec.md §4.3.
func (r *Reconciler) ReconcileOnce(ctx context.Context) {
	start := time.Now()
	if r.reconcileDuration != nil {
		defer func() { r.reconcileDuration.Observe(time.Since(start).Seconds()) }()
	}

	r.tick = tickStats{}

	r.checkNodeHealth(time.Now())

	for _, d := range r.store.ListDeployments() {
		r.reconcileDeployment(ctx, d.Name)
	}

	r.driveTerminatingPods(ctx)

	r.scheduler.Schedule(ctx)

	r.gc()

	r.log.Info("reconcile cycle complete",
		"podsCreated", r.tick.created,
		"podsTerminated", r.tick.terminated,
		"nodesMarkedNotReady", r.tick.nodesDown,
	)
}

// checkNodeHealth implements spec.md §4.3 step 1: nodes whose last
// heartbeat is older than the timeout are marked NotReady. Pods on them
// keep their assignment and reservation (no rescheduling, by design).
func (r *Reconciler) checkNodeHealth(now time.Time) {
	for _, n := range r.store.ListNodes() {
		if n.Status == v1.NodeNotReady {
			continue
		}
		if now.Sub(n.LastHeartbeat) > r.heartbeatTimeout {
			r.store.UpdateNodeStatus(n.Name, v1.NodeNotReady)
			r.tick.nodesDown++
			r.log.Info("node heartbeat timed out, marking NotReady", "node", n.Name, "lastHeartbeat", n.LastHeartbeat)
		}
	}
}

// reconcileDeployment implements spec.md §4.3 step 2: per-deployment
// branch between scale reconcile and rolling-update reconcile.
func (r *Reconciler) reconcileDeployment(ctx context.Context, name string) {
	d := r.store.GetDeployment(name)
	if d == nil {
		// Deleted since the snapshot was taken; skip (spec.md §4.3 step 2).
		return
	}

	if r.rollingUpdateInProgress(d) {
		r.rollingUpdateReconcile(ctx, d)
	} else {
		r.scaleReconcile(ctx, d)
	}
}

// rollingUpdateInProgress reports whether any active pod of d is at an
// older revision than d.Revision (spec.md §4.3 step 2).
func (r *Reconciler) rollingUpdateInProgress(d *v1.Deployment) bool {
	return len(r.store.GetOldRevisionPods(d.Name, d.Revision)) > 0
}

// gc removes all Terminated pods from the store (spec.md §4.3 step 4).
func (r *Reconciler) gc() {
	for _, p := range r.store.ListPods() {
		if p.Status.TerminalForGC() {
			r.store.DeletePod(p.ID)
		}
	}
}

// TerminateDeploymentPods marks every active pod of deployment as
// Terminating, for use by the DELETE /deployments/{name} handler
// (spec.md §6: "Triggers async termination of all owned pods"). Actual
// agent RPCs happen on the next reconcile tick, via driveTerminatingPods,
// matching the "API writes intent, reconciler executes" separation of
// spec.md §9. The same sweep drives pods a user marked Terminating
// directly through DELETE /pods/{uuid}.
func (r *Reconciler) TerminateDeploymentPods(deployment string) {
	for _, p := range r.store.ListPodsByDeployment(deployment) {
		if p.Status.Active() {
			r.store.UpdatePodStatus(p.ID, v1.PodTerminating)
		}
	}
}
