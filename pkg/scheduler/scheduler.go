// Package scheduler implements the per-cycle filter-then-score placement
// engine of spec.md §4.2: snapshot unassigned pods and ready nodes, filter
// nodes that fit, score the survivors with the configured strategy, and
// commit the placement (store allocation + agent RPC) before considering
// the next pod in the same cycle.
package scheduler

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"

	"github.com/lapla-cogito/kago/pkg/agentclient"
	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/store"
)

// AgentClient is the subset of agentclient.Client the scheduler needs,
// narrowed to an interface so tests can substitute a fake.
type AgentClient interface {
	CreatePod(ctx context.Context, endpoint string, req agentclient.CreatePodRequest) error
}

// Scheduler runs one scheduling pass per reconcile tick.
type Scheduler struct {
	store    *store.Store
	client   AgentClient
	strategy Strategy
	log      logr.Logger

	decisions *prometheus.CounterVec
}

// SetDecisionsMetric wires a counter vec (pkg/metrics.Master's
// SchedulerDecisions in production), incremented once per pod per
// scheduling pass with an "outcome" label of "placed" or "unschedulable".
// Optional -- a nil vec is a no-op.
func (sc *Scheduler) SetDecisionsMetric(c *prometheus.CounterVec) {
	sc.decisions = c
}

// New builds a Scheduler bound to s and using the given placement
// strategy (spec.md §4.2; FirstFit is the default -- see StrategyByName).
func New(s *store.Store, client AgentClient, strategy Strategy, log logr.Logger) *Scheduler {
	return &Scheduler{store: s, client: client, strategy: strategy, log: log.WithValues("component", "scheduler")}
}

// Schedule runs exactly one scheduling pass (spec.md §4.2 steps 1-4).
func (sc *Scheduler) Schedule(ctx context.Context) {
	pending := sc.store.GetUnassignedPods()
	if len(pending) == 0 {
		return
	}

	readyNodes := sc.store.GetReadyNodes() // already sorted by name ASC (spec.md §4.2 step 2)
	entries := lo.Map(readyNodes, func(n *v1.Node, _ int) nodeEntry {
		return nodeEntry{Name: n.Name, Endpoint: n.Endpoint(), Available: n.Available(), Capacity: n.Capacity}
	})
	names := lo.Map(entries, func(n nodeEntry, _ int) string { return n.Name })
	cache := newCycleCache(entries)

	for _, pod := range pending {
		sc.scheduleOne(ctx, cache, names, pod)
	}
}

func (sc *Scheduler) scheduleOne(ctx context.Context, cache *cycleCache, names []string, pod *v1.Pod) {
	chosen, ok := sc.pickNode(cache, names, pod)
	if !ok {
		sc.log.Info("no suitable node", "pod", pod.Name, "resources", pod.Resources)
		sc.recordDecision("unschedulable")
		return
	}
	sc.recordDecision("placed")

	// Reserve in the per-cycle cache immediately so the next pod in this
	// cycle sees reduced availability (spec.md §4.2 step d).
	cache.reserve(chosen.Name, pod.Resources)

	if !sc.store.AllocateResourcesOnNode(chosen.Name, pod.Resources) {
		// Store-level allocation lost a race against another writer;
		// release the cache reservation and retry next cycle.
		cache.release(chosen.Name, pod.Resources)
		return
	}
	sc.store.AssignToNode(pod.ID, chosen.Name, v1.PodCreating)

	err := sc.client.CreatePod(ctx, chosen.Endpoint, agentclient.CreatePodRequest{
		PodID:     pod.ID,
		Name:      pod.Name,
		Image:     pod.Image,
		Resources: pod.Resources,
	})
	if err != nil {
		sc.log.Error(err, "agent create-pod failed", "pod", pod.Name, "node", chosen.Name)
		sc.store.UpdatePodStatus(pod.ID, v1.PodFailed)
		sc.store.DeallocateResourcesOnNode(chosen.Name, pod.Resources)
		cache.release(chosen.Name, pod.Resources)
		return
	}
	sc.store.UpdatePodStatus(pod.ID, v1.PodRunning)
}

// pickNode filters then scores cached nodes for pod, returning the
// highest-scoring fit with a "first encountered, strictly greater
// replaces" tie-break (spec.md §4.2 step b/c/d). names fixes the
// iteration order to the sorted-by-name snapshot order taken at the start
// of the cycle, which is what makes the tie-break deterministic.
func (sc *Scheduler) pickNode(cache *cycleCache, names []string, pod *v1.Pod) (nodeEntry, bool) {
	var best nodeEntry
	var bestScore int64
	found := false

	for _, name := range names {
		n, ok := cache.get(name)
		if !ok || !n.Available.Fits(pod.Resources) {
			continue
		}
		score := sc.strategy.Score(n, pod.Resources)
		if !found || score > bestScore {
			best, bestScore, found = n, score, true
		}
	}
	return best, found
}

func (sc *Scheduler) recordDecision(outcome string) {
	if sc.decisions != nil {
		sc.decisions.WithLabelValues(outcome).Inc()
	}
}

// Name identifies the scheduler for logging/metrics purposes.
func (sc *Scheduler) Name() string {
	return fmt.Sprintf("scheduler[%s]", sc.strategy.Name())
}
