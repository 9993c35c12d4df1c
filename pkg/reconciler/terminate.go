package reconciler

import (
	"context"

	"github.com/google/uuid"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// terminatePod implements the single termination procedure of spec.md
// §4.3.3, used by both scale-down and rolling-update retirement, and by
// the reconciler pass triggered after a user DELETE /pods/{uuid} marks a
// pod Terminating. It is idempotent: calling it twice for the same pod
// converges to the same terminal state (spec.md §8).
func (r *Reconciler) terminatePod(ctx context.Context, id uuid.UUID) {
	pod := r.store.GetPod(id)
	if pod == nil {
		return
	}

	r.store.UpdatePodStatus(id, v1.PodTerminating)

	nodeDeletionSucceeded := pod.NodeName == nil
	if pod.NodeName != nil {
		node := r.store.GetNode(*pod.NodeName)
		if node == nil {
			// Node record is gone (operator deleted it); there is nothing
			// to call, and nothing to deallocate from. Treat as resolved
			// so the pod can be GC'd rather than stuck forever.
			nodeDeletionSucceeded = true
		} else {
			status, err := r.agentClient.DeletePod(ctx, node.Endpoint(), pod.Name)
			if err != nil {
				r.log.Error(err, "terminate: agent delete-pod transport error", "pod", pod.Name, "node", node.Name)
			} else if status >= 200 && status < 300 || status == 404 {
				// 404 is treated as success-enough: the pod is already
				// gone from the agent's perspective (spec.md §5).
				nodeDeletionSucceeded = true
				r.store.DeallocateResourcesOnNode(node.Name, pod.Resources)
			} else {
				r.log.Info("terminate: agent delete-pod returned non-2xx", "pod", pod.Name, "node", node.Name, "status", status)
			}
		}
	}

	if nodeDeletionSucceeded {
		r.store.UpdatePodStatus(id, v1.PodTerminated)
	} else {
		// Revert: the termination failed, next tick may retry
		// (spec.md §4.3.3 step 4).
		r.store.UpdatePodStatus(id, v1.PodRunning)
	}
}

// terminateMany terminates each id in order via terminatePod.
func (r *Reconciler) terminateMany(ctx context.Context, ids []uuid.UUID) {
	for _, id := range ids {
		r.terminatePod(ctx, id)
	}
}

// driveTerminatingPods runs terminatePod on every pod already sitting in
// Terminating: pods marked so by a user DELETE /pods/{uuid}, or by
// TerminateDeploymentPods on DELETE /deployments/{name}. Without this pass
// those pods would never issue the agent delete-pod RPC and would never
// reach Terminated, since the owning deployment may already be gone (or,
// for a live deployment, still report cur == des and see nothing to do).
// terminatePod is idempotent, so re-terminating a pod this same tick's
// scale-down or rolling-update step already handled is harmless.
func (r *Reconciler) driveTerminatingPods(ctx context.Context) {
	var ids []uuid.UUID
	for _, p := range r.store.ListPods() {
		if p.Status == v1.PodTerminating {
			ids = append(ids, p.ID)
		}
	}
	r.terminateMany(ctx, ids)
	r.tick.terminated += len(ids)
}
