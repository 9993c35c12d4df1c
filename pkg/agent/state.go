// Package agent implements the node agent side of spec.md §4.4: local pod
// lifecycle against a container runtime, periodic state sync, and the
// RPCs the master drives against this node. Grounded on
// original_source/src/agent.rs's AgentState/Agent split, reshaped into the
// store package's lock-then-clone discipline.
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/kerrors"
	krt "github.com/lapla-cogito/kago/pkg/runtime"
)

// managedPod tracks one pod this agent is responsible for, mirroring
// original_source/src/agent.rs's ManagedPod.
type managedPod struct {
	podID       uuid.UUID
	name        string
	resources   v1.Resources
	containerID *string
	status      v1.PodStatus
}

// State is the agent's view of the node it runs on: identity, capacity,
// and the set of pods it is currently managing.
type State struct {
	mu sync.RWMutex

	NodeName string
	Capacity v1.Resources

	runtime krt.Runtime
	pods    map[uuid.UUID]*managedPod
	log     logr.Logger

	heartbeats *prometheus.CounterVec
}

// NewState builds an empty agent State bound to rt.
func NewState(nodeName string, capacity v1.Resources, rt krt.Runtime, log logr.Logger) *State {
	return &State{
		NodeName: nodeName,
		Capacity: capacity,
		runtime:  rt,
		pods:     make(map[uuid.UUID]*managedPod),
		log:      log.WithValues("component", "agent", "node", nodeName),
	}
}

// CreatePod implements POST /pods on the agent facade (spec.md §4.4,
// §6): reject a duplicate pod id with ErrConflict, otherwise record the
// pod as Creating, start its container, and transition to Running or
// Failed depending on the runtime result.
func (s *State) CreatePod(ctx context.Context, req v1.CreatePodOnNodeRequest) error {
	s.mu.Lock()
	if _, exists := s.pods[req.PodID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: pod %s already exists", kerrors.ErrConflict, req.Name)
	}
	s.pods[req.PodID] = &managedPod{
		podID:     req.PodID,
		name:      req.Name,
		resources: req.Resources,
		status:    v1.PodCreating,
	}
	s.mu.Unlock()

	s.log.Info("creating pod", "pod", req.Name, "podID", req.PodID)
	containerID, err := s.runtime.Run(ctx, req.Name, req.Image, req.Resources)

	s.mu.Lock()
	defer s.mu.Unlock()
	mp, ok := s.pods[req.PodID]
	if !ok {
		// Deleted concurrently; nothing left to update.
		return err
	}
	if err != nil {
		mp.status = v1.PodFailed
		s.log.Error(err, "failed to start container for pod", "pod", req.Name)
		return fmt.Errorf("%w: %v", kerrors.ErrRuntimeOther, err)
	}
	mp.containerID = &containerID
	mp.status = v1.PodRunning
	s.log.Info("pod started", "pod", req.Name, "containerID", containerID)
	return nil
}

// DeletePod implements DELETE /pods/{name} (spec.md §4.4, §6): a missing
// pod is ErrNotFound; otherwise mark Terminating, stop/remove the
// container (idempotently -- a missing container is not an error), and
// drop the pod from local state.
func (s *State) DeletePod(ctx context.Context, name string) error {
	s.mu.Lock()
	var podID uuid.UUID
	var found bool
	for id, mp := range s.pods {
		if mp.name == name {
			podID, found = id, true
			mp.status = v1.PodTerminating
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: pod %s", kerrors.ErrNotFound, name)
	}

	s.log.Info("deleting pod", "pod", name)
	if err := s.runtime.Stop(ctx, name); err != nil {
		s.log.Error(err, "failed to stop container", "pod", name)
	}
	if err := s.runtime.Remove(ctx, name); err != nil {
		s.log.Error(err, "failed to remove container", "pod", name)
	}

	s.mu.Lock()
	delete(s.pods, podID)
	s.mu.Unlock()

	s.log.Info("pod deleted", "pod", name)
	return nil
}

// ListPods implements GET /pods on the agent facade.
func (s *State) ListPods() []v1.AgentPodStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]v1.AgentPodStatus, 0, len(s.pods))
	for _, mp := range s.pods {
		out = append(out, v1.AgentPodStatus{PodID: mp.podID, Name: mp.name, Status: mp.status, ContainerID: mp.containerID})
	}
	return out
}

// UsedResources sums the resources of every pod counted as consuming
// capacity (Running or Creating), matching
// original_source/src/agent.rs's calculate_used_resources.
func (s *State) UsedResources() v1.Resources {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var used v1.Resources
	for _, mp := range s.pods {
		if mp.status == v1.PodRunning || mp.status == v1.PodCreating {
			used = used.Add(mp.resources)
		}
	}
	return used
}

// PodStatusReports builds the heartbeat payload's per-pod status list.
func (s *State) PodStatusReports() []v1.PodStatusReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]v1.PodStatusReport, 0, len(s.pods))
	for _, mp := range s.pods {
		out = append(out, v1.PodStatusReport{PodID: mp.podID, Status: mp.status, ContainerID: mp.containerID})
	}
	return out
}

// SyncFromRuntime reconciles each actively-managed pod's status against
// what the runtime actually reports, matching
// original_source/src/agent.rs's sync_pod_statuses: a container that
// exited or died marks the pod Failed; one the runtime no longer knows
// about marks it Failed too, unless it is already Terminating/Terminated.
func (s *State) SyncFromRuntime(ctx context.Context) {
	s.mu.RLock()
	type target struct {
		id   uuid.UUID
		name string
	}
	var targets []target
	for id, mp := range s.pods {
		if mp.status == v1.PodRunning || mp.status == v1.PodCreating {
			targets = append(targets, target{id, mp.name})
		}
	}
	s.mu.RUnlock()

	for _, t := range targets {
		status, err := s.runtime.Inspect(ctx, t.name)
		s.mu.Lock()
		mp, ok := s.pods[t.id]
		if !ok {
			s.mu.Unlock()
			continue
		}
		if err != nil {
			if kerrors.Is(err, kerrors.ErrRuntimeNotFound) {
				if mp.status != v1.PodTerminating && mp.status != v1.PodTerminated {
					mp.status = v1.PodFailed
				}
			} else {
				s.log.V(1).Info("failed to inspect container", "pod", t.name, "error", err.Error())
			}
			s.mu.Unlock()
			continue
		}
		switch status {
		case krt.StatusRunning:
			if mp.status != v1.PodTerminating {
				mp.status = v1.PodRunning
			}
		case krt.StatusExited, krt.StatusDead:
			if mp.status != v1.PodTerminating {
				mp.status = v1.PodFailed
			}
		case krt.StatusCreated:
			if mp.status != v1.PodTerminating {
				mp.status = v1.PodCreating
			}
		}
		s.mu.Unlock()
	}
}
