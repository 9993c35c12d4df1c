package store

import (
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// AddPod inserts a new pod keyed by its ID.
func (s *Store) AddPod(p *v1.Pod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pods[p.ID] = p.Clone()
}

// GetPod returns a clone of the pod, or nil if absent.
func (s *Store) GetPod(id uuid.UUID) *v1.Pod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pods[id].Clone()
}

// ListPods returns clones of all pods.
func (s *Store) ListPods() []*v1.Pod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*v1.Pod, 0, len(s.pods))
	for _, p := range s.pods {
		out = append(out, p.Clone())
	}
	return out
}

// ListPodsByDeployment returns clones of every pod belonging to deployment,
// regardless of status.
func (s *Store) ListPodsByDeployment(deployment string) []*v1.Pod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*v1.Pod
	for _, p := range s.pods {
		if p.DeploymentName != nil && *p.DeploymentName == deployment {
			out = append(out, p.Clone())
		}
	}
	return out
}

// MutatePod applies fn to the stored pod under the write lock and returns
// whether the pod existed. This is the store's "get-mutable" contract
// (spec.md §4.1): callers never hold a reference to store-owned memory,
// they pass a closure that is run while the lock is held.
func (s *Store) MutatePod(id uuid.UUID, fn func(p *v1.Pod)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pods[id]
	if !ok {
		return false
	}
	fn(p)
	return true
}

// UpdatePodStatus sets a pod's status.
func (s *Store) UpdatePodStatus(id uuid.UUID, status v1.PodStatus) bool {
	return s.MutatePod(id, func(p *v1.Pod) { p.Status = status })
}

// AssignToNode binds a pod to a node and sets its status to status (the
// scheduler passes Creating). Per
// spec.md §3, node_name transitions only None -> Some(n) and never
// changes thereafter; callers must not call this twice for the same pod.
func (s *Store) AssignToNode(id uuid.UUID, node string, status v1.PodStatus) bool {
	return s.MutatePod(id, func(p *v1.Pod) {
		n := node
		p.NodeName = &n
		p.Status = status
	})
}

// SetContainerID records the agent-reported container id for a pod.
func (s *Store) SetContainerID(id uuid.UUID, containerID string) bool {
	return s.MutatePod(id, func(p *v1.Pod) {
		c := containerID
		p.ContainerID = &c
	})
}

// DeletePod removes a pod from the store (used by GC).
func (s *Store) DeletePod(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pods[id]; !ok {
		return false
	}
	delete(s.pods, id)
	return true
}

// GetOldRevisionPods returns active pods for deployment with
// revision < currentRevision (spec.md §4.1).
func (s *Store) GetOldRevisionPods(deployment string, currentRevision uint64) []*v1.Pod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*v1.Pod
	for _, p := range s.pods {
		if p.DeploymentName != nil && *p.DeploymentName == deployment && p.Status.Active() && p.Revision < currentRevision {
			out = append(out, p.Clone())
		}
	}
	sortByNameDesc(out)
	return out
}

// GetOldPodsToTerminate returns up to k old-revision (revision < current)
// active pod ids for deployment, ordered by name DESC (spec.md §4.1).
func (s *Store) GetOldPodsToTerminate(deployment string, currentRevision uint64, k int) []uuid.UUID {
	old := s.GetOldRevisionPods(deployment, currentRevision)
	if k < len(old) {
		old = old[:k]
	}
	return lo.Map(old, func(p *v1.Pod, _ int) uuid.UUID { return p.ID })
}

// GetPodsToTerminate returns up to k active pod ids for deployment (any
// revision), ordered by name DESC -- used by scale-down (spec.md §4.1,
// §4.3.1: "highest index first").
func (s *Store) GetPodsToTerminate(deployment string, k int) []uuid.UUID {
	s.mu.RLock()
	active := make([]*v1.Pod, 0)
	for _, p := range s.pods {
		if p.DeploymentName != nil && *p.DeploymentName == deployment && p.Status.Active() {
			active = append(active, p.Clone())
		}
	}
	s.mu.RUnlock()
	sortByNameDesc(active)
	if k < len(active) {
		active = active[:k]
	}
	return lo.Map(active, func(p *v1.Pod, _ int) uuid.UUID { return p.ID })
}

// GetUnassignedPods returns pods with node_name = None and status in
// {Pending, Creating} (spec.md §4.1), used by the scheduler.
func (s *Store) GetUnassignedPods() []*v1.Pod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*v1.Pod
	for _, p := range s.pods {
		if p.NodeName == nil && (p.Status == v1.PodPending || p.Status == v1.PodCreating) {
			out = append(out, p.Clone())
		}
	}
	sortByNameDesc(out)
	return out
}

// sortByNameDesc sorts pods by name descending (newest index first),
// matching the tie-break rationale of spec.md §4.1/§4.3.1.
func sortByNameDesc(pods []*v1.Pod) {
	sort.Slice(pods, func(i, j int) bool { return pods[i].Name > pods[j].Name })
}
