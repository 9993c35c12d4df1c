package store

import (
	"github.com/samber/lo"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// UpsertDeployment inserts or replaces the deployment by name.
func (s *Store) UpsertDeployment(d *v1.Deployment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deployments[d.Name] = d.Clone()
}

// GetDeployment returns a clone of the deployment, or nil if absent.
func (s *Store) GetDeployment(name string) *v1.Deployment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deployments[name].Clone()
}

// ListDeployments returns clones of all deployments.
func (s *Store) ListDeployments() []*v1.Deployment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*v1.Deployment, 0, len(s.deployments))
	for _, d := range s.deployments {
		out = append(out, d.Clone())
	}
	return out
}

// DeleteDeployment removes the deployment from the store. It does not
// touch any pods; the reconciler is responsible for terminating owned
// pods on the next tick once the deployment is gone (spec.md §4.3: "If
// deployment no longer exists in store, skip" -- the caller, typically
// the API handler, is expected to have already marked owned pods
// Terminating via reconciler.Reconciler.TerminateDeploymentPods before or
// after this call).
func (s *Store) DeleteDeployment(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deployments[name]; !ok {
		return false
	}
	delete(s.deployments, name)
	return true
}

// DeploymentPodNames returns the set of active pod names for the given
// deployment, used to pick the next free "<name>-<i>" index in scale
// reconcile (spec.md §4.3.1).
func (s *Store) DeploymentPodNames(deployment string) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make(map[string]bool)
	for _, p := range s.pods {
		if p.DeploymentName != nil && *p.DeploymentName == deployment && p.Status.Active() {
			names[p.Name] = true
		}
	}
	return names
}

// CountActiveForDeployment returns the number of active pods for d
// (spec.md §4.1).
func (s *Store) CountActiveForDeployment(deployment string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.CountBy(lo.Values(s.pods), func(p *v1.Pod) bool {
		return p.DeploymentName != nil && *p.DeploymentName == deployment && p.Status.Active()
	})
}

// CountRunningForDeployment returns the number of Running pods for d.
func (s *Store) CountRunningForDeployment(deployment string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.CountBy(lo.Values(s.pods), func(p *v1.Pod) bool {
		return p.DeploymentName != nil && *p.DeploymentName == deployment && p.Status == v1.PodRunning
	})
}

// CountActiveForRevision returns the number of active pods for d at
// exactly the given revision.
func (s *Store) CountActiveForRevision(deployment string, revision uint64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.CountBy(lo.Values(s.pods), func(p *v1.Pod) bool {
		return p.DeploymentName != nil && *p.DeploymentName == deployment && p.Status.Active() && p.Revision == revision
	})
}

// CountRunningForRevision returns the number of Running pods for d at
// exactly the given revision.
func (s *Store) CountRunningForRevision(deployment string, revision uint64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.CountBy(lo.Values(s.pods), func(p *v1.Pod) bool {
		return p.DeploymentName != nil && *p.DeploymentName == deployment && p.Status == v1.PodRunning && p.Revision == revision
	})
}
