package store

import (
	"sort"
	"time"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// RegisterNode inserts or overwrites a node (spec.md §4.1: "overwrites
// existing"). Status starts Ready, last_heartbeat is set to now.
func (s *Store) RegisterNode(name, address string, port int, capacity v1.Resources, now time.Time) *v1.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := &v1.Node{
		Name:          name,
		Address:       address,
		Port:          port,
		Capacity:      capacity,
		Allocatable:   capacity,
		Status:        v1.NodeReady,
		LastHeartbeat: now,
	}
	s.nodes[name] = n
	return n.Clone()
}

// GetNode returns a clone of the node, or nil if absent.
func (s *Store) GetNode(name string) *v1.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[name].Clone()
}

// ListNodes returns clones of all nodes.
func (s *Store) ListNodes() []*v1.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*v1.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n.Clone())
	}
	return out
}

// DeleteNode removes a node; it does not touch pods (spec.md §4.3: "no
// automatic reschedule").
func (s *Store) DeleteNode(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[name]; !ok {
		return false
	}
	delete(s.nodes, name)
	return true
}

// UpdateHeartbeat sets last_heartbeat = now and status = Ready
// (spec.md §4.1).
func (s *Store) UpdateHeartbeat(name string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[name]
	if !ok {
		return false
	}
	n.LastHeartbeat = now
	n.Status = v1.NodeReady
	return true
}

// UpdateNodeStatus sets a node's status directly (used by the node
// health check to mark NotReady, spec.md §4.3 step 1).
func (s *Store) UpdateNodeStatus(name string, status v1.NodeStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[name]
	if !ok {
		return false
	}
	n.Status = status
	return true
}

// UpdateUsedResources overwrites a node's Used field from a heartbeat
// report. Per spec.md §9 this is a deliberate latest-write-wins design:
// the master's allocate/deallocate accounting and the agent's observed
// usage both write this same field.
func (s *Store) UpdateUsedResources(name string, used v1.Resources) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[name]
	if !ok {
		return false
	}
	n.Used = used
	return true
}

// GetReadyNodes returns clones of all Ready nodes sorted by name ASC
// for scheduler determinism (spec.md §4.1, §4.2).
func (s *Store) GetReadyNodes() []*v1.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*v1.Node
	for _, n := range s.nodes {
		if n.Status == v1.NodeReady {
			out = append(out, n.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AllocateResourcesOnNode reserves req on node name, failing if the node
// cannot currently fit it (spec.md §4.1: "allocate fails if !can_fit").
func (s *Store) AllocateResourcesOnNode(name string, req v1.Resources) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[name]
	if !ok {
		return false
	}
	if !n.Available().Fits(req) {
		return false
	}
	n.Used = n.Used.Add(req)
	return true
}

// DeallocateResourcesOnNode releases req on node name (saturating).
func (s *Store) DeallocateResourcesOnNode(name string, req v1.Resources) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[name]
	if !ok {
		return false
	}
	n.Used = n.Used.Sub(req)
	return true
}
