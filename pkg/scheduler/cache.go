package scheduler

import (
	gocache "github.com/patrickmn/go-cache"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// nodeEntry is the per-cycle snapshot of a schedulable node (spec.md §4.2):
// {name, endpoint, available, capacity}.
type nodeEntry struct {
	Name      string
	Endpoint  string
	Available v1.Resources
	Capacity  v1.Resources
}

// cycleCache is the scheduler's "per-cycle node cache" (spec.md §4.2): a
// short-lived reservation ledger built fresh for one Schedule() call and
// discarded afterward, so that multiple pending pods scheduled within the
// same tick do not independently observe the store's pre-cycle
// availability and double-reserve the same capacity.
//
// It is backed by patrickmn/go-cache, the same in-process TTL cache
// aws-karpenter-provider-aws depends on directly. Expiration is
// deliberately left at gocache.NoExpiration: a cycle lasts a few
// milliseconds to a few seconds and the cache is never reused across
// calls to Schedule, so TTL-based eviction would never fire anyway -- the
// "per-cycle" property is enforced structurally, by constructing a new
// cache per call, not by expiry.
type cycleCache struct {
	c *gocache.Cache
}

func newCycleCache(nodes []nodeEntry) *cycleCache {
	c := gocache.New(gocache.NoExpiration, 0)
	for _, n := range nodes {
		c.Set(n.Name, n, gocache.NoExpiration)
	}
	return &cycleCache{c: c}
}

func (cc *cycleCache) get(name string) (nodeEntry, bool) {
	v, ok := cc.c.Get(name)
	if !ok {
		return nodeEntry{}, false
	}
	return v.(nodeEntry), true
}

// reserve applies req against the cached node's available resources so
// that the next pod considered in the same cycle sees reduced capacity
// (spec.md §4.2 step d: "apply reservation to the node-cache entry
// *before* issuing the call").
func (cc *cycleCache) reserve(name string, req v1.Resources) {
	entry, ok := cc.get(name)
	if !ok {
		return
	}
	entry.Available = entry.Available.Sub(req)
	cc.c.Set(name, entry, gocache.NoExpiration)
}

// release undoes a reservation (used on agent create-pod failure, spec.md
// §4.2 step f).
func (cc *cycleCache) release(name string, req v1.Resources) {
	entry, ok := cc.get(name)
	if !ok {
		return
	}
	entry.Available = entry.Available.Add(req)
	cc.c.Set(name, entry, gocache.NoExpiration)
}
