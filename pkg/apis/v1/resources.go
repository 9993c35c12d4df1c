// Package v1 holds the value types shared by the store, scheduler,
// reconciler and both HTTP facades: Resources, PodStatus, NodeStatus,
// Pod, Deployment and Node.
package v1

// Resources is a value type describing a CPU/memory quantity. Zero value
// means "no resources" (or "unbounded request", depending on context).
type Resources struct {
	CPUMillis uint32 `json:"cpu_millis"`
	MemoryMB  uint32 `json:"memory_mb"`
}

// Fits reports whether the receiver (capacity) can satisfy req.
func (r Resources) Fits(req Resources) bool {
	return r.CPUMillis >= req.CPUMillis && r.MemoryMB >= req.MemoryMB
}

// Add returns the component-wise sum of r and other.
func (r Resources) Add(other Resources) Resources {
	return Resources{
		CPUMillis: r.CPUMillis + other.CPUMillis,
		MemoryMB:  r.MemoryMB + other.MemoryMB,
	}
}

// Sub returns r - other, floored at zero per component (saturating).
func (r Resources) Sub(other Resources) Resources {
	return Resources{
		CPUMillis: satSub(r.CPUMillis, other.CPUMillis),
		MemoryMB:  satSub(r.MemoryMB, other.MemoryMB),
	}
}

func satSub(a, b uint32) uint32 {
	if b >= a {
		return 0
	}
	return a - b
}

// CPUPercentFree returns 100*(available-req)/capacity, 0 if capacity is 0.
// Used by the scheduler's scoring strategies (spec §4.2).
func CPUPercentFree(available, req Resources, capacity Resources) (cpuPct, memPct int64) {
	if capacity.CPUMillis > 0 {
		cpuPct = int64(100) * (int64(available.CPUMillis) - int64(req.CPUMillis)) / int64(capacity.CPUMillis)
	}
	if capacity.MemoryMB > 0 {
		memPct = int64(100) * (int64(available.MemoryMB) - int64(req.MemoryMB)) / int64(capacity.MemoryMB)
	}
	return cpuPct, memPct
}
