package scheduler

import (
	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// Strategy scores a filter-passing node for a pending pod's request.
// Higher wins; ties keep the first-encountered node (spec.md §4.2).
type Strategy interface {
	Name() string
	Score(node nodeEntry, req v1.Resources) int64
}

// StrategyByName resolves a configured strategy name to its
// implementation. FirstFit is the default (spec.md §4.2).
func StrategyByName(name string) Strategy {
	switch name {
	case "bestfit":
		return BestFit{}
	case "leastallocated":
		return LeastAllocated{}
	case "balanced":
		return Balanced{}
	default:
		return FirstFit{}
	}
}

// FirstFit always scores 0; combined with "first encountered, strictly
// greater replaces" tie-break, the first filter-passing node in sorted
// order always wins (spec.md §4.2).
type FirstFit struct{}

func (FirstFit) Name() string                        { return "firstfit" }
func (FirstFit) Score(nodeEntry, v1.Resources) int64 { return 0 }

// BestFit (bin-pack) prefers the node that will be most tightly packed
// after placement: score = 200 - (rcpu% + rmem%).
type BestFit struct{}

func (BestFit) Name() string { return "bestfit" }
func (BestFit) Score(node nodeEntry, req v1.Resources) int64 {
	cpuPct, memPct := v1.CPUPercentFree(node.Available, req, node.Capacity)
	return 200 - (cpuPct + memPct)
}

// LeastAllocated (spread) prefers the emptiest node:
// score = rcpu% + rmem%.
type LeastAllocated struct{}

func (LeastAllocated) Name() string { return "leastallocated" }
func (LeastAllocated) Score(node nodeEntry, req v1.Resources) int64 {
	cpuPct, memPct := v1.CPUPercentFree(node.Available, req, node.Capacity)
	return cpuPct + memPct
}

// Balanced spreads load while penalizing CPU/memory skew:
// score = (rcpu% + rmem%) - 0.3*|rcpu% - rmem%|.
type Balanced struct{}

func (Balanced) Name() string { return "balanced" }
func (Balanced) Score(node nodeEntry, req v1.Resources) int64 {
	cpuPct, memPct := v1.CPUPercentFree(node.Available, req, node.Capacity)
	skew := cpuPct - memPct
	if skew < 0 {
		skew = -skew
	}
	// Scaled by 10 and divided back down to keep the 0.3 multiplier exact
	// in integer arithmetic rather than truncating it to 0.
	return (cpuPct+memPct)*10/10 - (3*skew)/10
}
