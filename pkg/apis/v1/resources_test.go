package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourcesFits(t *testing.T) {
	capacity := Resources{CPUMillis: 4000, MemoryMB: 4096}
	assert.True(t, capacity.Fits(Resources{CPUMillis: 500, MemoryMB: 512}))
	assert.False(t, capacity.Fits(Resources{CPUMillis: 5000, MemoryMB: 512}))
	assert.False(t, capacity.Fits(Resources{CPUMillis: 500, MemoryMB: 5000}))
}

func TestResourcesSubSaturates(t *testing.T) {
	got := Resources{CPUMillis: 100, MemoryMB: 100}.Sub(Resources{CPUMillis: 200, MemoryMB: 50})
	assert.Equal(t, Resources{CPUMillis: 0, MemoryMB: 50}, got)
}

func TestResourcesAdd(t *testing.T) {
	got := Resources{CPUMillis: 100, MemoryMB: 200}.Add(Resources{CPUMillis: 50, MemoryMB: 25})
	assert.Equal(t, Resources{CPUMillis: 150, MemoryMB: 225}, got)
}

func TestCPUPercentFreeZeroCapacity(t *testing.T) {
	cpuPct, memPct := CPUPercentFree(Resources{}, Resources{}, Resources{})
	assert.Equal(t, int64(0), cpuPct)
	assert.Equal(t, int64(0), memPct)
}

func TestCPUPercentFree(t *testing.T) {
	// scenario 6 from spec.md: w2 capacity={4000,4096}, available={3500,3596}, req={500,512}
	cpuPct, memPct := CPUPercentFree(Resources{CPUMillis: 3500, MemoryMB: 3596}, Resources{CPUMillis: 500, MemoryMB: 512}, Resources{CPUMillis: 4000, MemoryMB: 4096})
	assert.Equal(t, int64(75), cpuPct)
	assert.Equal(t, int64(75), memPct)
}
