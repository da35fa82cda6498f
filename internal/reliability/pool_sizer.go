// Package reliability caps the loader's worker pool to the host's actual
// resources, following the teacher's pattern of a dedicated health/resource
// service that logs structured warnings rather than failing the run.
package reliability

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is a point-in-time read of host resource pressure.
type Snapshot struct {
	NumCPU            int
	CPUPercent        float64 // 0-100, averaged across all cores
	AvailableMemoryMB float64
}

// PoolSizer recommends a worker-pool size bounded by available CPU and
// memory headroom, so a laptop-sized run doesn't oversubscribe the host the
// way a fixed default concurrency would.
type PoolSizer struct {
	log zerolog.Logger
}

// NewPoolSizer builds a PoolSizer, logging under the "reliability" component.
func NewPoolSizer(log zerolog.Logger) *PoolSizer {
	return &PoolSizer{log: log.With().Str("component", "reliability").Logger()}
}

// Sample reads current CPU and memory pressure. Any gopsutil failure is
// logged and answered with a conservative fallback snapshot rather than
// propagated, since a resource-sizing hint must never abort a run.
func (p *PoolSizer) Sample() Snapshot {
	snap := Snapshot{NumCPU: runtime.NumCPU()}

	percents, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(percents) == 0 {
		p.log.Warn().Err(err).Msg("cpu sample failed, assuming idle")
	} else {
		snap.CPUPercent = percents[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		p.log.Warn().Err(err).Msg("memory sample failed, assuming unconstrained")
		snap.AvailableMemoryMB = -1 // unknown, caller should not apply a memory cap
	} else {
		snap.AvailableMemoryMB = float64(vm.Available) / (1024 * 1024)
	}

	return snap
}

// RecommendedConcurrency caps requested against the sampled CPU count and,
// when memory is under the given floor, scales it down further. It never
// returns less than 1.
func (p *PoolSizer) RecommendedConcurrency(requested int, minMemoryMBPerWorker float64) int {
	if requested <= 0 {
		requested = 1
	}

	snap := p.Sample()
	n := requested
	if snap.NumCPU > 0 && n > snap.NumCPU {
		n = snap.NumCPU
	}

	if minMemoryMBPerWorker > 0 && snap.AvailableMemoryMB >= 0 {
		memoryBound := int(snap.AvailableMemoryMB / minMemoryMBPerWorker)
		if memoryBound < 1 {
			memoryBound = 1
		}
		if n > memoryBound {
			p.log.Warn().
				Int("requested", requested).
				Float64("available_memory_mb", snap.AvailableMemoryMB).
				Int("memory_bound", memoryBound).
				Msg("capping loader concurrency to available memory")
			n = memoryBound
		}
	}

	if n < 1 {
		n = 1
	}
	return n
}
