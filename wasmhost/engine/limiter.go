package engine

import "sync/atomic"

// ResourceLimiter implements the engine limiter-hook equivalents spec.md
// §4.4 describes: memory_growing/table_growing callbacks plus
// instance-count ceilings, with every rejection recorded so the execution
// site can translate it into a typed *MemoryLimitExceededError /
// *TableLimitExceededError.
type ResourceLimiter struct {
	maxMemoryBytes uint64
	maxTableSize   uint32
	maxInstances   uint32

	memoryPeak    uint64
	tablePeak     uint32
	instanceCount uint32

	memoryHits uint64
	tableHits  uint64
}

func NewResourceLimiter(maxMemoryBytes uint64, maxTableSize, maxInstances uint32) *ResourceLimiter {
	return &ResourceLimiter{maxMemoryBytes: maxMemoryBytes, maxTableSize: maxTableSize, maxInstances: maxInstances}
}

// MemoryGrowing is the memory_growing hook equivalent: returns nil if
// desired is within budget, else a *MemoryLimitExceededError.
func (r *ResourceLimiter) MemoryGrowing(_, desired, _ uint64) error {
	if desired > r.maxMemoryBytes {
		atomic.AddUint64(&r.memoryHits, 1)
		return &MemoryLimitExceededError{Requested: desired, Max: r.maxMemoryBytes}
	}
	r.recordMemoryPeak(desired)
	return nil
}

// TableGrowing is the table_growing hook equivalent.
func (r *ResourceLimiter) TableGrowing(_, desired, _ uint32) error {
	if desired > r.maxTableSize {
		atomic.AddUint64(&r.tableHits, 1)
		return &TableLimitExceededError{Requested: desired, Max: r.maxTableSize}
	}
	r.recordTablePeak(desired)
	return nil
}

// InstanceAdded enforces the declared instance-count ceiling.
func (r *ResourceLimiter) InstanceAdded() error {
	n := atomic.AddUint32(&r.instanceCount, 1)
	if r.maxInstances > 0 && n > r.maxInstances {
		atomic.AddUint32(&r.instanceCount, ^uint32(0)) // undo
		return &TableLimitExceededError{Requested: n, Max: r.maxInstances}
	}
	return nil
}

func (r *ResourceLimiter) recordMemoryPeak(v uint64) {
	for {
		cur := atomic.LoadUint64(&r.memoryPeak)
		if v <= cur || atomic.CompareAndSwapUint64(&r.memoryPeak, cur, v) {
			return
		}
	}
}

func (r *ResourceLimiter) recordTablePeak(v uint32) {
	for {
		cur := atomic.LoadUint32(&r.tablePeak)
		if v <= cur || atomic.CompareAndSwapUint32(&r.tablePeak, cur, v) {
			return
		}
	}
}

// MemoryPeak returns the high-water mark observed across this limiter's
// lifetime.
func (r *ResourceLimiter) MemoryPeak() uint64 { return atomic.LoadUint64(&r.memoryPeak) }

// MemoryHits returns the number of rejected memory growth requests.
func (r *ResourceLimiter) MemoryHits() uint64 { return atomic.LoadUint64(&r.memoryHits) }

// TableHits returns the number of rejected table growth requests.
func (r *ResourceLimiter) TableHits() uint64 { return atomic.LoadUint64(&r.tableHits) }
