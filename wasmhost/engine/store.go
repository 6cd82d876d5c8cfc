package engine

import (
	"time"

	"github.com/airsstack/airssys/cmn/log"
)

// StoreLifecycle tracks one invocation's per-store accounting: fuel
// budget, resource limiter, and start time. Release must be deferred
// immediately after NewStoreLifecycle returns — on any exit path,
// including a recovered panic — releasing fuel/memory/table accounting
// and emitting metrics, matching spec.md §4.4's "drop guaranteed on all
// exit paths including panic."
type StoreLifecycle struct {
	limiter       *ResourceLimiter
	fuelBudget    uint64
	fuelRemaining uint64
	startedAt     time.Time
	released      bool
}

// NewStoreLifecycle creates a fresh store's accounting, with initial fuel
// equal to maxFuelPerExecution.
func NewStoreLifecycle(limiter *ResourceLimiter, maxFuelPerExecution uint64) *StoreLifecycle {
	return &StoreLifecycle{
		limiter:       limiter,
		fuelBudget:    maxFuelPerExecution,
		fuelRemaining: maxFuelPerExecution,
		startedAt:     time.Now().UTC(),
	}
}

// ConsumeFuel deducts n units, returning *TrapError{Kind: FuelExhausted}
// once the budget is exhausted. A real adapter's fuel-consumed callback
// can call this per reported instruction step; fakeengine meters fuel
// with its own Fuel type and does not call it.
func (s *StoreLifecycle) ConsumeFuel(n uint64) error {
	if n >= s.fuelRemaining {
		s.fuelRemaining = 0
		return &TrapError{Kind: FuelExhausted, Message: "fuel exhausted"}
	}
	s.fuelRemaining -= n
	return nil
}

// FuelConsumed returns how much fuel has been spent so far.
func (s *StoreLifecycle) FuelConsumed() uint64 { return s.fuelBudget - s.fuelRemaining }

// Elapsed returns the time since the store was created.
func (s *StoreLifecycle) Elapsed() time.Duration { return time.Since(s.startedAt) }

// Release tears down the store's accounting, emitting fuel-consumed and
// memory-peak metrics exactly once. Safe to call multiple times (e.g. once
// explicitly and once via a deferred call) — only the first call has an
// effect.
func (s *StoreLifecycle) Release() {
	if s.released {
		return
	}
	s.released = true
	log.V(log.ModuleWasmHost, 2, "store released: fuel_consumed=%d elapsed=%s memory_peak=%d",
		s.FuelConsumed(), s.Elapsed(), s.limiter.MemoryPeak())
}
