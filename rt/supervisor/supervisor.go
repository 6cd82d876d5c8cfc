// Package supervisor implements the supervision tree: child lifecycle,
// restart strategies, sliding-window restart limits, and backoff, grounded
// on the teacher's ec/manager.go mutex-guarded map-of-maps pattern (here a
// single map of ChildId to child state instead of bucket-to-object maps)
// and its xaction-style start/stop/abort lifecycle.
package supervisor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/airsstack/airssys/cmn/ids"
	"github.com/airsstack/airssys/cmn/log"
)

// Child is implemented by anything a Supervisor can own, such as a WASM
// component actor. Supervisor itself does not implement Child, so a
// Supervisor cannot be registered as a child of another Supervisor.
type Child interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context, timeout time.Duration) error
	// HealthCheck is optional; implementations that don't support it
	// should return HealthHealthy, nil.
	HealthCheck(ctx context.Context) (ChildHealth, error)
}

type ChildHealth int

const (
	HealthHealthy ChildHealth = iota
	HealthDegraded
	HealthFailed
)

// RestartPolicy governs whether ShouldRestart returns true for a given
// stop reason.
type RestartPolicy int

const (
	Permanent RestartPolicy = iota
	Transient
	Temporary
)

// ShouldRestart implements spec.md §4.3's should_restart(was_error) table.
func (p RestartPolicy) ShouldRestart(wasError bool) bool {
	switch p {
	case Permanent:
		return true
	case Transient:
		return wasError
	case Temporary:
		return false
	default:
		return false
	}
}

// ShutdownPolicy governs how Stop behaves when a child is removed or
// restarted.
type ShutdownPolicy struct {
	Immediate bool
	Timeout   time.Duration // used when Immediate is false
}

// ChildSpec describes how to create and manage one child.
type ChildSpec struct {
	Name            string
	Factory         func() (Child, error)
	RestartPolicy   RestartPolicy
	Shutdown        ShutdownPolicy
	StartTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// restartRecord is one entry in a child's restart history.
type restartRecord struct {
	at      time.Time
	wasErr  bool
}

// childState is the supervisor's bookkeeping for one live or stopped
// child.
type childState struct {
	id      ids.ChildId
	spec    ChildSpec
	inst    Child
	history []restartRecord
	order   int // insertion sequence, used by OneForAll/RestForOne
}

// Strategy selects which siblings are affected when a child fails.
type Strategy int

const (
	OneForOne Strategy = iota
	OneForAll
	RestForOne
)

func (s Strategy) String() string {
	switch s {
	case OneForOne:
		return "one_for_one"
	case OneForAll:
		return "one_for_all"
	case RestForOne:
		return "rest_for_one"
	default:
		return "unknown"
	}
}

// BackoffStrategy computes the delay between a child's stop and its
// restart.
type BackoffStrategy struct {
	Kind       BackoffKind
	Base       time.Duration
	Multiplier float64 // Exponential only
	Max        time.Duration
}

type BackoffKind int

const (
	BackoffImmediate BackoffKind = iota
	BackoffLinear
	BackoffExponential
)

// Delay returns the backoff for the restartCount'th restart (1-indexed).
func (b BackoffStrategy) Delay(restartCount int) time.Duration {
	switch b.Kind {
	case BackoffImmediate:
		return 0
	case BackoffLinear:
		d := b.Base * time.Duration(restartCount)
		if b.Max > 0 && d > b.Max {
			return b.Max
		}
		return d
	case BackoffExponential:
		d := b.Base
		for i := 1; i < restartCount; i++ {
			d = time.Duration(float64(d) * b.Multiplier)
			if b.Max > 0 && d > b.Max {
				return b.Max
			}
		}
		if b.Max > 0 && d > b.Max {
			return b.Max
		}
		return d
	default:
		return 0
	}
}

// ErrRestartLimitExceeded is returned (and escalated) when a child exceeds
// MaxRestarts within TimeWindow.
type ErrRestartLimitExceeded struct {
	ChildID ids.ChildId
	Count   int
	Window  time.Duration
}

func (e *ErrRestartLimitExceeded) Error() string {
	return fmt.Sprintf("supervisor: restart limit exceeded for child %s: %d restarts within %s", e.ChildID, e.Count, e.Window)
}

// Supervisor owns a set of children under one restart strategy.
type Supervisor struct {
	id          string
	strategy    Strategy
	backoff     BackoffStrategy
	maxRestarts int
	timeWindow  time.Duration
	sink        MonitorSink

	mu       sync.Mutex
	children map[ids.ChildId]*childState
	seq      int
}

// Config bundles a Supervisor's strategy and restart-limit parameters.
type Config struct {
	Strategy    Strategy
	Backoff     BackoffStrategy
	MaxRestarts int
	TimeWindow  time.Duration
}

func New(id string, cfg Config, sink MonitorSink) *Supervisor {
	if sink == nil {
		sink = NopSink{}
	}
	return &Supervisor{
		id:          id,
		strategy:    cfg.Strategy,
		backoff:     cfg.Backoff,
		maxRestarts: cfg.MaxRestarts,
		timeWindow:  cfg.TimeWindow,
		sink:        sink,
		children:    make(map[ids.ChildId]*childState),
	}
}

// StartChild creates and starts a child from spec, registering it under a
// freshly generated ChildId.
func (s *Supervisor) StartChild(ctx context.Context, spec ChildSpec) (ids.ChildId, error) {
	inst, err := spec.Factory()
	if err != nil {
		return "", err
	}
	startCtx := ctx
	var cancel context.CancelFunc
	if spec.StartTimeout > 0 {
		startCtx, cancel = context.WithTimeout(ctx, spec.StartTimeout)
		defer cancel()
	}
	if err := inst.Start(startCtx); err != nil {
		return "", err
	}

	s.mu.Lock()
	id := ids.NewChildId()
	s.seq++
	s.children[id] = &childState{id: id, spec: spec, inst: inst, order: s.seq}
	s.mu.Unlock()

	s.sink.Notify(SupervisionEvent{Timestamp: time.Now().UTC(), SupervisorID: s.id, ChildID: string(id), Kind: ChildStarted})
	return id, nil
}

// StopChild stops and removes a child.
func (s *Supervisor) StopChild(ctx context.Context, id ids.ChildId) error {
	s.mu.Lock()
	cs, ok := s.children[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("supervisor: unknown child %s", id)
	}
	delete(s.children, id)
	s.mu.Unlock()

	return stopChild(ctx, cs)
}

func stopChild(ctx context.Context, cs *childState) error {
	if cs.spec.Shutdown.Immediate {
		return cs.inst.Stop(ctx, 0)
	}
	timeout := cs.spec.Shutdown.Timeout
	if timeout <= 0 {
		timeout = cs.spec.ShutdownTimeout
	}
	return cs.inst.Stop(ctx, timeout)
}

// Children returns the ids of currently-registered children, in insertion
// order.
func (s *Supervisor) Children() []ids.ChildId {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*childState, 0, len(s.children))
	for _, cs := range s.children {
		list = append(list, cs)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].order < list[j].order })
	out := make([]ids.ChildId, len(list))
	for i, cs := range list {
		out[i] = cs.id
	}
	return out
}

// OnChildFailure applies the supervisor's strategy after child id reports a
// failure (wasError=true) or a clean unexpected exit (wasError=false).
// It is the entry point rt/system calls when an actor's message loop
// terminates via Escalate.
func (s *Supervisor) OnChildFailure(ctx context.Context, id ids.ChildId, failure error) error {
	s.mu.Lock()
	failed, ok := s.children[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("supervisor: unknown child %s", id)
	}
	priorCount := len(failed.history)
	s.mu.Unlock()

	s.sink.Notify(SupervisionEvent{Timestamp: time.Now().UTC(), SupervisorID: s.id, ChildID: string(id), Kind: ChildFailed, Err: failure, RestartCount: priorCount})

	if !failed.spec.RestartPolicy.ShouldRestart(failure != nil) {
		s.mu.Lock()
		delete(s.children, id)
		s.mu.Unlock()
		return nil
	}

	switch s.strategy {
	case OneForOne:
		s.sink.Notify(SupervisionEvent{Timestamp: time.Now().UTC(), SupervisorID: s.id, Kind: StrategyApplied, StrategyName: s.strategy.String(), Affected: 1})
		return s.restartOne(ctx, failed)
	case OneForAll:
		affected := s.Children()
		s.sink.Notify(SupervisionEvent{Timestamp: time.Now().UTC(), SupervisorID: s.id, Kind: StrategyApplied, StrategyName: s.strategy.String(), Affected: len(affected)})
		return s.restartSet(ctx, affected)
	case RestForOne:
		affected := s.childrenFrom(failed.order)
		s.sink.Notify(SupervisionEvent{Timestamp: time.Now().UTC(), SupervisorID: s.id, Kind: StrategyApplied, StrategyName: s.strategy.String(), Affected: len(affected)})
		return s.restartSet(ctx, affected)
	default:
		return nil
	}
}

func (s *Supervisor) childrenFrom(order int) []ids.ChildId {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*childState, 0, len(s.children))
	for _, cs := range s.children {
		if cs.order >= order {
			list = append(list, cs)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].order < list[j].order })
	out := make([]ids.ChildId, len(list))
	for i, cs := range list {
		out[i] = cs.id
	}
	return out
}

// restartSet stops every id in order, then restarts every id in the same
// (original insertion) order, per OneForAll/RestForOne semantics.
func (s *Supervisor) restartSet(ctx context.Context, idsToRestart []ids.ChildId) error {
	for _, id := range idsToRestart {
		s.mu.Lock()
		cs, ok := s.children[id]
		s.mu.Unlock()
		if !ok {
			continue
		}
		_ = stopChild(ctx, cs)
	}
	for _, id := range idsToRestart {
		s.mu.Lock()
		cs, ok := s.children[id]
		s.mu.Unlock()
		if !ok {
			continue
		}
		if err := s.restartOne(ctx, cs); err != nil {
			return err
		}
	}
	return nil
}

// restartOne applies restart-limit bookkeeping, backoff, and the actual
// restart for a single child, replacing its Child instance in place.
func (s *Supervisor) restartOne(ctx context.Context, cs *childState) error {
	now := time.Now().UTC()

	s.mu.Lock()
	pruned := cs.history[:0]
	for _, r := range cs.history {
		if now.Sub(r.at) <= s.timeWindow {
			pruned = append(pruned, r)
		}
	}
	cs.history = pruned
	if len(cs.history) >= s.maxRestarts {
		count := len(cs.history)
		window := s.timeWindow
		delete(s.children, cs.id)
		s.mu.Unlock()
		s.sink.Notify(SupervisionEvent{Timestamp: now, SupervisorID: s.id, ChildID: string(cs.id), Kind: RestartLimitExceeded, RestartCount: count})
		return &ErrRestartLimitExceeded{ChildID: cs.id, Count: count, Window: window}
	}
	restartCount := len(cs.history) + 1
	cs.history = append(cs.history, restartRecord{at: now, wasErr: true})
	s.mu.Unlock()

	if d := s.backoff.Delay(restartCount); d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	inst, err := cs.spec.Factory()
	if err != nil {
		log.Errorf("supervisor %s: restart factory for child %s failed: %v", s.id, cs.id, err)
		return err
	}
	startCtx := ctx
	var cancel context.CancelFunc
	if cs.spec.StartTimeout > 0 {
		startCtx, cancel = context.WithTimeout(ctx, cs.spec.StartTimeout)
		defer cancel()
	}
	if err := inst.Start(startCtx); err != nil {
		return err
	}

	s.mu.Lock()
	cs.inst = inst
	s.mu.Unlock()

	s.sink.Notify(SupervisionEvent{Timestamp: time.Now().UTC(), SupervisorID: s.id, ChildID: string(cs.id), Kind: ChildRestarted, RestartCount: restartCount})
	return nil
}
