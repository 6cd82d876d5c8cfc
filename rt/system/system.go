// Package system implements ActorSystem: the builder that spawns actors,
// allocates their mailboxes, and runs each actor's message loop on its own
// goroutine, grounded on the teacher's xaction registry (a concurrent
// name/id-indexed table of running units of work, each with its own
// goroutine) generalized to the spec's mailbox-driven actor model.
package system

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/airsstack/airssys/cmn/ids"
	"github.com/airsstack/airssys/cmn/log"
	"github.com/airsstack/airssys/rt/actor"
	"github.com/airsstack/airssys/rt/broker"
	"github.com/airsstack/airssys/rt/mailbox"
	"github.com/airsstack/airssys/rt/stats"
	"github.com/airsstack/airssys/rt/supervisor"
)

// ErrShuttingDown is returned by Spawn once Shutdown has been called.
var ErrShuttingDown = errors.New("system: shutting down")

// ErrMaxActorsExceeded is returned by Spawn when the configured MaxActors
// ceiling would be exceeded.
var ErrMaxActorsExceeded = errors.New("system: max_actors exceeded")

type registeredActor[M actor.Message] struct {
	addr    actor.Address
	mailbox mailbox.Mailbox[M]
	cancel  context.CancelFunc
	done    chan struct{}
}

// ActorSystem spawns and runs actors sharing message type M and broker B.
type ActorSystem[M actor.Message] struct {
	maxActors int
	broker    broker.Broker[M]

	mu       sync.RWMutex
	actors   map[ids.ActorId]*registeredActor[M]
	shutdown bool

	stats      *stats.Registry
	sampleStop chan struct{}
	sampleDone chan struct{}
}

// New constructs an ActorSystem backed by br, allowing at most maxActors
// concurrently spawned actors (<=0 means unlimited).
func New[M actor.Message](br broker.Broker[M], maxActors int) *ActorSystem[M] {
	return &ActorSystem[M]{broker: br, maxActors: maxActors, actors: make(map[ids.ActorId]*registeredActor[M])}
}

// NewWithStats is like New, but periodically samples every spawned actor's
// mailbox counters into reg (rt/stats) every interval, until Shutdown.
func NewWithStats[M actor.Message](br broker.Broker[M], maxActors int, reg *stats.Registry, interval time.Duration) *ActorSystem[M] {
	s := &ActorSystem[M]{
		broker: br, maxActors: maxActors, actors: make(map[ids.ActorId]*registeredActor[M]),
		stats: reg, sampleStop: make(chan struct{}), sampleDone: make(chan struct{}),
	}
	go s.sampleLoop(interval)
	return s
}

// sampleLoop calls stats.Registry.Sample for every currently registered
// actor's mailbox on each tick, per rt/stats.Registry.Sample's doc comment:
// sampled periodically rather than on every Send/Recv to keep the hot path
// free of prometheus overhead.
func (s *ActorSystem[M]) sampleLoop(interval time.Duration) {
	defer close(s.sampleDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.sampleStop:
			return
		case <-ticker.C:
			s.sampleOnce()
		}
	}
}

func (s *ActorSystem[M]) sampleOnce() {
	s.mu.RLock()
	regs := make([]*registeredActor[M], 0, len(s.actors))
	for _, reg := range s.actors {
		regs = append(regs, reg)
	}
	s.mu.RUnlock()

	for _, reg := range regs {
		name := reg.addr.String()
		s.stats.Sample(name, reg.mailbox.Metrics())
	}
	s.stats.ActorsRunning.Set(float64(len(regs)))
}

// SpawnOptions configures one Spawn call; the zero value spawns an
// anonymous actor with a bounded mailbox of capacity 1000 whose Send
// returns mailbox.ErrFull when full (BackpressureError is the zero value).
type SpawnOptions struct {
	Name            string
	MailboxCapacity int
	Backpressure    mailbox.BackpressureStrategy
	Unbounded       bool
	Supervisor      *supervisor.Supervisor
}

// Spawn allocates a mailbox, registers act under a fresh ActorAddress, and
// starts its message loop on a new goroutine.
func (s *ActorSystem[M]) Spawn(ctx context.Context, act actor.Actor[M], opts SpawnOptions) (actor.Address, error) {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return actor.Address{}, ErrShuttingDown
	}
	if s.maxActors > 0 && len(s.actors) >= s.maxActors {
		s.mu.Unlock()
		return actor.Address{}, ErrMaxActorsExceeded
	}
	s.mu.Unlock()

	id := ids.NewActorId()
	addr := actor.Anonymous(id)
	if opts.Name != "" {
		addr = actor.Named(id, opts.Name)
	}

	var mb mailbox.Mailbox[M]
	if opts.Unbounded {
		mb = mailbox.NewUnbounded[M]()
	} else {
		capacity := opts.MailboxCapacity
		if capacity <= 0 {
			capacity = 1000
		}
		mb = mailbox.NewBounded[M](capacity, opts.Backpressure)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	reg := &registeredActor[M]{addr: addr, mailbox: mb, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		cancel()
		return actor.Address{}, ErrShuttingDown
	}
	s.actors[id] = reg
	s.mu.Unlock()

	actx := &actor.Context[M]{Self: addr, Broker: s.broker}
	if opts.Supervisor != nil {
		sup := opts.Supervisor
		actx.Supervisor = &actor.SupervisorRef{Notify: func(err error) {
			_ = sup.OnChildFailure(context.Background(), ids.ChildId(id), err)
		}}
	}

	go s.runLoop(loopCtx, act, actx, mb, reg)
	return addr, nil
}

// runLoop is the per-actor message loop described in spec.md §4.2: receive,
// drop expired envelopes (handled inside mailbox.Recv), dispatch, consult
// OnError on failure.
func (s *ActorSystem[M]) runLoop(ctx context.Context, act actor.Actor[M], actx *actor.Context[M], mb mailbox.Mailbox[M], reg *registeredActor[M]) {
	defer close(reg.done)
	for {
		env, err := mb.Recv(ctx)
		if err != nil {
			if errors.Is(err, mailbox.ErrClosed) || errors.Is(err, context.Canceled) {
				return
			}
			log.Warningf("actor %s: mailbox recv error: %v", actx.Self, err)
			return
		}

		if herr := act.HandleMessage(ctx, env.Payload, actx); herr != nil {
			switch act.OnError(herr) {
			case actor.Stop:
				return
			case actor.Escalate:
				if actx.Supervisor != nil {
					actx.Supervisor.Notify(herr)
				}
				return
			case actor.Resume:
				// continue the loop, message already discarded
			}
		}
	}
}

// Send delivers env to the actor addressed by addr.
func (s *ActorSystem[M]) Send(ctx context.Context, addr actor.Address, env actor.Envelope[M]) error {
	s.mu.RLock()
	reg, ok := s.actors[addr.ID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("system: no actor registered at %s", addr)
	}
	return reg.mailbox.Send(ctx, env)
}

// Stop cancels the addressed actor's message loop and waits up to timeout
// for it to exit, then removes it from the registry.
func (s *ActorSystem[M]) Stop(addr actor.Address, timeout time.Duration) error {
	s.mu.Lock()
	reg, ok := s.actors[addr.ID]
	if ok {
		delete(s.actors, addr.ID)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("system: no actor registered at %s", addr)
	}

	reg.mailbox.Close()
	reg.cancel()

	if timeout <= 0 {
		<-reg.done
		return nil
	}
	select {
	case <-reg.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("system: actor %s did not stop within %s", addr, timeout)
	}
}

// Shutdown stops every registered actor and prevents further Spawn calls.
func (s *ActorSystem[M]) Shutdown(timeout time.Duration) {
	s.mu.Lock()
	s.shutdown = true
	addrs := make([]actor.Address, 0, len(s.actors))
	for _, reg := range s.actors {
		addrs = append(addrs, reg.addr)
	}
	s.mu.Unlock()

	for _, addr := range addrs {
		_ = s.Stop(addr, timeout)
	}

	if s.stats != nil {
		close(s.sampleStop)
		<-s.sampleDone
	}
}

// Mailbox returns the registered actor's mailbox for metrics sampling
// (rt/stats) or direct inspection in tests.
func (s *ActorSystem[M]) Mailbox(addr actor.Address) (mailbox.Mailbox[M], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.actors[addr.ID]
	if !ok {
		return nil, false
	}
	return reg.mailbox, true
}
