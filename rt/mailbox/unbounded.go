package mailbox

import (
	"context"
	"sync"
	"time"

	"github.com/airsstack/airssys/rt/actor"
)

// Unbounded is a mailbox whose Send succeeds until Close (after which it
// returns ErrClosed); it is backed by an unbounded in-process queue rather
// than a fixed-capacity channel so Send never blocks on delivery.
type Unbounded[M actor.Message] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []actor.Envelope[M]
	closed  bool
	metrics Metrics
}

func NewUnbounded[M actor.Message]() *Unbounded[M] {
	u := &Unbounded[M]{}
	u.cond = sync.NewCond(&u.mu)
	return u
}

func (u *Unbounded[M]) Metrics() *Metrics { return &u.metrics }

func (u *Unbounded[M]) Send(ctx context.Context, env actor.Envelope[M]) error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return ErrClosed
	}
	u.queue = append(u.queue, env)
	u.mu.Unlock()
	u.cond.Signal()
	u.metrics.recordSent()
	u.metrics.touch()
	return nil
}

// Recv dequeues the next non-expired envelope, discarding expired ones
// ahead of it, mirroring Bounded.Recv's semantics. ctx cancellation wakes a
// blocked Recv via a companion goroutine that signals the condition
// variable once.
func (u *Unbounded[M]) Recv(ctx context.Context) (actor.Envelope[M], error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			u.cond.Broadcast()
		case <-done:
		}
	}()

	u.mu.Lock()
	defer u.mu.Unlock()
	for {
		for len(u.queue) == 0 && !u.closed {
			if ctx.Err() != nil {
				return actor.Envelope[M]{}, ctx.Err()
			}
			u.cond.Wait()
		}
		if len(u.queue) == 0 && u.closed {
			return actor.Envelope[M]{}, ErrClosed
		}
		if ctx.Err() != nil {
			return actor.Envelope[M]{}, ctx.Err()
		}
		env := u.queue[0]
		u.queue = u.queue[1:]
		if env.Expired(time.Now().UTC()) {
			u.metrics.recordDropped()
			continue
		}
		u.metrics.recordReceived()
		return env, nil
	}
}

func (u *Unbounded[M]) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return
	}
	u.closed = true
	u.cond.Broadcast()
}
