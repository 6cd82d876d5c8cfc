package mailbox

import (
	"context"
	"sync"
	"time"

	"github.com/airsstack/airssys/rt/actor"
)

// Bounded is a fixed-capacity mailbox. Send behavior on a full mailbox is
// governed by its BackpressureStrategy.
type Bounded[M actor.Message] struct {
	strategy BackpressureStrategy
	ch       chan actor.Envelope[M]
	metrics  Metrics

	mu     sync.Mutex // guards DropOldest's dequeue-then-enqueue and closed
	closed bool
}

// NewBounded constructs a Bounded mailbox of the given capacity (must be >
// 0) and backpressure strategy.
func NewBounded[M actor.Message](capacity int, strategy BackpressureStrategy) *Bounded[M] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Bounded[M]{strategy: strategy, ch: make(chan actor.Envelope[M], capacity)}
}

func (b *Bounded[M]) Metrics() *Metrics { return &b.metrics }

func (b *Bounded[M]) Send(ctx context.Context, env actor.Envelope[M]) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.mu.Unlock()

	switch b.strategy {
	case BackpressureBlock:
		select {
		case b.ch <- env:
			b.metrics.recordSent()
			b.metrics.touch()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	case BackpressureError:
		select {
		case b.ch <- env:
			b.metrics.recordSent()
			b.metrics.touch()
			return nil
		default:
			return ErrFull
		}
	case BackpressureDrop:
		select {
		case b.ch <- env:
			b.metrics.recordSent()
			b.metrics.touch()
			return nil
		default:
			b.metrics.recordDropped()
			return nil
		}
	case BackpressureDropOldest:
		b.mu.Lock()
		defer b.mu.Unlock()
		select {
		case b.ch <- env:
			b.metrics.recordSent()
			b.metrics.touch()
			return nil
		default:
			select {
			case <-b.ch:
				b.metrics.recordDropped()
			default:
			}
			select {
			case b.ch <- env:
				b.metrics.recordSent()
				b.metrics.touch()
			default:
				// Another sender raced us for the freed slot; drop ours too
				// rather than block while holding the DropOldest lock.
				b.metrics.recordDropped()
			}
			return nil
		}
	default:
		return ErrFull
	}
}

// Recv dequeues the next non-expired envelope, silently discarding any
// number of expired envelopes ahead of it (invariant (b): TTL is enforced
// at receive time, not enqueue time).
func (b *Bounded[M]) Recv(ctx context.Context) (actor.Envelope[M], error) {
	for {
		select {
		case env, ok := <-b.ch:
			if !ok {
				return actor.Envelope[M]{}, ErrClosed
			}
			if env.Expired(time.Now().UTC()) {
				b.metrics.recordDropped()
				continue
			}
			b.metrics.recordReceived()
			return env, nil
		case <-ctx.Done():
			return actor.Envelope[M]{}, ctx.Err()
		}
	}
}

func (b *Bounded[M]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}
