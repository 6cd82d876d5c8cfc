package broker

import (
	"context"
	"sync"
	"time"

	"github.com/airsstack/airssys/cmn/ids"
	"github.com/airsstack/airssys/cmn/log"
	"github.com/airsstack/airssys/rt/actor"
)

const subscriberBuffer = 256

// InMemoryBroker is a process-local pub/sub bus with a request-reply
// overlay. Publish broadcasts a copy of the envelope to every live
// subscriber channel; PublishRequest additionally tags the envelope with a
// fresh correlation id and diverts the matching reply to a private
// one-shot channel instead of broadcasting it.
type InMemoryBroker[M actor.Message] struct {
	mu          sync.RWMutex
	subscribers map[chan actor.Envelope[M]]struct{}

	pendingMu sync.Mutex
	pending   map[string]chan actor.Envelope[M]
}

func NewInMemoryBroker[M actor.Message]() *InMemoryBroker[M] {
	return &InMemoryBroker[M]{
		subscribers: make(map[chan actor.Envelope[M]]struct{}),
		pending:     make(map[string]chan actor.Envelope[M]),
	}
}

func (b *InMemoryBroker[M]) Subscribe() <-chan actor.Envelope[M] {
	ch := make(chan actor.Envelope[M], subscriberBuffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *InMemoryBroker[M]) Unsubscribe(sub <-chan actor.Envelope[M]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		if (<-chan actor.Envelope[M])(ch) == sub {
			delete(b.subscribers, ch)
			close(ch)
			return
		}
	}
}

// Publish diverts env to a pending one-shot reply channel when its
// CorrelationID matches an outstanding PublishRequest; otherwise it
// broadcasts a copy to every subscriber, dropping (with a log) on any
// subscriber whose buffer is full rather than blocking the publisher.
func (b *InMemoryBroker[M]) Publish(ctx context.Context, env actor.Envelope[M]) error {
	if env.CorrelationID != "" {
		b.pendingMu.Lock()
		replyCh, ok := b.pending[env.CorrelationID]
		if ok {
			delete(b.pending, env.CorrelationID)
		}
		b.pendingMu.Unlock()
		if ok {
			select {
			case replyCh <- env:
			default:
				log.Warningf("broker: reply for correlation %s dropped: receiver not waiting", env.CorrelationID)
			}
			return nil
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- env:
		default:
			log.Warningf("broker: subscriber channel full, dropping envelope of type %s", env.Payload.MessageType())
		}
	}
	return nil
}

func (b *InMemoryBroker[M]) PublishRequest(ctx context.Context, env actor.Envelope[M], timeout time.Duration) (actor.Envelope[M], error) {
	corrID := string(ids.NewCorrelationId())
	env.CorrelationID = corrID

	replyCh := make(chan actor.Envelope[M], 1)
	b.pendingMu.Lock()
	b.pending[corrID] = replyCh
	b.pendingMu.Unlock()

	cleanup := func() {
		b.pendingMu.Lock()
		delete(b.pending, corrID)
		b.pendingMu.Unlock()
	}

	// Broadcast directly: going through Publish would find corrID in the
	// pending map and divert the request itself to replyCh.
	b.mu.RLock()
	for ch := range b.subscribers {
		select {
		case ch <- env:
		default:
			log.Warningf("broker: subscriber channel full, dropping envelope of type %s", env.Payload.MessageType())
		}
	}
	b.mu.RUnlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		return reply, nil
	case <-timer.C:
		cleanup()
		return actor.Envelope[M]{}, &ErrRequestTimeout{CorrelationID: corrID}
	case <-ctx.Done():
		cleanup()
		return actor.Envelope[M]{}, ctx.Err()
	}
}
