// Package messaging implements the request-reply correlation tracker,
// its timeout handler, the per-sender rate limiter, and the thin
// publisher handle component actors use, grounded on the teacher's
// request/timeout bookkeeping in downloader's job-tracking map (a
// concurrent map from request id to pending state plus a per-entry
// timer) generalized to component message correlation.
package messaging

import (
	"context"
	"errors"
	"sync"

	"github.com/airsstack/airssys/wasmhost"
)

// ErrTimeout is delivered on a pending request's channel when its deadline
// elapses before a reply arrives.
var ErrTimeout = errors.New("messaging: request timeout")

type pendingEntry struct {
	reply    chan wasmhost.ComponentMessage
	metadata map[string]string
	cancel   context.CancelFunc
}

// CorrelationTracker holds outstanding request-reply pairs outside the
// in-memory broker's own correlation mechanism — used for the
// InterComponentWithCorrelation path, which routes through wasmhost/router
// rather than rt/broker.
type CorrelationTracker struct {
	mu      sync.Mutex
	pending map[string]*pendingEntry
}

func NewCorrelationTracker() *CorrelationTracker {
	return &CorrelationTracker{pending: make(map[string]*pendingEntry)}
}

// Await registers correlationID as pending and returns a channel that
// receives exactly one reply (or ErrTimeout's sentinel message, delivered
// by TimeoutHandler) and the cancel func the timeout handler should call
// once a reply or timeout is delivered.
func (t *CorrelationTracker) Await(ctx context.Context, correlationID string, metadata map[string]string) (<-chan wasmhost.ComponentMessage, context.CancelFunc) {
	replyCtx, cancel := context.WithCancel(ctx)
	ch := make(chan wasmhost.ComponentMessage, 1)

	t.mu.Lock()
	t.pending[correlationID] = &pendingEntry{reply: ch, metadata: metadata, cancel: cancel}
	t.mu.Unlock()

	return ch, cancel
}

// Deliver completes the pending request for correlationID with msg,
// returning false if no such request is outstanding (already replied to,
// timed out, or never registered).
func (t *CorrelationTracker) Deliver(correlationID string, msg wasmhost.ComponentMessage) bool {
	t.mu.Lock()
	entry, ok := t.pending[correlationID]
	if ok {
		delete(t.pending, correlationID)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	entry.reply <- msg
	entry.cancel()
	return true
}

// Cancel removes correlationID's pending entry without delivering a reply,
// used by TimeoutHandler once its timer fires.
func (t *CorrelationTracker) Cancel(correlationID string) (chan<- wasmhost.ComponentMessage, bool) {
	t.mu.Lock()
	entry, ok := t.pending[correlationID]
	if ok {
		delete(t.pending, correlationID)
	}
	t.mu.Unlock()
	if !ok {
		return nil, false
	}
	return entry.reply, true
}

// Metadata returns the metadata registered with Await for correlationID,
// if it is still pending.
func (t *CorrelationTracker) Metadata(correlationID string) (map[string]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.pending[correlationID]
	if !ok {
		return nil, false
	}
	return entry.metadata, true
}

func (t *CorrelationTracker) pendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
