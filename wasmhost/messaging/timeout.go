package messaging

import (
	"context"
	"time"

	"github.com/airsstack/airssys/wasmhost"
)

// TimeoutHandler spawns one goroutine per pending request, delivering an
// InvokeResult-kind sentinel carrying ErrTimeout's text if the request's
// deadline elapses before CorrelationTracker.Deliver completes it. If
// Deliver has already removed the entry, the fired timer delivers nothing.
// The goroutine exits early only when the ctx passed to Watch is done.
type TimeoutHandler struct {
	tracker *CorrelationTracker
}

func NewTimeoutHandler(tracker *CorrelationTracker) *TimeoutHandler {
	return &TimeoutHandler{tracker: tracker}
}

// Watch starts the timeout goroutine for correlationID; it stops at the
// deadline or when ctx is done. The cancel func Await returns (and that
// Deliver calls) cancels a context derived inside Await, not ctx, so an
// early Deliver does not stop this goroutine; its timer still fires at
// the deadline and then finds nothing pending.
func (h *TimeoutHandler) Watch(ctx context.Context, correlationID string, deadline time.Duration) {
	go func() {
		timer := time.NewTimer(deadline)
		defer timer.Stop()
		select {
		case <-timer.C:
			if ch, ok := h.tracker.Cancel(correlationID); ok {
				ch <- wasmhost.ComponentMessage{Kind: wasmhost.InvokeResult, Err: ErrTimeout.Error()}
			}
		case <-ctx.Done():
			// delivered (or explicitly cancelled) before the deadline
		}
	}()
}
