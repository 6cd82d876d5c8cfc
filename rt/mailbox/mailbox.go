// Package mailbox implements the bounded and unbounded channel-backed
// mailboxes RT actors receive envelopes from, grounded on the teacher's
// fs/mpather job-channel idiom (a buffered Go channel plus atomic
// counters) generalized to the spec's backpressure-strategy contract.
package mailbox

import (
	"context"
	"errors"

	"github.com/airsstack/airssys/rt/actor"
)

// ErrFull is returned by Send when a Bounded mailbox configured with
// BackpressureError is at capacity.
var ErrFull = errors.New("mailbox: full")

// ErrClosed is returned by Send/Recv once Close has been called.
var ErrClosed = errors.New("mailbox: closed")

// BackpressureStrategy governs Send behavior on a full Bounded mailbox.
type BackpressureStrategy int

const (
	BackpressureError BackpressureStrategy = iota
	BackpressureDrop
	BackpressureDropOldest
	BackpressureBlock
)

func (s BackpressureStrategy) String() string {
	switch s {
	case BackpressureError:
		return "error"
	case BackpressureDrop:
		return "drop"
	case BackpressureDropOldest:
		return "drop_oldest"
	case BackpressureBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Mailbox is the receive side of an actor's inbox. Send is used by callers
// (brokers, other actors); Recv is used exclusively by the actor's own
// message-loop goroutine.
type Mailbox[M actor.Message] interface {
	Send(ctx context.Context, env actor.Envelope[M]) error
	Recv(ctx context.Context) (actor.Envelope[M], error)
	Close()
	Metrics() *Metrics
}
