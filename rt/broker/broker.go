// Package broker implements the pub/sub and request-reply message bus
// actors publish onto, grounded on the teacher's xreg/listeners
// notification-broadcast pattern generalized to a generic, typed broker
// with an additional one-shot request-reply path.
package broker

import (
	"context"
	"time"

	"github.com/airsstack/airssys/rt/actor"
)

// ErrRequestTimeout is returned by PublishRequest when no reply arrives
// within the given timeout.
type ErrRequestTimeout struct{ CorrelationID string }

func (e *ErrRequestTimeout) Error() string { return "broker: request timeout: " + e.CorrelationID }

// Broker is the publish/subscribe and request-reply contract RT actors and
// the WASM host layer use to exchange envelopes.
type Broker[M actor.Message] interface {
	Publish(ctx context.Context, env actor.Envelope[M]) error
	Subscribe() <-chan actor.Envelope[M]
	Unsubscribe(ch <-chan actor.Envelope[M])
	// PublishRequest assigns env a fresh correlation id, broadcasts it, and
	// waits up to timeout for a reply whose envelope correlation id matches.
	// A nil, nil result means the timeout elapsed with no error raised; per
	// spec this is reported as ErrRequestTimeout instead, so callers always
	// get (reply, nil) or (zero, err).
	PublishRequest(ctx context.Context, env actor.Envelope[M], timeout time.Duration) (actor.Envelope[M], error)
}
