// Package router resolves a target ComponentId to its ActorAddress via
// wasmhost/registry and delivers a MessageEnvelope to that actor's
// mailbox, grounded on the teacher's cluster request-forwarding idiom
// (resolve owner node, forward, in one call) generalized to component
// addressing.
package router

import (
	"context"
	"fmt"

	"github.com/airsstack/airssys/rt/actor"
	"github.com/airsstack/airssys/wasmhost"
	"github.com/airsstack/airssys/wasmhost/registry"
)

// Sender is the minimal addressed-delivery surface Router needs from
// rt/system.ActorSystem[wasmhost.ComponentMessage]; declared locally to
// avoid importing the generic rt/system package from wasmhost/router.
type Sender interface {
	Send(ctx context.Context, addr actor.Address, env actor.Envelope[wasmhost.ComponentMessage]) error
}

// BroadcastResult pairs a target ComponentId with the error (if any) from
// delivering to it in a best-effort broadcast.
type BroadcastResult struct {
	ID  wasmhost.ComponentId
	Err error
}

// Router delivers addressed and broadcast component messages.
type Router struct {
	registry *registry.Registry
	sender   Sender
}

func New(reg *registry.Registry, sender Sender) *Router {
	return &Router{registry: reg, sender: sender}
}

// Send resolves target's ActorAddress and delivers msg to it in a new
// envelope, setting the envelope's ReplyTo to replyTo when provided.
func (r *Router) Send(ctx context.Context, target wasmhost.ComponentId, msg wasmhost.ComponentMessage, replyTo *actor.Address) error {
	addr, err := r.registry.Lookup(target)
	if err != nil {
		return fmt.Errorf("router: send to %s: %w", target, err)
	}
	env := actor.NewEnvelope(msg)
	if replyTo != nil {
		env = env.WithReplyTo(*replyTo)
	}
	return r.sender.Send(ctx, addr, env)
}

// BroadcastStrict delivers msg to every target in order, aborting on the
// first failure.
func (r *Router) BroadcastStrict(ctx context.Context, targets []wasmhost.ComponentId, msg wasmhost.ComponentMessage, replyTo *actor.Address) error {
	for _, t := range targets {
		if err := r.Send(ctx, t, msg, replyTo); err != nil {
			return err
		}
	}
	return nil
}

// BroadcastBestEffort delivers msg to every target, collecting each
// target's outcome rather than aborting on the first failure.
func (r *Router) BroadcastBestEffort(ctx context.Context, targets []wasmhost.ComponentId, msg wasmhost.ComponentMessage, replyTo *actor.Address) []BroadcastResult {
	results := make([]BroadcastResult, len(targets))
	for i, t := range targets {
		results[i] = BroadcastResult{ID: t, Err: r.Send(ctx, t, msg, replyTo)}
	}
	return results
}
