// Package actor defines the core Actor contract, its message envelope, and
// the per-actor execution context the RT message loop (rt/system) invokes
// against — grounded on the teacher's xaction interfaces (a typed unit of
// work owning its own goroutine and state) generalized to the spec's
// stateful, mailbox-driven actor model.
package actor

import "context"

// ErrorAction governs recovery after a handler error, returned from an
// actor's optional OnError hook.
type ErrorAction int

const (
	// Resume continues the message loop, discarding the failed message.
	Resume ErrorAction = iota
	// Stop exits the message loop cleanly.
	Stop
	// Escalate terminates the actor and notifies its supervisor.
	Escalate
)

func (a ErrorAction) String() string {
	switch a {
	case Resume:
		return "resume"
	case Stop:
		return "stop"
	case Escalate:
		return "escalate"
	default:
		return "unknown"
	}
}

// Actor is implemented by every unit of work hosted by an ActorSystem. M is
// the actor's message type; state lives in the concrete receiver and is
// owned exclusively by the actor's message loop goroutine.
type Actor[M Message] interface {
	// HandleMessage processes one dequeued envelope. Called at most once at
	// a time, from the actor's own goroutine.
	HandleMessage(ctx context.Context, msg M, actx *Context[M]) error

	// OnError is consulted after HandleMessage returns a non-nil error. The
	// message loop calls it on every handler error; actors that don't need
	// recovery control simply return Resume.
	OnError(err error) ErrorAction
}

// Broker is the minimal publish surface a Context needs. rt/broker's
// InMemoryBroker[M] implements it; defined here (rather than imported from
// rt/broker) to avoid an import cycle between the two packages.
type Broker[M Message] interface {
	Publish(ctx context.Context, env Envelope[M]) error
}

// Context is the per-actor handle passed into HandleMessage: its address,
// a broker publish handle, and an optional back-reference to its
// supervisor (nil for unsupervised/top-level actors).
type Context[M Message] struct {
	Self      Address
	Broker    Broker[M]
	Supervisor *SupervisorRef
}

// SupervisorRef is an opaque back-reference an actor can use to report
// self-observed health without importing rt/supervisor directly.
type SupervisorRef struct {
	Notify func(err error)
}
