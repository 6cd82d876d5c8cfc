package messaging

import (
	"context"

	"github.com/airsstack/airssys/rt/actor"
	"github.com/airsstack/airssys/rt/broker"
	"github.com/airsstack/airssys/wasmhost"
)

// Publisher is a thin per-component handle wrapping the broker bridge,
// constructing InterComponent(WithCorrelation) messages on the caller's
// behalf.
type Publisher struct {
	self   wasmhost.ComponentId
	broker broker.Broker[wasmhost.ComponentMessage]
}

func NewPublisher(self wasmhost.ComponentId, br broker.Broker[wasmhost.ComponentMessage]) *Publisher {
	return &Publisher{self: self, broker: br}
}

func (p *Publisher) publish(ctx context.Context, to wasmhost.ComponentId, payload []byte, correlationID string) error {
	msg := wasmhost.ComponentMessage{
		Kind:          wasmhost.InterComponent,
		Sender:        p.self,
		To:            to,
		Payload:       payload,
		CorrelationID: correlationID,
	}
	if correlationID != "" {
		msg.Kind = wasmhost.InterComponentWithCorrelation
	}
	return p.broker.Publish(ctx, actor.NewEnvelope(msg))
}

// Publish sends payload to a single target component.
func (p *Publisher) Publish(ctx context.Context, to wasmhost.ComponentId, payload []byte) error {
	return p.publish(ctx, to, payload, "")
}

// PublishMulti sends payload to every target in targets, stopping at the
// first failure.
func (p *Publisher) PublishMulti(ctx context.Context, targets []wasmhost.ComponentId, payload []byte) error {
	for _, to := range targets {
		if err := p.publish(ctx, to, payload, ""); err != nil {
			return err
		}
	}
	return nil
}

// PublishWithCorrelation sends payload to to, tagging it with
// correlationID so the reply can be routed back via the same id.
func (p *Publisher) PublishWithCorrelation(ctx context.Context, to wasmhost.ComponentId, payload []byte, correlationID string) error {
	return p.publish(ctx, to, payload, correlationID)
}
