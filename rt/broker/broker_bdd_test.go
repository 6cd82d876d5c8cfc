package broker

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/airsstack/airssys/rt/actor"
)

var _ = Describe("InMemoryBroker", func() {
	var b *InMemoryBroker[testMsg]

	BeforeEach(func() {
		b = NewInMemoryBroker[testMsg]()
	})

	Context("pure pub/sub", func() {
		It("broadcasts a copy of the envelope to every subscriber", func() {
			sub1 := b.Subscribe()
			sub2 := b.Subscribe()

			Expect(b.Publish(context.Background(), actor.NewEnvelope(testMsg{topic: "hello"}))).To(Succeed())

			var env1, env2 actor.Envelope[testMsg]
			Eventually(sub1).Should(Receive(&env1))
			Eventually(sub2).Should(Receive(&env2))
			Expect(env1.Payload.topic).To(Equal("hello"))
			Expect(env2.Payload.topic).To(Equal("hello"))
		})

		It("stops delivering after Unsubscribe", func() {
			sub := b.Subscribe()
			b.Unsubscribe(sub)
			Expect(b.Publish(context.Background(), actor.NewEnvelope(testMsg{topic: "x"}))).To(Succeed())
			_, ok := <-sub
			Expect(ok).To(BeFalse())
		})
	})

	Context("request-reply", func() {
		It("diverts a correlation-matching publish to the waiting requester instead of broadcasting", func() {
			otherSub := b.Subscribe()
			requestSub := b.Subscribe()

			go func() {
				var env actor.Envelope[testMsg]
				Eventually(requestSub).Should(Receive(&env))
				reply := env
				reply.Payload = testMsg{topic: "reply:" + env.Payload.topic}
				_ = b.Publish(context.Background(), reply)
			}()

			reply, err := b.PublishRequest(context.Background(), actor.NewEnvelope(testMsg{topic: "ping"}), time.Second)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Payload.topic).To(Equal("reply:ping"))

			// The request itself is broadcast to every subscriber; only the
			// correlated reply is diverted.
			var request actor.Envelope[testMsg]
			Eventually(otherSub).Should(Receive(&request))
			Expect(request.Payload.topic).To(Equal("ping"))
			Consistently(otherSub, "50ms").ShouldNot(Receive())
		})

		It("returns ErrRequestTimeout and removes the pending entry when no reply arrives", func() {
			_, err := b.PublishRequest(context.Background(), actor.NewEnvelope(testMsg{topic: "lonely"}), 20*time.Millisecond)
			Expect(err).To(HaveOccurred())
			var timeoutErr *ErrRequestTimeout
			Expect(errors.As(err, &timeoutErr)).To(BeTrue())

			b.pendingMu.Lock()
			_, stillPending := b.pending[timeoutErr.CorrelationID]
			b.pendingMu.Unlock()
			Expect(stillPending).To(BeFalse())
		})
	})
})
