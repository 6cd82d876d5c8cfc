package supervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeChild records Start/Stop calls; it never fails Start/Stop and its
// HealthCheck always reports HealthHealthy.
type fakeChild struct {
	mu      sync.Mutex
	starts  int
	stops   int
}

func (c *fakeChild) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts++
	return nil
}

func (c *fakeChild) Stop(context.Context, time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	return nil
}

func (c *fakeChild) HealthCheck(context.Context) (ChildHealth, error) { return HealthHealthy, nil }

func (c *fakeChild) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts, c.stops
}

type eventCollector struct {
	mu     sync.Mutex
	events []SupervisionEvent
}

func (e *eventCollector) Notify(ev SupervisionEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *eventCollector) all() []SupervisionEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SupervisionEvent, len(e.events))
	copy(out, e.events)
	return out
}

func specFor(strategy Strategy) Config {
	return Config{
		Strategy:    strategy,
		Backoff:     BackoffStrategy{Kind: BackoffImmediate},
		MaxRestarts: 3,
		TimeWindow:  time.Minute,
	}
}

var _ = Describe("Supervisor", func() {
	var (
		sink *eventCollector
		sup  *Supervisor
		ctx  context.Context
	)

	BeforeEach(func() {
		sink = &eventCollector{}
		ctx = context.Background()
	})

	Describe("OneForOne", func() {
		It("restarts only the failed child", func() {
			sup = New("sup-1", specFor(OneForOne), sink)
			childA := &fakeChild{}
			childB := &fakeChild{}

			idA, err := sup.StartChild(ctx, ChildSpec{Name: "a", Factory: func() (Child, error) { return childA, nil }, RestartPolicy: Permanent})
			Expect(err).NotTo(HaveOccurred())
			_, err = sup.StartChild(ctx, ChildSpec{Name: "b", Factory: func() (Child, error) { return childB, nil }, RestartPolicy: Permanent})
			Expect(err).NotTo(HaveOccurred())

			Expect(sup.OnChildFailure(ctx, idA, errors.New("boom"))).To(Succeed())

			aStarts, aStops := childA.counts()
			bStarts, bStops := childB.counts()
			Expect(aStarts).To(Equal(2)) // initial + restart
			Expect(aStops).To(Equal(0))  // OneForOne doesn't explicitly stop the failed child itself
			Expect(bStarts).To(Equal(1))
			Expect(bStops).To(Equal(0))
		})
	})

	Describe("OneForAll", func() {
		It("stops and restarts every child", func() {
			sup = New("sup-2", specFor(OneForAll), sink)
			childA := &fakeChild{}
			childB := &fakeChild{}

			idA, _ := sup.StartChild(ctx, ChildSpec{Name: "a", Factory: func() (Child, error) { return childA, nil }, RestartPolicy: Permanent})
			sup.StartChild(ctx, ChildSpec{Name: "b", Factory: func() (Child, error) { return childB, nil }, RestartPolicy: Permanent})

			Expect(sup.OnChildFailure(ctx, idA, errors.New("boom"))).To(Succeed())

			_, bStops := childB.counts()
			bStarts, _ := childB.counts()
			Expect(bStops).To(Equal(1))
			Expect(bStarts).To(Equal(2))
		})
	})

	Describe("RestForOne", func() {
		It("stops and restarts the failed child and everything started after it", func() {
			sup = New("sup-3", specFor(RestForOne), sink)
			childA := &fakeChild{}
			childB := &fakeChild{}
			childC := &fakeChild{}

			sup.StartChild(ctx, ChildSpec{Name: "a", Factory: func() (Child, error) { return childA, nil }, RestartPolicy: Permanent})
			idB, _ := sup.StartChild(ctx, ChildSpec{Name: "b", Factory: func() (Child, error) { return childB, nil }, RestartPolicy: Permanent})
			sup.StartChild(ctx, ChildSpec{Name: "c", Factory: func() (Child, error) { return childC, nil }, RestartPolicy: Permanent})

			Expect(sup.OnChildFailure(ctx, idB, errors.New("boom"))).To(Succeed())

			aStarts, _ := childA.counts()
			bStarts, bStops := childB.counts()
			cStarts, cStops := childC.counts()
			Expect(aStarts).To(Equal(1)) // untouched: started before B
			Expect(bStarts).To(Equal(2))
			Expect(bStops).To(Equal(1))
			Expect(cStarts).To(Equal(2)) // started after B, so it's restarted too
			Expect(cStops).To(Equal(1))
		})
	})

	Describe("restart policy", func() {
		It("never restarts a Temporary child", func() {
			sup = New("sup-4", specFor(OneForOne), sink)
			child := &fakeChild{}
			id, _ := sup.StartChild(ctx, ChildSpec{Name: "temp", Factory: func() (Child, error) { return child, nil }, RestartPolicy: Temporary})

			Expect(sup.OnChildFailure(ctx, id, errors.New("boom"))).To(Succeed())

			starts, _ := child.counts()
			Expect(starts).To(Equal(1))
			Expect(sup.Children()).To(BeEmpty())
		})
	})

	Describe("restart limit", func() {
		It("raises RestartLimitExceeded after max_restarts within the window", func() {
			cfg := specFor(OneForOne)
			cfg.MaxRestarts = 2
			sup = New("sup-5", cfg, sink)
			child := &fakeChild{}
			id, _ := sup.StartChild(ctx, ChildSpec{Name: "flaky", Factory: func() (Child, error) { return child, nil }, RestartPolicy: Permanent})

			Expect(sup.OnChildFailure(ctx, id, errors.New("boom"))).To(Succeed())
			Expect(sup.OnChildFailure(ctx, id, errors.New("boom"))).To(Succeed())

			err := sup.OnChildFailure(ctx, id, errors.New("boom"))
			Expect(err).To(HaveOccurred())
			var limitErr *ErrRestartLimitExceeded
			Expect(errors.As(err, &limitErr)).To(BeTrue())

			found := false
			for _, ev := range sink.all() {
				if ev.Kind == RestartLimitExceeded {
					found = true
				}
			}
			Expect(found).To(BeTrue())
		})
	})

	Describe("batch builder", func() {
		It("rolls back already-started children on first failure", func() {
			sup = New("sup-6", specFor(OneForOne), sink)
			childA := &fakeChild{}

			batch := sup.ChildrenBatchBuilder(ChildSpec{RestartPolicy: Permanent})
			batch.Add("a", func() (Child, error) { return childA, nil })
			batch.Add("b", func() (Child, error) { return nil, errors.New("factory failed") })

			_, err := batch.SpawnAll(ctx)
			Expect(err).To(HaveOccurred())

			Eventually(func() int {
				_, stops := childA.counts()
				return stops
			}).Should(Equal(1))
		})
	})
})
