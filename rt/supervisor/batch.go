package supervisor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/airsstack/airssys/cmn/ids"
)

// Batch accumulates child specs sharing common restart/shutdown defaults,
// grounded on fs/mpather/jogger.go's errgroup-based JoggerGroup: spawn_all
// starts every accumulated child concurrently and fails fast, rolling back
// whatever already started if any one factory or Start call errors.
type Batch struct {
	sup      *Supervisor
	defaults ChildSpec
	specs    []ChildSpec
}

// ChildrenBatchBuilder starts a Batch whose per-child specs inherit
// defaults unless overridden via Add's opts.
func (s *Supervisor) ChildrenBatchBuilder(defaults ChildSpec) *Batch {
	return &Batch{sup: s, defaults: defaults}
}

// Add queues one child spec, applying overrides over a copy of the batch's
// defaults to produce the child-specific spec.
func (b *Batch) Add(name string, factory func() (Child, error), overrides ...func(*ChildSpec)) *Batch {
	spec := b.defaults
	spec.Name = name
	spec.Factory = factory
	for _, o := range overrides {
		o(&spec)
	}
	b.specs = append(b.specs, spec)
	return b
}

// SpawnAll starts every queued child concurrently via errgroup. On the
// first failure, every child that had already started (including
// in-flight ones that finish successfully after the failing one, since
// errgroup cancels the shared context but does not kill already-returned
// goroutines) is stopped and the original error is returned.
func (b *Batch) SpawnAll(ctx context.Context) ([]ids.ChildId, error) {
	g, gctx := errgroup.WithContext(ctx)
	startedIDs := make([]ids.ChildId, len(b.specs))
	started := make([]bool, len(b.specs))

	for i, spec := range b.specs {
		i, spec := i, spec
		g.Go(func() error {
			id, err := b.sup.StartChild(gctx, spec)
			if err != nil {
				return err
			}
			startedIDs[i] = id
			started[i] = true
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		return startedIDs, nil
	}

	for i, ok := range started {
		if ok {
			_ = b.sup.StopChild(context.Background(), startedIDs[i])
		}
	}
	return nil, err
}

// SpawnAllMap is SpawnAll but keyed by the spec's Name instead of position,
// for callers that address children by name rather than position.
func (b *Batch) SpawnAllMap(ctx context.Context) (map[string]ids.ChildId, error) {
	spawned, err := b.SpawnAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]ids.ChildId, len(spawned))
	for i, id := range spawned {
		out[b.specs[i].Name] = id
	}
	return out, nil
}
