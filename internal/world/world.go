package world

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/kamstrup/intmap"
	"golang.org/x/sync/errgroup"

	"github.com/Versifine/momentum/internal/body"
	"github.com/Versifine/momentum/internal/movement"
)

var (
	ErrActorExists  = errors.New("world: actor already exists")
	ErrUnknownActor = errors.New("world: unknown actor")
)

// World owns a set of actors and a shared simulation clock. Every actor is
// ticked exactly once per Step in ascending id order. Actors share no
// movement state, so parallel stepping needs no locks beyond each body's own.
type World struct {
	mu       sync.RWMutex
	actors   *intmap.Map[body.ActorID, *body.Body]
	order    []body.ActorID
	now      float64
	ticks    uint64
	parallel bool
}

type Option func(*World)

// WithParallel ticks actors concurrently within a step.
func WithParallel(enabled bool) Option {
	return func(w *World) { w.parallel = enabled }
}

func New(opts ...Option) *World {
	w := &World{actors: intmap.New[body.ActorID, *body.Body](8)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) Spawn(b *body.Body) error {
	if b == nil {
		return fmt.Errorf("world: spawn nil body")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.actors.Has(b.ID()) {
		return fmt.Errorf("%w: %d", ErrActorExists, b.ID())
	}
	w.actors.Put(b.ID(), b)
	i, _ := slices.BinarySearch(w.order, b.ID())
	w.order = slices.Insert(w.order, i, b.ID())
	return nil
}

func (w *World) Remove(id body.ActorID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.actors.Del(id) {
		return false
	}
	if i, ok := slices.BinarySearch(w.order, id); ok {
		w.order = slices.Delete(w.order, i, i+1)
	}
	return true
}

func (w *World) Body(id body.ActorID) (*body.Body, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.actors.Get(id)
}

// IDs returns the actor ids in tick order.
func (w *World) IDs() []body.ActorID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.order)
}

func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.actors.Len()
}

// Now returns the simulation time of the next tick.
func (w *World) Now() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.now
}

// Step ticks every actor once with the current time and then advances the
// clock by dt. Actors without an entry in inputs receive zero input. A
// non-positive dt does nothing.
func (w *World) Step(ctx context.Context, dt float64, inputs map[body.ActorID]body.InputState) error {
	if dt <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.RLock()
	clock := movement.Clock{Now: w.now, Dt: dt}
	bodies := make([]*body.Body, 0, len(w.order))
	for _, id := range w.order {
		if b, ok := w.actors.Get(id); ok {
			bodies = append(bodies, b)
		}
	}
	parallel := w.parallel
	w.mu.RUnlock()

	if parallel && len(bodies) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for _, b := range bodies {
			b := b
			in := inputs[b.ID()]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				b.Tick(in, clock)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for _, b := range bodies {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.Tick(inputs[b.ID()], clock)
		}
	}

	w.mu.Lock()
	w.now += dt
	w.ticks++
	w.mu.Unlock()
	return nil
}

type Snapshot struct {
	Now    float64
	Ticks  uint64
	Actors []body.Snapshot
}

func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	actors := make([]body.Snapshot, 0, len(w.order))
	for _, id := range w.order {
		if b, ok := w.actors.Get(id); ok {
			actors = append(actors, b.Snapshot())
		}
	}
	return Snapshot{Now: w.now, Ticks: w.ticks, Actors: actors}
}

func (s Snapshot) String() string {
	var infos []string
	for _, a := range s.Actors {
		infos = append(infos, fmt.Sprintf(
			"Actor:%d (%.2f, %.2f, %.2f) vel:(%.2f, %.2f, %.2f) yaw:%.1f %s grounded:%t gravity:%.2f mods:%d",
			a.ID,
			a.Position[0], a.Position[1], a.Position[2],
			a.Velocity[0], a.Velocity[1], a.Velocity[2],
			a.Yaw,
			a.State,
			a.Grounded,
			a.AppliedGravity,
			a.Modifiers,
		))
	}
	return fmt.Sprintf("Snapshot [Time: %.2fs] | [Ticks: %d] | [Actors(%d): %s]",
		s.Now, s.Ticks, len(s.Actors), "["+strings.Join(infos, ", ")+"]")
}
