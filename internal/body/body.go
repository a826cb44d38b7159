package body

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/momentum/internal/event"
	"github.com/Versifine/momentum/internal/movement"
)

// ActorID identifies a body inside a world.
type ActorID uint32

var ErrCannotTeleport = errors.New("body: solver does not support teleport")

// Teleporter is implemented by solvers that can place the actor directly.
type Teleporter interface {
	Teleport(pos mgl64.Vec3)
}

// Snapshot is a point-in-time view of one body.
type Snapshot struct {
	ID ActorID
	movement.Snapshot
	Ticks uint64
}

// Body is one actor: a movement controller bound to its solver, plus event
// publication for the transitions each tick produces.
type Body struct {
	id     ActorID
	solver movement.MoveSolver
	bus    *event.Bus

	mu    sync.Mutex
	ctrl  *movement.Controller
	ticks uint64
}

// New builds a body facing yaw degrees. bus may be nil.
func New(id ActorID, tuning movement.Tuning, solver movement.MoveSolver, sensor movement.GroundSensor, yaw float64, bus *event.Bus) (*Body, error) {
	if solver == nil || sensor == nil {
		return nil, fmt.Errorf("body: actor %d: solver and sensor are required", id)
	}
	ctrl, err := movement.NewController(tuning, solver, sensor, yaw)
	if err != nil {
		return nil, fmt.Errorf("body: actor %d: %w", id, err)
	}
	return &Body{
		id:     id,
		solver: solver,
		bus:    bus,
		ctrl:   ctrl,
	}, nil
}

func (b *Body) ID() ActorID {
	if b == nil {
		return 0
	}
	return b.id
}

// Tick advances the body by one simulation tick and publishes the
// transitions it produced.
func (b *Body) Tick(input InputState, clock movement.Clock) movement.Result {
	if b == nil {
		return movement.Result{}
	}

	b.mu.Lock()
	res := b.ctrl.Tick(normalizeMovementInput(input), clock)
	if clock.Dt > 0 {
		b.ticks++
	}
	pos := b.solver.Position()
	b.mu.Unlock()

	b.publishTransitions(res, clock.Now, pos)
	return res
}

// Enqueue queues modifiers for the next tick and reports them as coming
// from source.
func (b *Body) Enqueue(now float64, source string, mods ...movement.Modifier) {
	if b == nil || len(mods) == 0 {
		return
	}
	var sum mgl64.Vec3
	for _, m := range mods {
		b.ctrl.Enqueue(m)
		sum = sum.Add(m.Direction)
	}
	b.bus.Publish(event.EventModifierInjected, &event.ModifierEvent{
		Actor:     uint32(b.id),
		Now:       now,
		Source:    source,
		Count:     len(mods),
		Direction: sum,
	})
}

func (b *Body) Position() mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.solver.Position()
}

func (b *Body) Snapshot() Snapshot {
	if b == nil {
		return Snapshot{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{ID: b.id, Snapshot: b.ctrl.Snapshot(), Ticks: b.ticks}
}

// Modifiers returns a copy of the active modifier set.
func (b *Body) Modifiers() []movement.Modifier {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctrl.Modifiers()
}

// Teleport moves the actor when its solver supports it.
func (b *Body) Teleport(now float64, pos mgl64.Vec3) error {
	if b == nil {
		return fmt.Errorf("body is nil")
	}
	t, ok := b.solver.(Teleporter)
	if !ok {
		return ErrCannotTeleport
	}
	b.mu.Lock()
	t.Teleport(pos)
	b.mu.Unlock()

	b.bus.Publish(event.EventTeleported, &event.TransitionEvent{
		Kind:     event.EventTeleported,
		Actor:    uint32(b.id),
		Now:      now,
		Position: pos,
	})
	return nil
}

func (b *Body) publishTransitions(res movement.Result, now float64, pos mgl64.Vec3) {
	if b.bus == nil {
		return
	}
	emit := func(kind string) {
		b.bus.Publish(kind, &event.TransitionEvent{
			Kind:     kind,
			Actor:    uint32(b.id),
			Now:      now,
			Position: pos,
			Velocity: res.Velocity,
			Purged:   res.Purged,
		})
	}
	if res.LeftGround {
		emit(event.EventAirborne)
	}
	if res.JumpStarted {
		emit(event.EventJumpStarted)
	}
	if res.JumpEnded {
		emit(event.EventJumpEnded)
	}
	if res.Landed {
		emit(event.EventLanded)
	}
}
