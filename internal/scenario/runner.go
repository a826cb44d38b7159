package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Versifine/momentum/internal/body"
	"github.com/Versifine/momentum/internal/effects"
	"github.com/Versifine/momentum/internal/world"
)

// timeEpsilon absorbs clock drift from summing dt.
const timeEpsilon = 1e-9

// Runner drives a World through a Scenario at a fixed tick.
type Runner struct {
	world    *world.World
	effects  *effects.Registry
	scenario *Scenario
	dt       float64

	snapshotInterval float64
	realtime         bool

	triggers     []Trigger
	next         int
	held         map[body.ActorID]bool
	lastSnapshot float64
}

type RunnerOption func(*Runner)

// WithSnapshotInterval logs a world snapshot every interval seconds of
// simulated time. Zero disables snapshots.
func WithSnapshotInterval(interval float64) RunnerOption {
	return func(r *Runner) { r.snapshotInterval = interval }
}

// WithRealtime paces ticks on the wall clock instead of running flat out.
func WithRealtime(enabled bool) RunnerOption {
	return func(r *Runner) { r.realtime = enabled }
}

func NewRunner(w *world.World, reg *effects.Registry, sc *Scenario, dt float64, opts ...RunnerOption) (*Runner, error) {
	if w == nil || sc == nil {
		return nil, fmt.Errorf("scenario: runner needs a world and a scenario")
	}
	if dt <= 0 {
		return nil, fmt.Errorf("scenario: tick interval must be positive, got %v", dt)
	}
	for i, tr := range sc.Effects {
		if _, ok := reg.Get(tr.Effect); !ok {
			return nil, fmt.Errorf("scenario: effects[%d]: %w: %q", i, effects.ErrUnknownEffect, tr.Effect)
		}
	}

	triggers := append([]Trigger(nil), sc.Effects...)
	sort.SliceStable(triggers, func(i, j int) bool { return triggers[i].At < triggers[j].At })

	r := &Runner{
		world:    w,
		effects:  reg,
		scenario: sc,
		dt:       dt,
		triggers: triggers,
		held:     make(map[body.ActorID]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run ticks until the scenario duration elapses or ctx is done, and returns
// the final snapshot.
func (r *Runner) Run(ctx context.Context) (world.Snapshot, error) {
	slog.Info("Scenario started",
		"duration", r.scenario.Duration,
		"dt", r.dt,
		"actors", r.world.Len(),
		"triggers", len(r.triggers),
	)

	var tick <-chan time.Time
	if r.realtime {
		ticker := time.NewTicker(time.Duration(r.dt * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	for !r.Done() {
		if tick != nil {
			select {
			case <-ctx.Done():
				return r.world.Snapshot(), ctx.Err()
			case <-tick:
			}
		}
		if err := r.Tick(ctx); err != nil {
			return r.world.Snapshot(), err
		}
	}

	snap := r.world.Snapshot()
	slog.Info("Scenario finished", "tick", snap.Ticks, "now", snap.Now)
	return snap, nil
}

// Done reports whether the scenario duration has elapsed.
func (r *Runner) Done() bool {
	return r.world.Now() >= r.scenario.Duration-timeEpsilon
}

// Tick fires due effects, then steps the world once. Effects fired here are
// enqueued before the step and so apply on it.
func (r *Runner) Tick(ctx context.Context) error {
	now := r.world.Now()
	r.fireDue(now)

	ids := r.world.IDs()
	if err := r.world.Step(ctx, r.dt, r.inputsAt(ids, now)); err != nil {
		return err
	}

	if r.snapshotInterval > 0 {
		after := r.world.Now()
		if after-r.lastSnapshot >= r.snapshotInterval-timeEpsilon {
			r.lastSnapshot = after
			snap := r.world.Snapshot()
			slog.Info("Simulation snapshot", "tick", snap.Ticks, "state", snap.String())
		}
	}
	return nil
}

func (r *Runner) fireDue(now float64) {
	for r.next < len(r.triggers) && r.triggers[r.next].At <= now+timeEpsilon {
		tr := r.triggers[r.next]
		r.next++
		for _, id := range r.targets(tr.Actor) {
			b, ok := r.world.Body(id)
			if !ok {
				continue
			}
			n, err := r.effects.Apply(tr.Effect, now, b)
			if err != nil {
				slog.Warn("Scenario effect failed", "effect", tr.Effect, "actor", id, "error", err)
				continue
			}
			slog.Debug("Scenario effect fired", "effect", tr.Effect, "actor", id, "now", now, "modifiers", n)
		}
	}
}

func (r *Runner) targets(actor uint32) []body.ActorID {
	if actor == 0 {
		return r.world.IDs()
	}
	return []body.ActorID{body.ActorID(actor)}
}

// inputsAt turns held jump state into a press edge per actor.
func (r *Runner) inputsAt(ids []body.ActorID, now float64) map[body.ActorID]body.InputState {
	inputs := make(map[body.ActorID]body.InputState, len(ids))
	for _, id := range ids {
		in := r.scenario.InputAt(id, now)
		held := in.JumpPressed
		in.JumpPressed = held && !r.held[id]
		r.held[id] = held
		inputs[id] = in
	}
	return inputs
}
