package app

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/momentum/internal/body"
	"github.com/Versifine/momentum/internal/config"
	"github.com/Versifine/momentum/internal/effects"
	"github.com/Versifine/momentum/internal/event"
	"github.com/Versifine/momentum/internal/movement"
	"github.com/Versifine/momentum/internal/physics"
	"github.com/Versifine/momentum/internal/world"
)

// Session is one fully wired simulation built from a configuration. A
// configuration change builds a new Session.
type Session struct {
	Config  *config.Config
	World   *world.World
	Bus     *event.Bus
	Effects *effects.Registry
	// Grid is nil for arena terrain.
	Grid *world.Grid
}

// Build wires terrain, actors, the event bus and effects. Relative script
// paths resolve against baseDir.
func Build(cfg *config.Config, baseDir string) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg, err := effects.FromConfig(cfg.Effects, baseDir)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Config:  cfg,
		World:   world.New(world.WithParallel(cfg.Simulation.Parallel)),
		Bus:     event.NewBus(),
		Effects: reg,
	}
	s.Bus.SubscribeAll(event.MovementEvents, event.LogHandler)

	if cfg.Terrain.Kind == config.TerrainVoxel {
		boxes := make([]world.Box, 0, len(cfg.Terrain.Boxes))
		for _, b := range cfg.Terrain.Boxes {
			boxes = append(boxes, world.Box{Min: b.Min, Max: b.Max})
		}
		g, err := world.NewGridFromBoxes(boxes)
		if err != nil {
			return nil, fmt.Errorf("app: terrain: %w", err)
		}
		s.Grid = g
	}

	tuning := cfg.Tuning()
	for _, a := range cfg.Actors {
		solver, sensor := s.physicsFor(a)
		b, err := body.New(body.ActorID(a.ID), tuning, solver, sensor, a.Yaw, s.Bus)
		if err != nil {
			return nil, fmt.Errorf("app: actor %d: %w", a.ID, err)
		}
		if err := s.World.Spawn(b); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	slog.Info("Session built",
		"terrain", cfg.Terrain.Kind,
		"actors", s.World.Len(),
		"effects", len(reg.Names()),
		"parallel", cfg.Simulation.Parallel,
	)
	return s, nil
}

func (s *Session) physicsFor(a config.ActorConfig) (movement.MoveSolver, movement.GroundSensor) {
	t := s.Config.Terrain
	capsule := physics.Capsule{Radius: t.Capsule.Radius, Height: t.Capsule.Height}
	spawn := mgl64.Vec3(a.Spawn)

	if t.Kind == config.TerrainArena {
		arena := physics.NewPlanarArena(arenaLayout(t), capsule, spawn, t.GroundProbe)
		return arena, arena
	}
	return physics.NewVoxelSolver(s.Grid, capsule, spawn, t.KillY),
		physics.VoxelGroundSensor{Store: s.Grid, Capsule: capsule, Probe: t.GroundProbe}
}

func arenaLayout(t config.TerrainConfig) physics.ArenaLayout {
	layout := physics.ArenaLayout{StepHeight: t.StepHeight, KillY: t.KillY}
	for _, w := range t.Walls {
		layout.Walls = append(layout.Walls, physics.Wall{A: w.From, B: w.To, Thickness: w.Thickness})
	}
	for _, p := range t.Platforms {
		layout.Platforms = append(layout.Platforms, physics.Platform{Min: p.Min, Max: p.Max, Top: p.Top})
	}
	return layout
}

// Primary returns the lowest-id actor, the one the debug console drives.
func (s *Session) Primary() (*body.Body, bool) {
	ids := s.World.IDs()
	if len(ids) == 0 {
		return nil, false
	}
	return s.World.Body(ids[0])
}
