package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Versifine/momentum/internal/movement"
)

// EnvPrefix prefixes every environment override, e.g. MOMENTUM_MOVEMENT_GRAVITY.
const EnvPrefix = "MOMENTUM_"

const (
	TerrainVoxel = "voxel"
	TerrainArena = "arena"

	EffectExplosion = "explosion"
	EffectPush      = "push"
	EffectScript    = "script"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Simulation SimulationConfig `yaml:"simulation" envPrefix:"SIMULATION_"`
	Movement   MovementConfig   `yaml:"movement" envPrefix:"MOVEMENT_"`
	Terrain    TerrainConfig    `yaml:"terrain" envPrefix:"TERRAIN_"`
	Actors     []ActorConfig    `yaml:"actors" env:"-"`
	Effects    []EffectConfig   `yaml:"effects" env:"-"`
	Logging    LoggingConfig    `yaml:"logging" envPrefix:"LOGGING_"`
}

type SimulationConfig struct {
	TickRate         float64 `yaml:"tick_rate" env:"TICK_RATE"`
	Parallel         bool    `yaml:"parallel" env:"PARALLEL"`
	SnapshotInterval float64 `yaml:"snapshot_interval" env:"SNAPSHOT_INTERVAL"`
	Scenario         string  `yaml:"scenario" env:"SCENARIO"`
}

// MovementConfig mirrors movement.Tuning. Angles are in degrees.
type MovementConfig struct {
	BaseSpeed             float64 `yaml:"base_speed" env:"BASE_SPEED"`
	AirBaseSpeed          float64 `yaml:"air_base_speed" env:"AIR_BASE_SPEED"`
	SprintMultiplier      float64 `yaml:"sprint_multiplier" env:"SPRINT_MULTIPLIER"`
	StrafeMultiplier      float64 `yaml:"strafe_multiplier" env:"STRAFE_MULTIPLIER"`
	Gravity               float64 `yaml:"gravity" env:"GRAVITY"`
	TerminalGravity       float64 `yaml:"terminal_gravity" env:"TERMINAL_GRAVITY"`
	JumpHeight            float64 `yaml:"jump_height" env:"JUMP_HEIGHT"`
	JumpTimeLength        float64 `yaml:"jump_time_length" env:"JUMP_TIME_LENGTH"`
	YRotationSpeed        float64 `yaml:"y_rotation_speed" env:"Y_ROTATION_SPEED"`
	XRotationSpeed        float64 `yaml:"x_rotation_speed" env:"X_ROTATION_SPEED"`
	PitchLimit            float64 `yaml:"pitch_limit" env:"PITCH_LIMIT"`
	LedgeMomentumScale    float64 `yaml:"ledge_momentum_scale" env:"LEDGE_MOMENTUM_SCALE"`
	LedgeMomentumDuration float64 `yaml:"ledge_momentum_duration" env:"LEDGE_MOMENTUM_DURATION"`
}

type TerrainConfig struct {
	Kind        string           `yaml:"kind" env:"KIND"`
	KillY       float64          `yaml:"kill_y" env:"KILL_Y"`
	GroundProbe float64          `yaml:"ground_probe" env:"GROUND_PROBE"`
	StepHeight  float64          `yaml:"step_height" env:"STEP_HEIGHT"`
	Capsule     CapsuleConfig    `yaml:"capsule" envPrefix:"CAPSULE_"`
	Boxes       []BoxConfig      `yaml:"boxes" env:"-"`
	Walls       []WallConfig     `yaml:"walls" env:"-"`
	Platforms   []PlatformConfig `yaml:"platforms" env:"-"`
}

type CapsuleConfig struct {
	Radius float64 `yaml:"radius" env:"RADIUS"`
	Height float64 `yaml:"height" env:"HEIGHT"`
}

// BoxConfig is an inclusive voxel range.
type BoxConfig struct {
	Min [3]int `yaml:"min"`
	Max [3]int `yaml:"max"`
}

// WallConfig is a wall segment on the XZ plane.
type WallConfig struct {
	From      [2]float64 `yaml:"from"`
	To        [2]float64 `yaml:"to"`
	Thickness float64    `yaml:"thickness"`
}

// PlatformConfig is an XZ footprint with a walkable top.
type PlatformConfig struct {
	Min [2]float64 `yaml:"min"`
	Max [2]float64 `yaml:"max"`
	Top float64    `yaml:"top"`
}

type ActorConfig struct {
	ID    uint32     `yaml:"id"`
	Spawn [3]float64 `yaml:"spawn"`
	Yaw   float64    `yaml:"yaw"`
}

type EffectConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	Origin   [3]float64 `yaml:"origin"`
	Radius   float64    `yaml:"radius"`
	Force    float64    `yaml:"force"`
	Lift     float64    `yaml:"lift"`
	Vector   [3]float64 `yaml:"vector"`
	Duration float64    `yaml:"duration"`
	Delay    float64    `yaml:"delay"`

	Fades         bool `yaml:"fades"`
	ClearOnGround bool `yaml:"clear_on_ground"`
	ResetGravity  bool `yaml:"reset_gravity"`

	Script string                 `yaml:"script"`
	Params map[string]interface{} `yaml:"params"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	File   string `yaml:"file" env:"FILE"`
}

// Default returns a configuration that runs a single actor on a flat voxel
// floor.
func Default() *Config {
	t := movement.DefaultTuning()
	return &Config{
		Simulation: SimulationConfig{
			TickRate:         50,
			SnapshotInterval: 1,
		},
		Movement: MovementConfig{
			BaseSpeed:             t.BaseSpeed,
			AirBaseSpeed:          t.AirBaseSpeed,
			SprintMultiplier:      t.SprintMultiplier,
			StrafeMultiplier:      t.StrafeMultiplier,
			Gravity:               t.Gravity,
			TerminalGravity:       t.TerminalGravity,
			JumpHeight:            t.JumpHeight,
			JumpTimeLength:        t.JumpTimeLength,
			YRotationSpeed:        t.YRotationSpeed,
			XRotationSpeed:        t.XRotationSpeed,
			PitchLimit:            t.PitchLimit,
			LedgeMomentumScale:    t.LedgeMomentumScale,
			LedgeMomentumDuration: t.LedgeMomentumDuration,
		},
		Terrain: TerrainConfig{
			Kind:        TerrainVoxel,
			KillY:       -50,
			GroundProbe: 0.05,
			StepHeight:  0.3,
			Capsule:     CapsuleConfig{Radius: 0.5, Height: 2},
			Boxes:       []BoxConfig{{Min: [3]int{-32, -1, -32}, Max: [3]int{32, -1, 32}}},
		},
		Actors: []ActorConfig{{ID: 1, Spawn: [3]float64{0.5, 0, 0.5}}},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// MOMENTUM_* environment overrides.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil environ reads the
// process environment.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// A YAML list replaces the default list rather than merging into it.
	cfg.Actors = nil
	cfg.Terrain.Boxes = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(cfg.Actors) == 0 {
		cfg.Actors = Default().Actors
	}
	if cfg.Terrain.Kind == TerrainVoxel && len(cfg.Terrain.Boxes) == 0 {
		cfg.Terrain.Boxes = Default().Terrain.Boxes
	}

	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: env overlay: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Tuning converts the movement section.
func (c *Config) Tuning() movement.Tuning {
	m := c.Movement
	return movement.Tuning{
		BaseSpeed:             m.BaseSpeed,
		AirBaseSpeed:          m.AirBaseSpeed,
		SprintMultiplier:      m.SprintMultiplier,
		StrafeMultiplier:      m.StrafeMultiplier,
		Gravity:               m.Gravity,
		TerminalGravity:       m.TerminalGravity,
		JumpHeight:            m.JumpHeight,
		JumpTimeLength:        m.JumpTimeLength,
		YRotationSpeed:        m.YRotationSpeed,
		XRotationSpeed:        m.XRotationSpeed,
		PitchLimit:            m.PitchLimit,
		LedgeMomentumScale:    m.LedgeMomentumScale,
		LedgeMomentumDuration: m.LedgeMomentumDuration,
	}
}

// TickInterval is the fixed simulation step in seconds.
func (c *Config) TickInterval() float64 {
	return 1 / c.Simulation.TickRate
}

func (c *Config) Validate() error {
	if err := c.Tuning().Validate(); err != nil {
		return fmt.Errorf("config: movement: %w", err)
	}
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("%w: simulation.tick_rate must be positive, got %v", ErrInvalidConfig, c.Simulation.TickRate)
	}
	if c.Simulation.SnapshotInterval < 0 {
		return fmt.Errorf("%w: simulation.snapshot_interval must not be negative", ErrInvalidConfig)
	}

	t := c.Terrain
	switch t.Kind {
	case TerrainVoxel, TerrainArena:
	default:
		return fmt.Errorf("%w: terrain.kind %q (want %q or %q)", ErrInvalidConfig, t.Kind, TerrainVoxel, TerrainArena)
	}
	if t.Capsule.Radius <= 0 || t.Capsule.Height <= 0 {
		return fmt.Errorf("%w: terrain.capsule must have positive radius and height", ErrInvalidConfig)
	}
	if t.GroundProbe <= 0 {
		return fmt.Errorf("%w: terrain.ground_probe must be positive", ErrInvalidConfig)
	}
	for i, b := range t.Boxes {
		for axis := 0; axis < 3; axis++ {
			if b.Max[axis] < b.Min[axis] {
				return fmt.Errorf("%w: terrain.boxes[%d] max < min on axis %d", ErrInvalidConfig, i, axis)
			}
		}
	}
	for i, p := range t.Platforms {
		if p.Max[0] <= p.Min[0] || p.Max[1] <= p.Min[1] {
			return fmt.Errorf("%w: terrain.platforms[%d] has an empty footprint", ErrInvalidConfig, i)
		}
	}

	seen := make(map[uint32]bool, len(c.Actors))
	for _, a := range c.Actors {
		if seen[a.ID] {
			return fmt.Errorf("%w: duplicate actor id %d", ErrInvalidConfig, a.ID)
		}
		seen[a.ID] = true
	}

	names := make(map[string]bool, len(c.Effects))
	for i, e := range c.Effects {
		if e.Name == "" {
			return fmt.Errorf("%w: effects[%d] has no name", ErrInvalidConfig, i)
		}
		if names[e.Name] {
			return fmt.Errorf("%w: duplicate effect %q", ErrInvalidConfig, e.Name)
		}
		names[e.Name] = true
		switch e.Kind {
		case EffectExplosion:
			if e.Radius <= 0 {
				return fmt.Errorf("%w: effect %q needs a positive radius", ErrInvalidConfig, e.Name)
			}
		case EffectPush:
		case EffectScript:
			if e.Script == "" {
				return fmt.Errorf("%w: effect %q needs a script path", ErrInvalidConfig, e.Name)
			}
			continue
		default:
			return fmt.Errorf("%w: effect %q has unknown kind %q", ErrInvalidConfig, e.Name, e.Kind)
		}
		if e.Duration <= 0 {
			return fmt.Errorf("%w: effect %q needs a positive duration", ErrInvalidConfig, e.Name)
		}
	}
	return nil
}
