package effects

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/momentum/internal/config"
)

var ErrUnknownEffect = errors.New("effects: unknown effect")

// Registry maps effect names to effects.
type Registry struct {
	mu      sync.RWMutex
	effects map[string]Effect
}

func NewRegistry() *Registry {
	return &Registry{effects: make(map[string]Effect)}
}

// Register adds or replaces the effect under name.
func (r *Registry) Register(name string, e Effect) error {
	if name == "" {
		return errors.New("effects: register with empty name")
	}
	if e == nil {
		return fmt.Errorf("effects: register %q: nil effect", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects[name] = e
	return nil
}

func (r *Registry) Get(name string) (Effect, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.effects[name]
	return e, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.effects))
	for name := range r.effects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Apply evaluates the named effect against the target's current position and
// enqueues the result. The modifiers join the target's next tick. It returns
// the number of modifiers enqueued.
func (r *Registry) Apply(name string, now float64, target Target) (int, error) {
	e, ok := r.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	if target == nil {
		return 0, fmt.Errorf("effects: apply %q: nil target", name)
	}
	mods, err := e.Modifiers(now, target.Position())
	if err != nil {
		return 0, fmt.Errorf("effects: apply %q: %w", name, err)
	}
	if len(mods) == 0 {
		return 0, nil
	}
	target.Enqueue(now, name, mods...)
	return len(mods), nil
}

// FromConfig builds a registry from the effects section. Relative script paths
// resolve against baseDir.
func FromConfig(cfgs []config.EffectConfig, baseDir string) (*Registry, error) {
	r := NewRegistry()
	for _, c := range cfgs {
		e, err := build(c, baseDir)
		if err != nil {
			return nil, err
		}
		if err := r.Register(c.Name, e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func build(c config.EffectConfig, baseDir string) (Effect, error) {
	switch c.Kind {
	case config.EffectExplosion:
		return Explosion{
			Origin:        mgl64.Vec3(c.Origin),
			Radius:        c.Radius,
			Force:         c.Force,
			Lift:          c.Lift,
			Duration:      c.Duration,
			Delay:         c.Delay,
			ClearOnGround: c.ClearOnGround,
			ResetGravity:  c.ResetGravity,
		}, nil
	case config.EffectPush:
		return Push{
			Vector:        mgl64.Vec3(c.Vector),
			Duration:      c.Duration,
			Delay:         c.Delay,
			Fades:         c.Fades,
			ResetsGravity: c.ResetGravity,
			ClearOnGround: c.ClearOnGround,
		}, nil
	case config.EffectScript:
		path := c.Script
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		return LoadScript(c.Name, path, c.Params)
	default:
		return nil, fmt.Errorf("%w: kind %q for %q", ErrUnknownEffect, c.Kind, c.Name)
	}
}
