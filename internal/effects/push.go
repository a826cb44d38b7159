package effects

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/momentum/internal/movement"
)

// Push is a constant push independent of the target position, e.g. a launch
// pad or a wind column.
type Push struct {
	Vector        mgl64.Vec3
	Duration      float64
	Delay         float64
	Fades         bool
	ResetsGravity bool
	ClearOnGround bool
}

func (p Push) Modifiers(now float64, _ mgl64.Vec3) ([]movement.Modifier, error) {
	if p.Duration <= 0 {
		return nil, fmt.Errorf("effects: push duration must be positive, got %v", p.Duration)
	}
	if p.Delay < 0 {
		return nil, fmt.Errorf("effects: push delay must not be negative, got %v", p.Delay)
	}
	start := now + p.Delay
	m, err := movement.NewModifier(p.Vector, start, start+p.Duration,
		modifierOptions(p.Fades, p.ClearOnGround, p.ResetsGravity)...)
	if err != nil {
		return nil, fmt.Errorf("effects: push: %w", err)
	}
	return []movement.Modifier{m}, nil
}
