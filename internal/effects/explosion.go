package effects

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/momentum/internal/movement"
)

// Explosion pushes targets away from Origin. Strength falls off linearly to
// zero at Radius and the impulse fades out over Duration.
type Explosion struct {
	Origin   mgl64.Vec3
	Radius   float64
	Force    float64
	Lift     float64
	Duration float64
	Delay    float64

	// ClearOnGround drops the impulse once the target is grounded. A grounded
	// target loses it after a single tick, so it suits airborne launches.
	ClearOnGround bool
	ResetGravity  bool
}

func (e Explosion) validate() error {
	if e.Radius <= 0 {
		return fmt.Errorf("effects: explosion radius must be positive, got %v", e.Radius)
	}
	if e.Duration <= 0 {
		return fmt.Errorf("effects: explosion duration must be positive, got %v", e.Duration)
	}
	if e.Delay < 0 {
		return fmt.Errorf("effects: explosion delay must not be negative, got %v", e.Delay)
	}
	return nil
}

func (e Explosion) Modifiers(now float64, target mgl64.Vec3) ([]movement.Modifier, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	offset := target.Sub(e.Origin)
	dist := offset.Len()
	if dist >= e.Radius {
		return nil, nil
	}
	falloff := 1 - dist/e.Radius

	horizontal := mgl64.Vec3{offset.X(), 0, offset.Z()}
	if l := horizontal.Len(); l > 1e-9 {
		horizontal = horizontal.Mul(1 / l)
	} else {
		horizontal = mgl64.Vec3{}
	}
	dir := horizontal.Mul(e.Force).Add(mgl64.Vec3{0, e.Lift, 0}).Mul(falloff)
	if dir.ApproxEqual(mgl64.Vec3{}) {
		return nil, nil
	}

	start := now + e.Delay
	m, err := movement.NewModifier(dir, start, start+e.Duration,
		modifierOptions(true, e.ClearOnGround, e.ResetGravity)...)
	if err != nil {
		return nil, fmt.Errorf("effects: explosion: %w", err)
	}
	return []movement.Modifier{m}, nil
}
