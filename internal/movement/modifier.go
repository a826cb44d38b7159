package movement

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidWindow is returned when a modifier's removal time does not come
// after its start time.
var ErrInvalidWindow = errors.New("movement: modifier window must satisfy remove > start")

// Modifier is a timed velocity contribution layered onto the base move vector,
// e.g. momentum carried off a ledge or an explosion impulse.
type Modifier struct {
	// Direction is the injected vector. Fading modifiers scale it.
	Direction mgl64.Vec3
	// CurrentVector is contributed unscaled by non-fading modifiers.
	CurrentVector mgl64.Vec3

	StartTime  float64
	RemoveTime float64

	FadesOut         bool
	RemoveOnGrounded bool
	ResetsGravity    bool
}

// ModifierOption configures optional Modifier flags.
type ModifierOption func(*Modifier)

// Fading makes the contribution decay linearly to zero over the window.
func Fading() ModifierOption {
	return func(m *Modifier) { m.FadesOut = true }
}

// ClearOnGround removes the modifier as soon as the actor is grounded.
func ClearOnGround() ModifierOption {
	return func(m *Modifier) { m.RemoveOnGrounded = true }
}

// ResetGravity forces applied gravity to zero while the modifier is held.
func ResetGravity() ModifierOption {
	return func(m *Modifier) { m.ResetsGravity = true }
}

// NewModifier builds a modifier active over [start, remove).
func NewModifier(direction mgl64.Vec3, start, remove float64, opts ...ModifierOption) (Modifier, error) {
	if !finite(start) || !finite(remove) || remove <= start {
		return Modifier{}, fmt.Errorf("%w: start=%v remove=%v", ErrInvalidWindow, start, remove)
	}
	for _, c := range direction {
		if !finite(c) {
			return Modifier{}, fmt.Errorf("movement: modifier direction is not finite: %v", direction)
		}
	}
	m := Modifier{
		Direction:     direction,
		CurrentVector: direction,
		StartTime:     start,
		RemoveTime:    remove,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m, nil
}

// Active reports whether now lies inside the modifier window.
func (m Modifier) Active(now float64) bool {
	return now >= m.StartTime && now < m.RemoveTime
}

// Expired reports whether the modifier should be dropped at now.
func (m Modifier) Expired(now float64) bool {
	return now >= m.RemoveTime
}

// Contribution returns the vector the modifier adds at now. Callers are
// expected to have checked Active.
func (m Modifier) Contribution(now float64) mgl64.Vec3 {
	if !m.FadesOut {
		return m.CurrentVector
	}
	remaining := 1 - (now-m.StartTime)/(m.RemoveTime-m.StartTime)
	return m.Direction.Mul(remaining)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
