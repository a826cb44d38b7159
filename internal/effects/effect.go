package effects

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/momentum/internal/movement"
)

// Effect turns an external event into velocity modifiers for a target at a
// given position. An effect that does not reach the target returns no
// modifiers and no error.
type Effect interface {
	Modifiers(now float64, target mgl64.Vec3) ([]movement.Modifier, error)
}

// Target is anything that can receive modifiers; body.Body satisfies it.
type Target interface {
	Position() mgl64.Vec3
	Enqueue(now float64, source string, mods ...movement.Modifier)
}

// EffectFunc adapts a plain function to Effect.
type EffectFunc func(now float64, target mgl64.Vec3) ([]movement.Modifier, error)

func (f EffectFunc) Modifiers(now float64, target mgl64.Vec3) ([]movement.Modifier, error) {
	return f(now, target)
}

func modifierOptions(fades, clearOnGround, resetGravity bool) []movement.ModifierOption {
	var opts []movement.ModifierOption
	if fades {
		opts = append(opts, movement.Fading())
	}
	if clearOnGround {
		opts = append(opts, movement.ClearOnGround())
	}
	if resetGravity {
		opts = append(opts, movement.ResetGravity())
	}
	return opts
}
