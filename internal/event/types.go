package event

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	EventLanded           = "movement.landed"
	EventAirborne         = "movement.airborne"
	EventJumpStarted      = "movement.jump_started"
	EventJumpEnded        = "movement.jump_ended"
	EventModifierInjected = "movement.modifier_injected"
	EventTeleported       = "movement.teleported"
)

// MovementEvents lists every movement event name.
var MovementEvents = []string{
	EventLanded,
	EventAirborne,
	EventJumpStarted,
	EventJumpEnded,
	EventModifierInjected,
	EventTeleported,
}

// TransitionEvent reports a ground or jump state change during a tick.
type TransitionEvent struct {
	Kind     string
	Actor    uint32
	Now      float64
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Purged   int
}

// ModifierEvent reports modifiers queued onto an actor.
type ModifierEvent struct {
	Actor     uint32
	Now       float64
	Source    string
	Count     int
	Direction mgl64.Vec3
}

func formatVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}
