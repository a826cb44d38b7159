package movement

// AnimationState tags what the actor is doing for presentation layers. The
// controller never reads it back.
type AnimationState uint8

const (
	StateIdle AnimationState = iota
	// StateWalking is reserved for a walk gait; the controller does not emit it yet.
	StateWalking
	StateRunning
	StateJumping
)

func (s AnimationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateRunning:
		return "running"
	case StateJumping:
		return "jumping"
	default:
		return "unknown"
	}
}
