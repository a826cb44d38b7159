package movement

import "github.com/go-gl/mathgl/mgl64"

// JumpPhase is the jump state machine state.
type JumpPhase uint8

const (
	JumpIdle JumpPhase = iota
	JumpActive
)

func (p JumpPhase) String() string {
	if p == JumpActive {
		return "jumping"
	}
	return "idle"
}

// JumpController produces an upward contribution that decays linearly over a
// fixed duration.
type JumpController struct {
	height float64
	length float64
	timer  float64
	phase  JumpPhase
}

// NewJumpController returns an idle controller. length must be positive.
func NewJumpController(height, length float64) JumpController {
	return JumpController{height: height, length: length}
}

// TryStart begins a jump when grounded and not already jumping.
func (j *JumpController) TryStart(grounded bool) bool {
	if !grounded || j.phase == JumpActive {
		return false
	}
	j.phase = JumpActive
	j.timer = 0
	return true
}

// Jumping reports whether a jump is in progress.
func (j JumpController) Jumping() bool {
	return j.phase == JumpActive
}

// Phase returns the current state.
func (j JumpController) Phase() JumpPhase {
	return j.phase
}

// Timer returns the elapsed jump time.
func (j JumpController) Timer() float64 {
	return j.timer
}

// Step advances an active jump by dt and returns its contribution. ended is
// true on the tick the jump finishes.
func (j *JumpController) Step(dt float64) (contribution mgl64.Vec3, ended bool) {
	if j.phase != JumpActive {
		return mgl64.Vec3{}, false
	}
	j.timer += dt
	if j.timer > j.length {
		j.timer = j.length
	}
	contribution = up.Mul(j.height * (1 - j.timer/j.length))
	if j.timer >= j.length {
		j.phase = JumpIdle
		j.timer = 0
		return contribution, true
	}
	return contribution, false
}
