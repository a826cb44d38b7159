package movement

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// inputDeadzone matches the magnitude below which a move axis counts as idle.
	inputDeadzone = 1e-5
	// axisEpsilon absorbs rounding from the yaw rotation when testing for a
	// world-axis-aligned move direction.
	axisEpsilon = 1e-9
)

// MoveSolver executes a world-space displacement against collision geometry.
type MoveSolver interface {
	Position() mgl64.Vec3
	// Move applies displacement over a tick of length dt and returns the
	// resulting velocity. stopped reports that collision blocked the move.
	Move(displacement mgl64.Vec3, dt float64) (velocity mgl64.Vec3, stopped bool)
}

// GroundSensor reports walkable-surface contact at a position.
type GroundSensor interface {
	IsGrounded(position mgl64.Vec3) bool
}

// Input is one tick's worth of player intent.
type Input struct {
	MoveX, MoveY float64
	JumpPressed  bool
	LookX, LookY float64
}

// Clock carries the simulation time for a tick.
type Clock struct {
	Now float64
	Dt  float64
}

// Result describes what a tick did.
type Result struct {
	Displacement mgl64.Vec3
	Velocity     mgl64.Vec3
	Grounded     bool
	Stopped      bool
	Blocked      bool
	State        AnimationState

	Landed      bool
	LeftGround  bool
	JumpStarted bool
	JumpEnded   bool
	Purged      int
}

// Snapshot is a read-only view of controller state.
type Snapshot struct {
	Position       mgl64.Vec3
	Velocity       mgl64.Vec3
	Yaw, Pitch     float64
	AppliedGravity float64
	Jumping        bool
	JumpTimer      float64
	Falling        bool
	Grounded       bool
	Stopped        bool
	Modifiers      int
	State          AnimationState
}

// Controller integrates input, jump, gravity and modifiers into one
// displacement per tick and hands it to the move solver. It is not safe for
// concurrent Tick calls; Enqueue may be called from any goroutine.
type Controller struct {
	tuning Tuning
	solver MoveSolver
	sensor GroundSensor

	gravity     GravityModel
	jump        JumpController
	orientation OrientationController
	mods        ModifierSet

	grounded     bool
	falling      bool
	stopped      bool
	lastVelocity mgl64.Vec3
	state        AnimationState

	mu      sync.Mutex
	pending []Modifier
}

// NewController builds a controller for an actor facing yaw degrees. The
// tuning is validated here so the tick path can trust it.
func NewController(t Tuning, solver MoveSolver, sensor GroundSensor, yaw float64) (*Controller, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		tuning:      t,
		solver:      solver,
		sensor:      sensor,
		gravity:     NewGravityModel(t.Gravity, t.TerminalGravity),
		jump:        NewJumpController(t.JumpHeight, t.JumpTimeLength),
		orientation: NewOrientationController(t, yaw, 0),
		stopped:     true,
	}
	c.gravity.Spawn()
	c.grounded = sensor.IsGrounded(solver.Position())
	return c, nil
}

// Enqueue schedules m to join the modifier set at the start of the next tick.
func (c *Controller) Enqueue(m Modifier) {
	c.mu.Lock()
	c.pending = append(c.pending, m)
	c.mu.Unlock()
}

// Tick runs one integration pass. A tick with Dt <= 0 changes nothing.
func (c *Controller) Tick(in Input, clock Clock) Result {
	if clock.Dt <= 0 {
		return Result{
			Velocity: c.lastVelocity,
			Grounded: c.grounded,
			Stopped:  c.stopped,
			State:    c.state,
		}
	}
	pending := c.peekPending()

	now, dt := clock.Now, clock.Dt
	grounded := c.sensor.IsGrounded(c.solver.Position())

	gravity := c.gravity
	jump := c.jump
	orientation := c.orientation
	falling := c.falling
	stopped := c.stopped
	state := c.state
	mods := c.mods.Clone()
	for _, m := range pending {
		mods.Add(m)
	}
	res := Result{Grounded: grounded}

	intent, moving, fullAxis := c.intent(in, grounded)
	if moving && fullAxis {
		stopped = false
	}
	if in.JumpPressed && jump.TryStart(grounded) {
		gravity.Reset()
		res.JumpStarted = true
	}
	orientation.Apply(in.LookX, in.LookY, dt)

	if !grounded && !falling {
		falling = true
		seed := c.lastVelocity.Mul(c.tuning.LedgeMomentumScale)
		mods.Add(Modifier{
			Direction:        seed,
			CurrentVector:    seed,
			StartTime:        now,
			RemoveTime:       now + c.tuning.LedgeMomentumDuration,
			FadesOut:         true,
			RemoveOnGrounded: true,
		})
		res.LeftGround = true
	}

	jumpVec, ended := jump.Step(dt)
	if ended {
		gravity.Reset()
		res.JumpEnded = true
	}

	var gravityVec mgl64.Vec3
	if !jump.Jumping() {
		gravityVec = gravity.DownwardContribution()
		if !grounded {
			gravity.Accumulate(dt)
		}
	}

	modVec := mods.ApplyAndPrune(now)
	if mods.AnyRequestsGravityReset() {
		gravity.Reset()
		gravityVec = mgl64.Vec3{}
	}

	move := intent.Add(jumpVec).Add(gravityVec).Add(modVec)
	res.Displacement = move.Mul(dt)
	velocity, blocked := c.solver.Move(res.Displacement, dt)
	res.Velocity = velocity
	res.Blocked = blocked
	if velocity == (mgl64.Vec3{}) {
		stopped = true
	}

	if grounded {
		res.Landed = !c.grounded
		if !res.JumpStarted {
			gravity.Land()
		}
		res.Purged = mods.PurgeOnGrounded()
		falling = false
		if mods.AnyRequestsGravityReset() {
			gravity.Reset()
		}
	}

	switch {
	case jump.Jumping():
		state = StateJumping
	case moving:
		state = StateRunning
	case grounded:
		state = StateIdle
	}

	c.mods = mods
	c.dropPending(len(pending))
	c.gravity = gravity
	c.jump = jump
	c.orientation = orientation
	c.falling = falling
	c.stopped = stopped
	c.state = state
	c.grounded = grounded
	c.lastVelocity = velocity

	res.Stopped = stopped
	res.State = state
	return res
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Position:       c.solver.Position(),
		Velocity:       c.lastVelocity,
		Yaw:            c.orientation.Yaw(),
		Pitch:          c.orientation.Pitch(),
		AppliedGravity: c.gravity.Applied(),
		Jumping:        c.jump.Jumping(),
		JumpTimer:      c.jump.Timer(),
		Falling:        c.falling,
		Grounded:       c.grounded,
		Stopped:        c.stopped,
		Modifiers:      c.mods.Len(),
		State:          c.state,
	}
}

// Modifiers returns a copy of the active modifier set.
func (c *Controller) Modifiers() []Modifier {
	return c.mods.Modifiers()
}

// peekPending copies the queued modifiers without consuming them. A tick
// that does not complete leaves them queued.
func (c *Controller) peekPending() []Modifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Modifier(nil), c.pending...)
}

// dropPending removes the first n queued modifiers. Enqueue only appends, so
// those are the ones the tick consumed.
func (c *Controller) dropPending(n int) {
	if n == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending[:0:0], c.pending[n:]...)
}

// intent converts the move axis into a world-space horizontal velocity.
func (c *Controller) intent(in Input, grounded bool) (v mgl64.Vec3, moving, fullAxis bool) {
	local := mgl64.Vec3{in.MoveX, 0, in.MoveY}
	mag := local.Len()
	if mag <= inputDeadzone {
		return mgl64.Vec3{}, false, false
	}
	speed := c.tuning.AirBaseSpeed
	if grounded {
		speed = c.tuning.BaseSpeed
	}
	dir := c.orientation.Rotate(local.Mul(1 / mag))
	fullAxis = math.Abs(dir.X()) >= 1-axisEpsilon || math.Abs(dir.Z()) >= 1-axisEpsilon
	return dir.Mul(speed * c.speedMultiplier()), true, fullAxis
}

// speedMultiplier is 1 for every gait. Tuning.SprintMultiplier is carried
// but not applied.
func (c *Controller) speedMultiplier() float64 {
	return 1
}
