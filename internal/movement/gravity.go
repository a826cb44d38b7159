package movement

import "github.com/go-gl/mathgl/mgl64"

var (
	up   = mgl64.Vec3{0, 1, 0}
	down = mgl64.Vec3{0, -1, 0}
)

// GravityModel tracks the gravity magnitude currently pulling the actor down.
type GravityModel struct {
	gravity  float64
	terminal float64
	applied  float64
}

// NewGravityModel returns a model for gravity g. A positive terminal caps
// accumulation; zero leaves it unbounded.
func NewGravityModel(g, terminal float64) GravityModel {
	return GravityModel{gravity: g, terminal: terminal}
}

// Spawn puts the model in its initial state.
func (g *GravityModel) Spawn() {
	g.applied = g.gravity / 2
}

// Accumulate grows applied gravity for an airborne tick of length dt.
func (g *GravityModel) Accumulate(dt float64) {
	g.applied += g.gravity * dt
	if g.terminal > 0 && g.applied > g.terminal {
		g.applied = g.terminal
	}
}

// Land resets applied gravity for a grounded tick.
func (g *GravityModel) Land() {
	g.applied = g.gravity / 3
}

// Reset zeroes applied gravity.
func (g *GravityModel) Reset() {
	g.applied = 0
}

// Applied returns the current magnitude.
func (g GravityModel) Applied() float64 {
	return g.applied
}

// DownwardContribution is the gravity vector added to the move this tick.
func (g GravityModel) DownwardContribution() mgl64.Vec3 {
	return down.Mul(g.applied)
}
