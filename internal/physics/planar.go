package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

const (
	wallCategory uint = 1 << iota
	platformCategory
	actorCategory
)

const (
	maxSlideIterations = 4
	slideSkin          = 1e-4
)

var (
	sweepFilter   = cp.NewShapeFilter(cp.NO_GROUP, actorCategory, wallCategory)
	supportFilter = cp.NewShapeFilter(cp.NO_GROUP, actorCategory, platformCategory)
)

// Wall is a vertical barrier on the XZ plane between A and B.
type Wall struct {
	A, B      [2]float64
	Thickness float64
}

// Platform is a walkable footprint rectangle with a flat top at Top.
type Platform struct {
	Min, Max [2]float64
	Top      float64
}

// ArenaLayout is the static geometry of a planar arena.
type ArenaLayout struct {
	Walls      []Wall
	Platforms  []Platform
	StepHeight float64
	KillY      float64
}

// PlanarArena moves one actor through a chipmunk space laid out on the XZ
// plane (space Y is world Z). Walls block horizontally through a swept
// circle; height comes from platform tops under the footprint. Platforms
// taller than the step height are passed under.
type PlanarArena struct {
	space   *cp.Space
	capsule Capsule
	spawn   mgl64.Vec3
	pos     mgl64.Vec3
	step    float64
	killY   float64
	probe   float64
}

// NewPlanarArena builds the space for layout and places the actor at spawn.
func NewPlanarArena(layout ArenaLayout, capsule Capsule, spawn mgl64.Vec3, probe float64) *PlanarArena {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})

	for _, w := range layout.Walls {
		shape := space.AddShape(cp.NewSegment(space.StaticBody,
			cp.Vector{X: w.A[0], Y: w.A[1]}, cp.Vector{X: w.B[0], Y: w.B[1]}, w.Thickness/2))
		shape.SetFriction(0)
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, wallCategory, cp.ALL_CATEGORIES))
	}
	for _, p := range layout.Platforms {
		shape := space.AddShape(cp.NewBox2(space.StaticBody, cp.BB{
			L: math.Min(p.Min[0], p.Max[0]),
			B: math.Min(p.Min[1], p.Max[1]),
			R: math.Max(p.Min[0], p.Max[0]),
			T: math.Max(p.Min[1], p.Max[1]),
		}, 0))
		shape.SetSensor(true)
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, platformCategory, actorCategory))
		shape.UserData = p.Top
	}

	stepHeight := layout.StepHeight
	if stepHeight <= 0 {
		stepHeight = DefaultStepHeight
	}
	if probe <= 0 {
		probe = DefaultGroundProbe
	}
	return &PlanarArena{
		space:   space,
		capsule: capsule,
		spawn:   spawn,
		pos:     spawn,
		step:    stepHeight,
		killY:   layout.KillY,
		probe:   probe,
	}
}

func (a *PlanarArena) Position() mgl64.Vec3 {
	return a.pos
}

func (a *PlanarArena) Move(displacement mgl64.Vec3, dt float64) (mgl64.Vec3, bool) {
	if dt <= 0 {
		return mgl64.Vec3{}, false
	}
	before := a.pos

	planar, blocked := a.sweep(
		cp.Vector{X: before[0], Y: before[2]},
		cp.Vector{X: displacement[0], Y: displacement[2]},
	)
	after := mgl64.Vec3{planar.X, before[1] + displacement[1], planar.Y}

	if top, ok := a.support(after, before[1]+a.step); ok && after[1] < top {
		after[1] = top
		blocked = true
	}
	if after[1] < a.killY {
		a.pos = a.spawn
		return mgl64.Vec3{}, true
	}
	a.pos = after

	return after.Sub(before).Mul(1 / dt), blocked
}

// IsGrounded reports a platform top within the probe distance below pos.
func (a *PlanarArena) IsGrounded(pos mgl64.Vec3) bool {
	top, ok := a.support(pos, pos[1]+CollisionAxisTolerance)
	return ok && pos[1]-top <= a.probe
}

// Teleport places the actor at pos without sweeping.
func (a *PlanarArena) Teleport(pos mgl64.Vec3) {
	a.pos = pos
}

// sweep slides the actor circle along delta, projecting the remainder onto
// each wall it meets.
func (a *PlanarArena) sweep(from, delta cp.Vector) (cp.Vector, bool) {
	pos, remaining := from, delta
	blocked := false
	for i := 0; i < maxSlideIterations; i++ {
		if remaining.LengthSq() <= CollisionAxisTolerance*CollisionAxisTolerance {
			break
		}
		hit := a.space.SegmentQueryFirst(pos, pos.Add(remaining), a.capsule.Radius, sweepFilter)
		if hit.Shape == nil {
			return pos.Add(remaining), blocked
		}
		blocked = true
		travel := remaining.Mult(hit.Alpha)
		pos = pos.Add(travel).Add(hit.Normal.Mult(slideSkin))
		rest := remaining.Sub(travel)
		remaining = rest.Sub(hit.Normal.Mult(rest.Dot(hit.Normal)))
	}
	return pos, blocked
}

// support returns the highest platform top at or below ceiling under the
// actor footprint at pos.
func (a *PlanarArena) support(pos mgl64.Vec3, ceiling float64) (float64, bool) {
	bb := cp.NewBBForCircle(cp.Vector{X: pos[0], Y: pos[2]}, a.capsule.Radius)

	best, found := math.Inf(-1), false
	a.space.BBQuery(bb, supportFilter, func(shape *cp.Shape, _ interface{}) {
		top, ok := shape.UserData.(float64)
		if !ok || top > ceiling {
			return
		}
		if top > best {
			best, found = top, true
		}
	}, nil)
	return best, found
}
