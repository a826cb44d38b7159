package physics

import "github.com/go-gl/mathgl/mgl64"

// VoxelSolver moves a capsule through a BlockStore with per-axis sweeps.
type VoxelSolver struct {
	store   BlockStore
	capsule Capsule
	spawn   mgl64.Vec3
	pos     mgl64.Vec3
	killY   float64
}

// NewVoxelSolver places the capsule at spawn. Falling below killY puts it
// back there.
func NewVoxelSolver(store BlockStore, capsule Capsule, spawn mgl64.Vec3, killY float64) *VoxelSolver {
	return &VoxelSolver{
		store:   store,
		capsule: capsule,
		spawn:   spawn,
		pos:     spawn,
		killY:   killY,
	}
}

func (s *VoxelSolver) Position() mgl64.Vec3 {
	return s.pos
}

func (s *VoxelSolver) Move(displacement mgl64.Vec3, dt float64) (mgl64.Vec3, bool) {
	applied, blocked := ResolveMovement(s.capsule.Bounds(s.pos), displacement, s.store)
	s.pos = s.pos.Add(applied)
	if s.pos[1] < s.killY {
		s.pos = s.spawn
		return mgl64.Vec3{}, true
	}
	if dt <= 0 {
		return mgl64.Vec3{}, blocked
	}
	return applied.Mul(1 / dt), blocked
}

// Teleport moves the capsule without collision checks.
func (s *VoxelSolver) Teleport(pos mgl64.Vec3) {
	s.pos = pos
}

// VoxelGroundSensor reports ground when the capsule box, lowered by Probe,
// overlaps a solid block.
type VoxelGroundSensor struct {
	Store   BlockStore
	Capsule Capsule
	Probe   float64
}

func (g VoxelGroundSensor) IsGrounded(pos mgl64.Vec3) bool {
	probe := g.Probe
	if probe <= 0 {
		probe = DefaultGroundProbe
	}
	box := g.Capsule.Bounds(pos).Offset(mgl64.Vec3{0, -probe, 0})
	return CollidesWithBlock(box, g.Store)
}
