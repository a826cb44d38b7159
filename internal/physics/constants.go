package physics

const (
	DefaultCapsuleRadius = 0.5
	DefaultCapsuleHeight = 2.0

	DefaultGroundProbe = 0.05
	DefaultStepHeight  = 0.3
	DefaultKillY       = -50.0

	CollisionAxisTolerance = 1e-9
)
