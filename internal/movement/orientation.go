package movement

import "github.com/go-gl/mathgl/mgl64"

// OrientationController turns mouse deltas into yaw and pitch, both in degrees.
type OrientationController struct {
	yaw, pitch     float64
	ySpeed, xSpeed float64
	pitchLimit     float64
}

// NewOrientationController starts at the given yaw and pitch.
func NewOrientationController(t Tuning, yaw, pitch float64) OrientationController {
	o := OrientationController{
		yaw:        yaw,
		ySpeed:     t.YRotationSpeed,
		xSpeed:     t.XRotationSpeed,
		pitchLimit: t.PitchLimit,
	}
	o.pitch = o.clamp(pitch)
	return o
}

// Apply integrates one tick of look input.
func (o *OrientationController) Apply(lookX, lookY, dt float64) {
	o.yaw += lookX * o.ySpeed * dt
	o.pitch = o.clamp(o.pitch - lookY*o.xSpeed*dt)
}

func (o OrientationController) Yaw() float64   { return o.yaw }
func (o OrientationController) Pitch() float64 { return o.pitch }

// Rotate maps a local direction into world space using the current yaw.
func (o OrientationController) Rotate(local mgl64.Vec3) mgl64.Vec3 {
	if o.yaw == 0 {
		return local
	}
	return mgl64.Rotate3DY(mgl64.DegToRad(o.yaw)).Mul3x1(local)
}

// Forward is the world-space facing direction on the horizontal plane.
func (o OrientationController) Forward() mgl64.Vec3 {
	return o.Rotate(mgl64.Vec3{0, 0, 1})
}

func (o OrientationController) clamp(pitch float64) float64 {
	if o.pitchLimit <= 0 {
		return pitch
	}
	return mgl64.Clamp(pitch, -o.pitchLimit, o.pitchLimit)
}
