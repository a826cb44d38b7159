package movement

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrientationApply(t *testing.T) {
	tun := DefaultTuning()
	o := NewOrientationController(tun, 0, 0)

	o.Apply(2, 0, 1)
	assert.InDelta(t, 90, o.Yaw(), 1e-9)

	o.Apply(0, 1, 1)
	assert.InDelta(t, -45, o.Pitch(), 1e-9)

	o.Apply(0, 10, 1)
	assert.InDelta(t, -90, o.Pitch(), 1e-9, "pitch clamps at the limit")
}

func TestOrientationRotate(t *testing.T) {
	tests := []struct {
		yaw  float64
		want mgl64.Vec3
	}{
		{0, mgl64.Vec3{0, 0, 1}},
		{90, mgl64.Vec3{1, 0, 0}},
		{180, mgl64.Vec3{0, 0, -1}},
		{-90, mgl64.Vec3{-1, 0, 0}},
	}
	for _, tt := range tests {
		o := NewOrientationController(DefaultTuning(), tt.yaw, 0)
		vecApprox(t, tt.want, o.Forward(), "forward")
	}
}

func TestTuningValidate(t *testing.T) {
	require.NoError(t, DefaultTuning().Validate())

	tests := []struct {
		name   string
		mutate func(*Tuning)
	}{
		{"negative speed", func(t *Tuning) { t.BaseSpeed = -1 }},
		{"zero jump length", func(t *Tuning) { t.JumpTimeLength = 0 }},
		{"zero ledge duration", func(t *Tuning) { t.LedgeMomentumDuration = 0 }},
		{"negative gravity", func(t *Tuning) { t.Gravity = -9.8 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tun := DefaultTuning()
			tt.mutate(&tun)
			assert.ErrorIs(t, tun.Validate(), ErrInvalidTuning)
		})
	}
}

func TestAnimationStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "walking", StateWalking.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "jumping", StateJumping.String())
	assert.Equal(t, "unknown", AnimationState(42).String())
}
