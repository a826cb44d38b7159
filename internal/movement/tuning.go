package movement

import (
	"errors"
	"fmt"
)

// ErrInvalidTuning wraps every Tuning validation failure.
var ErrInvalidTuning = errors.New("movement: invalid tuning")

// Tuning holds the per-session movement parameters. It is immutable once a
// Controller has been built from it.
type Tuning struct {
	BaseSpeed        float64
	AirBaseSpeed     float64
	SprintMultiplier float64
	StrafeMultiplier float64

	Gravity         float64
	TerminalGravity float64

	JumpHeight     float64
	JumpTimeLength float64

	YRotationSpeed float64
	XRotationSpeed float64
	PitchLimit     float64

	LedgeMomentumScale    float64
	LedgeMomentumDuration float64
}

// DefaultTuning mirrors the stock actor setup.
func DefaultTuning() Tuning {
	return Tuning{
		BaseSpeed:             6,
		AirBaseSpeed:          4,
		SprintMultiplier:      1,
		StrafeMultiplier:      0.8,
		Gravity:               1,
		JumpHeight:            2,
		JumpTimeLength:        1,
		YRotationSpeed:        45,
		XRotationSpeed:        45,
		PitchLimit:            90,
		LedgeMomentumScale:    0.5,
		LedgeMomentumDuration: 1,
	}
}

// Validate rejects tunings the tick path cannot run with.
func (t Tuning) Validate() error {
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"base_speed", t.BaseSpeed},
		{"air_base_speed", t.AirBaseSpeed},
		{"gravity", t.Gravity},
		{"terminal_gravity", t.TerminalGravity},
		{"jump_height", t.JumpHeight},
		{"pitch_limit", t.PitchLimit},
		{"ledge_momentum_scale", t.LedgeMomentumScale},
	}
	for _, f := range nonNegative {
		if !finite(f.value) || f.value < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidTuning, f.name, f.value)
		}
	}
	if !finite(t.JumpTimeLength) || t.JumpTimeLength <= 0 {
		return fmt.Errorf("%w: jump_time_length must be > 0, got %v", ErrInvalidTuning, t.JumpTimeLength)
	}
	if !finite(t.LedgeMomentumDuration) || t.LedgeMomentumDuration <= 0 {
		return fmt.Errorf("%w: ledge_momentum_duration must be > 0, got %v", ErrInvalidTuning, t.LedgeMomentumDuration)
	}
	return nil
}
