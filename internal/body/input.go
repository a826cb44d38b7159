package body

import (
	"math"

	"github.com/Versifine/momentum/internal/movement"
)

// InputState is the single action format shared by scenarios and debug
// controls. It aliases movement.Input to avoid field divergence.
type InputState = movement.Input

// normalizeMovementInput clamps the move axis into [-1, 1] and drops
// non-finite values.
func normalizeMovementInput(input InputState) InputState {
	input.MoveX = clampAxis(input.MoveX)
	input.MoveY = clampAxis(input.MoveY)
	if !isFinite(input.LookX) {
		input.LookX = 0
	}
	if !isFinite(input.LookY) {
		input.LookY = 0
	}
	return input
}

func clampAxis(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
