package scenario

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Versifine/momentum/internal/body"
)

var ErrInvalidScenario = errors.New("scenario: invalid")

// Scenario is a scripted input timeline plus timed effect triggers.
type Scenario struct {
	Duration float64   `yaml:"duration"`
	Steps    []Step    `yaml:"steps"`
	Effects  []Trigger `yaml:"effects"`
}

// Step holds input over [From, To). A nil field leaves that channel to
// earlier steps; among overlapping steps the later one wins per channel.
// Actor 0 targets every actor.
type Step struct {
	From  float64     `yaml:"from"`
	To    float64     `yaml:"to"`
	Actor uint32      `yaml:"actor"`
	Move  *[2]float64 `yaml:"move"`
	Look  *[2]float64 `yaml:"look"`
	Jump  *bool       `yaml:"jump"`
}

// Trigger applies a named effect at At. Actor 0 targets every actor.
type Trigger struct {
	At     float64 `yaml:"at"`
	Effect string  `yaml:"effect"`
	Actor  uint32  `yaml:"actor"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: load %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", path, err)
	}
	return sc, nil
}

func Parse(data []byte) (*Scenario, error) {
	sc := &Scenario{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Scenario) Validate() error {
	if !finite(s.Duration) || s.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidScenario, s.Duration)
	}
	for i, st := range s.Steps {
		if !finite(st.From) || !finite(st.To) || st.To <= st.From {
			return fmt.Errorf("%w: steps[%d] window [%v, %v) is empty", ErrInvalidScenario, i, st.From, st.To)
		}
	}
	for i, tr := range s.Effects {
		if tr.Effect == "" {
			return fmt.Errorf("%w: effects[%d] names no effect", ErrInvalidScenario, i)
		}
		if !finite(tr.At) || tr.At < 0 || tr.At >= s.Duration {
			return fmt.Errorf("%w: effects[%d] at %v is outside [0, %v)", ErrInvalidScenario, i, tr.At, s.Duration)
		}
	}
	return nil
}

// InputAt merges every step active at now for actor. JumpPressed reports the
// held state; edge detection is left to the caller.
func (s *Scenario) InputAt(actor body.ActorID, now float64) body.InputState {
	var out body.InputState
	for _, st := range s.Steps {
		if now < st.From || now >= st.To {
			continue
		}
		if st.Actor != 0 && body.ActorID(st.Actor) != actor {
			continue
		}
		if st.Move != nil {
			out.MoveX, out.MoveY = st.Move[0], st.Move[1]
		}
		if st.Look != nil {
			out.LookX, out.LookY = st.Look[0], st.Look[1]
		}
		if st.Jump != nil {
			out.JumpPressed = *st.Jump
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
