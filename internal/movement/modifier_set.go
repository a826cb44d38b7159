package movement

import "github.com/go-gl/mathgl/mgl64"

// ModifierSet owns the modifiers acting on one actor. Iteration runs from the
// most recently added entry to the oldest so removal can compact in place.
type ModifierSet struct {
	mods []Modifier
}

// Add appends m. No deduplication is performed.
func (s *ModifierSet) Add(m Modifier) {
	s.mods = append(s.mods, m)
}

// Clone returns an independent copy of the set.
func (s *ModifierSet) Clone() ModifierSet {
	return ModifierSet{mods: s.Modifiers()}
}

// Len returns the number of held modifiers, scheduled ones included.
func (s *ModifierSet) Len() int {
	return len(s.mods)
}

// Modifiers returns a copy of the held modifiers in insertion order.
func (s *ModifierSet) Modifiers() []Modifier {
	return append([]Modifier(nil), s.mods...)
}

// ApplyAndPrune sums the contributions of every active modifier at now and
// drops the ones whose window has closed. Modifiers that have not started yet
// are kept and contribute nothing.
func (s *ModifierSet) ApplyAndPrune(now float64) mgl64.Vec3 {
	var sum mgl64.Vec3
	for i := len(s.mods) - 1; i >= 0; i-- {
		m := s.mods[i]
		if now < m.StartTime {
			continue
		}
		if m.Expired(now) {
			s.removeAt(i)
			continue
		}
		sum = sum.Add(m.Contribution(now))
	}
	return sum
}

// PurgeOnGrounded removes every modifier flagged RemoveOnGrounded, whatever
// its window, and reports how many were removed.
func (s *ModifierSet) PurgeOnGrounded() int {
	removed := 0
	for i := len(s.mods) - 1; i >= 0; i-- {
		if s.mods[i].RemoveOnGrounded {
			s.removeAt(i)
			removed++
		}
	}
	return removed
}

// AnyRequestsGravityReset reports whether any held modifier resets gravity.
// The check is presence based: a modifier scheduled for the future counts.
func (s *ModifierSet) AnyRequestsGravityReset() bool {
	for i := len(s.mods) - 1; i >= 0; i-- {
		if s.mods[i].ResetsGravity {
			return true
		}
	}
	return false
}

func (s *ModifierSet) removeAt(i int) {
	copy(s.mods[i:], s.mods[i+1:])
	s.mods[len(s.mods)-1] = Modifier{}
	s.mods = s.mods[:len(s.mods)-1]
}
