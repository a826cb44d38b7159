package debug

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

const DefaultTravelInterval = 0.2

// TravelSample is one distance reading.
type TravelSample struct {
	Distance   float64
	Cumulative float64
	Speed      float64
}

// TravelMeter samples the distance moved every interval of simulated time.
// The timer restarts from zero after each sample and speed is measured
// against the nominal interval.
type TravelMeter struct {
	interval   float64
	timer      float64
	last       mgl64.Vec3
	started    bool
	cumulative float64
	latest     TravelSample

	LogDistance bool
	LogSpeed    bool
}

func NewTravelMeter(interval float64) *TravelMeter {
	if interval <= 0 {
		interval = DefaultTravelInterval
	}
	return &TravelMeter{interval: interval}
}

// Observe advances the meter by dt with the actor at pos. It returns the
// sample taken on this call, if any.
func (m *TravelMeter) Observe(dt float64, pos mgl64.Vec3) (TravelSample, bool) {
	if !m.started {
		m.last = pos
		m.started = true
	}
	if dt <= 0 {
		return TravelSample{}, false
	}
	m.timer += dt
	if m.timer < m.interval {
		return TravelSample{}, false
	}
	m.timer = 0

	dist := pos.Sub(m.last).Len()
	m.cumulative += dist
	m.last = pos
	m.latest = TravelSample{
		Distance:   dist,
		Cumulative: m.cumulative,
		Speed:      dist / m.interval,
	}
	if m.LogDistance {
		slog.Info("Distance travelled", "cumulative", m.latest.Cumulative)
	}
	if m.LogSpeed {
		slog.Info("Speed", "speed", m.latest.Speed)
	}
	return m.latest, true
}

func (m *TravelMeter) Latest() TravelSample { return m.latest }

// Reset starts over from pos.
func (m *TravelMeter) Reset(pos mgl64.Vec3) {
	*m = TravelMeter{interval: m.interval, last: pos, started: true, LogDistance: m.LogDistance, LogSpeed: m.LogSpeed}
}
