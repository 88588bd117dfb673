// Package metrics summarises a run: per-run observers that reduce particle
// snapshots to a single number, and a Prometheus collector for live counters.
package metrics

import (
	"math"

	"github.com/san-kum/emsim/internal/forces"
	"github.com/san-kum/emsim/internal/particle"
)

// KineticEnergy averages the total kinetic energy over observed frames.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
	last    float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(t float64, states []particle.State) {
	e.last = TotalKinetic(states)
	e.total += e.last
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Last is the kinetic energy of the most recent frame.
func (e *KineticEnergy) Last() float64 { return e.last }

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.last = 0
	e.samples = 0
}

// TotalKinetic sums ½mv² over states.
func TotalKinetic(states []particle.State) float64 {
	ke := 0.0
	for _, s := range states {
		ke += 0.5 * s.Mass * s.Velocity.Dot(s.Velocity)
	}
	return ke
}

// LarmorPower tracks the peak radiated power q²a²/(6π ε0 c³) summed over
// particles, in the same units the Lorentz model uses.
type LarmorPower struct {
	name     string
	c        float64
	epsilon0 float64
	peak     float64
}

func NewLarmorPower(p forces.Params) *LarmorPower {
	return &LarmorPower{name: "larmor_peak", c: p.C, epsilon0: p.Epsilon0}
}

func (l *LarmorPower) Name() string { return l.name }

func (l *LarmorPower) Observe(t float64, states []particle.State) {
	l.peak = math.Max(l.peak, Larmor(states, l.c, l.epsilon0))
}

func (l *LarmorPower) Value() float64 { return l.peak }

func (l *LarmorPower) Reset() { l.peak = 0 }

func Larmor(states []particle.State, c, epsilon0 float64) float64 {
	k := 6 * math.Pi * epsilon0 * c * c * c
	p := 0.0
	for _, s := range states {
		p += s.Charge * s.Charge * s.Acceleration.Dot(s.Acceleration) / k
	}
	return p
}

// PeakSpeed reports the fastest speed any particle reached.
type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (s *PeakSpeed) Name() string { return s.name }

func (s *PeakSpeed) Observe(t float64, states []particle.State) {
	for _, st := range states {
		s.peak = math.Max(s.peak, st.Velocity.Norm())
	}
}

func (s *PeakSpeed) Value() float64 { return s.peak }

func (s *PeakSpeed) Reset() { s.peak = 0 }
