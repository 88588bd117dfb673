// Package waves computes the kinematics of propagating wavefronts: a train
// of expanding rings and a travelling, optionally twisted, sine wave.
package waves

import "math"

const minRadius = 1e-3

// Rings is a train of N rings expanding at GrowthRate, each released Spacing
// seconds after the previous one. Stroke width decays exponentially with
// each ring's age.
type Rings struct {
	N          int     `yaml:"n"`
	GrowthRate float64 `yaml:"growth_rate"`
	Spacing    float64 `yaml:"spacing"`
	DecayRate  float64 `yaml:"decay_rate"`
	StartWidth float64 `yaml:"start_width"`

	time float64
}

func NewRings() *Rings {
	return &Rings{N: 5, GrowthRate: 2.0, Spacing: 0.2, DecayRate: 0.1, StartWidth: 3}
}

// Update advances the clock; zero dt is ignored.
func (r *Rings) Update(dt float64) {
	if dt == 0 {
		return
	}
	r.time += dt
}

func (r *Rings) Time() float64 { return r.time }

func (r *Rings) age(i int) float64 {
	return math.Max(r.time-float64(i)*r.Spacing, 0)
}

// Radii returns the current radius of each ring, never below 1e-3.
func (r *Rings) Radii() []float64 {
	out := make([]float64, r.N)
	for i := range out {
		out[i] = math.Max(r.age(i)*r.GrowthRate, minRadius)
	}
	return out
}

// Widths returns exp(-DecayRate*age) for each ring.
func (r *Rings) Widths() []float64 {
	out := make([]float64, r.N)
	for i := range out {
		out[i] = math.Exp(-r.DecayRate * r.age(i))
	}
	return out
}
