package particle

import (
	"math"

	"github.com/san-kum/emsim/internal/dynamo"
)

// Motion prescribes a particle's center as a function of its clock.
type Motion interface {
	Position(t float64) dynamo.Vec3
}

// Oscillation moves along Direction as Center + Amplitude*sin(2πFt)*Direction.
type Oscillation struct {
	Center    dynamo.Vec3 `yaml:"center"`
	Direction dynamo.Vec3 `yaml:"direction"`
	Amplitude float64     `yaml:"amplitude"`
	Frequency float64     `yaml:"frequency"`
}

func (o Oscillation) Position(t float64) dynamo.Vec3 {
	s := o.Amplitude * math.Sin(2*math.Pi*o.Frequency*t)
	return o.Center.Add(o.Direction.Scale(s))
}

// MotionFunc adapts a plain function.
type MotionFunc func(t float64) dynamo.Vec3

func (f MotionFunc) Position(t float64) dynamo.Vec3 { return f(t) }
