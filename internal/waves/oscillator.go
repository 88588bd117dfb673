package waves

import (
	"math"

	"github.com/san-kum/emsim/internal/dynamo"
)

// Oscillator is a transverse wave travelling along x. The y and z
// displacements are independent sines which are then rotated about the x
// axis by TwistRate turns per unit length.
type Oscillator struct {
	YAmplitude float64     `yaml:"y_amplitude"`
	ZAmplitude float64     `yaml:"z_amplitude"`
	YPhase     float64     `yaml:"y_phase"`
	ZPhase     float64     `yaml:"z_phase"`
	WaveLength float64     `yaml:"wave_length"`
	TwistRate  float64     `yaml:"twist_rate"`
	Speed      float64     `yaml:"speed"`
	Offset     dynamo.Vec3 `yaml:"offset"`

	time    float64
	stopped bool
}

func NewOscillator() *Oscillator {
	return &Oscillator{ZAmplitude: 0.75, WaveLength: 0.5, Speed: 1.0}
}

// Update advances the clock unless it has been stopped.
func (o *Oscillator) Update(dt float64) {
	if !o.stopped {
		o.time += dt
	}
}

func (o *Oscillator) Stop()         { o.stopped = true }
func (o *Oscillator) Start()        { o.stopped = false }
func (o *Oscillator) Time() float64 { return o.time }

// YZ returns the transverse displacement at position x and time t.
func (o *Oscillator) YZ(x, t float64) (y, z float64) {
	phase := 2 * math.Pi * t * o.Speed / o.WaveLength
	k := 2 * math.Pi * x / o.WaveLength
	yOut := o.YAmplitude * math.Sin(k-phase-o.YPhase)
	zOut := o.ZAmplitude * math.Sin(k-phase-o.ZPhase)

	sin, cos := math.Sincos(x * o.TwistRate * 2 * math.Pi)
	return cos*yOut - sin*zOut, sin*yOut + cos*zOut
}

// At is the displaced point of the wave at x and time t.
func (o *Oscillator) At(x, t float64) dynamo.Vec3 {
	y, z := o.YZ(x, t)
	return o.Offset.Add(dynamo.V(x, y, z))
}

// Points samples the wave at xs for the current clock.
func (o *Oscillator) Points(xs []float64) []dynamo.Vec3 {
	out := make([]dynamo.Vec3, len(xs))
	for i, x := range xs {
		out[i] = o.At(x, o.time)
	}
	return out
}

// Samples returns evenly spaced x values in [lo, hi) at the given resolution.
func Samples(lo, hi, resolution float64) []float64 {
	if !(resolution > 0) || hi <= lo {
		return nil
	}
	n := int(math.Ceil((hi - lo) / resolution))
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = lo + float64(i)*resolution
	}
	return xs
}
