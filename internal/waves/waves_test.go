package waves

import (
	"math"
	"testing"
)

func TestRingsGrowAndFade(t *testing.T) {
	r := NewRings()
	for _, rad := range r.Radii() {
		if rad != minRadius {
			t.Fatalf("unstarted ring radius = %v", rad)
		}
	}

	r.Update(0)
	if r.Time() != 0 {
		t.Error("zero dt advanced the clock")
	}

	r.Update(0.5)
	radii := r.Radii()
	widths := r.Widths()
	if math.Abs(radii[0]-1.0) > 1e-12 {
		t.Errorf("first ring radius = %v, want 1.0", radii[0])
	}
	if math.Abs(radii[1]-0.6) > 1e-12 {
		t.Errorf("second ring radius = %v, want 0.6", radii[1])
	}
	if radii[3] != minRadius || radii[4] != minRadius {
		t.Errorf("late rings should not have started: %v", radii)
	}
	if math.Abs(widths[0]-math.Exp(-0.05)) > 1e-12 {
		t.Errorf("first ring width = %v", widths[0])
	}
	if widths[4] != 1 {
		t.Errorf("unstarted ring width = %v, want 1", widths[4])
	}
}

func TestOscillatorTravels(t *testing.T) {
	o := NewOscillator()
	x := 0.125
	y0, z0 := o.YZ(x, 0)
	if y0 != 0 || math.Abs(z0-0.75) > 1e-12 {
		t.Fatalf("YZ(%v, 0) = %v, %v", x, y0, z0)
	}

	// one period later the wave looks the same
	period := o.WaveLength / o.Speed
	_, z1 := o.YZ(x, period)
	if math.Abs(z1-z0) > 1e-9 {
		t.Errorf("z after one period = %v, want %v", z1, z0)
	}
}

func TestOscillatorTwist(t *testing.T) {
	o := &Oscillator{ZAmplitude: 1, WaveLength: 1, Speed: 1, TwistRate: 1}
	// x = 0.25: twist is a quarter turn, so z displacement rotates into -y
	y, z := o.YZ(0.25, 0)
	if math.Abs(y+1) > 1e-12 || math.Abs(z) > 1e-12 {
		t.Errorf("twisted YZ = %v, %v", y, z)
	}
}

func TestOscillatorClock(t *testing.T) {
	o := NewOscillator()
	o.Update(0.1)
	o.Stop()
	o.Update(0.1)
	if math.Abs(o.Time()-0.1) > 1e-12 {
		t.Errorf("stopped clock advanced: %v", o.Time())
	}
	o.Start()
	o.Update(0.1)
	if math.Abs(o.Time()-0.2) > 1e-12 {
		t.Errorf("clock = %v", o.Time())
	}

	pts := o.Points(Samples(0, 1, 0.25))
	if len(pts) != 4 || pts[2].X != 0.5 {
		t.Errorf("points = %v", pts)
	}
}
