package integrators

import (
	"fmt"

	"github.com/san-kum/emsim/internal/dynamo"
)

// RK4 integrates x'' = F(x)/m as the first-order system (x, v) with the
// classic four-stage Runge-Kutta scheme. Force must depend on position only.
type RK4 struct {
	steps int
}

func NewRK4(steps int) (*RK4, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: got %d", dynamo.ErrInvalidSubsteps, steps)
	}
	return &RK4{steps: steps}, nil
}

func (r *RK4) Substeps() int { return r.steps }

func (r *RK4) Advance(b Body, force Force, dt float64) error {
	if dt == 0 {
		return nil
	}
	h := dt / float64(r.steps)
	invM := 1 / b.Mass()

	accel := func(x dynamo.Vec3) (dynamo.Vec3, error) {
		f, err := force(x)
		return f.Scale(invM), err
	}

	for i := 0; i < r.steps; i++ {
		x, v := b.Center(), b.Velocity()

		a1, err := accel(x)
		if err != nil {
			return err
		}
		v2 := v.Add(a1.Scale(h / 2))
		a2, err := accel(x.Add(v.Scale(h / 2)))
		if err != nil {
			return err
		}
		v3 := v.Add(a2.Scale(h / 2))
		a3, err := accel(x.Add(v2.Scale(h / 2)))
		if err != nil {
			return err
		}
		v4 := v.Add(a3.Scale(h))
		a4, err := accel(x.Add(v3.Scale(h)))
		if err != nil {
			return err
		}

		h6 := h / 6
		dx := v.Add(v2.Scale(2)).Add(v3.Scale(2)).Add(v4).Scale(h6)
		dv := a1.Add(a2.Scale(2)).Add(a3.Scale(2)).Add(a4).Scale(h6)
		b.Shift(dx)
		b.SetVelocity(v.Add(dv))
	}
	return nil
}
