package integrators

import (
	"fmt"

	"github.com/san-kum/emsim/internal/dynamo"
)

// Leapfrog is a kick-drift-kick integrator with the same sub-stepping as
// Euler, at two force evaluations per increment.
type Leapfrog struct {
	steps int
}

func NewLeapfrog(steps int) (*Leapfrog, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: got %d", dynamo.ErrInvalidSubsteps, steps)
	}
	return &Leapfrog{steps: steps}, nil
}

func (l *Leapfrog) Substeps() int { return l.steps }

func (l *Leapfrog) Advance(b Body, force Force, dt float64) error {
	if dt == 0 {
		return nil
	}
	h := dt / float64(l.steps)
	halfH := 0.5 * h
	for i := 0; i < l.steps; i++ {
		f, err := force(b.Center())
		if err != nil {
			return err
		}
		vHalf := b.Velocity().Add(f.Scale(halfH / b.Mass()))
		b.Shift(vHalf.Scale(h))

		fNew, err := force(b.Center())
		if err != nil {
			return err
		}
		b.SetVelocity(vHalf.Add(fNew.Scale(halfH / b.Mass())))
	}
	return nil
}
