// Package integrators advances a body's velocity and position under an
// applied force.
package integrators

import (
	"fmt"

	"github.com/san-kum/emsim/internal/dynamo"
)

// Body is the mutable state an integrator needs.
type Body interface {
	Center() dynamo.Vec3
	Velocity() dynamo.Vec3
	SetVelocity(v dynamo.Vec3)
	Shift(d dynamo.Vec3)
	Mass() float64
}

// Force evaluates the force on a body at p.
type Force func(p dynamo.Vec3) (dynamo.Vec3, error)

// Pure adapts a force that cannot fail.
func Pure(f dynamo.ForceFunc) Force {
	return func(p dynamo.Vec3) (dynamo.Vec3, error) { return f(p), nil }
}

// Stepper advances a body over one frame of length dt.
type Stepper interface {
	Advance(b Body, force Force, dt float64) error
	Substeps() int
}

// DefaultSubsteps is the number of Euler increments per frame.
const DefaultSubsteps = 10

// Euler is a sub-stepped semi-implicit Euler integrator: each increment
// re-evaluates the force at the current center, kicks the velocity and then
// drifts the position with the updated velocity.
type Euler struct {
	steps int
}

func NewEuler(steps int) (*Euler, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: got %d", dynamo.ErrInvalidSubsteps, steps)
	}
	return &Euler{steps: steps}, nil
}

func (e *Euler) Substeps() int { return e.steps }

// Advance is a no-op when dt is zero.
func (e *Euler) Advance(b Body, force Force, dt float64) error {
	if dt == 0 {
		return nil
	}
	h := dt / float64(e.steps)
	for i := 0; i < e.steps; i++ {
		f, err := force(b.Center())
		if err != nil {
			return err
		}
		v := b.Velocity().Add(f.Scale(h / b.Mass()))
		b.SetVelocity(v)
		b.Shift(v.Scale(h))
	}
	return nil
}
