package particle

import (
	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/forces"
	"github.com/san-kum/emsim/internal/integrators"
)

// VectorField is anything that can be sampled at a batch of points.
type VectorField interface {
	At(points []dynamo.Vec3) ([]dynamo.Vec3, error)
}

// AddForce attaches a force; all attached forces are summed and integrated
// together each frame.
func (p *Particle) AddForce(f integrators.Force) *Particle {
	p.forces = append(p.forces, f)
	return p
}

// AddSpringForce pulls the particle toward center with stiffness k.
func (p *Particle) AddSpringForce(k float64, center dynamo.Vec3) *Particle {
	return p.AddForce(integrators.Pure(forces.Spring(k, center)))
}

// AddAnchoredSpring pulls the particle toward where it is now.
func (p *Particle) AddAnchoredSpring(k float64) *Particle {
	return p.AddSpringForce(k, p.center)
}

// AddFieldForce pushes the particle with charge times the field at its center.
func (p *Particle) AddFieldForce(field VectorField) *Particle {
	return p.AddForce(func(at dynamo.Vec3) (dynamo.Vec3, error) {
		v, err := field.At([]dynamo.Vec3{at})
		if err != nil {
			return dynamo.Zero, err
		}
		return v[0].Scale(p.charge), nil
	})
}

// FixX pins the x coordinate to its current value after every update.
func (p *Particle) FixX() *Particle {
	x := p.center.X
	p.constraints = append(p.constraints, func(q *Particle) {
		q.center.X = x
	})
	return p
}

func (p *Particle) netForce(at dynamo.Vec3) (dynamo.Vec3, error) {
	total := dynamo.Zero
	for _, f := range p.forces {
		v, err := f(at)
		if err != nil {
			return dynamo.Zero, err
		}
		total = total.Add(v)
	}
	return total, nil
}
