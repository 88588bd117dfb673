package forces

import (
	"math"

	"github.com/san-kum/emsim/internal/dynamo"
)

// Model evaluates the force a single source exerts at each point.
type Model func(points []dynamo.Vec3, src Source) ([]dynamo.Vec3, error)

// Coulomb returns charge * r̂ / d_adj² for every point.
func Coulomb(points []dynamo.Vec3, src Source, p Params) ([]dynamo.Vec3, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g, err := Locate(points, src, p.radiusFor(src), p.C)
	if err != nil {
		return nil, err
	}

	q := src.Charge()
	out := make([]dynamo.Vec3, len(points))
	for i := range points {
		adj := g.Adjusted[i]
		if math.IsInf(adj, 1) {
			continue
		}
		out[i] = g.Unit[i].Scale(q / (adj * adj))
	}
	return out, nil
}

// Lorentz returns the radiative force -q * a_perp / (4π ε0 c² d_adj), where
// a_perp is the source's acceleration at the retarded time projected off the
// line of sight. The falloff is linear in the adjusted distance.
//
// The acceleration is read at delay d/c, d being the distance from the
// retarded position. Sources without history fail with ErrHistoryDisabled.
func Lorentz(points []dynamo.Vec3, src Source, p Params) ([]dynamo.Vec3, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g, err := Locate(points, src, p.radiusFor(src), p.C)
	if err != nil {
		return nil, err
	}

	delays := make([]float64, len(points))
	for i, d := range g.Distance {
		delays[i] = d / p.C
	}
	acc, err := src.PastAccelerations(delays)
	if err != nil {
		return nil, err
	}

	q := src.Charge()
	k := 4 * math.Pi * p.Epsilon0 * p.C * p.C
	out := make([]dynamo.Vec3, len(points))
	for i := range points {
		adj := g.Adjusted[i]
		if math.IsInf(adj, 1) {
			continue
		}
		u := g.Unit[i]
		aPerp := acc[i].Sub(u.Scale(u.Dot(acc[i])))
		out[i] = aPerp.Scale(-q / (k * adj))
	}
	return out, nil
}

// CoulombModel binds p to the Coulomb force.
func CoulombModel(p Params) Model {
	return func(points []dynamo.Vec3, src Source) ([]dynamo.Vec3, error) {
		return Coulomb(points, src, p)
	}
}

// LorentzModel binds p to the Lorentz force.
func LorentzModel(p Params) Model {
	return func(points []dynamo.Vec3, src Source) ([]dynamo.Vec3, error) {
		return Lorentz(points, src, p)
	}
}

// Spring pulls toward center with stiffness k.
func Spring(k float64, center dynamo.Vec3) dynamo.ForceFunc {
	return func(p dynamo.Vec3) dynamo.Vec3 {
		return center.Sub(p).Scale(k)
	}
}

// Uniform applies the same force everywhere.
func Uniform(f dynamo.Vec3) dynamo.ForceFunc {
	return func(dynamo.Vec3) dynamo.Vec3 { return f }
}
