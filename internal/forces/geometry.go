package forces

import (
	"fmt"
	"math"

	"github.com/san-kum/emsim/internal/dynamo"
)

const (
	// DefaultC is the propagation speed used when none is configured.
	DefaultC = 2.0

	// DefaultEpsilon0 is the permittivity used by the Lorentz model.
	DefaultEpsilon0 = 0.025
)

// Source is a charged particle as seen by a field. Implementations must
// reflect live state on every call.
type Source interface {
	Center() dynamo.Vec3
	Charge() float64
	Radius() float64
	TracksHistory() bool
	PastPositions(delays []float64) ([]dynamo.Vec3, error)
	PastAccelerations(delays []float64) ([]dynamo.Vec3, error)
}

// Params tunes a force model. A zero Radius means the source's own radius
// is used for singularity suppression.
type Params struct {
	Radius   float64 `yaml:"radius"`
	C        float64 `yaml:"c"`
	Epsilon0 float64 `yaml:"epsilon0"`
}

func DefaultParams() Params {
	return Params{C: DefaultC, Epsilon0: DefaultEpsilon0}
}

func (p Params) Validate() error {
	if p.Radius < 0 {
		return fmt.Errorf("%w: got %g", dynamo.ErrNegativeRadius, p.Radius)
	}
	if !(p.C > 0) {
		return fmt.Errorf("%w: got %g", dynamo.ErrInvalidSpeed, p.C)
	}
	if !(p.Epsilon0 > 0) {
		return fmt.Errorf("%w: got %g", dynamo.ErrInvalidPermittivity, p.Epsilon0)
	}
	return nil
}

func (p Params) radiusFor(src Source) float64 {
	if p.Radius > 0 {
		return p.Radius
	}
	return src.Radius()
}

// Geometry describes every field point relative to the (retarded) source.
type Geometry struct {
	// Unit points from the source toward the field point; zero where they coincide.
	Unit []dynamo.Vec3
	// Distance is the true distance to the retarded source position.
	Distance []float64
	// Adjusted replaces Distance inside the suppression radius r with r²/d,
	// and is +Inf where the point sits exactly on the source.
	Adjusted []float64
}

// Locate computes the geometry between points and src. Sources that track
// history are placed at their position one light delay ago, where the
// delay is measured from the present position.
func Locate(points []dynamo.Vec3, src Source, radius, c float64) (Geometry, error) {
	g := Geometry{
		Unit:     make([]dynamo.Vec3, len(points)),
		Distance: make([]float64, len(points)),
		Adjusted: make([]float64, len(points)),
	}
	if len(points) == 0 {
		return g, nil
	}

	centers, err := sourceCenters(points, src, c)
	if err != nil {
		return g, err
	}

	for i, p := range points {
		diff := p.Sub(centers[i])
		d := diff.Norm()
		g.Distance[i] = d
		switch {
		case d == 0:
			g.Adjusted[i] = math.Inf(1)
		case d < radius:
			g.Unit[i] = diff.Scale(1 / d)
			g.Adjusted[i] = radius * radius / d
		default:
			g.Unit[i] = diff.Scale(1 / d)
			g.Adjusted[i] = d
		}
	}
	return g, nil
}

func sourceCenters(points []dynamo.Vec3, src Source, c float64) ([]dynamo.Vec3, error) {
	center := src.Center()
	if !src.TracksHistory() {
		centers := make([]dynamo.Vec3, len(points))
		for i := range centers {
			centers[i] = center
		}
		return centers, nil
	}

	delays := make([]float64, len(points))
	for i, p := range points {
		delays[i] = p.Sub(center).Norm() / c
	}
	return src.PastPositions(delays)
}
