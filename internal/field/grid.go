package field

import (
	"fmt"
	"math"

	"github.com/san-kum/emsim/internal/dynamo"
)

// Grid is a regular lattice of sample points between Min and Max inclusive.
type Grid struct {
	Min  dynamo.Vec3 `yaml:"min"`
	Max  dynamo.Vec3 `yaml:"max"`
	Step float64     `yaml:"step"`
}

func (g Grid) Validate() error {
	if !(g.Step > 0) {
		return fmt.Errorf("%w: step %g", dynamo.ErrInvalidGrid, g.Step)
	}
	if g.Max.X < g.Min.X || g.Max.Y < g.Min.Y || g.Max.Z < g.Min.Z {
		return fmt.Errorf("%w: max %v below min %v", dynamo.ErrInvalidGrid, g.Max, g.Min)
	}
	return nil
}

func axis(lo, hi, step float64) []float64 {
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Points enumerates the lattice in x-major, then y, then z order.
func (g Grid) Points() ([]dynamo.Vec3, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	xs := axis(g.Min.X, g.Max.X, g.Step)
	ys := axis(g.Min.Y, g.Max.Y, g.Step)
	zs := axis(g.Min.Z, g.Max.Z, g.Step)

	pts := make([]dynamo.Vec3, 0, len(xs)*len(ys)*len(zs))
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				pts = append(pts, dynamo.V(x, y, z))
			}
		}
	}
	return pts, nil
}

// Sample evaluates f over every point of g.
func (f *Field) Sample(g Grid) ([]dynamo.Vec3, []dynamo.Vec3, error) {
	pts, err := g.Points()
	if err != nil {
		return nil, nil, err
	}
	vals, err := f.At(pts)
	if err != nil {
		return nil, nil, err
	}
	return pts, vals, nil
}
