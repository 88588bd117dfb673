package history

import (
	"math"

	"github.com/san-kum/emsim/internal/dynamo"
)

// roundingUlps bounds the rounding error of a second difference of values
// that were each produced by adding a displacement to the previous one.
const roundingUlps = 16

// Recent holds the last three raw positions, oldest first. It is independent
// of Buffer compaction.
type Recent struct {
	p [3]dynamo.Vec3
}

// NewRecent seeds all three slots with the starting point, so a particle
// that has not moved reports zero acceleration.
func NewRecent(start dynamo.Vec3) Recent {
	return Recent{p: [3]dynamo.Vec3{start, start, start}}
}

// Push drops the oldest position and appends p.
func (r *Recent) Push(p dynamo.Vec3) {
	r.p[0], r.p[1], r.p[2] = r.p[1], r.p[2], p
}

// Reset forgets prior motion by filling every slot with p.
func (r *Recent) Reset(p dynamo.Vec3) {
	r.p = [3]dynamo.Vec3{p, p, p}
}

func (r Recent) Positions() [3]dynamo.Vec3 { return r.p }

// EstimateAcceleration returns the central second difference
// (p0 + p2 - 2*p1) / h^2 over the recent positions.
//
// The zero vector is returned when the particle did not move across either
// consecutive pair, or when the second difference is within a few ulps of
// the largest position magnitude. Uniform motion therefore reports exactly
// zero while any acceleration above rounding scale survives.
func EstimateAcceleration(r Recent, h float64) dynamo.Vec3 {
	p0, p1, p2 := r.p[0], r.p[1], r.p[2]
	if h == 0 || p0.IsClose(p1) || p1.IsClose(p2) {
		return dynamo.Zero
	}
	d := p0.Add(p2).Sub(p1.Scale(2))
	scale := math.Max(p0.Norm(), math.Max(p1.Norm(), p2.Norm()))
	if d.Norm() <= roundingUlps*epsilon*scale {
		return dynamo.Zero
	}
	return d.Scale(1 / (h * h))
}

// epsilon is the spacing of float64 values just above 1.
var epsilon = math.Nextafter(1, 2) - 1
