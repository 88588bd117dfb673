package dynamo

import (
	"fmt"
	"math"
)

// Vec3 is a point or direction in three dimensional space.
type Vec3 struct {
	X, Y, Z float64
}

// Zero is the additive identity.
var Zero = Vec3{}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Unit returns v scaled to length one, or the zero vector when v is zero.
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Zero
	}
	return v.Scale(1 / n)
}

func (v Vec3) IsValid() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// IsClose reports whether every component of v and o agrees within the
// combined tolerance atol + rtol*|o|.
func (v Vec3) IsClose(o Vec3) bool {
	const rtol, atol = 1e-5, 1e-8
	closeTo := func(a, b float64) bool {
		return math.Abs(a-b) <= atol+rtol*math.Abs(b)
	}
	return closeTo(v.X, o.X) && closeTo(v.Y, o.Y) && closeTo(v.Z, o.Z)
}

func (v Vec3) Array() [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func FromArray(a [3]float64) Vec3 { return Vec3{a[0], a[1], a[2]} }

func (v Vec3) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}

// ForceFunc maps a position to the force acting on a body located there.
type ForceFunc func(p Vec3) Vec3

// Sum adds batches of vectors elementwise into dst, which must be at least
// as long as each batch.
func Sum(dst []Vec3, batch []Vec3) {
	for i := range batch {
		dst[i] = dst[i].Add(batch[i])
	}
}
