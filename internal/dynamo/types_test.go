package dynamo

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
)

func TestVec3Arithmetic(t *testing.T) {
	a := V(1, 2, 3)
	b := V(-1, 0.5, 2)

	if got := a.Add(b); got != V(0, 2.5, 5) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != V(2, 1.5, 1) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(-2); got != V(-2, -4, -6) {
		t.Errorf("Scale = %v", got)
	}
	if got := a.Dot(b); got != 6 {
		t.Errorf("Dot = %v", got)
	}
	if got := V(3, 4, 0).Norm(); got != 5 {
		t.Errorf("Norm = %v", got)
	}
	if got := V(0, 0, 2).Unit(); got != V(0, 0, 1) {
		t.Errorf("Unit = %v", got)
	}
	if got := Zero.Unit(); got != Zero {
		t.Errorf("zero Unit = %v", got)
	}
	if got := FromArray(a.Array()); got != a {
		t.Errorf("array round trip = %v", got)
	}
}

func TestVec3IsValid(t *testing.T) {
	tests := []struct {
		v    Vec3
		want bool
	}{
		{V(1, 2, 3), true},
		{V(math.NaN(), 0, 0), false},
		{V(0, math.Inf(-1), 0), false},
		{V(0, 0, math.Inf(1)), false},
	}
	for _, tt := range tests {
		if got := tt.v.IsValid(); got != tt.want {
			t.Errorf("%v.IsValid() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestVec3IsClose(t *testing.T) {
	if !V(1, 0, 0).IsClose(V(1+1e-6, 0, 0)) {
		t.Error("relative tolerance not applied")
	}
	if !V(0, 5e-9, 0).IsClose(Zero) {
		t.Error("absolute tolerance not applied")
	}
	if V(0, 1e-7, 0).IsClose(Zero) {
		t.Error("1e-7 should not be close to zero")
	}
}

func TestSum(t *testing.T) {
	dst := []Vec3{V(1, 0, 0), V(0, 1, 0), V(0, 0, 1)}
	Sum(dst, []Vec3{V(1, 1, 1), V(2, 2, 2)})
	if dst[0] != V(2, 1, 1) || dst[1] != V(2, 3, 2) || dst[2] != V(0, 0, 1) {
		t.Errorf("Sum = %v", dst)
	}
}

func TestFrameError(t *testing.T) {
	err := fmt.Errorf("particle a: %w", ErrInvalidState)
	fe := &FrameError{Frame: 12, Time: 0.4, Wrapped: err}

	if !errors.Is(fe, ErrInvalidState) {
		t.Error("FrameError should unwrap to its cause")
	}
	var target *FrameError
	if !errors.As(fmt.Errorf("run: %w", fe), &target) || target.Frame != 12 {
		t.Error("FrameError not found in chain")
	}
	want := "frame 12 (t=0.4000): particle a: dynamo: invalid state (NaN or Inf detected)"
	if fe.Error() != want {
		t.Errorf("Error() = %q", fe.Error())
	}
}

func TestParallelFor(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1000} {
		seen := make([]int32, n)
		var calls atomic.Int32
		ParallelFor(n, 16, func(start, end int) {
			calls.Add(1)
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
		if n <= 16 && calls.Load() != 1 {
			t.Errorf("n=%d should run inline, got %d calls", n, calls.Load())
		}
	}
}
