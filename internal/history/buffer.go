// Package history keeps the motion record a retarded field needs: a bounded
// log of past positions and accelerations, and the last three raw positions
// used to estimate acceleration by finite differences.
package history

import (
	"fmt"

	"github.com/san-kum/emsim/internal/dynamo"
)

// DefaultCapacity is the number of samples kept before the buffer compacts.
const DefaultCapacity = 7200

// Sample is one recorded instant of a particle's motion.
type Sample struct {
	Position     dynamo.Vec3
	Acceleration dynamo.Vec3
}

// Buffer is a fixed-capacity log of samples addressed by time delay.
//
// When the write cursor runs off the end the newer half of the log is moved
// to the front and writing continues from the midpoint. Samples older than
// roughly capacity/2 records are lost; queries reaching further back clamp
// to the oldest sample still held.
type Buffer struct {
	samples     []Sample
	index       int
	compactions int
}

// NewBuffer allocates a zero-filled buffer so that queries issued before the
// first Record resolve to zero samples.
func NewBuffer(capacity int) (*Buffer, error) {
	if capacity < 2 {
		return nil, fmt.Errorf("%w: got %d", dynamo.ErrInvalidCapacity, capacity)
	}
	return &Buffer{
		samples: make([]Sample, capacity),
		index:   -1,
	}, nil
}

// Record appends a sample and reports whether the buffer compacted to make
// room for it.
func (b *Buffer) Record(position, acceleration dynamo.Vec3) bool {
	compacted := false
	b.index++
	if b.index >= len(b.samples) {
		half := len(b.samples) / 2
		copy(b.samples, b.samples[len(b.samples)-half:])
		b.index = half
		b.compactions++
		compacted = true
	}
	b.samples[b.index] = Sample{Position: position, Acceleration: acceleration}
	return compacted
}

// Query returns, for every delay, the sample recorded delay/timeStep records
// before the latest one. The continuous index is clamped into [0, Index()]
// and truncated, so fractional delays resolve to the less delayed sample.
func (b *Buffer) Query(delays []float64, timeStep float64) []Sample {
	out := make([]Sample, len(delays))
	if len(delays) == 0 {
		return out
	}

	latest := b.index
	if latest < 0 {
		latest = 0
	}
	for i, d := range delays {
		out[i] = b.samples[b.slot(latest, d, timeStep)]
	}
	return out
}

func (b *Buffer) slot(latest int, delay, timeStep float64) int {
	if timeStep <= 0 || delay == 0 {
		return latest
	}
	pre := float64(latest) - delay/timeStep
	switch {
	case pre != pre, pre < 0:
		return 0
	case pre > float64(latest):
		return latest
	}
	return int(pre)
}

// Positions is Query projected onto the recorded positions.
func (b *Buffer) Positions(delays []float64, timeStep float64) []dynamo.Vec3 {
	samples := b.Query(delays, timeStep)
	out := make([]dynamo.Vec3, len(samples))
	for i, s := range samples {
		out[i] = s.Position
	}
	return out
}

// Accelerations is Query projected onto the recorded accelerations.
func (b *Buffer) Accelerations(delays []float64, timeStep float64) []dynamo.Vec3 {
	samples := b.Query(delays, timeStep)
	out := make([]dynamo.Vec3, len(samples))
	for i, s := range samples {
		out[i] = s.Acceleration
	}
	return out
}

// Index is the slot of the most recent sample, or -1 before the first Record.
func (b *Buffer) Index() int { return b.index }

func (b *Buffer) Cap() int { return len(b.samples) }

// Compactions counts how many times the buffer discarded its older half.
func (b *Buffer) Compactions() int { return b.compactions }

// Clone returns an independent copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{
		samples:     make([]Sample, len(b.samples)),
		index:       b.index,
		compactions: b.compactions,
	}
	copy(c.samples, b.samples)
	return c
}
