// Package dynamo provides the primitives shared by the electrodynamics core.
//
// The package defines the small vocabulary every other package speaks:
//
//   - [Vec3]: a three component vector with the usual arithmetic
//   - [ForceFunc]: a force evaluated at a single point
//   - domain errors such as [ErrInvalidMass] and [ErrHistoryDisabled]
//   - [FrameError]: wraps a failure with the frame it happened in
//
// # Example
//
//	p := dynamo.Vec3{X: 1}
//	f := dynamo.Vec3{Y: 2}.Scale(0.5)
//	q := p.Add(f)
//
// # Thread Safety
//
// Vec3 is a value type and safe to share. [ParallelFor] only splits index
// ranges; callers are responsible for keeping the work function read-only
// with respect to shared particle state.
package dynamo
