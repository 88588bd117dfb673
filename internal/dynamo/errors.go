package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for particle, force and field operations.
var (
	// ErrInvalidMass indicates a particle was configured with a non-positive mass.
	ErrInvalidMass = errors.New("dynamo: mass must be positive")

	// ErrNegativeRadius indicates a negative suppression radius.
	ErrNegativeRadius = errors.New("dynamo: suppression radius must not be negative")

	// ErrInvalidRadius indicates a particle configured with a non-positive
	// physical radius.
	ErrInvalidRadius = errors.New("dynamo: particle radius must be positive")

	// ErrHistoryDisabled indicates a past-position or past-acceleration query
	// on a particle that does not track history.
	ErrHistoryDisabled = errors.New("dynamo: position history tracking is not enabled")

	// ErrInvalidCapacity indicates a history buffer too small to compact.
	ErrInvalidCapacity = errors.New("dynamo: history capacity must be at least 2")

	// ErrInvalidSubsteps indicates a non-positive number of Euler sub-steps.
	ErrInvalidSubsteps = errors.New("dynamo: sub-steps must be at least 1")

	// ErrInvalidSpeed indicates a non-positive propagation speed.
	ErrInvalidSpeed = errors.New("dynamo: propagation speed must be positive")

	// ErrInvalidPermittivity indicates a non-positive epsilon0.
	ErrInvalidPermittivity = errors.New("dynamo: permittivity must be positive")

	// ErrInvalidGrid indicates a sampling grid with a non-positive step or inverted bounds.
	ErrInvalidGrid = errors.New("dynamo: invalid sampling grid")

	// ErrUnknownField indicates a field kind that no force model implements.
	ErrUnknownField = errors.New("dynamo: unknown field kind")

	// ErrInvalidState indicates a particle state containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// FrameError wraps an error with the frame it was raised in.
type FrameError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
