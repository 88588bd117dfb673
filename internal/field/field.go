// Package field superposes the forces of many charged sources into a vector
// field that can be sampled at arbitrary points.
package field

import (
	"fmt"
	"sync"

	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/forces"
)

// Kind names a force model.
type Kind string

const (
	KindCoulomb Kind = "coulomb"
	KindLorentz Kind = "lorentz"
)

// parallelThreshold is the smallest batch split across goroutines.
const parallelThreshold = 512

// Field is the linear superposition of a force model over a set of sources.
// Sources are shared references; every evaluation reads their live state.
type Field struct {
	name    string
	kind    Kind
	model   forces.Model
	sources []forces.Source
}

// New builds a field of the given kind. Params are validated up front so a
// misconfigured field fails at construction rather than on the first frame.
func New(kind Kind, params forces.Params, sources ...forces.Source) (*Field, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var model forces.Model
	switch kind {
	case KindCoulomb:
		model = forces.CoulombModel(params)
	case KindLorentz:
		model = forces.LorentzModel(params)
	default:
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownField, kind)
	}
	return FromModel(string(kind), model, sources...), nil
}

// FromModel wraps an arbitrary per-source model.
func FromModel(name string, model forces.Model, sources ...forces.Source) *Field {
	return &Field{
		name:    name,
		kind:    Kind(name),
		model:   model,
		sources: append([]forces.Source(nil), sources...),
	}
}

func Coulomb(params forces.Params, sources ...forces.Source) (*Field, error) {
	return New(KindCoulomb, params, sources...)
}

func Lorentz(params forces.Params, sources ...forces.Source) (*Field, error) {
	return New(KindLorentz, params, sources...)
}

func (f *Field) Name() string { return f.name }

// SetName relabels the field, e.g. to tell two fields of the same kind apart.
func (f *Field) SetName(name string) { f.name = name }

func (f *Field) Kind() Kind { return f.kind }

func (f *Field) Add(src forces.Source) { f.sources = append(f.sources, src) }

func (f *Field) Sources() []forces.Source { return f.sources }

// At sums the force of every source at each point. With no sources the
// result is all zeros.
func (f *Field) At(points []dynamo.Vec3) ([]dynamo.Vec3, error) {
	out := make([]dynamo.Vec3, len(points))
	if len(points) == 0 || len(f.sources) == 0 {
		return out, nil
	}

	if len(points) < parallelThreshold {
		if err := f.accumulate(points, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	var (
		mu       sync.Mutex
		firstErr error
	)
	dynamo.ParallelFor(len(points), parallelThreshold, func(start, end int) {
		if err := f.accumulate(points[start:end], out[start:end]); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (f *Field) accumulate(points, out []dynamo.Vec3) error {
	for _, src := range f.sources {
		batch, err := f.model(points, src)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.name, err)
		}
		dynamo.Sum(out, batch)
	}
	return nil
}

// Force returns the force on a body of the given charge at p, suitable for
// attaching to a particle.
func (f *Field) Force(charge float64) func(p dynamo.Vec3) (dynamo.Vec3, error) {
	return func(p dynamo.Vec3) (dynamo.Vec3, error) {
		v, err := f.At([]dynamo.Vec3{p})
		if err != nil {
			return dynamo.Zero, err
		}
		return v[0].Scale(charge), nil
	}
}
