package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/emsim/internal/forces"
	"github.com/san-kum/emsim/internal/integrators"
	"github.com/san-kum/emsim/internal/metrics"
	"github.com/san-kum/emsim/internal/sim"
)

// Registry maps configuration names to integrator constructors.
type Registry struct {
	integrators map[string]func(substeps int) (integrators.Stepper, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func(int) (integrators.Stepper, error)),
	}

	r.integrators["euler"] = func(n int) (integrators.Stepper, error) { return integrators.NewEuler(n) }
	r.integrators["leapfrog"] = func(n int) (integrators.Stepper, error) { return integrators.NewLeapfrog(n) }
	r.integrators["rk4"] = func(n int) (integrators.Stepper, error) { return integrators.NewRK4(n) }

	return r
}

func (r *Registry) GetIntegrator(name string, substeps int) (integrators.Stepper, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(substeps)
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are attached to every scene built from a config.
func (r *Registry) DefaultMetrics(radiation forces.Params) []sim.Metric {
	return []sim.Metric{
		metrics.NewKineticEnergy(),
		metrics.NewLarmorPower(radiation),
		metrics.NewPeakSpeed(),
	}
}
