// Package optim sweeps scene parameters over a grid and ranks the runs by
// one of their metrics.
package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/emsim/internal/config"
	"github.com/san-kum/emsim/internal/experiment"
)

// Setter applies one knob value to a private copy of a scene config.
type Setter func(cfg *config.Config, v float64)

// Knobs are the sweepable parameters. Each applies to every particle or
// field it makes sense for.
var Knobs = map[string]Setter{
	"c": func(cfg *config.Config, v float64) {
		for i := range cfg.Fields {
			cfg.Fields[i].C = v
		}
	},
	"epsilon0": func(cfg *config.Config, v float64) {
		for i := range cfg.Fields {
			cfg.Fields[i].Epsilon0 = v
		}
	},
	"field_radius": func(cfg *config.Config, v float64) {
		for i := range cfg.Fields {
			cfg.Fields[i].Radius = v
		}
	},
	"charge": func(cfg *config.Config, v float64) {
		for i := range cfg.Particles {
			cfg.Particles[i].Charge = &v
		}
	},
	"mass": func(cfg *config.Config, v float64) {
		for i := range cfg.Particles {
			cfg.Particles[i].Mass = &v
		}
	},
	"spring_k": func(cfg *config.Config, v float64) {
		for i, p := range cfg.Particles {
			if p.Spring != nil {
				s := *p.Spring
				s.K = v
				cfg.Particles[i].Spring = &s
			}
		}
	},
	"amplitude": func(cfg *config.Config, v float64) {
		for i, p := range cfg.Particles {
			if p.Oscillation != nil {
				o := *p.Oscillation
				o.Amplitude = v
				cfg.Particles[i].Oscillation = &o
			}
		}
	},
	"frequency": func(cfg *config.Config, v float64) {
		for i, p := range cfg.Particles {
			if p.Oscillation != nil {
				o := *p.Oscillation
				o.Frequency = v
				cfg.Particles[i].Oscillation = &o
			}
		}
	},
	"fps": func(cfg *config.Config, v float64) { cfg.FPS = v },
	"substeps": func(cfg *config.Config, v float64) {
		cfg.Substeps = int(math.Round(v))
	},
}

func KnobNames() []string {
	names := make([]string, 0, len(Knobs))
	for name := range Knobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Param struct {
	Name   string
	Values []float64
}

// Point is one grid cell and the metrics its run produced. Err is set when
// the scene could not be built or a frame failed.
type Point struct {
	Params  map[string]float64
	Metrics map[string]float64
	Err     error
}

type GridSearch struct {
	params  []Param
	workers int
}

func NewGridSearch(params []Param) (*GridSearch, error) {
	for _, p := range params {
		if _, ok := Knobs[p.Name]; !ok {
			return nil, fmt.Errorf("unknown parameter %q (have %v)", p.Name, KnobNames())
		}
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("parameter %q has no values", p.Name)
		}
	}
	return &GridSearch{params: params, workers: runtime.GOMAXPROCS(0)}, nil
}

// SetWorkers bounds how many runs execute at once.
func (g *GridSearch) SetWorkers(n int) {
	if n > 0 {
		g.workers = n
	}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, p := range g.params {
		n *= len(p.Values)
	}
	return n
}

// point decodes the i-th grid cell, last parameter varying fastest.
func (g *GridSearch) point(i int) map[string]float64 {
	out := make(map[string]float64, len(g.params))
	for k := len(g.params) - 1; k >= 0; k-- {
		p := g.params[k]
		out[p.Name] = p.Values[i%len(p.Values)]
		i /= len(p.Values)
	}
	return out
}

// Run executes every grid point against a copy of base and returns the
// points in grid order. It fails only when ctx is cancelled.
func (g *GridSearch) Run(ctx context.Context, base *config.Config) ([]Point, error) {
	points := make([]Point, g.Size())

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i := range points {
		i := i
		params := g.point(i)
		points[i].Params = params
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg := clone(base)
			for _, p := range g.params {
				Knobs[p.Name](cfg, params[p.Name])
			}

			exp, err := experiment.Build(cfg, nil, nil, nil)
			if err != nil {
				points[i].Err = err
				return nil
			}
			result, err := exp.Run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				points[i].Err = err
				return nil
			}
			points[i].Metrics = result.Metrics
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return points, err
	}
	return points, nil
}

// Search runs the grid and returns the successful point with the smallest
// (or, with maximize, largest) value of metric.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string, maximize bool) (Point, []Point, error) {
	points, err := g.Run(ctx, base)
	if err != nil {
		return Point{}, points, err
	}

	best := -1
	for i, p := range points {
		if p.Err != nil {
			continue
		}
		v, ok := p.Metrics[metric]
		if !ok {
			return Point{}, points, fmt.Errorf("no metric %q", metric)
		}
		if best < 0 || (maximize && v > points[best].Metrics[metric]) || (!maximize && v < points[best].Metrics[metric]) {
			best = i
		}
	}
	if best < 0 {
		return Point{}, points, fmt.Errorf("all %d runs failed", len(points))
	}
	return points[best], points, nil
}

func clone(cfg *config.Config) *config.Config {
	c := *cfg
	c.Particles = append([]config.ParticleConfig(nil), cfg.Particles...)
	c.Fields = append([]config.FieldConfig(nil), cfg.Fields...)
	for i := range c.Fields {
		c.Fields[i].Sources = append([]string(nil), cfg.Fields[i].Sources...)
	}
	return &c
}
