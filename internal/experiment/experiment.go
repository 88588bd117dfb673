// Package experiment turns a scene configuration into a wired, runnable
// scene: particles with their forces, fields over their sources and the
// probe grid.
package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/emsim/internal/config"
	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/field"
	"github.com/san-kum/emsim/internal/forces"
	"github.com/san-kum/emsim/internal/metrics"
	"github.com/san-kum/emsim/internal/particle"
	"github.com/san-kum/emsim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	scene     *sim.Scene
	particles map[string]*particle.Particle
}

// Build validates cfg and constructs its scene. A nil collector leaves
// Prometheus counters off.
func Build(cfg *config.Config, registry *Registry, log logrus.FieldLogger, collector *metrics.Collector) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = NewRegistry()
	}

	e := &Experiment{
		cfg:       cfg,
		scene:     sim.New(log),
		particles: make(map[string]*particle.Particle, len(cfg.Particles)),
	}
	e.scene.SetCollector(collector)

	ordered := make([]*particle.Particle, 0, len(cfg.Particles))
	for _, pc := range cfg.Particles {
		stepper, err := registry.GetIntegrator(cfg.Integrator, cfg.Substeps)
		if err != nil {
			return nil, err
		}
		opts := append(pc.Options(), particle.WithStepper(stepper))
		p, err := particle.New(pc.Position, opts...)
		if err != nil {
			return nil, fmt.Errorf("particle %s: %w", pc.Name, err)
		}
		if pc.Spring != nil {
			center := pc.Position
			if pc.Spring.Center != nil {
				center = *pc.Spring.Center
			}
			p.AddSpringForce(pc.Spring.K, center)
		}
		if pc.FixX {
			p.FixX()
		}
		if m := pc.Motion(); m != nil {
			p.MoveTo(m.Position(0))
		}
		p.IgnoreLastMotion()
		e.particles[pc.Name] = p
		ordered = append(ordered, p)
	}

	fields := make(map[string]*field.Field, len(cfg.Fields))
	radiation := forces.DefaultParams()
	for _, fc := range cfg.Fields {
		sources, err := e.sources(fc.Sources, ordered)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fc.Name, err)
		}
		f, err := field.New(field.Kind(fc.Kind), fc.Params(), sources...)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fc.Name, err)
		}
		f.SetName(fc.Name)
		fields[fc.Name] = f
		e.scene.AddField(f)
		if field.Kind(fc.Kind) == field.KindLorentz {
			radiation = fc.Params()
		}
	}

	for i, pc := range cfg.Particles {
		for _, name := range pc.FieldForces {
			f, ok := fields[name]
			if !ok {
				return nil, fmt.Errorf("particle %s: %w: %q", pc.Name, dynamo.ErrUnknownField, name)
			}
			ordered[i].AddFieldForce(f)
		}
		e.scene.AddParticle(ordered[i])
	}

	if cfg.Probe != nil {
		if err := e.scene.SetProbe(*cfg.Probe); err != nil {
			return nil, err
		}
	}
	for _, m := range registry.DefaultMetrics(radiation) {
		e.scene.AddMetric(m)
	}
	return e, nil
}

func (e *Experiment) sources(names []string, all []*particle.Particle) ([]forces.Source, error) {
	if len(names) == 0 {
		out := make([]forces.Source, len(all))
		for i, p := range all {
			out[i] = p
		}
		return out, nil
	}
	out := make([]forces.Source, 0, len(names))
	for _, name := range names {
		p, ok := e.particles[name]
		if !ok {
			return nil, fmt.Errorf("unknown source particle %q", name)
		}
		out = append(out, p)
	}
	return out, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Scene() *sim.Scene { return e.scene }

func (e *Experiment) Particle(name string) (*particle.Particle, bool) {
	p, ok := e.particles[name]
	return p, ok
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{FPS: e.cfg.FPS, Duration: e.cfg.Duration, ProbeEvery: e.cfg.ProbeEvery}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.scene.Run(ctx, e.SimConfig())
}
