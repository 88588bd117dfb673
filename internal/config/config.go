package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/field"
	"github.com/san-kum/emsim/internal/forces"
	"github.com/san-kum/emsim/internal/history"
	"github.com/san-kum/emsim/internal/particle"
	"github.com/san-kum/emsim/internal/waves"
)

const (
	DefaultFPS        = 30.0
	DefaultDuration   = 10.0
	DefaultIntegrator = "euler"
	DefaultSubsteps   = 10
)

type Config struct {
	Name       string           `yaml:"name"`
	FPS        float64          `yaml:"fps"`
	Duration   float64          `yaml:"duration"`
	Integrator string           `yaml:"integrator"`
	Substeps   int              `yaml:"substeps"`
	ProbeEvery int              `yaml:"probe_every"`
	Probe      *field.Grid      `yaml:"probe,omitempty"`
	Particles  []ParticleConfig `yaml:"particles"`
	Fields     []FieldConfig    `yaml:"fields"`
}

type ParticleConfig struct {
	Name         string                `yaml:"name"`
	Position     dynamo.Vec3           `yaml:"position"`
	Velocity     dynamo.Vec3           `yaml:"velocity"`
	Charge       *float64              `yaml:"charge,omitempty"`
	Mass         *float64              `yaml:"mass,omitempty"`
	Radius       *float64              `yaml:"radius,omitempty"`
	TrackHistory *bool                 `yaml:"track_history,omitempty"`
	HistorySize  int                   `yaml:"history_size,omitempty"`
	Spring       *SpringConfig         `yaml:"spring,omitempty"`
	Oscillation  *particle.Oscillation `yaml:"oscillation,omitempty"`
	Wave         *WaveMotion           `yaml:"wave,omitempty"`
	FieldForces  []string              `yaml:"field_forces,omitempty"`
	FixX         bool                  `yaml:"fix_x,omitempty"`
}

type SpringConfig struct {
	K      float64      `yaml:"k"`
	Center *dynamo.Vec3 `yaml:"center,omitempty"`
}

// WaveMotion carries a particle on a travelling wave at fixed X, so it
// moves only transversely.
type WaveMotion struct {
	waves.Oscillator `yaml:",inline"`
	X                float64 `yaml:"x"`
}

func (w *WaveMotion) Position(t float64) dynamo.Vec3 { return w.At(w.X, t) }

type FieldConfig struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Sources  []string `yaml:"sources,omitempty"`
	Radius   float64  `yaml:"radius,omitempty"`
	C        float64  `yaml:"c,omitempty"`
	Epsilon0 float64  `yaml:"epsilon0,omitempty"`
}

// Params fills unset physical constants with the force model defaults.
func (f FieldConfig) Params() forces.Params {
	p := forces.DefaultParams()
	p.Radius = f.Radius
	if f.C != 0 {
		p.C = f.C
	}
	if f.Epsilon0 != 0 {
		p.Epsilon0 = f.Epsilon0
	}
	return p
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "custom",
		FPS:        DefaultFPS,
		Duration:   DefaultDuration,
		Integrator: DefaultIntegrator,
		Substeps:   DefaultSubsteps,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations that would fail at construction, so a bad
// file is reported before any frame runs.
func (c *Config) Validate() error {
	if !(c.FPS > 0) {
		return fmt.Errorf("fps must be positive, got %g", c.FPS)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("%w: got %d", dynamo.ErrInvalidSubsteps, c.Substeps)
	}
	if c.Probe != nil {
		if err := c.Probe.Validate(); err != nil {
			return err
		}
	}

	particles := make(map[string]bool, len(c.Particles))
	for i, p := range c.Particles {
		if p.Name == "" {
			return fmt.Errorf("particle %d: name is required", i)
		}
		if particles[p.Name] {
			return fmt.Errorf("particle %s: duplicate name", p.Name)
		}
		particles[p.Name] = true
		if p.Mass != nil && !(*p.Mass > 0) {
			return fmt.Errorf("particle %s: %w: got %g", p.Name, dynamo.ErrInvalidMass, *p.Mass)
		}
		if p.Radius != nil && !(*p.Radius > 0) {
			return fmt.Errorf("particle %s: %w: got %g", p.Name, dynamo.ErrInvalidRadius, *p.Radius)
		}
		if p.Oscillation != nil && p.Wave != nil {
			return fmt.Errorf("particle %s: oscillation and wave are exclusive", p.Name)
		}
		if p.Wave != nil && !(p.Wave.WaveLength > 0) {
			return fmt.Errorf("particle %s: wave_length must be positive, got %g", p.Name, p.Wave.WaveLength)
		}
		if p.HistorySize != 0 && p.HistorySize < 2 {
			return fmt.Errorf("particle %s: %w: got %d", p.Name, dynamo.ErrInvalidCapacity, p.HistorySize)
		}
	}

	fields := make(map[string]bool, len(c.Fields))
	for i, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if fields[f.Name] {
			return fmt.Errorf("field %s: duplicate name", f.Name)
		}
		fields[f.Name] = true
		switch field.Kind(f.Kind) {
		case field.KindCoulomb, field.KindLorentz:
		default:
			return fmt.Errorf("field %s: %w: %q", f.Name, dynamo.ErrUnknownField, f.Kind)
		}
		if err := f.Params().Validate(); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		for _, src := range f.Sources {
			if !particles[src] {
				return fmt.Errorf("field %s: unknown source particle %q", f.Name, src)
			}
		}
	}

	for _, p := range c.Particles {
		for _, name := range p.FieldForces {
			if !fields[name] {
				return fmt.Errorf("particle %s: %w: %q", p.Name, dynamo.ErrUnknownField, name)
			}
		}
	}
	return nil
}

// Options turns a particle entry into constructor options.
func (p ParticleConfig) Options() []particle.Option {
	opts := []particle.Option{
		particle.WithName(p.Name),
		particle.WithVelocity(p.Velocity),
	}
	if p.Charge != nil {
		opts = append(opts, particle.WithCharge(*p.Charge))
	}
	if p.Mass != nil {
		opts = append(opts, particle.WithMass(*p.Mass))
	}
	if p.Radius != nil {
		opts = append(opts, particle.WithRadius(*p.Radius))
	}
	if p.TrackHistory != nil {
		opts = append(opts, particle.WithHistory(*p.TrackHistory))
	}
	size := p.HistorySize
	if size == 0 {
		size = history.DefaultCapacity
	}
	opts = append(opts, particle.WithHistorySize(size))
	if m := p.Motion(); m != nil {
		opts = append(opts, particle.WithMotion(m))
	}
	return opts
}

// Motion is the scripted motion of the particle, or nil when forces drive it.
func (p ParticleConfig) Motion() particle.Motion {
	switch {
	case p.Oscillation != nil:
		return *p.Oscillation
	case p.Wave != nil:
		return p.Wave
	}
	return nil
}
