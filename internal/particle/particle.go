// Package particle models a charged point particle: its physical state, the
// forces attached to it and the motion record fields read back when they
// account for finite propagation speed.
package particle

import (
	"fmt"
	"math"

	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/history"
	"github.com/san-kum/emsim/internal/integrators"
)

const (
	DefaultCharge = 1.0
	DefaultMass   = 1.0
	DefaultRadius = 0.2

	// DefaultTimeStep is assumed until the first non-zero frame is seen.
	DefaultTimeStep = 1.0 / 30
)

// Particle is the physical record of a charged particle. Anything that draws
// it should read Center once per frame and never write back.
type Particle struct {
	name     string
	center   dynamo.Vec3
	velocity dynamo.Vec3
	charge   float64
	mass     float64
	radius   float64

	time     float64
	timeStep float64
	recent   history.Recent
	hist     *history.Buffer

	stepper     integrators.Stepper
	forces      []integrators.Force
	constraints []func(*Particle)
	motion      Motion
}

type config struct {
	name        string
	charge      float64
	mass        float64
	radius      float64
	velocity    dynamo.Vec3
	track       bool
	historySize int
	substeps    int
	stepper     integrators.Stepper
	motion      Motion
}

// Option configures a Particle at construction.
type Option func(*config)

func WithName(name string) Option       { return func(c *config) { c.name = name } }
func WithCharge(q float64) Option       { return func(c *config) { c.charge = q } }
func WithMass(m float64) Option         { return func(c *config) { c.mass = m } }
func WithRadius(r float64) Option       { return func(c *config) { c.radius = r } }
func WithVelocity(v dynamo.Vec3) Option { return func(c *config) { c.velocity = v } }
func WithHistory(track bool) Option     { return func(c *config) { c.track = track } }
func WithHistorySize(n int) Option      { return func(c *config) { c.historySize = n } }
func WithSubsteps(n int) Option         { return func(c *config) { c.substeps = n } }

// WithStepper replaces the default sub-stepped Euler integrator.
func WithStepper(s integrators.Stepper) Option { return func(c *config) { c.stepper = s } }

// WithMotion scripts the particle's position instead of integrating forces.
func WithMotion(m Motion) Option { return func(c *config) { c.motion = m } }

// New creates a particle at start, at rest unless WithVelocity is given.
func New(start dynamo.Vec3, opts ...Option) (*Particle, error) {
	cfg := config{
		charge:      DefaultCharge,
		mass:        DefaultMass,
		radius:      DefaultRadius,
		track:       true,
		historySize: history.DefaultCapacity,
		substeps:    integrators.DefaultSubsteps,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !(cfg.mass > 0) || math.IsInf(cfg.mass, 0) {
		return nil, fmt.Errorf("%w: got %g", dynamo.ErrInvalidMass, cfg.mass)
	}
	if !(cfg.radius > 0) || math.IsInf(cfg.radius, 0) {
		return nil, fmt.Errorf("%w: got %g", dynamo.ErrInvalidRadius, cfg.radius)
	}
	if !start.IsValid() || !cfg.velocity.IsValid() {
		return nil, dynamo.ErrInvalidState
	}

	stepper := cfg.stepper
	if stepper == nil {
		e, err := integrators.NewEuler(cfg.substeps)
		if err != nil {
			return nil, err
		}
		stepper = e
	}

	p := &Particle{
		name:     cfg.name,
		center:   start,
		velocity: cfg.velocity,
		charge:   cfg.charge,
		mass:     cfg.mass,
		radius:   cfg.radius,
		timeStep: DefaultTimeStep,
		recent:   history.NewRecent(start),
		stepper:  stepper,
		motion:   cfg.motion,
	}
	if cfg.track {
		buf, err := history.NewBuffer(cfg.historySize)
		if err != nil {
			return nil, err
		}
		p.hist = buf
	}
	return p, nil
}

func (p *Particle) Name() string              { return p.name }
func (p *Particle) Center() dynamo.Vec3       { return p.center }
func (p *Particle) Velocity() dynamo.Vec3     { return p.velocity }
func (p *Particle) SetVelocity(v dynamo.Vec3) { p.velocity = v }
func (p *Particle) Charge() float64           { return p.charge }
func (p *Particle) Mass() float64             { return p.mass }
func (p *Particle) Radius() float64           { return p.radius }
func (p *Particle) TracksHistory() bool       { return p.hist != nil }

// Time is the particle's internal clock; it only advances on non-zero frames.
func (p *Particle) Time() float64 { return p.time }

// TimeStep is the length of the most recent non-zero frame.
func (p *Particle) TimeStep() float64 { return p.timeStep }

func (p *Particle) Shift(d dynamo.Vec3) { p.center = p.center.Add(d) }

func (p *Particle) MoveTo(c dynamo.Vec3) { p.center = c }

// History exposes the motion record, or nil when tracking is off.
func (p *Particle) History() *history.Buffer { return p.hist }

// Recent returns the last three positions committed by the clock.
func (p *Particle) Recent() history.Recent { return p.recent }

// Acceleration estimates the current acceleration from the last three
// committed positions.
func (p *Particle) Acceleration() dynamo.Vec3 {
	return history.EstimateAcceleration(p.recent, p.timeStep)
}

// PastPositions returns where the particle was each delay ago.
func (p *Particle) PastPositions(delays []float64) ([]dynamo.Vec3, error) {
	if p.hist == nil {
		return nil, p.historyDisabled()
	}
	return p.hist.Positions(delays, p.timeStep), nil
}

// PastAccelerations returns the particle's acceleration each delay ago.
func (p *Particle) PastAccelerations(delays []float64) ([]dynamo.Vec3, error) {
	if p.hist == nil {
		return nil, p.historyDisabled()
	}
	return p.hist.Accelerations(delays, p.timeStep), nil
}

func (p *Particle) historyDisabled() error {
	if p.name == "" {
		return dynamo.ErrHistoryDisabled
	}
	return fmt.Errorf("particle %s: %w", p.name, dynamo.ErrHistoryDisabled)
}

// IgnoreLastMotion makes the next acceleration estimate treat the current
// center as if the particle had always been there.
func (p *Particle) IgnoreLastMotion() {
	p.recent.Reset(p.center)
}
