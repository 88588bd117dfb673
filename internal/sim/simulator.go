// Package sim is the explicit per-frame driver: it advances every particle
// of a scene once per frame, commits their histories together and then
// samples fields and notifies observers.
package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/field"
	"github.com/san-kum/emsim/internal/metrics"
	"github.com/san-kum/emsim/internal/particle"
)

// Scene owns the ordered set of particles and the fields that read them.
// It is not safe for concurrent use.
type Scene struct {
	particles []*particle.Particle
	fields    []*field.Field
	probe     []dynamo.Vec3
	metrics   []Metric
	observers []Observer
	collector *metrics.Collector
	log       logrus.FieldLogger
	frame     int
	time      float64
}

func New(log logrus.FieldLogger) *Scene {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Scene{
		log:       log,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Scene) AddParticle(p *particle.Particle) { s.particles = append(s.particles, p) }
func (s *Scene) AddField(f *field.Field)          { s.fields = append(s.fields, f) }
func (s *Scene) AddMetric(m Metric)               { s.metrics = append(s.metrics, m) }
func (s *Scene) AddObserver(o Observer)           { s.observers = append(s.observers, o) }

// SetCollector routes frame counters to Prometheus.
func (s *Scene) SetCollector(c *metrics.Collector) { s.collector = c }

func (s *Scene) Particles() []*particle.Particle { return s.particles }
func (s *Scene) Fields() []*field.Field          { return s.fields }
func (s *Scene) Time() float64                   { return s.time }

// Field looks a field up by name.
func (s *Scene) Field(name string) (*field.Field, error) {
	for _, f := range s.fields {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownField, name)
}

// SetProbe fixes the grid the driver samples every field on.
func (s *Scene) SetProbe(g field.Grid) error {
	pts, err := g.Points()
	if err != nil {
		return err
	}
	s.probe = pts
	return nil
}

func (s *Scene) ProbePoints() []dynamo.Vec3 { return s.probe }

// Step advances the scene by one frame and samples the probe grid.
func (s *Scene) Step(dt float64) (Frame, error) {
	return s.step(dt, len(s.probe) > 0)
}

func (s *Scene) step(dt float64, probe bool) (Frame, error) {
	if dt == 0 {
		return s.snapshot(0), nil
	}

	for _, p := range s.particles {
		if err := p.Integrate(dt); err != nil {
			return Frame{}, s.frameError(p, err)
		}
	}
	for _, p := range s.particles {
		if p.IncrementClock(dt) {
			s.log.WithFields(logrus.Fields{
				"particle": p.Name(),
				"frame":    s.frame,
				"capacity": p.History().Cap(),
			}).Debug("history compacted")
			if s.collector != nil {
				s.collector.Compactions.WithLabelValues(p.Name()).Inc()
			}
		}
	}
	s.frame++
	s.time += dt

	f := s.snapshot(dt)
	if probe {
		probes, err := s.sample()
		if err != nil {
			return Frame{}, &dynamo.FrameError{Frame: s.frame, Time: s.time, Wrapped: err}
		}
		f.Probes = probes
	}

	for _, m := range s.metrics {
		m.Observe(f.Time, f.States)
	}
	for _, o := range s.observers {
		o.OnFrame(f)
	}
	if s.collector != nil {
		s.collector.Frames.Inc()
		s.collector.KineticEnergy.Set(metrics.TotalKinetic(f.States))
	}
	return f, nil
}

func (s *Scene) frameError(p *particle.Particle, err error) error {
	if p.Name() != "" {
		err = fmt.Errorf("particle %s: %w", p.Name(), err)
	}
	return &dynamo.FrameError{Frame: s.frame + 1, Time: s.time, Wrapped: err}
}

func (s *Scene) snapshot(dt float64) Frame {
	states := make([]particle.State, len(s.particles))
	for i, p := range s.particles {
		states[i] = p.Snapshot()
	}
	return Frame{Index: s.frame, Time: s.time, Dt: dt, States: states}
}

func (s *Scene) sample() (map[string][]dynamo.Vec3, error) {
	out := make(map[string][]dynamo.Vec3, len(s.fields))
	for _, f := range s.fields {
		vals, err := f.At(s.probe)
		if err != nil {
			return nil, err
		}
		out[f.Name()] = vals
		if s.collector != nil {
			s.collector.FieldEvaluations.WithLabelValues(f.Name()).Add(float64(len(s.probe)))
		}
	}
	return out, nil
}

// Run drives cfg.Frames() frames of length 1/FPS. On a frame error or
// cancellation the partial result is returned with the error.
func (s *Scene) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frames := cfg.Frames()
	dt := 1 / cfg.FPS
	result := &Result{
		Times:       make([]float64, 0, frames+1),
		States:      make([][]particle.State, 0, frames+1),
		ProbePoints: s.probe,
		Metrics:     make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	start := s.snapshot(0)
	result.Times = append(result.Times, start.Time)
	result.States = append(result.States, start.States)

	log := s.log.WithFields(logrus.Fields{"frames": frames, "dt": dt, "particles": len(s.particles)})
	log.Info("run started")

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		probe := cfg.ProbeEvery > 0 && len(s.probe) > 0 && (i+1)%cfg.ProbeEvery == 0
		f, err := s.step(dt, probe)
		if err != nil {
			log.WithError(err).Error("frame aborted")
			s.finish(result)
			return result, err
		}

		result.FramesRun++
		result.Times = append(result.Times, f.Time)
		result.States = append(result.States, f.States)
		for _, fl := range s.fields {
			if vals, ok := f.Probes[fl.Name()]; ok {
				result.Probes = append(result.Probes, ProbeSample{Frame: f.Index, Time: f.Time, Field: fl.Name(), Values: vals})
			}
		}
	}

	s.finish(result)
	log.WithField("t", s.time).Info("run finished")
	return result, nil
}

func (s *Scene) finish(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback drives frames until the duration elapses, the context is
// cancelled or the callback returns false.
func (s *Scene) RunWithCallback(ctx context.Context, cfg Config, callback func(Frame) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dt := 1 / cfg.FPS
	for i := 0; i < cfg.Frames(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		probe := cfg.ProbeEvery > 0 && len(s.probe) > 0 && (i+1)%cfg.ProbeEvery == 0
		f, err := s.step(dt, probe)
		if err != nil {
			return err
		}
		if !callback(f) {
			return nil
		}
	}
	return nil
}
