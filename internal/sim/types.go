package sim

import (
	"fmt"

	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/particle"
)

// Metric reduces the frames of a run to a single number.
type Metric interface {
	Name() string
	Observe(t float64, states []particle.State)
	Value() float64
	Reset()
}

// Observer is notified after every completed frame.
type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a plain function.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

// Frame is what the driver exposes once a frame has fully committed.
type Frame struct {
	Index  int
	Time   float64
	Dt     float64
	States []particle.State
	// Probes maps field name to its values on the probe grid; nil on frames
	// that were not sampled.
	Probes map[string][]dynamo.Vec3
}

type Config struct {
	FPS      float64
	Duration float64
	// ProbeEvery samples the probe grid every n-th frame; zero disables it.
	ProbeEvery int
}

func DefaultConfig() Config {
	return Config{FPS: 30, Duration: 10}
}

func (c Config) Validate() error {
	if !(c.FPS > 0) {
		return fmt.Errorf("fps must be positive, got %f", c.FPS)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.ProbeEvery < 0 {
		return fmt.Errorf("probe interval must not be negative, got %d", c.ProbeEvery)
	}
	return nil
}

// Frames is the number of frames Run will drive.
func (c Config) Frames() int {
	return int(c.Duration*c.FPS + 0.5)
}

// ProbeSample is one field evaluated over the probe grid.
type ProbeSample struct {
	Frame  int
	Time   float64
	Field  string
	Values []dynamo.Vec3
}

type Result struct {
	Times       []float64
	States      [][]particle.State
	ProbePoints []dynamo.Vec3
	Probes      []ProbeSample
	Metrics     map[string]float64
	FramesRun   int
}
