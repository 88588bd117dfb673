package config

import (
	"math"
	"sort"

	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/field"
	"github.com/san-kum/emsim/internal/particle"
	"github.com/san-kum/emsim/internal/waves"
)

func f64(v float64) *float64 { return &v }
func yes() *bool             { b := true; return &b }
func no() *bool              { b := false; return &b }

var Presets = map[string]*Config{
	"oscillating_charge": {
		Name: "oscillating_charge", FPS: 30, Duration: 10, Integrator: "euler", Substeps: 10,
		ProbeEvery: 15,
		Probe:      &field.Grid{Min: dynamo.V(-8, -4, 0), Max: dynamo.V(8, 4, 0), Step: 1},
		Particles: []ParticleConfig{{
			Name: "q", Radius: f64(0.15), TrackHistory: yes(),
			Oscillation: &particle.Oscillation{Direction: dynamo.V(0, 1, 0), Amplitude: 0.25, Frequency: 0.5},
		}},
		Fields: []FieldConfig{{Name: "lorentz", Kind: "lorentz", Radius: 1.0, C: 2.0}},
	},
	"dipole": {
		Name: "dipole", FPS: 30, Duration: 5, Integrator: "euler", Substeps: 10,
		ProbeEvery: 30,
		Probe:      &field.Grid{Min: dynamo.V(-3, -3, 0), Max: dynamo.V(3, 3, 0), Step: 0.5},
		Particles: []ParticleConfig{
			{Name: "plus", Position: dynamo.V(-1, 0, 0), Charge: f64(1), TrackHistory: no()},
			{Name: "minus", Position: dynamo.V(1, 0, 0), Charge: f64(-1), TrackHistory: no()},
		},
		Fields: []FieldConfig{{Name: "coulomb", Kind: "coulomb"}},
	},
	"spring_pair": {
		Name: "spring_pair", FPS: 30, Duration: 20, Integrator: "leapfrog", Substeps: 10,
		Particles: []ParticleConfig{
			{
				Name: "driver", Position: dynamo.V(0, 1, 0), Charge: f64(1),
				Spring: &SpringConfig{K: 4, Center: &dynamo.Vec3{}},
			},
			{
				Name: "receiver", Position: dynamo.V(6, 0, 0), Charge: f64(1), Mass: f64(0.5),
				Spring:      &SpringConfig{K: 1},
				FieldForces: []string{"radiation"},
			},
		},
		Fields: []FieldConfig{{Name: "radiation", Kind: "lorentz", Sources: []string{"driver"}}},
	},
	"twisted_wave": {
		Name: "twisted_wave", FPS: 30, Duration: 8, Integrator: "euler", Substeps: 10,
		ProbeEvery: 30,
		Probe:      &field.Grid{Min: dynamo.V(-6, -6, 0), Max: dynamo.V(6, 6, 0), Step: 1},
		Particles: []ParticleConfig{{
			Name: "rider", Radius: f64(0.15),
			Wave: &WaveMotion{
				Oscillator: waves.Oscillator{YAmplitude: 0.3, ZAmplitude: 0.3, ZPhase: math.Pi / 2, WaveLength: 2, TwistRate: 0.25, Speed: 1},
			},
		}},
		Fields: []FieldConfig{{Name: "lorentz", Kind: "lorentz", Radius: 1.0}},
	},
	"free_charge": {
		Name: "free_charge", FPS: 30, Duration: 10, Integrator: "euler", Substeps: 10,
		Particles: []ParticleConfig{
			{Name: "anchor", Charge: f64(2), TrackHistory: no()},
			{
				Name: "probe", Position: dynamo.V(2, 0, 0), Velocity: dynamo.V(0, 1, 0), Charge: f64(-1),
				FieldForces: []string{"coulomb"},
			},
		},
		Fields: []FieldConfig{{Name: "coulomb", Kind: "coulomb", Sources: []string{"anchor"}}},
	},
}

// GetPreset returns a copy of the named preset that callers may modify, or
// nil when there is no such preset.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Particles = append([]ParticleConfig(nil), cfg.Particles...)
	c.Fields = append([]FieldConfig(nil), cfg.Fields...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
