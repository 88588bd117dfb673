package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/emsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "euler", cfg.Integrator)
	assert.Positive(t, cfg.FPS)
	assert.Positive(t, cfg.Duration)
	assert.NoError(t, cfg.Validate())
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			require.NotNil(t, cfg)
			assert.NoError(t, cfg.Validate())
			assert.Equal(t, name, cfg.Name)
		})
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("nonexistent"))
}

func TestParse(t *testing.T) {
	data := []byte(`
name: pair
fps: 60
duration: 2
particles:
  - name: a
    position: {x: -1, y: 0, z: 0}
    charge: 2
    track_history: false
  - name: b
    position: {x: 1, y: 0, z: 0}
    mass: 3
    spring: {k: 2}
    field_forces: [e]
fields:
  - name: e
    kind: coulomb
    sources: [a]
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 60.0, cfg.FPS)
	assert.Equal(t, DefaultIntegrator, cfg.Integrator, "unset keys keep defaults")
	require.Len(t, cfg.Particles, 2)
	assert.Equal(t, dynamo.V(-1, 0, 0), cfg.Particles[0].Position)
	require.NotNil(t, cfg.Particles[0].TrackHistory)
	assert.False(t, *cfg.Particles[0].TrackHistory)
	assert.Equal(t, 2.0, cfg.Particles[1].Spring.K)

	params := cfg.Fields[0].Params()
	assert.Equal(t, 2.0, params.C)
	assert.Equal(t, 0.025, params.Epsilon0)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"zero mass", "particles: [{name: a, mass: 0}]", dynamo.ErrInvalidMass},
		{"negative radius", "particles: [{name: a, radius: -1}]", dynamo.ErrInvalidRadius},
		{"zero radius", "particles: [{name: a, radius: 0}]", dynamo.ErrInvalidRadius},
		{"tiny history", "particles: [{name: a, history_size: 1}]", dynamo.ErrInvalidCapacity},
		{"unknown field kind", "fields: [{name: g, kind: gravity}]", dynamo.ErrUnknownField},
		{"negative field radius", "fields: [{name: e, kind: coulomb, radius: -2}]", dynamo.ErrNegativeRadius},
		{"unknown field force", "particles: [{name: a, field_forces: [nope]}]", dynamo.ErrUnknownField},
		{"no substeps", "substeps: -1", dynamo.ErrInvalidSubsteps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse([]byte("particles: [{name: a}, {name: a}]"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = Parse([]byte("fields: [{name: e, kind: coulomb, sources: [ghost]}]"))
	assert.ErrorContains(t, err, "ghost")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	orig := GetPreset("spring_pair")
	require.NoError(t, Save(path, orig))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, orig.Name, loaded.Name)
	assert.Equal(t, orig.Integrator, loaded.Integrator)
	require.Len(t, loaded.Particles, 2)
	assert.Equal(t, []string{"radiation"}, loaded.Particles[1].FieldForces)
}

func TestParseWaveMotion(t *testing.T) {
	data := []byte(`
particles:
  - name: rider
    wave: {x: 0.5, y_amplitude: 1, wave_length: 2, speed: 1}
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	p := cfg.Particles[0]
	require.NotNil(t, p.Wave)
	assert.Equal(t, 0.5, p.Wave.X)
	assert.Equal(t, 2.0, p.Wave.WaveLength)

	m := p.Motion()
	require.NotNil(t, m)
	// sin(2π·0.5/2 - 0) = 1 at t=0
	assert.InDelta(t, 1.0, m.Position(0).Y, 1e-12)
	assert.Equal(t, 0.5, m.Position(0.3).X)

	_, err = Parse([]byte("particles: [{name: a, wave: {wave_length: 0}}]"))
	assert.ErrorContains(t, err, "wave_length")

	_, err = Parse([]byte("particles: [{name: a, wave: {wave_length: 1}, oscillation: {amplitude: 1}}]"))
	assert.ErrorContains(t, err, "exclusive")
}
