package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/particle"
	"github.com/san-kum/emsim/internal/sim"
	"github.com/san-kum/emsim/internal/waves"
)

func frame(i int, x float64) frameMsg {
	return frameMsg(sim.Frame{
		Index: i,
		Time:  float64(i) / 30,
		Dt:    1.0 / 30,
		States: []particle.State{
			{Name: "q", Charge: 1, Mass: 1, Center: dynamo.V(x, 0, 0), Velocity: dynamo.V(1, 0, 0)},
		},
	})
}

func TestModelProgress(t *testing.T) {
	cancelled := false
	m := newModel("demo", 4, nil, nil, func() { cancelled = true })

	_, cmd := m.Update(frame(1, 0.1))
	require.NotNil(t, cmd)
	_, _ = m.Update(frame(2, 0.2))

	assert.Equal(t, 0.5, m.progress())
	view := m.View()
	assert.Contains(t, view, "demo")
	assert.Contains(t, view, "50%")
	assert.Contains(t, view, "+")
	assert.Len(t, m.trails["q"], 2)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.True(t, cancelled)
}

func TestModelPause(t *testing.T) {
	m := newModel("demo", 10, nil, nil, func() {})

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	assert.True(t, m.paused)
	assert.Contains(t, m.View(), "paused")

	// a frame already in flight is shown but no further frame is requested
	_, cmd := m.Update(frame(1, 0))
	assert.Nil(t, cmd)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	assert.False(t, m.paused)
	assert.NotNil(t, cmd)
}

func TestModelTrailIsBounded(t *testing.T) {
	m := newModel("demo", 100, nil, nil, func() {})
	for i := 0; i < trailLength+10; i++ {
		m.observe(sim.Frame(frame(i, float64(i))))
	}
	assert.Len(t, m.trails["q"], trailLength)
	assert.Equal(t, dynamo.V(float64(trailLength+9), 0, 0), m.trails["q"][trailLength-1])
}

func TestModelRings(t *testing.T) {
	m := newModel("demo", 100, nil, nil, func() {})
	r := waves.NewRings()
	m.SetRings(r, "q")
	for i := 1; i <= 15; i++ {
		m.observe(sim.Frame(frame(i, 0)))
	}
	assert.InDelta(t, 0.5, r.Time(), 1e-9)
	assert.Contains(t, m.View(), "○")
}

func TestStartDrivesScene(t *testing.T) {
	p, err := particle.New(dynamo.V(0, 0, 0), particle.WithName("drift"), particle.WithVelocity(dynamo.V(1, 0, 0)))
	require.NoError(t, err)
	scene := sim.New(nil)
	scene.AddParticle(p)

	m := Start(context.Background(), "drift", scene, sim.Config{FPS: 10, Duration: 1})
	cmd := m.Init()
	for cmd != nil {
		msg := cmd()
		if _, ok := msg.(tea.QuitMsg); ok {
			break
		}
		_, cmd = m.Update(msg)
	}

	assert.True(t, m.Finished())
	assert.NoError(t, m.Err())
	assert.Equal(t, 10, m.count)
	assert.InDelta(t, 1.0, m.last.States[0].Center.X, 1e-9)
	assert.Contains(t, m.View(), "done")
}

func TestFieldTable(t *testing.T) {
	pts := []dynamo.Vec3{dynamo.V(0, 0, 0), dynamo.V(1, 0, 0), dynamo.V(2, 0, 0)}
	vals := []dynamo.Vec3{dynamo.V(1, 0, 0), {}, dynamo.V(0.25, 0, 0)}

	out := FieldTable("coulomb", pts, vals, 2)
	assert.Contains(t, out, "coulomb")
	assert.Contains(t, out, "3 points")
	assert.Contains(t, out, "1 more")
	assert.NotContains(t, out, "2.000")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▄█", Sparkline([]float64{0, 0.5, 1}, 10))
	assert.Equal(t, "▁▂", Sparkline([]float64{5, 0, 1}, 2))
	assert.Empty(t, Sparkline(nil, 10))
}
