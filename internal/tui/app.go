package tui

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/metrics"
	"github.com/san-kum/emsim/internal/sim"
	"github.com/san-kum/emsim/internal/waves"
)

const trailLength = 40

type frameMsg sim.Frame

type doneMsg struct{ err error }

// Model follows a scene running in the background. Frames arrive one at a
// time; while paused none are pulled, which stalls the producer.
type Model struct {
	name   string
	total  int
	frames <-chan sim.Frame
	done   <-chan error
	cancel context.CancelFunc

	last     sim.Frame
	count    int
	paused   bool
	waiting  bool
	finished bool
	err      error

	canvas *Canvas
	trails map[string][]dynamo.Vec3
	energy []float64

	rings      *waves.Rings
	ringSource string

	width, height int
}

// Start runs scene for cfg in a goroutine and returns a model reporting on
// it. Quitting the model cancels the run.
func Start(ctx context.Context, name string, scene *sim.Scene, cfg sim.Config) *Model {
	ctx, cancel := context.WithCancel(ctx)
	frames := make(chan sim.Frame)
	done := make(chan error, 1)

	go func() {
		err := scene.RunWithCallback(ctx, cfg, func(f sim.Frame) bool {
			select {
			case frames <- f:
				return true
			case <-ctx.Done():
				return false
			}
		})
		close(frames)
		done <- err
	}()

	return newModel(name, cfg.Frames(), frames, done, cancel)
}

func newModel(name string, total int, frames <-chan sim.Frame, done <-chan error, cancel context.CancelFunc) *Model {
	return &Model{
		name:   name,
		total:  total,
		frames: frames,
		done:   done,
		cancel: cancel,
		trails: make(map[string][]dynamo.Vec3),
		width:  80,
		height: 24,
	}
}

// SetRings draws r as wavefronts centred on the named particle, advancing
// its clock with every frame.
func (m *Model) SetRings(r *waves.Rings, source string) {
	m.rings = r
	m.ringSource = source
}

func (m *Model) next() tea.Cmd {
	m.waiting = true
	return func() tea.Msg {
		f, ok := <-m.frames
		if !ok {
			return doneMsg{err: <-m.done}
		}
		return frameMsg(f)
	}
}

func (m *Model) Init() tea.Cmd { return m.next() }

func (m *Model) Err() error { return m.err }

func (m *Model) Finished() bool { return m.finished }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit
		case " ", "p":
			if m.finished {
				return m, nil
			}
			m.paused = !m.paused
			if !m.paused && !m.waiting {
				return m, m.next()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.canvas = nil
		return m, nil

	case frameMsg:
		m.waiting = false
		m.observe(sim.Frame(msg))
		if m.paused {
			return m, nil
		}
		return m, m.next()

	case doneMsg:
		m.waiting = false
		m.finished = true
		m.err = msg.err
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) observe(f sim.Frame) {
	m.last = f
	m.count++
	if m.rings != nil {
		m.rings.Update(f.Dt)
	}
	m.energy = append(m.energy, metrics.TotalKinetic(f.States))
	if len(m.energy) > 120 {
		m.energy = m.energy[1:]
	}
	for _, s := range f.States {
		tr := append(m.trails[s.Name], s.Center)
		if len(tr) > trailLength {
			tr = tr[1:]
		}
		m.trails[s.Name] = tr
	}
}

func (m *Model) progress() float64 {
	if m.total == 0 {
		return 1
	}
	return min(1, float64(m.count)/float64(m.total))
}

func (m *Model) View() string {
	var b strings.Builder

	status := green.Render("● running")
	switch {
	case m.err != nil:
		status = red.Render("✗ " + m.err.Error())
	case m.finished:
		status = cyan.Render("✓ done")
	case m.paused:
		status = yellow.Render("○ paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s  %s\n", cyan.Render(m.name), status))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n",
		ProgressBar(m.progress(), 36),
		dim.Render(fmt.Sprintf("%3.0f%%", m.progress()*100)),
		dim.Render(fmt.Sprintf("t=%.2fs frame %d/%d", m.last.Time, m.count, m.total))))

	b.WriteString(m.drawScene())

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(40), asciigraph.Caption("kinetic energy"))
		b.WriteString("\n" + chart + "\n")
	}

	b.WriteString(m.stateLines())
	b.WriteString("\n" + dim.Render("   space pause  q quit") + "\n")
	return b.String()
}

func (m *Model) drawScene() string {
	cw := max(m.width-6, 40)
	ch := max(m.height-16, 10)
	if m.canvas == nil || m.canvas.w != cw || m.canvas.h != ch {
		m.canvas = NewCanvas(cw, ch)
	}
	c := m.canvas
	c.Clear()

	names := m.names()
	for _, name := range names {
		c.Fit(m.trails[name]...)
	}
	m.drawRings(c)
	for _, name := range names {
		for _, p := range m.trails[name] {
			c.Plot(p, '·')
		}
	}
	for _, s := range m.last.States {
		r := 'o'
		switch {
		case s.Charge > 0:
			r = '+'
		case s.Charge < 0:
			r = '-'
		}
		c.Plot(s.Center, r)
	}

	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(c.String(), "\n"), "\n") {
		b.WriteString("   " + line + "\n")
	}
	return b.String()
}

func (m *Model) drawRings(c *Canvas) {
	if m.rings == nil {
		return
	}
	var center dynamo.Vec3
	found := false
	for _, s := range m.last.States {
		if s.Name == m.ringSource {
			center, found = s.Center, true
			break
		}
	}
	if !found {
		return
	}

	widths := m.rings.Widths()
	for i, r := range m.rings.Radii() {
		if r <= 1e-3 {
			continue
		}
		glyph := '·'
		switch {
		case widths[i] > 0.6:
			glyph = '○'
		case widths[i] > 0.3:
			glyph = '∘'
		}
		const segments = 64
		for k := 0; k < segments; k++ {
			sin, cos := math.Sincos(2 * math.Pi * float64(k) / segments)
			c.Plot(center.Add(dynamo.V(r*cos, r*sin, 0)), glyph)
		}
	}
}

func (m *Model) stateLines() string {
	var b strings.Builder
	for _, s := range m.last.States {
		b.WriteString(fmt.Sprintf("   %s %s %s\n",
			white.Render(fmt.Sprintf("%-10s", s.Name)),
			dim.Render("r="+s.Center.String()),
			dim.Render(fmt.Sprintf("|v|=%.3f", s.Velocity.Norm()))))
	}
	return b.String()
}

func (m *Model) names() []string {
	names := make([]string, 0, len(m.trails))
	for name := range m.trails {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run shows the model full-screen until the scene finishes or the user
// quits, and returns the run's error.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return m.err
}
