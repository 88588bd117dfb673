package particle

import "github.com/san-kum/emsim/internal/dynamo"

// Update advances the particle by one frame of length dt: Integrate, then
// IncrementClock. A zero dt leaves the particle untouched, history included.
//
// It reports whether recording this frame compacted the history buffer.
func (p *Particle) Update(dt float64) (bool, error) {
	if err := p.Integrate(dt); err != nil {
		return false, err
	}
	return p.IncrementClock(dt), nil
}

// Integrate moves the particle through one frame without committing it to
// the clock or history: scripted motion or force integration, then
// constraints. Drivers that advance several particles call Integrate on all
// of them before any IncrementClock, so no particle reads another's history
// for the frame still in progress.
func (p *Particle) Integrate(dt float64) error {
	if dt == 0 {
		return nil
	}

	if p.motion != nil {
		next := p.motion.Position(p.time + dt)
		p.velocity = next.Sub(p.center).Scale(1 / dt)
		p.center = next
	} else if err := p.stepper.Advance(p, p.netForce, dt); err != nil {
		return err
	}

	for _, c := range p.constraints {
		c(p)
	}
	if !p.center.IsValid() || !p.velocity.IsValid() {
		return dynamo.ErrInvalidState
	}
	return nil
}

// IncrementClock commits the current center for frame dt: the clock moves,
// the recent positions shift and, when tracking, one history sample is
// written. Zero dt is ignored.
func (p *Particle) IncrementClock(dt float64) bool {
	if dt == 0 {
		return false
	}
	p.time += dt
	p.timeStep = dt
	p.recent.Push(p.center)
	if p.hist == nil {
		return false
	}
	return p.hist.Record(p.center, p.Acceleration())
}

// State is a plain copy of a particle's physical record.
type State struct {
	Name         string      `json:"name"`
	Time         float64     `json:"time"`
	Charge       float64     `json:"charge"`
	Mass         float64     `json:"mass"`
	Center       dynamo.Vec3 `json:"center"`
	Velocity     dynamo.Vec3 `json:"velocity"`
	Acceleration dynamo.Vec3 `json:"acceleration"`
}

func (p *Particle) Snapshot() State {
	return State{
		Name:         p.name,
		Time:         p.time,
		Charge:       p.charge,
		Mass:         p.mass,
		Center:       p.center,
		Velocity:     p.velocity,
		Acceleration: p.Acceleration(),
	}
}
