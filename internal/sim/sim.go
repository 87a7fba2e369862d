// Package sim is the force-directed layout simulation: an alpha-decay tick
// loop over dictionary-article nodes, with forces registered as named
// plugins. Everything runs synchronously inside Tick; there is no background
// goroutine, so force complexity directly bounds per-frame latency.
package sim

import (
	"math"

	"github.com/san-kum/lexigraph/internal/graph"
)

// Force is the simulation's plugin contract: Initialize once per node-set
// change, Apply once per tick. Forces read the shared pre-tick position
// snapshot and nudge velocities (or, for the center force, positions).
type Force interface {
	Initialize(nodes []*graph.Node)
	Apply(alpha float64)
}

// Observer is notified after every tick.
type Observer interface {
	OnTick(alpha float64)
}

// Metric accumulates a scalar over the run, in the style of the debug
// overlay's energy readouts.
type Metric interface {
	Name() string
	Observe(nodes []*graph.Node, alpha float64)
	Value() float64
	Reset()
}

const (
	defaultAlphaMin      = 0.001
	defaultVelocityDecay = 0.4
	// Decay tuned so alpha crosses alphaMin after roughly 300 free ticks.
	defaultDecayTicks = 300
)

type namedForce struct {
	name  string
	force Force
}

// Simulation owns the node set and the ordered force list. Force order is
// fixed at registration and matters: the collision force must run after the
// spatial index behavior refreshed the tree for this tick.
type Simulation struct {
	nodes  []*graph.Node
	forces []namedForce

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64

	observers []Observer
	metrics   []Metric
	stopped   bool
}

func New() *Simulation {
	return &Simulation{
		alpha:         1,
		alphaMin:      defaultAlphaMin,
		alphaDecay:    1 - math.Pow(defaultAlphaMin, 1/float64(defaultDecayTicks)),
		velocityDecay: defaultVelocityDecay,
	}
}

// SetNodes replaces the node set wholesale and re-initializes every force.
// In-flight state (alpha, stop flag) resets; there is no partial swap.
func (s *Simulation) SetNodes(nodes []*graph.Node) {
	s.nodes = nodes
	s.alpha = 1
	s.stopped = false
	for _, nf := range s.forces {
		nf.force.Initialize(nodes)
	}
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Simulation) Nodes() []*graph.Node { return s.nodes }

// AddForce registers a force under a name, replacing any force already
// registered under it. Order of first registration is preserved.
func (s *Simulation) AddForce(name string, f Force) {
	f.Initialize(s.nodes)
	for i, nf := range s.forces {
		if nf.name == name {
			s.forces[i].force = f
			return
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
}

// Force returns the registered force, or nil.
func (s *Simulation) Force(name string) Force {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force
		}
	}
	return nil
}

// ForceNames lists the registered forces in application order.
func (s *Simulation) ForceNames() []string {
	names := make([]string, len(s.forces))
	for i, nf := range s.forces {
		names[i] = nf.name
	}
	return names
}

func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulation) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }

func (s *Simulation) Alpha() float64       { return s.alpha }
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

func (s *Simulation) SetAlpha(a float64) {
	s.alpha = a
	if a >= s.alphaMin {
		s.stopped = false
	}
}

// TargetAware forces track the simulation's alpha target; the collision
// ramp needs it to keep its meaning while the layout is held hot.
type TargetAware interface {
	SetAlphaTarget(target float64)
}

// SetAlphaTarget raises or lowers the decay target; a target above alphaMin
// keeps the simulation hot (used while dragging).
func (s *Simulation) SetAlphaTarget(t float64) {
	s.alphaTarget = t
	if t >= s.alphaMin {
		s.stopped = false
	}
	for _, nf := range s.forces {
		if ta, ok := nf.force.(TargetAware); ok {
			ta.SetAlphaTarget(t)
		}
	}
}

// Stop freezes the simulation immediately; Tick becomes a no-op until
// alpha or the target is raised again.
func (s *Simulation) Stop()        { s.stopped = true }
func (s *Simulation) Active() bool { return !s.stopped }

// Reheat restarts decay from the given alpha, typically after a layout
// perturbation.
func (s *Simulation) Reheat(alpha float64) {
	if alpha <= 0 {
		alpha = 0.5
	}
	s.SetAlpha(alpha)
}

// Tick advances the simulation one step: decay alpha, apply each force in
// order, then integrate velocities into positions. Pinned nodes snap to
// their override and accumulate no velocity.
func (s *Simulation) Tick() {
	if s.stopped {
		return
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, nf := range s.forces {
		nf.force.Apply(s.alpha)
	}

	for _, n := range s.nodes {
		if n.FX != nil {
			n.X = *n.FX
			n.VX = 0
		} else {
			n.VX *= s.velocityDecay
			n.X += n.VX
		}
		if n.FY != nil {
			n.Y = *n.FY
			n.VY = 0
		} else {
			n.VY *= s.velocityDecay
			n.Y += n.VY
		}
	}

	for _, m := range s.metrics {
		m.Observe(s.nodes, s.alpha)
	}
	for _, o := range s.observers {
		o.OnTick(s.alpha)
	}

	if s.alpha < s.alphaMin {
		s.stopped = true
	}
}
