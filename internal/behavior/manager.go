package behavior

import (
	"fmt"

	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/render"
)

// Manager is an ordered behavior registry. It implements render.Hooks and
// fans every event out to the registered behaviors in registration order,
// so a behavior can rely on everything registered before it having already
// run for the current event.
type Manager struct {
	opts    Options
	entries []Behavior
	byName  map[string]int
}

func NewManager(r *render.Renderer, sel *Selection, opts Options) *Manager {
	m := &Manager{byName: make(map[string]int)}
	opts.Selection = sel
	if opts.Camera == nil {
		opts.Camera = r.Camera()
	}
	if opts.Sim == nil {
		opts.Sim = r.Simulation()
	}
	opts.Nodes = func() []*graph.Node {
		if g := r.Graph(); g != nil {
			return g.Nodes
		}
		return nil
	}
	opts.Links = func() []*graph.Link {
		if g := r.Graph(); g != nil {
			return g.Links
		}
		return nil
	}
	opts.LinksOf = func(n *graph.Node) []*graph.Link {
		if g := r.Graph(); g != nil {
			return g.LinksOf(n)
		}
		return nil
	}
	opts.Visuals = r.Visuals
	opts.VisualByKey = r.VisualByKey
	opts.Schedule = r.Schedule
	opts.EnergyHistory = r.EnergyHistory
	m.opts = opts
	return m
}

// Register constructs exactly one instance via build. A duplicate name is
// a configuration error: it fails before build runs, so no second instance
// ever exists.
func (m *Manager) Register(name string, build func(Options) Behavior) error {
	if _, dup := m.byName[name]; dup {
		return fmt.Errorf("behavior: %q already registered", name)
	}
	index := len(m.entries)
	opts := m.opts
	opts.State = func(other string) any {
		j, ok := m.byName[other]
		if !ok {
			panic(fmt.Sprintf("behavior: %q queried unregistered behavior %q", name, other))
		}
		if j > index {
			panic(fmt.Sprintf("behavior: %q queried %q, which is registered after it", name, other))
		}
		if s, ok := m.entries[j].(Stateful); ok {
			return s.State()
		}
		return nil
	}
	b := build(opts)
	m.byName[name] = index
	m.entries = append(m.entries, b)
	return nil
}

func (m *Manager) Get(name string) Behavior {
	i, ok := m.byName[name]
	if !ok {
		return nil
	}
	return m.entries[i]
}

func (m *Manager) Len() int { return len(m.entries) }

// State reads a behavior's state from outside the registry, without the
// ordering contract. Returns nil for unknown or stateless behaviors.
func (m *Manager) State(name string) any {
	if s, ok := m.Get(name).(Stateful); ok {
		return s.State()
	}
	return nil
}

func (m *Manager) VisualCreated(n *graph.Node, v *render.Visual, i int) {
	for _, b := range m.entries {
		if h, ok := b.(VisualCreatedHook); ok {
			h.VisualCreated(n, v, i)
		}
	}
}

func (m *Manager) VisualsReady() {
	for _, b := range m.entries {
		if h, ok := b.(VisualsReadyHook); ok {
			h.VisualsReady()
		}
	}
}

func (m *Manager) RenderTick() {
	for _, b := range m.entries {
		if h, ok := b.(RenderTickHook); ok {
			h.RenderTick()
		}
	}
}

func (m *Manager) PointerDown(p geom.Vec) {
	for _, b := range m.entries {
		if h, ok := b.(PointerHook); ok {
			h.PointerDown(p)
		}
	}
}

func (m *Manager) PointerMove(p geom.Vec) {
	for _, b := range m.entries {
		if h, ok := b.(PointerHook); ok {
			h.PointerMove(p)
		}
	}
}

func (m *Manager) PointerUp(p geom.Vec) {
	for _, b := range m.entries {
		if h, ok := b.(PointerHook); ok {
			h.PointerUp(p)
		}
	}
}

// Key dispatches until a behavior consumes the key.
func (m *Manager) Key(k string) bool {
	for _, b := range m.entries {
		if h, ok := b.(KeyHook); ok && h.Key(k) {
			return true
		}
	}
	return false
}

func (m *Manager) Paint(c *render.Canvas) {
	for _, b := range m.entries {
		if h, ok := b.(Painter); ok {
			h.Paint(c)
		}
	}
}

func (m *Manager) Status() []string {
	var lines []string
	for _, b := range m.entries {
		if h, ok := b.(StatusProvider); ok {
			lines = append(lines, h.Status()...)
		}
	}
	return lines
}
