package render

import (
	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/logging"
	"github.com/san-kum/lexigraph/internal/sim"
	"github.com/san-kum/lexigraph/internal/snapshot"
	"github.com/san-kum/lexigraph/internal/statebus"
)

// Hooks are the per-lifecycle callbacks the renderer hands to the behavior
// layer. The renderer never knows concrete behaviors.
type Hooks interface {
	VisualCreated(n *graph.Node, v *Visual, i int)
	VisualsReady()
	RenderTick()
}

type Params struct {
	LinkDistance   float64
	ChargeStrength float64
	ChargeTheta    float64
	WarmupTicks    int
}

func DefaultParams() Params {
	return Params{
		LinkDistance:   60,
		ChargeStrength: -240,
		ChargeTheta:    0.9,
		WarmupTicks:    200,
	}
}

const edgeTint = "240"

// Renderer owns the simulation and the visual set. Per frame it runs the
// behavior tick, advances the simulation while it is active, copies node
// positions into visuals and signals completion on the bus.
type Renderer struct {
	simulation *sim.Simulation
	graph      *graph.Graph
	camera     *Camera
	bus        *statebus.Scoped
	log        logging.Logger
	params     Params

	hooks   Hooks
	visuals []*Visual
	byKey   map[graph.NodeKey]*Visual

	// queue holds work deferred to the end of the current frame, so force
	// listeners never run inside a tick.
	queue []func()

	energy   *sim.KineticEnergy
	movement *sim.MeanMovement
}

func NewRenderer(camera *Camera, bus *statebus.Scoped, log logging.Logger, params Params) *Renderer {
	r := &Renderer{
		simulation: sim.New(),
		camera:     camera,
		bus:        bus,
		log:        log,
		params:     params,
		byKey:      make(map[graph.NodeKey]*Visual),
		energy:     sim.NewKineticEnergy(600),
		movement:   sim.NewMeanMovement(),
	}
	r.simulation.AddMetric(r.energy)
	r.simulation.AddMetric(r.movement)

	// reload re-runs the full layout over the current data set
	bus.On("reload", func(any) {
		if r.graph != nil {
			r.SetData(r.graph, nil)
		}
	})
	bus.On("positions:request", func(any) {
		bus.Emit("positions:response", r.CapturePositions())
	})
	return r
}

func (r *Renderer) SetHooks(h Hooks) { r.hooks = h }

func (r *Renderer) Simulation() *sim.Simulation { return r.simulation }
func (r *Renderer) Graph() *graph.Graph         { return r.graph }
func (r *Renderer) Camera() *Camera             { return r.camera }
func (r *Renderer) Visuals() []*Visual          { return r.visuals }
func (r *Renderer) EnergyHistory() []float64    { return r.energy.History() }

func (r *Renderer) VisualByKey(key graph.NodeKey) *Visual {
	return r.byKey[key]
}

// Schedule defers fn to the end of the current frame.
func (r *Renderer) Schedule(fn func()) {
	r.queue = append(r.queue, fn)
}

// SetData replaces the whole node and link set and rebuilds every visual.
// When saved covers every supplied node the layout is applied as-is and
// the simulation stops immediately; otherwise the simulation is advanced
// synchronously for the warm-up tick count before the first paint, so the
// chaotic initial clustering never reaches the screen.
func (r *Renderer) SetData(g *graph.Graph, saved snapshot.Positions) {
	r.graph = g
	r.visuals = r.visuals[:0]
	r.byKey = make(map[graph.NodeKey]*Visual, len(g.Nodes))

	charge := sim.NewChargeForce(r.params.ChargeStrength)
	charge.Theta = r.params.ChargeTheta
	r.simulation.AddForce("link", sim.NewLinkForce(g, r.params.LinkDistance))
	r.simulation.AddForce("charge", charge)
	r.simulation.AddForce("center", sim.NewCenterForce(0, 0))

	restored := saved != nil && saved.Covers(nodeIDs(g))
	if restored {
		for _, n := range g.Nodes {
			p := saved[n.Key().String()]
			n.X, n.Y = float64(p.X), float64(p.Y)
			n.VX, n.VY = 0, 0
		}
	} else {
		g.SeedPositions()
	}
	r.simulation.SetNodes(g.Nodes)

	for i, n := range g.Nodes {
		v := NewVisual(n)
		r.visuals = append(r.visuals, v)
		r.byKey[n.Key()] = v
		if r.hooks != nil {
			r.hooks.VisualCreated(n, v, i)
		}
	}
	if r.hooks != nil {
		r.hooks.VisualsReady()
	}

	if restored {
		r.simulation.Stop()
		r.log.Info("layout restored from snapshot", logging.F("nodes", len(g.Nodes)))
	} else {
		r.simulation.SetAlpha(1)
		for i := 0; i < r.params.WarmupTicks && r.simulation.Active(); i++ {
			if r.hooks != nil {
				r.hooks.RenderTick()
			}
			r.simulation.Tick()
		}
	}
	r.copyPositions()
	r.drain()
}

// Frame runs one render tick: behavior hooks, one simulation step while
// active, position copy, deferred work, then the render:done event.
func (r *Renderer) Frame() {
	if r.hooks != nil {
		r.hooks.RenderTick()
	}
	if r.simulation.Active() {
		r.simulation.Tick()
	}
	r.copyPositions()
	r.drain()
	r.bus.Emit("render:done", nil)
}

func (r *Renderer) copyPositions() {
	zoom := r.camera.Zoom
	for _, v := range r.visuals {
		v.X, v.Y = v.Node.X, v.Node.Y
		v.Text = v.ResolveLabel(zoom)
	}
}

func (r *Renderer) drain() {
	for len(r.queue) > 0 {
		q := r.queue
		r.queue = nil
		for _, fn := range q {
			fn()
		}
	}
}

// CapturePositions rounds the current layout into a persistable snapshot.
func (r *Renderer) CapturePositions() snapshot.Positions {
	if r.graph == nil {
		return snapshot.Positions{}
	}
	p := make(snapshot.Positions, len(r.graph.Nodes))
	for _, n := range r.graph.Nodes {
		p[n.Key().String()] = snapshot.Round(n.X, n.Y)
	}
	return p
}

// Draw paints edges then node labels onto the canvas.
func (r *Renderer) Draw(c *Canvas) {
	if r.graph == nil {
		return
	}
	for _, l := range r.graph.Links {
		a := r.camera.WorldToScreen(geom.Vec{X: l.Source.X, Y: l.Source.Y})
		b := r.camera.WorldToScreen(geom.Vec{X: l.Target.X, Y: l.Target.Y})
		c.DrawLine(int(a.X), int(a.Y), int(b.X), int(b.Y), edgeTint)
	}
	for _, v := range r.visuals {
		s := r.camera.WorldToScreen(geom.Vec{X: v.X, Y: v.Y})
		col := int(s.X)/2 - len([]rune(v.Text))/2
		row := int(s.Y) / 4
		c.WriteText(col, row, v.Text, v.Tint)
	}
}

func nodeIDs(g *graph.Graph) []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.Key().String()
	}
	return ids
}
