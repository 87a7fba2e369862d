package behavior

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/logging"
	"github.com/san-kum/lexigraph/internal/render"
	"github.com/san-kum/lexigraph/internal/snapshot"
	"github.com/san-kum/lexigraph/internal/statebus"
)

type rig struct {
	bus      *statebus.Bus
	scoped   *statebus.Scoped
	camera   *render.Camera
	renderer *render.Renderer
	sel      *Selection
	manager  *Manager
}

// newRig wires the full behavior stack over a frozen layout: the snapshot
// covers every node, so the simulation stops and positions stay exact.
func newRig(t *testing.T, positions map[string][2]float64) *rig {
	t.Helper()
	log := logging.Discard()
	bus := statebus.New(log)
	scoped := bus.Scoped("graph")

	camera := render.NewCamera()
	camera.SetViewport(240, 240)

	renderer := render.NewRenderer(camera, scoped, log, render.Params{
		LinkDistance:   60,
		ChargeStrength: -240,
		ChargeTheta:    0.9,
		WarmupTicks:    0,
	})

	sel := NewSelection()
	m := NewManager(renderer, sel, Options{Bus: scoped, Log: log})
	require.NoError(t, m.Register("spatialindex", NewSpatialIndex))
	require.NoError(t, m.Register("drag", NewDrag))
	require.NoError(t, m.Register("selection", NewSelect))
	require.NoError(t, m.Register("tint", NewTint))
	require.NoError(t, m.Register("collide", func(o Options) Behavior {
		return NewCollide(o, 1, 20, 0)
	}))
	require.NoError(t, m.Register("grid", NewGrid))
	require.NoError(t, m.Register("debug", NewDebug))
	renderer.SetHooks(m)

	names := make([]string, 0, len(positions))
	for name := range positions {
		names = append(names, name)
	}
	sort.Strings(names)

	nodes := make([]*graph.Node, 0, len(names))
	saved := make(snapshot.Positions, len(names))
	for _, name := range names {
		p := positions[name]
		nodes = append(nodes, &graph.Node{ID: name, Dictionary: "wb", Label: name})
		saved[graph.NodeKey{ID: name, Dictionary: "wb"}.String()] = snapshot.Round(p[0], p[1])
	}
	g, err := graph.New(nodes, nil)
	require.NoError(t, err)
	renderer.SetData(g, saved)
	require.False(t, renderer.Simulation().Active(), "snapshot restore should stop the simulation")

	return &rig{bus: bus, scoped: scoped, camera: camera, renderer: renderer, sel: sel, manager: m}
}

func (r *rig) screen(x, y float64) geom.Vec {
	return r.camera.WorldToScreen(geom.Vec{X: x, Y: y})
}

func (r *rig) visual(id string) *render.Visual {
	return r.renderer.VisualByKey(graph.NodeKey{ID: id, Dictionary: "wb"})
}

func (r *rig) node(id string) *graph.Node {
	return r.visual(id).Node
}

func TestCollisionForceAppliesLast(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}, "beta": {100, 0}})

	want := []string{"link", "charge", "center", "collide"}
	require.Equal(t, want, r.renderer.Simulation().ForceNames(),
		"collision must run after the layout forces within a tick")

	// a data reload must not reorder the forces
	nodes := []*graph.Node{{ID: "delta", Dictionary: "wb", Label: "delta"}}
	g, err := graph.New(nodes, nil)
	require.NoError(t, err)
	r.renderer.SetData(g, snapshot.Positions{"delta@wb": {X: 0, Y: 0}})
	require.Equal(t, want, r.renderer.Simulation().ForceNames())
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := newRig(t, map[string][2]float64{"a": {0, 0}})

	calls := 0
	err := r.manager.Register("drag", func(o Options) Behavior {
		calls++
		return NewDrag(o)
	})
	require.Error(t, err)
	require.Zero(t, calls, "duplicate registration must fail before construction")
	require.Equal(t, 7, r.manager.Len())
}

type probe struct {
	opts Options
}

func (p *probe) Name() string { return "probe" }

type stub struct{}

func (s *stub) Name() string { return "stub" }
func (s *stub) State() any   { return 42 }

func TestStateForwardReferencePanics(t *testing.T) {
	r := newRig(t, map[string][2]float64{"a": {0, 0}})

	var p *probe
	require.NoError(t, r.manager.Register("probe", func(o Options) Behavior {
		p = &probe{opts: o}
		return p
	}))
	require.NoError(t, r.manager.Register("stub", func(Options) Behavior { return &stub{} }))

	require.Panics(t, func() { p.opts.State("stub") },
		"querying a later-registered behavior is a wiring error")
	require.Panics(t, func() { p.opts.State("missing") })
}

func TestStateBackwardReferenceWorks(t *testing.T) {
	r := newRig(t, map[string][2]float64{"a": {0, 0}})

	require.NoError(t, r.manager.Register("stub", func(Options) Behavior { return &stub{} }))
	var p *probe
	require.NoError(t, r.manager.Register("probe", func(o Options) Behavior {
		p = &probe{opts: o}
		return p
	}))

	require.Equal(t, 42, p.opts.State("stub"))
}

func TestClickTogglesSelection(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}, "beta": {100, 0}})

	at := r.screen(0, 0)
	r.manager.PointerDown(at)
	r.manager.PointerUp(at)
	require.True(t, r.sel.Has(r.visual("alpha")))
	require.Equal(t, 1, r.sel.Len())

	// clicking the selected node again clears the selection
	r.manager.PointerDown(at)
	r.manager.PointerUp(at)
	require.Zero(t, r.sel.Len())
}

func TestClickOnOtherNodeReplacesSelection(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}, "beta": {100, 0}})

	a, b := r.screen(0, 0), r.screen(100, 0)
	r.manager.PointerDown(a)
	r.manager.PointerUp(a)
	r.manager.PointerDown(b)
	r.manager.PointerUp(b)

	require.True(t, r.sel.Has(r.visual("beta")))
	require.False(t, r.sel.Has(r.visual("alpha")))
	require.Equal(t, 1, r.sel.Len())
}

func TestTravelBeyondLimitIsPanNotClick(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}})

	start := r.screen(0, 0)
	r.manager.PointerDown(start)
	r.manager.PointerMove(geom.Vec{X: start.X + 8, Y: start.Y})
	r.manager.PointerMove(geom.Vec{X: start.X + 16, Y: start.Y})
	r.manager.PointerUp(geom.Vec{X: start.X + 16, Y: start.Y})

	require.Zero(t, r.sel.Len(), "a pan gesture must not change the selection")
}

func TestSelectionRectReplacesPrior(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}, "beta": {100, 0}, "gamma": {300, 300}})

	at := r.screen(300, 300)
	r.manager.PointerDown(at)
	r.manager.PointerUp(at)
	require.True(t, r.sel.Has(r.visual("gamma")))

	r.scoped.Emit("selection:rect", geom.RectAt(-30, -30, 160, 60))
	require.True(t, r.sel.Has(r.visual("alpha")))
	require.True(t, r.sel.Has(r.visual("beta")))
	require.False(t, r.sel.Has(r.visual("gamma")))

	keys, ok := r.scoped.Get("selected").([]graph.NodeKey)
	require.True(t, ok)
	require.Len(t, keys, 2)
}

func TestEscapeClearsSelection(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}})

	at := r.screen(0, 0)
	r.manager.PointerDown(at)
	r.manager.PointerUp(at)
	require.Equal(t, 1, r.sel.Len())

	require.True(t, r.manager.Key("esc"))
	require.Zero(t, r.sel.Len())
	require.False(t, r.manager.Key("esc"), "nothing left to clear")
}

func TestDragPinsAndMovesNode(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}, "beta": {100, 0}})

	start := r.screen(0, 0)
	r.manager.PointerDown(start)
	require.True(t, r.manager.State("drag").(DragState).IsDragging)
	require.Equal(t, true, r.scoped.Get("pan_paused"))

	r.manager.PointerMove(geom.Vec{X: start.X + 30, Y: start.Y + 12})
	a := r.node("alpha")
	require.True(t, a.Pinned())
	require.InDelta(t, 30, a.X, 1e-9)
	require.InDelta(t, 12, a.Y, 1e-9)

	r.manager.PointerUp(geom.Vec{X: start.X + 30, Y: start.Y + 12})
	require.False(t, a.Pinned())
	require.False(t, r.manager.State("drag").(DragState).IsDragging)
	require.Equal(t, false, r.scoped.Get("pan_paused"))
}

func TestDragTranslatesCoSelection(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}, "beta": {100, 0}, "gamma": {300, 300}})

	r.scoped.Emit("selection:rect", geom.RectAt(-30, -30, 160, 60))
	require.Equal(t, 2, r.sel.Len())

	start := r.screen(0, 0)
	r.manager.PointerDown(start)
	r.manager.PointerMove(geom.Vec{X: start.X + 25, Y: start.Y - 10})

	b, c := r.node("beta"), r.node("gamma")
	require.InDelta(t, 125, b.X, 1e-9, "co-selected node must move by the same delta")
	require.InDelta(t, -10, b.Y, 1e-9)
	require.Equal(t, 300.0, c.X, "unselected node must not move")
	require.Equal(t, 300.0, c.Y)

	r.manager.PointerUp(geom.Vec{X: start.X + 25, Y: start.Y - 10})
	require.False(t, b.Pinned())
}

func TestDragOnEmptySpaceDoesNothing(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}})

	r.manager.PointerDown(r.screen(500, 500))
	require.False(t, r.manager.State("drag").(DragState).IsDragging)
}

func TestTintPriorityAndRestoration(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}, "beta": {100, 0}})
	v := r.visual("alpha")

	// select alpha, then press it: pressed outranks selected
	at := r.screen(0, 0)
	r.manager.PointerDown(at)
	r.manager.PointerUp(at)
	require.Equal(t, selectedTint, v.Tint)

	r.manager.PointerDown(at)
	require.Equal(t, pressedTint, v.Tint)

	// pointer-out while still pressed must not erase the pressed tint
	r.manager.PointerMove(r.screen(500, 500))
	require.Equal(t, pressedTint, v.Tint)

	// the release lands on empty space: selection was cleared by travel?
	// no, travel exceeded the click limit, so selection stays
	r.manager.PointerUp(r.screen(500, 500))
	require.Equal(t, selectedTint, v.Tint)
}

func TestHoverTint(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}, "beta": {100, 0}})
	a, b := r.visual("alpha"), r.visual("beta")

	r.manager.PointerMove(r.screen(0, 0))
	require.Equal(t, hoveredTint, a.Tint)
	require.Equal(t, render.DefaultTint, b.Tint)

	r.manager.PointerMove(r.screen(100, 0))
	require.Equal(t, render.DefaultTint, a.Tint)
	require.Equal(t, hoveredTint, b.Tint)
}

func TestDataReloadClearsSelection(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}})

	at := r.screen(0, 0)
	r.manager.PointerDown(at)
	r.manager.PointerUp(at)
	require.Equal(t, 1, r.sel.Len())

	nodes := []*graph.Node{{ID: "delta", Dictionary: "wb", Label: "delta"}}
	g, err := graph.New(nodes, nil)
	require.NoError(t, err)
	r.renderer.SetData(g, snapshot.Positions{"delta@wb": {X: 0, Y: 0}})

	require.Zero(t, r.sel.Len(), "stale visuals must not survive a reload")
}

func TestDebugStatusTogglesWithFlag(t *testing.T) {
	r := newRig(t, map[string][2]float64{"alpha": {0, 0}})

	require.Empty(t, r.manager.Status())
	r.scoped.Set("debug", true)
	require.NotEmpty(t, r.manager.Status())
	r.scoped.Set("debug", false)
	require.Empty(t, r.manager.Status())
}
