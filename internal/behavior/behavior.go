// Package behavior decomposes graph interaction into independently
// registered modules sharing one simulation and one visual set. Modules
// communicate through the state bus and through ordered State lookups;
// registration order is the only sequencing guarantee.
package behavior

import (
	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/logging"
	"github.com/san-kum/lexigraph/internal/render"
	"github.com/san-kum/lexigraph/internal/sim"
	"github.com/san-kum/lexigraph/internal/statebus"
)

type Behavior interface {
	Name() string
}

// Optional hooks. A behavior implements any subset; the manager dispatches
// in registration order.
type VisualCreatedHook interface {
	VisualCreated(n *graph.Node, v *render.Visual, i int)
}

type VisualsReadyHook interface {
	VisualsReady()
}

type RenderTickHook interface {
	RenderTick()
}

// PointerHook receives pointer events in canvas sub-pixel coordinates.
type PointerHook interface {
	PointerDown(p geom.Vec)
	PointerMove(p geom.Vec)
	PointerUp(p geom.Vec)
}

// KeyHook returns true when the key was consumed.
type KeyHook interface {
	Key(k string) bool
}

// Stateful exposes per-behavior state for later-registered behaviors.
type Stateful interface {
	State() any
}

// Painter draws beneath the graph, before nodes and edges.
type Painter interface {
	Paint(c *render.Canvas)
}

// StatusProvider contributes lines to the side panel.
type StatusProvider interface {
	Status() []string
}

// Options is the borrowed environment handed to each behavior at
// construction. Accessors stay live across data reloads; behaviors must
// not retain node or visual slices across VisualsReady.
type Options struct {
	Camera    *render.Camera
	Bus       *statebus.Scoped
	Selection *Selection
	Sim       *sim.Simulation
	Log       logging.Logger

	Nodes       func() []*graph.Node
	Links       func() []*graph.Link
	LinksOf     func(*graph.Node) []*graph.Link
	Visuals     func() []*render.Visual
	VisualByKey func(graph.NodeKey) *render.Visual

	// Schedule defers work to the end of the current render frame.
	Schedule func(func())

	// EnergyHistory feeds the debug overlay sparkline.
	EnergyHistory func() []float64

	// State returns the state of an earlier-registered behavior. Asking
	// for one registered after the caller panics: it is a wiring error,
	// not a runtime condition.
	State func(name string) any
}
