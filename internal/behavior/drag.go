package behavior

import (
	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/spatial"
)

// dragAlphaTarget keeps the simulation warm while a node is held.
const dragAlphaTarget = 0.3

type DragState struct {
	IsDragging bool
}

// Drag pins a node under the pointer and moves it with the cursor. While a
// member of the active selection is dragged, every co-selected node is
// translated by the same delta so the group keeps its relative layout.
type Drag struct {
	opts   Options
	cache  *spatial.Cache
	state  DragState
	target *graph.Node
	// anchor is pointer minus node position, in world space, captured at
	// pointer-down so the node does not jump under the cursor.
	anchor geom.Vec
	peers  []*graph.Node
}

func NewDrag(opts Options) Behavior {
	return &Drag{
		opts:  opts,
		cache: opts.State("spatialindex").(*spatial.Cache),
	}
}

func (d *Drag) Name() string { return "drag" }

func (d *Drag) State() any { return d.state }

func (d *Drag) PointerDown(p geom.Vec) {
	world := d.opts.Camera.ScreenToWorld(p)
	n := hitNode(d.cache, world)
	if n == nil {
		return
	}
	d.target = n
	d.anchor = world.Sub(geom.Vec{X: n.X, Y: n.Y})
	d.state.IsDragging = true
	d.opts.Bus.Set("pan_paused", true)

	d.peers = d.peers[:0]
	if v := d.opts.VisualByKey(n.Key()); v != nil && d.opts.Selection.Has(v) {
		for _, sel := range d.opts.Selection.Items() {
			if sel.Node != n {
				d.peers = append(d.peers, sel.Node)
			}
		}
	}
	d.opts.Sim.SetAlphaTarget(dragAlphaTarget)
}

func (d *Drag) PointerMove(p geom.Vec) {
	if !d.state.IsDragging {
		return
	}
	world := d.opts.Camera.ScreenToWorld(p)
	next := world.Sub(d.anchor)
	dx, dy := next.X-d.target.X, next.Y-d.target.Y
	d.target.Pin(next.X, next.Y)
	for _, peer := range d.peers {
		peer.Pin(peer.X+dx, peer.Y+dy)
	}
}

func (d *Drag) PointerUp(geom.Vec) {
	if !d.state.IsDragging {
		return
	}
	d.target.Unpin()
	for _, peer := range d.peers {
		peer.Unpin()
	}
	d.target = nil
	d.peers = d.peers[:0]
	d.state.IsDragging = false
	d.opts.Bus.Set("pan_paused", false)
	d.opts.Sim.SetAlphaTarget(0)
}

// hitNode returns a node whose indexed box contains the world point. The
// last leaf visited wins when boxes overlap.
func hitNode(cache *spatial.Cache, world geom.Vec) *graph.Node {
	var hit *graph.Node
	probe := geom.Rect{Pos: world}
	cache.Search(probe, func(l *spatial.Leaf) bool {
		hit = l.Node
		return true
	})
	return hit
}
