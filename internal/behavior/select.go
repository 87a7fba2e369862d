package behavior

import (
	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/render"
	"github.com/san-kum/lexigraph/internal/spatial"
	"github.com/san-kum/lexigraph/internal/statebus"
)

// clickTravelLimit is the cumulative pointer travel, in sub-pixels, past
// which a press is a pan rather than a click.
const clickTravelLimit = 10.0

// Select maintains the node selection: click toggles a single node, a
// selection rectangle replaces the whole set, escape clears. Changes are
// published on the bus under "selected".
type Select struct {
	opts  Options
	cache *spatial.Cache
	sel   *Selection
	sub   *statebus.Subscription

	tracking  bool
	candidate *render.Visual
	last      geom.Vec
	travel    float64
}

func NewSelect(opts Options) Behavior {
	b := &Select{
		opts:  opts,
		cache: opts.State("spatialindex").(*spatial.Cache),
		sel:   opts.Selection,
	}
	b.sub = opts.Bus.On("selection:rect", func(payload any) {
		region, ok := payload.(geom.Rect)
		if !ok {
			return
		}
		b.selectRegion(region)
	})
	return b
}

func (b *Select) Name() string { return "selection" }

func (b *Select) State() any { return b.sel }

func (b *Select) VisualsReady() {
	// visuals were rebuilt, stale pointers must not linger
	b.sel.Clear()
	b.publish()
}

func (b *Select) PointerDown(p geom.Vec) {
	b.tracking = true
	b.travel = 0
	b.last = p
	world := b.opts.Camera.ScreenToWorld(p)
	if n := hitNode(b.cache, world); n != nil {
		b.candidate = b.opts.VisualByKey(n.Key())
	} else {
		b.candidate = nil
	}
}

func (b *Select) PointerMove(p geom.Vec) {
	if !b.tracking {
		return
	}
	b.travel += p.Sub(b.last).Len()
	b.last = p
}

func (b *Select) PointerUp(geom.Vec) {
	if !b.tracking {
		return
	}
	b.tracking = false
	// past the travel limit the gesture was a pan, not a click
	if b.travel > clickTravelLimit || b.candidate == nil {
		b.candidate = nil
		return
	}
	if b.sel.Has(b.candidate) {
		b.sel.Clear()
	} else {
		b.sel.Clear()
		b.sel.Add(b.candidate)
	}
	b.candidate = nil
	b.publish()
}

func (b *Select) Key(k string) bool {
	if k != "esc" {
		return false
	}
	if b.sel.Len() == 0 {
		return false
	}
	b.sel.Clear()
	b.publish()
	return true
}

// selectRegion replaces the selection with every node whose box intersects
// the world-space rectangle.
func (b *Select) selectRegion(region geom.Rect) {
	b.sel.Clear()
	b.cache.Search(region, func(l *spatial.Leaf) bool {
		b.sel.Add(b.opts.VisualByKey(l.Node.Key()))
		return true
	})
	b.publish()
}

func (b *Select) publish() {
	keys := make([]graph.NodeKey, 0, b.sel.Len())
	for _, v := range b.sel.Items() {
		keys = append(keys, v.Key())
	}
	b.opts.Bus.Set("selected", keys)
}
