package behavior

import (
	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/spatial"
	"github.com/san-kum/lexigraph/internal/statebus"
)

// fallback footprint for nodes whose visual has not been created yet
var defaultFootprint = geom.Vec{X: 40, Y: 20}

// SpatialIndex owns the shared bounding-box cache and rectangle tree.
// It must be registered first: every consumer reads it through State, and
// the per-tick Update has to land before the collision force queries.
type SpatialIndex struct {
	opts  Options
	cache *spatial.Cache
	sub   *statebus.Subscription
}

func NewSpatialIndex(opts Options) Behavior {
	b := &SpatialIndex{opts: opts}
	measure := func(n *graph.Node) geom.Vec {
		if v := opts.VisualByKey(n.Key()); v != nil {
			return v.Footprint(opts.Camera.Zoom)
		}
		return defaultFootprint
	}
	b.cache = spatial.NewCache(measure, opts.Log)
	// zoom changes rescale every footprint, so the box cache is the one
	// thing a camera change invalidates
	b.sub = opts.Bus.Observe("zoom", func(any) {
		b.cache.Clear()
		b.cache.Rebuild(opts.Nodes())
	})
	return b
}

func (b *SpatialIndex) Name() string { return "spatialindex" }

func (b *SpatialIndex) VisualsReady() {
	b.cache.Clear()
	b.cache.Rebuild(b.opts.Nodes())
}

func (b *SpatialIndex) RenderTick() {
	b.cache.Update()
}

func (b *SpatialIndex) State() any { return b.cache }
