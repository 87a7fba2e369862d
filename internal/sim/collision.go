package sim

import (
	"math"

	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/spatial"
)

const (
	// Index query margin around a node's box, in layout units.
	collisionMargin = 20.0
	// Overlap area contributing to the impulse is capped here.
	collisionMaxArea = 5.0
	// Impulses below this threshold damp residual drift instead.
	collisionMinImpulse = 0.01
	collisionDamping    = 0.02
	// Ticks after a node-set change during which the force withholds
	// effect, letting link/charge/center settle the coarse layout first.
	DefaultQuiescenceTicks = 200
)

// CollisionForce separates overlapping node rectangles. Neighbor candidates
// come from the spatial index, which the index behavior refreshes earlier in
// the same tick; the force itself never mutates the index.
//
// The impulse ramps with (alpha − 1 − alphaTarget)⁴: near-zero while the
// layout is still chaotic and approaching full strength as it settles.
type CollisionForce struct {
	Strength float64
	Margin   float64

	// Schedule defers work to the next render frame. The renderer installs
	// its frame queue; the default runs inline.
	Schedule func(func())

	cache       *spatial.Cache
	alphaTarget float64
	quiescence  int
	ticks       int
	started     bool
	onStart     []func()
	nodes       []*graph.Node
}

func NewCollisionForce(cache *spatial.Cache, strength float64) *CollisionForce {
	if strength <= 0 {
		strength = 1
	}
	return &CollisionForce{
		Strength:   strength,
		Margin:     collisionMargin,
		Schedule:   func(fn func()) { fn() },
		cache:      cache,
		quiescence: DefaultQuiescenceTicks,
	}
}

// SetQuiescence overrides the tick count the force stays dormant after a
// node-set change.
func (f *CollisionForce) SetQuiescence(ticks int) { f.quiescence = ticks }

// SetAlphaTarget must track the simulation's alpha target so the ramp keeps
// its meaning while the layout is held hot.
func (f *CollisionForce) SetAlphaTarget(t float64) { f.alphaTarget = t }

// OnStart registers a listener fired exactly once when the quiescence window
// elapses, deferred to the next render frame.
func (f *CollisionForce) OnStart(fn func()) { f.onStart = append(f.onStart, fn) }

// Started reports whether the quiescence window has elapsed.
func (f *CollisionForce) Started() bool { return f.started }

// Initialize resets the quiescence counter and the listener list; a node-set
// replacement discards both wholesale.
func (f *CollisionForce) Initialize(nodes []*graph.Node) {
	f.nodes = nodes
	f.ticks = 0
	f.started = false
	f.onStart = nil
}

func (f *CollisionForce) Apply(alpha float64) {
	f.ticks++
	if f.ticks <= f.quiescence {
		return
	}
	if !f.started {
		f.started = true
		listeners := f.onStart
		f.Schedule(func() {
			for _, fn := range listeners {
				fn()
			}
		})
	}

	ramp := math.Pow(alpha-1-f.alphaTarget, 4)

	for _, n := range f.nodes {
		box := f.cache.Box(n)
		center := box.Center()
		region := box.Expand(f.Margin)

		node := n
		f.cache.Search(region, func(l *spatial.Leaf) bool {
			other := l.Node
			if other == node {
				return true
			}

			inter := box.Intersection(f.cache.Box(other))
			if inter.Empty() {
				return true
			}

			dir, dist := inter.Center().Sub(center).Normalize()
			if dist == 0 {
				// Coincident centers give no direction.
				return true
			}

			mag := math.Min(inter.Area(), collisionMaxArea) / math.Max(dist, 1)
			mag *= f.Strength * ramp
			if mag > 1 {
				mag = 1
			}

			if mag < collisionMinImpulse {
				node.VX *= collisionDamping
				node.VY *= collisionDamping
				return true
			}

			impulse := dir.Scale(mag)
			node.VX -= impulse.X
			node.VY -= impulse.Y
			other.VX += impulse.X
			other.VY += impulse.Y
			return true
		})
	}
}
