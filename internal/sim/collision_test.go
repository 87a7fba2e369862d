package sim

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/spatial"
)

// collisionRig wires a cache and collision force over nodes with fixed
// 40x20 footprints, quiescence disabled.
func collisionRig(nodes []*graph.Node) (*spatial.Cache, *CollisionForce) {
	cache := spatial.NewCache(func(*graph.Node) geom.Vec {
		return geom.Vec{X: 40, Y: 20}
	}, nil)
	cache.Rebuild(nodes)

	f := NewCollisionForce(cache, 1)
	f.SetQuiescence(0)
	f.Initialize(nodes)
	return cache, f
}

func TestNoOverlapLeavesVelocitiesUnchanged(t *testing.T) {
	// Boxes are 40 wide: spacing of 100 guarantees clearance even inside
	// the 20-unit query margin.
	var nodes []*graph.Node
	for i := 0; i < 12; i++ {
		nodes = append(nodes, &graph.Node{
			ID: fmt.Sprintf("n%d", i), Dictionary: "d",
			X: float64(i * 100), VX: 0.5, VY: -0.25,
		})
	}
	_, f := collisionRig(nodes)

	f.Apply(0.1)

	for _, n := range nodes {
		assert.Equal(t, 0.5, n.VX, "node %s VX", n.ID)
		assert.Equal(t, -0.25, n.VY, "node %s VY", n.ID)
	}
}

func TestOverlapImpulsesAreExactOpposites(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("pair impulses cancel exactly", prop.ForAll(
		func(ax, ay, dx, dy float64) bool {
			a := &graph.Node{ID: "a", Dictionary: "d", X: ax, Y: ay}
			// Partial overlap, never coincident centers.
			b := &graph.Node{ID: "b", Dictionary: "d", X: ax + dx, Y: ay + dy}
			nodes := []*graph.Node{a, b}
			_, f := collisionRig(nodes)

			f.Apply(0.1)

			return math.Abs(a.VX+b.VX) < 1e-12 && math.Abs(a.VY+b.VY) < 1e-12
		},
		gen.Float64Range(-500, 500),
		gen.Float64Range(-500, 500),
		gen.Float64Range(5, 35),
		gen.Float64Range(1, 15),
	))

	properties.TestingRun(t)
}

func TestThreeNodeScenario(t *testing.T) {
	// A's box spans (0,0,40,20), B's (30,0,40,20): a 10x20 overlap.
	// C's box (200,0,40,20) is clear of both.
	a := &graph.Node{ID: "a", Dictionary: "d", X: 20, Y: 10}
	b := &graph.Node{ID: "b", Dictionary: "d", X: 50, Y: 10}
	c := &graph.Node{ID: "c", Dictionary: "d", X: 220, Y: 10}
	nodes := []*graph.Node{a, b, c}
	_, f := collisionRig(nodes)

	f.Apply(0.1)

	require.NotZero(t, a.VX, "A must be pushed")
	assert.Less(t, a.VX, 0.0, "A pushed left, away from the overlap")
	assert.Greater(t, b.VX, 0.0, "B pushed right")
	assert.InDelta(t, 0, a.VX+b.VX, 1e-12, "impulses equal and opposite along x")
	assert.Zero(t, a.VY)
	assert.Zero(t, b.VY)
	assert.Zero(t, c.VX, "C is unaffected")
	assert.Zero(t, c.VY, "C is unaffected")
}

func TestRampSuppressesEarlyImpulse(t *testing.T) {
	a := &graph.Node{ID: "a", Dictionary: "d", X: 20, Y: 10}
	b := &graph.Node{ID: "b", Dictionary: "d", X: 50, Y: 10}
	_, f := collisionRig([]*graph.Node{a, b})

	// alpha ≈ 1 → ramp (alpha-1)^4 ≈ 0 → magnitude under the damping
	// threshold, which zeroes residual velocity instead of pushing.
	a.VX, b.VX = 0.5, 0.5
	f.Apply(0.999)

	assert.InDelta(t, 0.5*collisionDamping, a.VX, 1e-9,
		"early ticks damp instead of push")
}

func TestCoincidentCentersSkipped(t *testing.T) {
	a := &graph.Node{ID: "a", Dictionary: "d", X: 10, Y: 10}
	b := &graph.Node{ID: "b", Dictionary: "d", X: 10, Y: 10}
	_, f := collisionRig([]*graph.Node{a, b})

	assert.NotPanics(t, func() { f.Apply(0.1) })
	assert.Zero(t, a.VX)
	assert.Zero(t, a.VY)
}

func TestQuiescenceWindow(t *testing.T) {
	a := &graph.Node{ID: "a", Dictionary: "d", X: 20, Y: 10}
	b := &graph.Node{ID: "b", Dictionary: "d", X: 50, Y: 10}
	nodes := []*graph.Node{a, b}

	cache := spatial.NewCache(func(*graph.Node) geom.Vec {
		return geom.Vec{X: 40, Y: 20}
	}, nil)
	cache.Rebuild(nodes)

	f := NewCollisionForce(cache, 1)
	f.SetQuiescence(3)
	f.Initialize(nodes)

	starts := 0
	f.OnStart(func() { starts++ })

	for i := 0; i < 3; i++ {
		f.Apply(0.1)
	}
	assert.Zero(t, a.VX, "dormant during quiescence")
	assert.False(t, f.Started())
	assert.Zero(t, starts)

	f.Apply(0.1)
	assert.NotZero(t, a.VX, "active after quiescence")
	assert.True(t, f.Started())
	assert.Equal(t, 1, starts)

	f.Apply(0.1)
	assert.Equal(t, 1, starts, "onStart fires exactly once")
}

func TestInitializeResetsQuiescenceAndListeners(t *testing.T) {
	a := &graph.Node{ID: "a", Dictionary: "d", X: 20, Y: 10}
	nodes := []*graph.Node{a}
	cache := spatial.NewCache(func(*graph.Node) geom.Vec {
		return geom.Vec{X: 40, Y: 20}
	}, nil)
	cache.Rebuild(nodes)

	f := NewCollisionForce(cache, 1)
	f.SetQuiescence(1)
	f.Initialize(nodes)

	stale := 0
	f.OnStart(func() { stale++ })
	f.Apply(0.1)
	f.Apply(0.1)
	require.Equal(t, 1, stale)

	f.Initialize(nodes)
	assert.False(t, f.Started(), "node-set change resets the window")
	f.Apply(0.1)
	f.Apply(0.1)
	assert.Equal(t, 1, stale, "old listeners are discarded on re-init")
}

func TestScheduleDefersListeners(t *testing.T) {
	a := &graph.Node{ID: "a", Dictionary: "d", X: 20, Y: 10}
	nodes := []*graph.Node{a}
	cache := spatial.NewCache(func(*graph.Node) geom.Vec {
		return geom.Vec{X: 40, Y: 20}
	}, nil)
	cache.Rebuild(nodes)

	f := NewCollisionForce(cache, 1)
	f.SetQuiescence(0)
	f.Initialize(nodes)

	var queue []func()
	f.Schedule = func(fn func()) { queue = append(queue, fn) }

	fired := false
	f.OnStart(func() { fired = true })

	f.Apply(0.1)
	assert.False(t, fired, "listener must not run inside the tick")

	for _, fn := range queue {
		fn()
	}
	assert.True(t, fired)
}

func TestSettledLayoutHasNoResidualDrift(t *testing.T) {
	// End-to-end: tight cluster, full pipeline, index refreshed per tick.
	rng := rand.New(rand.NewSource(42))
	var nodes []*graph.Node
	for i := 0; i < 20; i++ {
		nodes = append(nodes, &graph.Node{
			ID: fmt.Sprintf("n%d", i), Dictionary: "d",
			X: rng.Float64() * 120, Y: rng.Float64() * 60,
		})
	}

	cache, f := collisionRig(nodes)
	s := New()
	s.SetNodes(nodes)
	f.Initialize(nodes)
	s.AddForce("collide", f)

	for i := 0; i < 400 && s.Active(); i++ {
		cache.Update()
		s.Tick()
	}

	for _, n := range nodes {
		if math.Abs(n.VX) > 0.5 || math.Abs(n.VY) > 0.5 {
			t.Fatalf("node %s still moving fast: v=(%f, %f)", n.ID, n.VX, n.VY)
		}
	}
}
