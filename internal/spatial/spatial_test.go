package spatial

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
)

func fixedMeasure(w, h float64) Measure {
	return func(*graph.Node) geom.Vec { return geom.Vec{X: w, Y: h} }
}

func testNodes(n int, seed int64) []*graph.Node {
	rng := rand.New(rand.NewSource(seed))
	nodes := make([]*graph.Node, n)
	for i := range nodes {
		nodes[i] = &graph.Node{
			ID:         fmt.Sprintf("n%d", i),
			Dictionary: "test",
			X:          rng.Float64()*1000 - 500,
			Y:          rng.Float64()*1000 - 500,
		}
	}
	return nodes
}

func searchKeys(c *Cache, region geom.Rect) []string {
	var keys []string
	c.Search(region, func(l *Leaf) bool {
		keys = append(keys, l.Node.ID)
		return true
	})
	sort.Strings(keys)
	return keys
}

func bruteKeys(c *Cache, nodes []*graph.Node, region geom.Rect) []string {
	var keys []string
	for _, n := range nodes {
		if l := c.LeafOf(n); l != nil && l.Box.Overlaps(region) {
			keys = append(keys, n.ID)
		}
	}
	sort.Strings(keys)
	return keys
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearchMatchesBruteForce(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("search returns exactly the brute-force leaf set", prop.ForAll(
		func(seed int64, count int, rx, ry, rw, rh float64) bool {
			nodes := testNodes(count, seed)
			c := NewCache(fixedMeasure(40, 20), nil)
			c.Rebuild(nodes)

			region := geom.RectAt(rx, ry, rw, rh)
			return equalKeys(searchKeys(c, region), bruteKeys(c, nodes, region))
		},
		gen.Int64(),
		gen.IntRange(0, 200),
		gen.Float64Range(-600, 600),
		gen.Float64Range(-600, 600),
		gen.Float64Range(1, 400),
		gen.Float64Range(1, 400),
	))

	properties.TestingRun(t)
}

func TestSearchAfterIncrementalUpdates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("index stays consistent after motion and repair", prop.ForAll(
		func(seed int64, count int, steps int) bool {
			nodes := testNodes(count, seed)
			c := NewCache(fixedMeasure(40, 20), nil)
			c.Rebuild(nodes)

			rng := rand.New(rand.NewSource(seed + 1))
			for s := 0; s < steps; s++ {
				for _, n := range nodes {
					// Some nodes move, some stay still.
					if rng.Float64() < 0.5 {
						n.X += rng.Float64()*40 - 20
						n.Y += rng.Float64()*40 - 20
					}
				}
				c.Update()
			}

			region := geom.RectAt(-200, -200, 400, 400)
			return equalKeys(searchKeys(c, region), bruteKeys(c, nodes, region))
		},
		gen.Int64(),
		gen.IntRange(1, 120),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}

func TestRebuildIdempotent(t *testing.T) {
	nodes := testNodes(80, 7)
	c := NewCache(fixedMeasure(40, 20), nil)
	c.Rebuild(nodes)

	region := geom.RectAt(-100, -100, 300, 250)
	before := searchKeys(c, region)

	c.Rebuild(nodes)
	after := searchKeys(c, region)

	if !equalKeys(before, after) {
		t.Fatalf("rebuild changed results:\n%v\n%v", before, after)
	}
}

func TestUpdateSkipsUnmovedNodes(t *testing.T) {
	nodes := testNodes(50, 3)
	c := NewCache(fixedMeasure(40, 20), nil)
	c.Rebuild(nodes)

	c.Update()
	if got := c.Stats().Repairs; got != 0 {
		t.Fatalf("unmoved nodes caused %d repairs", got)
	}

	nodes[0].X += 5
	nodes[1].Y -= 5
	c.Update()
	if got := c.Stats().Repairs; got != 2 {
		t.Fatalf("expected 2 repairs, got %d", got)
	}
}

func TestUpdateSubEpsilonMotion(t *testing.T) {
	nodes := testNodes(10, 9)
	c := NewCache(fixedMeasure(40, 20), nil)
	c.Rebuild(nodes)

	for _, n := range nodes {
		n.X += 1e-9
	}
	c.Update()
	if got := c.Stats().Repairs; got != 0 {
		t.Fatalf("sub-epsilon motion caused %d repairs", got)
	}
}

func TestBoxCachesFootprint(t *testing.T) {
	calls := 0
	measure := func(*graph.Node) geom.Vec {
		calls++
		return geom.Vec{X: 40, Y: 20}
	}
	c := NewCache(measure, nil)
	n := &graph.Node{ID: "a", Dictionary: "d", X: 100, Y: 50}

	b1 := c.Box(n)
	n.X = 200
	b2 := c.Box(n)

	if calls != 1 {
		t.Fatalf("measure called %d times, want 1", calls)
	}
	if b1.Size != b2.Size {
		t.Fatalf("footprint changed: %+v vs %+v", b1.Size, b2.Size)
	}
	if b2.Center() != (geom.Vec{X: 200, Y: 50}) {
		t.Fatalf("box does not follow position: %+v", b2)
	}

	c.Clear()
	c.Box(n)
	if calls != 2 {
		t.Fatalf("clear did not invalidate footprint cache (calls=%d)", calls)
	}
}

func TestSearchEarlyStop(t *testing.T) {
	nodes := testNodes(100, 5)
	c := NewCache(fixedMeasure(40, 20), nil)
	c.Rebuild(nodes)

	visited := 0
	c.Search(geom.RectAt(-600, -600, 1200, 1200), func(*Leaf) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Fatalf("visited %d leaves after stop, want 3", visited)
	}
}

func TestDeleteUnknownLeaf(t *testing.T) {
	tree := NewRTree()
	tree.Insert(&Leaf{Box: geom.RectAt(0, 0, 10, 10)})

	stray := &Leaf{Box: geom.RectAt(0, 0, 10, 10)}
	if tree.Delete(stray) {
		t.Fatal("deleted a leaf that was never inserted")
	}
	if tree.Len() != 1 {
		t.Fatalf("tree len = %d", tree.Len())
	}
}
