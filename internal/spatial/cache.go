package spatial

import (
	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/logging"
)

// moveEpsilon is the motion below which a leaf is not repaired. Settled
// nodes jitter by far less than this; skipping them keeps Update
// proportional to the nodes that actually moved.
const moveEpsilon = 1e-6

// Measure reports a node's visual footprint (width, height) in layout units
// at the current camera scale. The renderer supplies it; the cache calls it
// once per node between Clear calls, because footprints are stable while
// node-set and zoom stay fixed.
type Measure func(*graph.Node) geom.Vec

// Stats counts index work for the debug overlay.
type Stats struct {
	Leaves   int
	Repairs  int
	Searches int
	Rebuilds int
}

// Cache owns the bounding-box cache and the incrementally repaired R-tree.
// Single-owner, single-threaded: the renderer constructs it and behaviors
// borrow it read-only.
type Cache struct {
	measure Measure
	log     logging.Logger

	sizes  map[graph.NodeKey]geom.Vec
	leaves map[graph.NodeKey]*Leaf
	nodes  []*graph.Node
	tree   *RTree
	stats  Stats
}

func NewCache(measure Measure, log logging.Logger) *Cache {
	if log == nil {
		log = logging.Discard()
	}
	return &Cache{
		measure: measure,
		log:     log,
		sizes:   make(map[graph.NodeKey]geom.Vec),
		leaves:  make(map[graph.NodeKey]*Leaf),
		tree:    NewRTree(),
	}
}

// Box returns the node's bounding box at its current position. The footprint
// is computed and cached on first query; position is always live.
func (c *Cache) Box(n *graph.Node) geom.Rect {
	key := n.Key()
	size, ok := c.sizes[key]
	if !ok {
		size = c.measure(n)
		c.sizes[key] = size
	}
	return geom.Rect{
		Pos:  geom.Vec{X: n.X - size.X/2, Y: n.Y - size.Y/2},
		Size: size,
	}
}

// Clear drops cached footprints. Call on node-set replacement or camera
// scale change; position changes alone never invalidate.
func (c *Cache) Clear() {
	c.sizes = make(map[graph.NodeKey]geom.Vec)
}

// Rebuild bulk-loads the index for a fresh node set, O(n log n).
func (c *Cache) Rebuild(nodes []*graph.Node) {
	c.nodes = nodes
	c.leaves = make(map[graph.NodeKey]*Leaf, len(nodes))

	leaves := make([]*Leaf, 0, len(nodes))
	for _, n := range nodes {
		l := &Leaf{Box: c.Box(n), Node: n}
		c.leaves[n.Key()] = l
		leaves = append(leaves, l)
	}
	c.tree.Bulk(leaves)
	c.stats.Rebuilds++
	c.stats.Leaves = len(leaves)
}

// Update repairs the index incrementally: every node whose position moved
// since it was last indexed is removed and reinserted; the rest are skipped.
// A missing leaf for a known node is a consistency violation: logged,
// skipped, never fatal.
func (c *Cache) Update() {
	for _, n := range c.nodes {
		l, ok := c.leaves[n.Key()]
		if !ok {
			c.log.Warn("spatial index leaf missing", logging.F("node", n.Key().String()))
			continue
		}

		box := c.Box(n)
		dx := box.Pos.X - l.Box.Pos.X
		dy := box.Pos.Y - l.Box.Pos.Y
		if dx < moveEpsilon && dx > -moveEpsilon && dy < moveEpsilon && dy > -moveEpsilon {
			continue
		}

		if !c.tree.Delete(l) {
			c.log.Warn("spatial index leaf not in tree", logging.F("node", n.Key().String()))
			continue
		}
		l.Box = box
		c.tree.Insert(l)
		c.stats.Repairs++
	}
}

// Search visits every indexed leaf overlapping region.
func (c *Cache) Search(region geom.Rect, fn func(*Leaf) bool) {
	c.stats.Searches++
	c.tree.Search(region, fn)
}

// LeafOf returns the indexed leaf for a node, or nil.
func (c *Cache) LeafOf(n *graph.Node) *Leaf {
	return c.leaves[n.Key()]
}

func (c *Cache) Stats() Stats {
	c.stats.Leaves = c.tree.Len()
	return c.stats
}
