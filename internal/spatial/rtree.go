package spatial

import (
	"math"
	"sort"

	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
)

const (
	maxEntries = 9
	minEntries = 4
)

// Leaf is one indexed rectangle: the bounding box a node was last indexed
// under, plus the node it belongs to. Box is the indexed position, not
// necessarily the node's live position; Cache.Update repairs the difference.
type Leaf struct {
	Box  geom.Rect
	Node *graph.Node
}

type treeNode struct {
	box      geom.Rect
	leaf     bool
	children []*treeNode
	entries  []*Leaf
}

// RTree is a balanced rectangle tree with O(log n) overlap queries.
// Quadratic split on insert, condense-and-reinsert on delete.
type RTree struct {
	root  *treeNode
	count int
}

func NewRTree() *RTree {
	return &RTree{root: &treeNode{leaf: true}}
}

func (t *RTree) Len() int { return t.count }

// Bulk replaces the tree contents with a bottom-up packed load, O(n log n).
func (t *RTree) Bulk(leaves []*Leaf) {
	t.count = len(leaves)
	if len(leaves) == 0 {
		t.root = &treeNode{leaf: true}
		return
	}

	sorted := make([]*Leaf, len(leaves))
	copy(sorted, leaves)
	sort.Slice(sorted, func(i, j int) bool {
		ci, cj := sorted[i].Box.Center(), sorted[j].Box.Center()
		if ci.X != cj.X {
			return ci.X < cj.X
		}
		return ci.Y < cj.Y
	})

	level := make([]*treeNode, 0, (len(sorted)+maxEntries-1)/maxEntries)
	for i := 0; i < len(sorted); i += maxEntries {
		end := i + maxEntries
		if end > len(sorted) {
			end = len(sorted)
		}
		n := &treeNode{leaf: true, entries: append([]*Leaf{}, sorted[i:end]...)}
		n.recomputeBox()
		level = append(level, n)
	}

	for len(level) > 1 {
		next := make([]*treeNode, 0, (len(level)+maxEntries-1)/maxEntries)
		for i := 0; i < len(level); i += maxEntries {
			end := i + maxEntries
			if end > len(level) {
				end = len(level)
			}
			n := &treeNode{children: append([]*treeNode{}, level[i:end]...)}
			n.recomputeBox()
			next = append(next, n)
		}
		level = next
	}
	t.root = level[0]
}

// Insert adds one leaf.
func (t *RTree) Insert(l *Leaf) {
	t.count++
	split := t.root.insert(l)
	if split != nil {
		old := t.root
		t.root = &treeNode{children: []*treeNode{old, split}}
		t.root.recomputeBox()
	}
}

// Delete removes the leaf indexed under its Box. Identity is pointer
// equality. Returns false when the leaf is not in the tree.
func (t *RTree) Delete(l *Leaf) bool {
	var orphans []*Leaf
	if !t.root.delete(l, &orphans) {
		return false
	}
	t.count--

	// Shrink a root that lost all but one child.
	for !t.root.leaf && len(t.root.children) == 1 {
		t.root = t.root.children[0]
	}
	if !t.root.leaf && len(t.root.children) == 0 {
		t.root = &treeNode{leaf: true}
	}

	for _, o := range orphans {
		split := t.root.insert(o)
		if split != nil {
			old := t.root
			t.root = &treeNode{children: []*treeNode{old, split}}
			t.root.recomputeBox()
		}
	}
	return true
}

// Search visits every leaf whose box overlaps region. Return false from fn
// to stop early.
func (t *RTree) Search(region geom.Rect, fn func(*Leaf) bool) {
	t.root.search(region, fn)
}

func (n *treeNode) search(region geom.Rect, fn func(*Leaf) bool) bool {
	if n.count() > 0 && !n.box.Overlaps(region) {
		return true
	}
	if n.leaf {
		for _, e := range n.entries {
			if e.Box.Overlaps(region) {
				if !fn(e) {
					return false
				}
			}
		}
		return true
	}
	for _, c := range n.children {
		if !c.search(region, fn) {
			return false
		}
	}
	return true
}

func (n *treeNode) count() int {
	if n.leaf {
		return len(n.entries)
	}
	return len(n.children)
}

// insert descends to the best leaf; a non-nil return is the sibling produced
// by a split at this level.
func (n *treeNode) insert(l *Leaf) *treeNode {
	if n.leaf {
		n.entries = append(n.entries, l)
		n.box = extend(n.box, l.Box, len(n.entries) == 1)
		if len(n.entries) > maxEntries {
			return n.splitLeaf()
		}
		return nil
	}

	best := n.chooseSubtree(l.Box)
	split := best.insert(l)
	if split != nil {
		n.children = append(n.children, split)
	}
	n.recomputeBox()
	if len(n.children) > maxEntries {
		return n.splitInner()
	}
	return nil
}

func (n *treeNode) chooseSubtree(box geom.Rect) *treeNode {
	var best *treeNode
	bestEnl, bestArea := math.Inf(1), math.Inf(1)
	for _, c := range n.children {
		enl := c.box.Enlargement(box)
		area := c.box.Area()
		if enl < bestEnl || (enl == bestEnl && area < bestArea) {
			best, bestEnl, bestArea = c, enl, area
		}
	}
	return best
}

func (n *treeNode) delete(l *Leaf, orphans *[]*Leaf) bool {
	if n.leaf {
		for i, e := range n.entries {
			if e == l {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				n.recomputeBox()
				return true
			}
		}
		return false
	}

	for i, c := range n.children {
		if !c.box.Overlaps(l.Box) && !c.box.Contains(l.Box.Pos) {
			continue
		}
		if c.delete(l, orphans) {
			if c.count() < minEntries {
				// Condense: drop the underfull child and reinsert its leaves.
				n.children = append(n.children[:i], n.children[i+1:]...)
				c.collect(orphans)
			}
			n.recomputeBox()
			return true
		}
	}
	return false
}

func (n *treeNode) collect(out *[]*Leaf) {
	if n.leaf {
		*out = append(*out, n.entries...)
		return
	}
	for _, c := range n.children {
		c.collect(out)
	}
}

func (n *treeNode) recomputeBox() {
	if n.leaf {
		for i, e := range n.entries {
			n.box = extend(n.box, e.Box, i == 0)
		}
		return
	}
	for i, c := range n.children {
		n.box = extend(n.box, c.box, i == 0)
	}
}

func extend(box, with geom.Rect, first bool) geom.Rect {
	if first {
		return with
	}
	return box.Union(with)
}

// splitLeaf performs a quadratic split: seed with the two entries whose
// combined box wastes the most area, then assign the rest greedily.
func (n *treeNode) splitLeaf() *treeNode {
	entries := n.entries
	i, j := quadraticSeeds(len(entries), func(a, b int) float64 {
		return wasted(entries[a].Box, entries[b].Box)
	})

	left := []*Leaf{entries[i]}
	right := []*Leaf{entries[j]}
	lbox, rbox := entries[i].Box, entries[j].Box

	for k, e := range entries {
		if k == i || k == j {
			continue
		}
		if preferLeft(lbox, rbox, e.Box, len(left), len(right)) {
			left = append(left, e)
			lbox = lbox.Union(e.Box)
		} else {
			right = append(right, e)
			rbox = rbox.Union(e.Box)
		}
	}

	n.entries, n.box = left, lbox
	return &treeNode{leaf: true, entries: right, box: rbox}
}

func (n *treeNode) splitInner() *treeNode {
	children := n.children
	i, j := quadraticSeeds(len(children), func(a, b int) float64 {
		return wasted(children[a].box, children[b].box)
	})

	left := []*treeNode{children[i]}
	right := []*treeNode{children[j]}
	lbox, rbox := children[i].box, children[j].box

	for k, c := range children {
		if k == i || k == j {
			continue
		}
		if preferLeft(lbox, rbox, c.box, len(left), len(right)) {
			left = append(left, c)
			lbox = lbox.Union(c.box)
		} else {
			right = append(right, c)
			rbox = rbox.Union(c.box)
		}
	}

	n.children, n.box = left, lbox
	return &treeNode{children: right, box: rbox}
}

func quadraticSeeds(count int, waste func(a, b int) float64) (int, int) {
	si, sj, worst := 0, 1, math.Inf(-1)
	for a := 0; a < count; a++ {
		for b := a + 1; b < count; b++ {
			if w := waste(a, b); w > worst {
				si, sj, worst = a, b, w
			}
		}
	}
	return si, sj
}

func wasted(a, b geom.Rect) float64 {
	return a.Union(b).Area() - a.Area() - b.Area()
}

func preferLeft(lbox, rbox, box geom.Rect, nl, nr int) bool {
	// Force balance when one side risks falling under the minimum.
	remaining := maxEntries + 1 - nl - nr
	if nl+remaining <= minEntries {
		return true
	}
	if nr+remaining <= minEntries {
		return false
	}
	dl := lbox.Enlargement(box)
	dr := rbox.Enlargement(box)
	if dl != dr {
		return dl < dr
	}
	return lbox.Area() <= rbox.Area()
}
