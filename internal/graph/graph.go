package graph

import (
	"fmt"
	"math"
)

// NodeKey identifies an article node. The same article id may appear in
// several dictionaries, so identity is the pair.
type NodeKey struct {
	ID         string
	Dictionary string
}

func (k NodeKey) String() string {
	return k.ID + "@" + k.Dictionary
}

// Node is a dictionary-article node integrated by the simulation each tick.
// FX/FY, when non-nil, pin the node: integration is suspended and the node
// snaps to the pinned position.
type Node struct {
	ID         string
	Dictionary string
	Label      string

	X, Y   float64
	VX, VY float64
	FX, FY *float64

	// Index is the node's position in the graph's node slice, assigned by
	// the graph on load. Behaviors use it as a non-owning handle.
	Index int
}

func (n *Node) Key() NodeKey {
	return NodeKey{ID: n.ID, Dictionary: n.Dictionary}
}

// Pin fixes the node at (x, y) until Unpin.
func (n *Node) Pin(x, y float64) {
	fx, fy := x, y
	n.FX, n.FY = &fx, &fy
	n.X, n.Y = x, y
}

func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

func (n *Node) Pinned() bool {
	return n.FX != nil && n.FY != nil
}

// Link is an ordered pair of node references.
type Link struct {
	Source *Node
	Target *Node
}

// Graph owns the node and link set installed by one SetData call. The whole
// set is discarded and rebuilt on the next load; there is no diffing.
type Graph struct {
	Nodes []*Node
	Links []*Link

	byKey map[NodeKey]*Node
	// linksOf indexes links by node, both directions.
	linksOf map[NodeKey][]*Link
}

// New builds a graph from nodes and (source, target) key pairs. Duplicate
// (id, dictionary) pairs and links to unknown nodes are rejected.
func New(nodes []*Node, links [][2]NodeKey) (*Graph, error) {
	g := &Graph{
		Nodes:   nodes,
		byKey:   make(map[NodeKey]*Node, len(nodes)),
		linksOf: make(map[NodeKey][]*Link),
	}

	for i, n := range nodes {
		key := n.Key()
		if _, dup := g.byKey[key]; dup {
			return nil, fmt.Errorf("graph: duplicate node %s", key)
		}
		n.Index = i
		g.byKey[key] = n
	}

	for _, pair := range links {
		src, ok := g.byKey[pair[0]]
		if !ok {
			return nil, fmt.Errorf("graph: link source %s not found", pair[0])
		}
		dst, ok := g.byKey[pair[1]]
		if !ok {
			return nil, fmt.Errorf("graph: link target %s not found", pair[1])
		}
		l := &Link{Source: src, Target: dst}
		g.Links = append(g.Links, l)
		g.linksOf[src.Key()] = append(g.linksOf[src.Key()], l)
		g.linksOf[dst.Key()] = append(g.linksOf[dst.Key()], l)
	}

	return g, nil
}

// NodeByKey returns nil when the key is unknown.
func (g *Graph) NodeByKey(key NodeKey) *Node {
	return g.byKey[key]
}

// LinksOf returns every link touching the node, either direction.
func (g *Graph) LinksOf(n *Node) []*Link {
	return g.linksOf[n.Key()]
}

// Degree is the number of links touching the node.
func (g *Graph) Degree(n *Node) int {
	return len(g.linksOf[n.Key()])
}

// SeedPositions places nodes without a position on a phyllotaxis spiral
// around the origin, so the first ticks start from a stable, non-degenerate
// arrangement. Nodes that already carry coordinates keep them.
func (g *Graph) SeedPositions() {
	const initialRadius = 30.0
	initialAngle := math.Pi * (3 - math.Sqrt(5))

	for i, n := range g.Nodes {
		if n.X != 0 || n.Y != 0 {
			continue
		}
		radius := initialRadius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * initialAngle
		n.X = radius * math.Cos(angle)
		n.Y = radius * math.Sin(angle)
	}
}
