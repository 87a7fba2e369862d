package sim

import (
	"math"
	"math/rand"

	"github.com/san-kum/lexigraph/internal/graph"
)

// jiggle breaks ties between coincident nodes with a tiny deterministic
// offset so normalization never divides by zero.
func jiggle(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 1e-6
}

// LinkForce pulls linked nodes toward a rest distance. Strength and bias
// derive from node degree, so high-degree hubs move less than their
// neighbors.
type LinkForce struct {
	Distance float64
	links    []*graph.Link
	strength []float64
	bias     []float64
	rng      *rand.Rand
	degreeOf func(*graph.Node) int
}

// NewLinkForce builds the force over the graph's links; degree lookups come
// from the graph's link index.
func NewLinkForce(g *graph.Graph, distance float64) *LinkForce {
	if distance <= 0 {
		distance = 60
	}
	return &LinkForce{
		Distance: distance,
		links:    g.Links,
		degreeOf: func(n *graph.Node) int { return g.Degree(n) },
		rng:      rand.New(rand.NewSource(1)),
	}
}

func (f *LinkForce) Initialize(nodes []*graph.Node) {
	f.strength = make([]float64, len(f.links))
	f.bias = make([]float64, len(f.links))
	for i, l := range f.links {
		sd := f.degreeOf(l.Source)
		td := f.degreeOf(l.Target)
		f.bias[i] = float64(sd) / float64(sd+td)
		f.strength[i] = 1 / float64(minInt(sd, td))
	}
}

func (f *LinkForce) Apply(alpha float64) {
	for i, l := range f.links {
		src, dst := l.Source, l.Target

		dx := dst.X + dst.VX - src.X - src.VX
		dy := dst.Y + dst.VY - src.Y - src.VY
		if dx == 0 {
			dx = jiggle(f.rng)
		}
		if dy == 0 {
			dy = jiggle(f.rng)
		}

		dist := math.Hypot(dx, dy)
		k := (dist - f.Distance) / dist * alpha * f.strength[i]
		dx *= k
		dy *= k

		b := f.bias[i]
		dst.VX -= dx * b
		dst.VY -= dy * b
		src.VX += dx * (1 - b)
		src.VY += dy * (1 - b)
	}
}

// CenterForce translates the whole layout so its mean sits at (X, Y). It
// adjusts positions directly, not velocities, so it cannot fight the other
// forces.
type CenterForce struct {
	X, Y     float64
	Strength float64
	nodes    []*graph.Node
}

func NewCenterForce(x, y float64) *CenterForce {
	return &CenterForce{X: x, Y: y, Strength: 1}
}

func (f *CenterForce) Initialize(nodes []*graph.Node) { f.nodes = nodes }

func (f *CenterForce) Apply(alpha float64) {
	if len(f.nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range f.nodes {
		sx += n.X
		sy += n.Y
	}
	sx = (sx/float64(len(f.nodes)) - f.X) * f.Strength
	sy = (sy/float64(len(f.nodes)) - f.Y) * f.Strength
	for _, n := range f.nodes {
		n.X -= sx
		n.Y -= sy
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
