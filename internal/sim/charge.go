package sim

import (
	"math"
	"math/rand"

	"github.com/san-kum/lexigraph/internal/graph"
)

// ChargeForce is many-body repulsion approximated with a Barnes-Hut
// quadtree: distant clusters act through their center of charge, so one
// Apply is O(n log n) instead of O(n²).
type ChargeForce struct {
	Strength    float64 // negative repels
	Theta       float64 // approximation threshold, higher is coarser
	DistanceMin float64
	DistanceMax float64
	nodes       []*graph.Node
	rng         *rand.Rand
}

func NewChargeForce(strength float64) *ChargeForce {
	if strength == 0 {
		strength = -240
	}
	return &ChargeForce{
		Strength:    strength,
		Theta:       0.9,
		DistanceMin: 1,
		DistanceMax: math.Inf(1),
		rng:         rand.New(rand.NewSource(2)),
	}
}

func (f *ChargeForce) Initialize(nodes []*graph.Node) { f.nodes = nodes }

func (f *ChargeForce) Apply(alpha float64) {
	if len(f.nodes) < 2 {
		return
	}

	root := buildChargeTree(f.nodes)
	theta2 := f.Theta * f.Theta
	min2 := f.DistanceMin * f.DistanceMin
	max2 := f.DistanceMax * f.DistanceMax

	for _, n := range f.nodes {
		root.accumulate(n, f.Strength*alpha, theta2, min2, max2, f.rng)
	}
}

// chargeNode is one quadtree cell: either a bucket of coincident nodes or
// four children, plus the cell's total charge and center of charge.
type chargeNode struct {
	x0, y0, x1, y1 float64
	children       *[4]*chargeNode
	occupants      []*graph.Node
	charge         float64
	cx, cy         float64
}

const maxChargeDepth = 24

func buildChargeTree(nodes []*graph.Node) *chargeNode {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X)
		maxY = math.Max(maxY, n.Y)
	}
	// Square cells keep the s/d criterion meaningful.
	side := math.Max(maxX-minX, maxY-minY)
	if side == 0 {
		side = 1
	}

	root := &chargeNode{x0: minX, y0: minY, x1: minX + side, y1: minY + side}
	for _, n := range nodes {
		root.insert(n, 0)
	}
	root.aggregate()
	return root
}

func (c *chargeNode) insert(n *graph.Node, depth int) {
	if c.children == nil {
		if len(c.occupants) == 0 || depth >= maxChargeDepth {
			c.occupants = append(c.occupants, n)
			return
		}
		// Split: push the existing occupant down, then retry.
		prev := c.occupants
		c.occupants = nil
		c.children = &[4]*chargeNode{}
		for _, p := range prev {
			c.childFor(p.X, p.Y).insert(p, depth+1)
		}
	}
	c.childFor(n.X, n.Y).insert(n, depth+1)
}

func (c *chargeNode) childFor(x, y float64) *chargeNode {
	mx := (c.x0 + c.x1) / 2
	my := (c.y0 + c.y1) / 2
	i := 0
	x0, y0, x1, y1 := c.x0, c.y0, mx, my
	if x >= mx {
		i |= 1
		x0, x1 = mx, c.x1
	}
	if y >= my {
		i |= 2
		y0, y1 = my, c.y1
	}
	if c.children[i] == nil {
		c.children[i] = &chargeNode{x0: x0, y0: y0, x1: x1, y1: y1}
	}
	return c.children[i]
}

func (c *chargeNode) aggregate() {
	if c.children == nil {
		c.charge = float64(len(c.occupants))
		for _, n := range c.occupants {
			c.cx += n.X
			c.cy += n.Y
		}
		if c.charge > 0 {
			c.cx /= c.charge
			c.cy /= c.charge
		}
		return
	}
	for _, ch := range c.children {
		if ch == nil {
			continue
		}
		ch.aggregate()
		c.charge += ch.charge
		c.cx += ch.cx * ch.charge
		c.cy += ch.cy * ch.charge
	}
	if c.charge > 0 {
		c.cx /= c.charge
		c.cy /= c.charge
	}
}

func (c *chargeNode) accumulate(n *graph.Node, k, theta2, min2, max2 float64, rng *rand.Rand) {
	if c.charge == 0 {
		return
	}

	dx := c.cx - n.X
	dy := c.cy - n.Y
	w := c.x1 - c.x0
	d2 := dx*dx + dy*dy

	// Far enough: treat the whole cell as one body.
	if c.children != nil && w*w/theta2 < d2 {
		if d2 < max2 {
			if dx == 0 {
				dx = jiggle(rng)
				d2 += dx * dx
			}
			if dy == 0 {
				dy = jiggle(rng)
				d2 += dy * dy
			}
			if d2 < min2 {
				d2 = math.Sqrt(min2 * d2)
			}
			s := k * c.charge / d2
			n.VX += dx * s
			n.VY += dy * s
		}
		return
	}

	if c.children != nil {
		for _, ch := range c.children {
			if ch != nil {
				ch.accumulate(n, k, theta2, min2, max2, rng)
			}
		}
		return
	}

	for _, o := range c.occupants {
		if o == n || d2 >= max2 {
			continue
		}
		ox := o.X - n.X
		oy := o.Y - n.Y
		od2 := ox*ox + oy*oy
		if ox == 0 {
			ox = jiggle(rng)
			od2 += ox * ox
		}
		if oy == 0 {
			oy = jiggle(rng)
			od2 += oy * oy
		}
		if od2 < min2 {
			od2 = math.Sqrt(min2 * od2)
		}
		s := k / od2
		n.VX += ox * s
		n.VY += oy * s
	}
}
