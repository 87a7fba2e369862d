package render

import (
	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
)

const (
	// sub-pixels per label character cell
	charW = 2
	charH = 4

	labelPad     = 4.0
	truncLimit   = 6
	fullLabelMin = 0.75
	shortLabel   = 0.4
)

const DefaultTint = "252"

// Visual is the drawable counterpart of one simulation node: a copied
// position, a screen footprint, a resolved label and a tint.
type Visual struct {
	Node *graph.Node

	// X, Y are the last positions copied out of the simulation.
	X, Y float64

	// Text is the label resolved for the current zoom.
	Text string
	Tint string
}

func NewVisual(n *graph.Node) *Visual {
	return &Visual{Node: n, X: n.X, Y: n.Y, Text: n.Label, Tint: DefaultTint}
}

func (v *Visual) Key() graph.NodeKey { return v.Node.Key() }

// ResolveLabel picks the label detail for a zoom level: the full label when
// close, a truncated stem at mid distance, a single glyph when far out.
func (v *Visual) ResolveLabel(zoom float64) string {
	label := v.Node.Label
	if label == "" {
		label = v.Node.ID
	}
	switch {
	case zoom >= fullLabelMin:
		return label
	case zoom >= shortLabel:
		runes := []rune(label)
		if len(runes) > truncLimit {
			return string(runes[:truncLimit]) + "…"
		}
		return label
	default:
		return "•"
	}
}

// Footprint is the node's world-space size at a zoom level. The drawn
// label occupies fixed screen space, so the world rectangle grows as the
// camera zooms out.
func (v *Visual) Footprint(zoom float64) geom.Vec {
	label := v.ResolveLabel(zoom)
	w := float64(len([]rune(label)))*charW + labelPad
	h := float64(charH) + labelPad
	if zoom <= 0 {
		zoom = 1
	}
	return geom.Vec{X: w / zoom, Y: h / zoom}
}
