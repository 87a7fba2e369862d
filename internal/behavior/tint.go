package behavior

import (
	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/render"
	"github.com/san-kum/lexigraph/internal/spatial"
)

// Tint priority, highest first: pressed > hovered > selected > default.
const (
	pressedTint  = "205"
	hoveredTint  = "86"
	selectedTint = "212"
)

// Tint recomputes a visual's color from its full interaction state every
// time any contributing state changes. Recomputing, instead of saving and
// restoring colors, is what keeps a lower-priority tint correct when a
// higher-priority state ends in any order.
type Tint struct {
	opts    Options
	cache   *spatial.Cache
	pressed *render.Visual
	hovered *render.Visual
}

func NewTint(opts Options) Behavior {
	b := &Tint{
		opts:  opts,
		cache: opts.State("spatialindex").(*spatial.Cache),
	}
	opts.Selection.SetHighlight(func(v *render.Visual, _ bool) {
		b.refresh(v)
	})
	return b
}

func (b *Tint) Name() string { return "tint" }

func (b *Tint) PointerDown(p geom.Vec) {
	b.setPressed(b.visualAt(p))
}

func (b *Tint) PointerMove(p geom.Vec) {
	b.setHovered(b.visualAt(p))
}

func (b *Tint) PointerUp(p geom.Vec) {
	b.setPressed(nil)
	b.setHovered(b.visualAt(p))
}

func (b *Tint) setPressed(v *render.Visual) {
	if b.pressed == v {
		return
	}
	prev := b.pressed
	b.pressed = v
	b.refresh(prev)
	b.refresh(v)
}

func (b *Tint) setHovered(v *render.Visual) {
	if b.hovered == v {
		return
	}
	prev := b.hovered
	b.hovered = v
	b.refresh(prev)
	b.refresh(v)
}

func (b *Tint) refresh(v *render.Visual) {
	if v == nil {
		return
	}
	switch {
	case v == b.pressed:
		v.Tint = pressedTint
	case v == b.hovered:
		v.Tint = hoveredTint
	case b.opts.Selection.Has(v):
		v.Tint = selectedTint
	default:
		v.Tint = render.DefaultTint
	}
}

func (b *Tint) visualAt(p geom.Vec) *render.Visual {
	world := b.opts.Camera.ScreenToWorld(p)
	n := hitNode(b.cache, world)
	if n == nil {
		return nil
	}
	return b.opts.VisualByKey(n.Key())
}
