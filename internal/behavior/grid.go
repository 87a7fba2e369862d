package behavior

import (
	"math"

	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/render"
)

const (
	gridBaseStep = 50.0
	gridTint     = "236"
)

// Grid paints world-anchored grid dots beneath the graph so panning and
// zooming read as movement. The step doubles as the camera zooms out,
// keeping on-screen density roughly constant.
type Grid struct {
	opts Options
}

func NewGrid(opts Options) Behavior {
	return &Grid{opts: opts}
}

func (b *Grid) Name() string { return "grid" }

func (b *Grid) Paint(c *render.Canvas) {
	cam := b.opts.Camera
	step := gridBaseStep
	for step*cam.Zoom < 16 {
		step *= 2
	}
	for step*cam.Zoom > 64 {
		step /= 2
	}

	bounds := cam.WorldBounds()
	x0 := math.Floor(bounds.Pos.X/step) * step
	y0 := math.Floor(bounds.Pos.Y/step) * step
	for x := x0; x <= bounds.MaxX(); x += step {
		for y := y0; y <= bounds.MaxY(); y += step {
			s := cam.WorldToScreen(geom.Vec{X: x, Y: y})
			c.SetColored(int(s.X), int(s.Y), gridTint)
		}
	}
}
