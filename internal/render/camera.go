package render

import "github.com/san-kum/lexigraph/internal/geom"

const (
	MinZoom = 0.25
	MaxZoom = 4.0
)

// Camera maps layout space to canvas sub-pixel space. Center is the world
// point shown at the middle of the viewport.
type Camera struct {
	Zoom   float64
	Center geom.Vec

	// viewport size in sub-pixels
	W, H int
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

func (c *Camera) SetViewport(w, h int) {
	c.W, c.H = w, h
}

func (c *Camera) WorldToScreen(p geom.Vec) geom.Vec {
	return geom.Vec{
		X: (p.X-c.Center.X)*c.Zoom + float64(c.W)/2,
		Y: (p.Y-c.Center.Y)*c.Zoom + float64(c.H)/2,
	}
}

func (c *Camera) ScreenToWorld(p geom.Vec) geom.Vec {
	return geom.Vec{
		X: (p.X-float64(c.W)/2)/c.Zoom + c.Center.X,
		Y: (p.Y-float64(c.H)/2)/c.Zoom + c.Center.Y,
	}
}

// Pan shifts the view by a screen-space delta.
func (c *Camera) Pan(dx, dy float64) {
	c.Center.X -= dx / c.Zoom
	c.Center.Y -= dy / c.Zoom
}

func (c *Camera) SetZoom(z float64) {
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	c.Zoom = z
}

func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// WorldBounds is the world-space rectangle currently visible.
func (c *Camera) WorldBounds() geom.Rect {
	tl := c.ScreenToWorld(geom.Vec{})
	br := c.ScreenToWorld(geom.Vec{X: float64(c.W), Y: float64(c.H)})
	return geom.Rect{Pos: tl, Size: br.Sub(tl)}
}
