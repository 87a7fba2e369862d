package geom

import "math"

// Vec is a 2D vector in layout space.
type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector and its original length. A zero-length
// vector normalizes to the zero vector.
func (v Vec) Normalize() (Vec, float64) {
	l := v.Len()
	if l == 0 {
		return Vec{}, 0
	}
	return Vec{v.X / l, v.Y / l}, l
}

func (v Vec) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Rect is an axis-aligned rectangle: Pos is the top-left corner.
// Rectangles are never rotated.
type Rect struct {
	Pos  Vec
	Size Vec
}

func RectAt(x, y, w, h float64) Rect {
	return Rect{Pos: Vec{x, y}, Size: Vec{w, h}}
}

func (r Rect) MaxX() float64 { return r.Pos.X + r.Size.X }
func (r Rect) MaxY() float64 { return r.Pos.Y + r.Size.Y }

func (r Rect) Center() Vec {
	return Vec{r.Pos.X + r.Size.X/2, r.Pos.Y + r.Size.Y/2}
}

func (r Rect) Area() float64 { return r.Size.X * r.Size.Y }

func (r Rect) Empty() bool { return r.Size.X <= 0 || r.Size.Y <= 0 }

// Expand grows the rectangle by m on every side.
func (r Rect) Expand(m float64) Rect {
	return Rect{
		Pos:  Vec{r.Pos.X - m, r.Pos.Y - m},
		Size: Vec{r.Size.X + 2*m, r.Size.Y + 2*m},
	}
}

func (r Rect) Contains(p Vec) bool {
	return p.X >= r.Pos.X && p.X <= r.MaxX() && p.Y >= r.Pos.Y && p.Y <= r.MaxY()
}

func (r Rect) Overlaps(o Rect) bool {
	return r.Pos.X < o.MaxX() && o.Pos.X < r.MaxX() &&
		r.Pos.Y < o.MaxY() && o.Pos.Y < r.MaxY()
}

// Intersection returns the overlap of two rectangles. The result is empty
// (zero or negative size) when they do not overlap.
func (r Rect) Intersection(o Rect) Rect {
	x0 := math.Max(r.Pos.X, o.Pos.X)
	y0 := math.Max(r.Pos.Y, o.Pos.Y)
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	return Rect{Pos: Vec{x0, y0}, Size: Vec{x1 - x0, y1 - y0}}
}

// Union returns the smallest rectangle covering both.
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.Pos.X, o.Pos.X)
	y0 := math.Min(r.Pos.Y, o.Pos.Y)
	x1 := math.Max(r.MaxX(), o.MaxX())
	y1 := math.Max(r.MaxY(), o.MaxY())
	return Rect{Pos: Vec{x0, y0}, Size: Vec{x1 - x0, y1 - y0}}
}

// Enlargement is the area growth of r needed to also cover o.
func (r Rect) Enlargement(o Rect) float64 {
	return r.Union(o).Area() - r.Area()
}
