package geom

import "math"

// Vector2D is a point or size in the footprint plane, in mm. Positive y
// points down, matching the KiCad board coordinate system.
type Vector2D struct {
	X float64
	Y float64
}

func NewVector2D(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{v.X + o.X, v.Y + o.Y}
}

func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{v.X - o.X, v.Y - o.Y}
}

func (v Vector2D) Scale(f float64) Vector2D {
	return Vector2D{v.X * f, v.Y * f}
}

// RoundTo rounds both coordinates to the nearest multiple of g.
func (v Vector2D) RoundTo(g float64) Vector2D {
	return Vector2D{RoundToGridNearest(v.X, g), RoundToGridNearest(v.Y, g)}
}

// Mirror returns the vector mirrored about the given axes through the
// origin.
func (v Vector2D) Mirror(x, y bool) Vector2D {
	m := v
	if x {
		m.X = -m.X
	}
	if y {
		m.Y = -m.Y
	}
	return m
}

func (v Vector2D) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

// BoundingBox is an axis-aligned box accumulated from points and other
// boxes. The zero value is empty.
type BoundingBox struct {
	Min   Vector2D
	Max   Vector2D
	valid bool
}

func (b *BoundingBox) IncludePoint(p Vector2D) {
	if !b.valid {
		b.Min, b.Max = p, p
		b.valid = true
		return
	}
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
}

func (b *BoundingBox) IncludeBox(o BoundingBox) {
	if !o.valid {
		return
	}
	b.IncludePoint(o.Min)
	b.IncludePoint(o.Max)
}

// IncludeRect includes a center/size rectangle.
func (b *BoundingBox) IncludeRect(r Rect) {
	half := r.Size.Scale(0.5)
	b.IncludePoint(r.Center.Sub(half))
	b.IncludePoint(r.Center.Add(half))
}

func (b BoundingBox) Valid() bool {
	return b.valid
}

func (b BoundingBox) Size() Vector2D {
	return b.Max.Sub(b.Min)
}

func (b BoundingBox) Center() Vector2D {
	return b.Min.Add(b.Max).Scale(0.5)
}

func (b BoundingBox) Top() float64    { return b.Min.Y }
func (b BoundingBox) Bottom() float64 { return b.Max.Y }
func (b BoundingBox) Left() float64   { return b.Min.X }
func (b BoundingBox) Right() float64  { return b.Max.X }

// Rect is a rectangle described by its center and size.
type Rect struct {
	Center Vector2D
	Size   Vector2D
}

func (r Rect) Top() float64    { return r.Center.Y - r.Size.Y/2 }
func (r Rect) Bottom() float64 { return r.Center.Y + r.Size.Y/2 }
func (r Rect) Left() float64   { return r.Center.X - r.Size.X/2 }
func (r Rect) Right() float64  { return r.Center.X + r.Size.X/2 }

func (r Rect) BoundingBox() BoundingBox {
	b := BoundingBox{}
	b.IncludeRect(r)
	return b
}
