// Package geom provides the small set of 2D value types shared by the
// document model, the input surface and the drag controller.
package geom

import (
	"math"
	"strconv"
)

// Point is a 2D coordinate. Depending on context it is page-relative
// (document origin) or client-relative (viewport origin).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Within reports whether both components of p are strictly inside
// (-limit, limit). A zero or negative limit never contains anything.
func (p Point) Within(limit float64) bool {
	return math.Abs(p.X) < limit && math.Abs(p.Y) < limit
}

// String formats the point as "(x, y)".
func (p Point) String() string {
	return "(" + formatFloat(p.X) + ", " + formatFloat(p.Y) + ")"
}

// Rect is an axis-aligned rectangle. Width and Height are never negative
// for rectangles produced by this module.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// R is shorthand for Rect{X: x, Y: y, Width: w, Height: h}.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// Min returns the top-left corner.
func (r Rect) Min() Point {
	return Point{X: r.X, Y: r.Y}
}

// Left returns the left edge.
func (r Rect) Left() float64 { return r.X }

// Top returns the top edge.
func (r Rect) Top() float64 { return r.Y }

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive so that adjacent rectangles never both contain a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() &&
		p.Y >= r.Y && p.Y < r.Bottom()
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// MoveTo returns r with its top-left corner at p.
func (r Rect) MoveTo(p Point) Rect {
	r.X = p.X
	r.Y = p.Y
	return r
}

// Px formats v as a CSS pixel length, e.g. "12px" or "12.5px".
func Px(v float64) string {
	return formatFloat(v) + "px"
}

// ParsePx parses a CSS pixel length produced by Px. A bare number is
// accepted as pixels. It returns false for any other unit.
func ParsePx(s string) (float64, bool) {
	if len(s) >= 2 && s[len(s)-2:] == "px" {
		s = s[:len(s)-2]
	}
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
