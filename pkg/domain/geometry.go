package domain

import "github.com/chewxy/math32"

// Vec2 is a horizontal-plane position in meters. Elevation comes from the
// owning level, never from the point itself.
type Vec2 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 { return Vec2{v.X + other.X, v.Y + other.Y} }

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 { return Vec2{v.X - other.X, v.Y - other.Y} }

// Length returns the euclidean norm of v.
func (v Vec2) Length() float32 { return math32.Hypot(v.X, v.Y) }

// Distance returns the euclidean distance between v and other.
func (v Vec2) Distance(other Vec2) float32 { return v.Sub(other).Length() }

// Mid returns the midpoint between v and other.
func (v Vec2) Mid(other Vec2) Vec2 {
	return Vec2{(v.X + other.X) / 2, (v.Y + other.Y) / 2}
}

// Yaw returns the heading in radians of the segment from v to other.
func (v Vec2) Yaw(other Vec2) float32 {
	d := other.Sub(v)
	return math32.Atan2(d.Y, d.X)
}

// ApproxEqual reports whether both components differ by less than eps.
func (v Vec2) ApproxEqual(other Vec2, eps float32) bool {
	return math32.Abs(v.X-other.X) < eps && math32.Abs(v.Y-other.Y) < eps
}
