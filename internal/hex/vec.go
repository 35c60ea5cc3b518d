package hex

import "math"

// Vec2 is a continuous board position measured in hexes: adjacent cell
// centers are exactly 1 apart.
type Vec2 struct{ X, Y float64 }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Len() float64    { return math.Hypot(a.X, a.Y) }
func (a Vec2) Norm() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }

func (a Vec2) DistSq(b Vec2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// Angle is the bearing from a to b in radians.
func (a Vec2) Angle(b Vec2) float64 { return math.Atan2(b.Y-a.Y, b.X-a.X) }

// Dir returns the unit vector for a bearing.
func Dir(radians float64) Vec2 { return Vec2{math.Cos(radians), math.Sin(radians)} }

// Rotate turns a around the origin.
func (a Vec2) Rotate(radians float64) Vec2 {
	s, c := math.Sincos(radians)
	return Vec2{a.X*c - a.Y*s, a.X*s + a.Y*c}
}
