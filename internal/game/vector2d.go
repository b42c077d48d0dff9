package game

import "math"

// Vec2 is a 2D vector in arena units (points, origin bottom-left).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// finite maps NaN and ±Inf to zero so bad sensor data never reaches the simulation.
func finite(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// clampUnit sanitizes n and clamps it to [-1, 1].
func clampUnit(n float64) float64 {
	n = finite(n)
	if n > 1 {
		return 1
	}
	if n < -1 {
		return -1
	}
	return n
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// ClampMagnitude scales v down so its length does not exceed max.
func (v Vec2) ClampMagnitude(max float64) Vec2 {
	m := v.Magnitude()
	if m <= max || m == 0 {
		return v
	}
	return v.Times(max / m)
}

// Lerp moves v toward o by factor t.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{X: v.X + t*(o.X-v.X), Y: v.Y + t*(o.Y-v.Y)}
}
