package game

import (
	"math"
	"testing"
)

func TestVec2ClampMagnitude(t *testing.T) {
	v := Vec2{X: 300, Y: 400}.ClampMagnitude(100)
	if math.Abs(v.Magnitude()-100) > eps || math.Abs(v.X-60) > eps || math.Abs(v.Y-80) > eps {
		t.Errorf("ClampMagnitude = %+v, want (60,80)", v)
	}
	short := Vec2{X: 3, Y: 4}
	if got := short.ClampMagnitude(100); got != short {
		t.Errorf("short vectors should be unchanged, got %+v", got)
	}
	if got := (Vec2{}).ClampMagnitude(0); got != (Vec2{}) {
		t.Errorf("zero vector should stay zero, got %+v", got)
	}
}

func TestVec2Helpers(t *testing.T) {
	if got := finite(math.NaN()) + finite(math.Inf(-1)); got != 0 {
		t.Errorf("finite should map non-finite values to 0, got %v", got)
	}
	if clampUnit(2) != 1 || clampUnit(-3) != -1 || clampUnit(0.25) != 0.25 {
		t.Error("clampUnit should clamp to [-1, 1]")
	}
	if got := (Vec2{}).Lerp(Vec2{X: 10, Y: -10}, 0.5); got != (Vec2{X: 5, Y: -5}) {
		t.Errorf("Lerp = %+v", got)
	}
	if got := (Vec2{X: 1, Y: 2}).Plus(Vec2{X: 3, Y: 4}).Times(2); got != (Vec2{X: 8, Y: 12}) {
		t.Errorf("arithmetic = %+v", got)
	}
}
