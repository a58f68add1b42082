package domain

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestVec2Arithmetic(t *testing.T) {
	a := Vec2{X: 3, Y: 4}
	b := Vec2{X: 1, Y: 1}

	if got := a.Add(b); got != (Vec2{X: 4, Y: 5}) {
		t.Fatalf("Add = %v", got)
	}
	if got := a.Sub(b); got != (Vec2{X: 2, Y: 3}) {
		t.Fatalf("Sub = %v", got)
	}
	if got := a.Length(); got != 5 {
		t.Fatalf("Length = %g, want 5", got)
	}
	if got := (Vec2{}).Distance(a); got != 5 {
		t.Fatalf("Distance = %g, want 5", got)
	}
	if got := a.Mid(b); got != (Vec2{X: 2, Y: 2.5}) {
		t.Fatalf("Mid = %v", got)
	}
}

func TestVec2Yaw(t *testing.T) {
	origin := Vec2{}
	if got := origin.Yaw(Vec2{X: 1, Y: 0}); got != 0 {
		t.Fatalf("yaw along +x = %g, want 0", got)
	}
	if got := origin.Yaw(Vec2{X: 0, Y: 1}); math32.Abs(got-math32.Pi/2) > 1e-6 {
		t.Fatalf("yaw along +y = %g, want pi/2", got)
	}
	if got := origin.Yaw(Vec2{X: -1, Y: 0}); math32.Abs(math32.Abs(got)-math32.Pi) > 1e-6 {
		t.Fatalf("yaw along -x = %g, want +/-pi", got)
	}
}

func TestVec2ApproxEqual(t *testing.T) {
	a := Vec2{X: 1, Y: 2}
	if !a.ApproxEqual(Vec2{X: 1.00005, Y: 2}, 1e-4) {
		t.Fatal("points within eps should compare equal")
	}
	if a.ApproxEqual(Vec2{X: 1.2, Y: 2}, 1e-4) {
		t.Fatal("points beyond eps should not compare equal")
	}
}
