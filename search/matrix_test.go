package search

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestIdentityApply(t *testing.T) {
	x, y := Identity().Apply(3, 4)
	if x != 3 || y != 4 {
		t.Errorf("Identity().Apply(3,4) = (%v,%v), want (3,4)", x, y)
	}
}

func TestTranslateApply(t *testing.T) {
	x, y := Translate(1, 2).Apply(3, 4)
	if x != 4 || y != 6 {
		t.Errorf("Translate(1,2).Apply(3,4) = (%v,%v), want (4,6)", x, y)
	}
}

func TestRotate90Apply(t *testing.T) {
	x, y := Rotate(90).Apply(1, 0)
	if !almostEqual(x, 0) || !almostEqual(y, 1) {
		t.Errorf("Rotate(90).Apply(1,0) = (%v,%v), want ~(0,1)", x, y)
	}
}

func TestComposeAppliesInnerThenOuter(t *testing.T) {
	m := Compose(Translate(10, 0), Scale(2, 2))
	x, y := m.Apply(1, 1)
	if !almostEqual(x, 12) || !almostEqual(y, 2) {
		t.Errorf("Compose(translate,scale).Apply(1,1) = (%v,%v), want (12,2)", x, y)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	m := Compose(Translate(5, -3), Rotate(37))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("Invert() should succeed for a non-degenerate transform")
	}
	wx, wy := m.Apply(2, 7)
	lx, ly := inv.Apply(wx, wy)
	if !almostEqual(lx, 2) || !almostEqual(ly, 7) {
		t.Errorf("round trip = (%v,%v), want (2,7)", lx, ly)
	}
}

func TestInvertSingular(t *testing.T) {
	if _, ok := (Matrix{}).Invert(); ok {
		t.Error("Invert() of the zero matrix should fail")
	}
}

func TestAxisSwapApply(t *testing.T) {
	x, y := AxisSwap().Apply(3, 7)
	if x != 7 || y != 3 {
		t.Errorf("AxisSwap().Apply(3,7) = (%v,%v), want (7,3)", x, y)
	}
}

func TestScaleFactor(t *testing.T) {
	m := Scale(2, 2)
	if got := m.scaleFactor(); !almostEqual(got, 2) {
		t.Errorf("scaleFactor() = %v, want 2", got)
	}
}
