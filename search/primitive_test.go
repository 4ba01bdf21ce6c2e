package search

import "testing"

func TestSignedDistanceCircle(t *testing.T) {
	p := Primitive{Kind: KindCircle, Dx: 5}
	if got := p.SignedDistance(0, 0); got != -5 {
		t.Errorf("center = %v, want -5", got)
	}
	if got := p.SignedDistance(5, 0); got != 0 {
		t.Errorf("on border = %v, want 0", got)
	}
	if got := p.SignedDistance(10, 0); got != 5 {
		t.Errorf("outside = %v, want 5", got)
	}
}

func TestSignedDistanceRing(t *testing.T) {
	p := Primitive{Kind: KindRing, Dx: 10, Dy: 5}
	if got := p.SignedDistance(0, 0); got != 5 {
		t.Errorf("inside the hole = %v, want 5 (the hole is outside the annulus; distance to inner edge)", got)
	}
	if got := p.SignedDistance(7, 0); got >= 0 {
		t.Errorf("within the ring band = %v, want < 0", got)
	}
	if got := p.SignedDistance(20, 0); got != 10 {
		t.Errorf("outside = %v, want 10", got)
	}
}

func TestSignedDistanceRectangle(t *testing.T) {
	p := Primitive{Kind: KindRectangle, Dx: 4, Dy: 2}
	if got := p.SignedDistance(0, 0); got != -1 {
		t.Errorf("center = %v, want -1 (half the shorter side)", got)
	}
	if got := p.SignedDistance(2, 0); got != 0 {
		t.Errorf("on the right edge = %v, want 0", got)
	}
	if got := p.SignedDistance(3, 0); got != 1 {
		t.Errorf("outside = %v, want 1", got)
	}
}

func TestSignedDistanceTrack(t *testing.T) {
	p := Primitive{Kind: KindTrack, Dx: 10, Hlw: 1}
	if got := p.SignedDistance(5, 0); got != -1 {
		t.Errorf("on the centerline = %v, want -1", got)
	}
	if got := p.SignedDistance(5, 1); got != 0 {
		t.Errorf("on the stroke edge = %v, want 0", got)
	}
	if got := p.SignedDistance(-5, 0); got != 4 {
		t.Errorf("off the end = %v, want 4", got)
	}
}

func TestSignedDistancePolygon(t *testing.T) {
	square := []Point{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	p := Primitive{Kind: KindPolygon, Poly: square}
	if got := p.SignedDistance(0, 0); got != -1 {
		t.Errorf("center = %v, want -1", got)
	}
	if got := p.SignedDistance(2, 0); got != 1 {
		t.Errorf("outside = %v, want 1", got)
	}
}

func TestSignedDistancePolyTrack(t *testing.T) {
	poly := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
	p := Primitive{Kind: KindPolyTrack, Poly: poly, Hlw: 1}
	if got := p.SignedDistance(5, 0); got != -1 {
		t.Errorf("on the centerline = %v, want -1", got)
	}
	if got := p.SignedDistance(5, 1); got != 0 {
		t.Errorf("on the stroke edge = %v, want 0", got)
	}
}
