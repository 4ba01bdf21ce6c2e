// Package search implements the geometric search/annotation engine: a
// pure iterator over an image.Image's netlist that hands the caller a
// canonical primitive descriptor plus the affine transform mapping its
// local frame to world coordinates, and the distance-to-border /
// IPC-D-356A-to-Gerber annotation queries built on top of it.
package search

import "math"

// Matrix is a 2x3 affine transform: world = (A*x + C*y + E, B*x + D*y + F).
// A transform stack of these matrices is pushed at each
// layer/netstate/aperture-macro boundary; step-and-repeat is flattened
// into literal nets at parse time, so the remaining boundaries this
// engine composes per object are netstate, layer, and aperture-macro
// primitive placement.
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity is the no-op transform.
func Identity() Matrix { return Matrix{A: 1, D: 1} }

// Translate returns a pure translation.
func Translate(tx, ty float64) Matrix { return Matrix{A: 1, D: 1, E: tx, F: ty} }

// Scale returns a pure axis scale.
func Scale(sx, sy float64) Matrix { return Matrix{A: sx, D: sy} }

// Rotate returns a pure rotation of deg degrees counterclockwise.
func Rotate(deg float64) Matrix {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// AxisSwap exchanges X and Y, the %AS AYBX transform.
func AxisSwap() Matrix { return Matrix{B: 1, C: 1} }

// Apply maps a local-frame point to the frame m is built against.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Compose returns the transform that applies inner first, then outer
// (outer ∘ inner): local coordinates run through inner, then outer.
func Compose(outer, inner Matrix) Matrix {
	return Matrix{
		A: outer.A*inner.A + outer.C*inner.B,
		B: outer.B*inner.A + outer.D*inner.B,
		C: outer.A*inner.C + outer.C*inner.D,
		D: outer.B*inner.C + outer.D*inner.D,
		E: outer.A*inner.E + outer.C*inner.F + outer.E,
		F: outer.B*inner.E + outer.D*inner.F + outer.F,
	}
}

// Invert returns m's inverse, used by DistanceToBorder to map a world
// point back into a primitive's local frame.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Matrix{}, false
	}
	inv := 1 / det
	return Matrix{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}, true
}

// scaleFactor approximates m's linear scale, used to convert a local-
// frame distance back to world units: the mean of the two axis scales,
// exact for similarity transforms (equal scale on both axes), an
// approximation when a netstate's %SF A and B factors differ.
func (m Matrix) scaleFactor() float64 {
	sx := math.Hypot(m.A, m.B)
	sy := math.Hypot(m.C, m.D)
	return (sx + sy) / 2
}
