package search

import "math"

// Kind names a canonical primitive descriptor's shape.
type Kind int

const (
	KindCircle Kind = iota
	KindRing
	KindRectangle
	KindObround
	KindTrack
	KindPolygon
	KindPolyTrack
)

// Point is a local-frame vertex.
type Point struct{ X, Y float64 }

// Primitive is a canonical shape descriptor in its own local frame: a
// disk, annulus, box, stadium, stroked segment, or filled/open
// polyline.
type Primitive struct {
	Kind Kind

	// Circle: Dx = radius. Ring: Dx = outer radius, Dy = inner radius.
	// Rectangle/Obround: Dx, Dy = full width/height. Track: Dx = length,
	// Hlw = half line width. Obround/PolyTrack: Hlw = half width.
	Dx, Dy, Hlw float64

	// Polygon/PolyTrack vertex list, in local-frame coordinates.
	Poly []Point
}

// SignedDistance returns the distance from (lx, ly), given in the
// primitive's local frame, to its border: negative strictly inside,
// zero on the border, positive outside.
func (p Primitive) SignedDistance(lx, ly float64) float64 {
	switch p.Kind {
	case KindCircle:
		return math.Hypot(lx, ly) - p.Dx
	case KindRing:
		d := math.Hypot(lx, ly)
		switch {
		case d > p.Dx:
			return d - p.Dx
		case d < p.Dy:
			return p.Dy - d
		default:
			return -math.Min(p.Dx-d, d-p.Dy)
		}
	case KindRectangle:
		return boxSDF(lx, ly, p.Dx, p.Dy)
	case KindObround:
		return capsuleSDF(lx, ly, -p.Dx/2+p.Hlw, 0, p.Dx/2-p.Hlw, 0, p.Hlw)
	case KindTrack:
		return capsuleSDF(lx, ly, 0, 0, p.Dx, 0, p.Hlw)
	case KindPolygon:
		return polygonSDF(p.Poly, lx, ly)
	case KindPolyTrack:
		return polylineSDF(p.Poly, lx, ly, p.Hlw)
	default:
		return math.Inf(1)
	}
}

// boxSDF is the signed distance to an axis-aligned box of full size
// (w, h) centered at the local origin.
func boxSDF(px, py, w, h float64) float64 {
	qx := math.Abs(px) - w/2
	qy := math.Abs(py) - h/2
	outside := math.Hypot(math.Max(qx, 0), math.Max(qy, 0))
	inside := math.Min(math.Max(qx, qy), 0)
	return outside + inside
}

// segDist is the distance from (px,py) to the segment (ax,ay)-(bx,by).
func segDist(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx, cy := ax+t*dx, ay+t*dy
	return math.Hypot(px-cx, py-cy)
}

// capsuleSDF is the signed distance to a stadium shape: the set of
// points within hlw of the segment (ax,ay)-(bx,by).
func capsuleSDF(px, py, ax, ay, bx, by, hlw float64) float64 {
	return segDist(px, py, ax, ay, bx, by) - hlw
}

// polygonSDF is the signed distance to a filled, even-odd-wound
// polygon: negative inside, magnitude is the distance to the nearest
// edge.
func polygonSDF(poly []Point, px, py float64) float64 {
	if len(poly) < 3 {
		return math.Inf(1)
	}
	minDist := math.Inf(1)
	inside := false
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		if d := segDist(px, py, a.X, a.Y, b.X, b.Y); d < minDist {
			minDist = d
		}
		if (a.Y > py) != (b.Y > py) {
			xCross := a.X + (py-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if px < xCross {
				inside = !inside
			}
		}
	}
	if inside {
		return -minDist
	}
	return minDist
}

// polylineSDF is the signed distance to an open, stroked polyline (a
// PolyTrack): the distance to the nearest segment minus hlw, so it is
// negative within the stroke.
func polylineSDF(poly []Point, px, py, hlw float64) float64 {
	if len(poly) < 2 {
		return math.Inf(1)
	}
	minDist := math.Inf(1)
	for i := 0; i+1 < len(poly); i++ {
		a, b := poly[i], poly[i+1]
		if d := segDist(px, py, a.X, a.Y, b.X, b.Y) - hlw; d < minDist {
			minDist = d
		}
	}
	return minDist
}
