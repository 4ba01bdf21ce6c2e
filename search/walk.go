package search

import (
	"math"

	"github.com/pcbtools/gerbcore/aperture"
	"github.com/pcbtools/gerbcore/image"
)

// Object is one visited geometric object: its source net, the
// canonical primitive describing its shape, and the affine transform
// mapping the primitive's local frame to world coordinates.
type Object struct {
	NetIndex  int
	Net       *image.Net
	Primitive Primitive
	Transform Matrix
}

// Visitor is called once per drawn/flashed object as Walk iterates an
// image's netlist. Returning false stops the walk early.
type Visitor func(Object) bool

// Walk iterates img's netlist, skipping Deleted nets and region
// brackets (PolyAreaStart/End carry no paintable shape of their own;
// their bracketed boundary nets are visited as ordinary tracks), and
// invokes visit for every object with a resolvable aperture.
func Walk(img *image.Image, visit Visitor) {
	for i := range img.Nets {
		n := &img.Nets[i]
		if n.Interpolation == image.Deleted || n.ApertureState == image.Off {
			continue
		}
		if n.Interpolation == image.PolyAreaStart || n.Interpolation == image.PolyAreaEnd {
			continue
		}
		base := objectBase(img, n)
		ap, ok := img.Apertures.Get(n.Aperture)
		if !ok {
			continue
		}
		for _, obj := range primitivesFor(i, n, ap, base) {
			if !visit(obj) {
				return
			}
		}
	}
}

// objectBase composes the netstate and layer transforms that apply to
// every object on net n.
func objectBase(img *image.Image, n *image.Net) Matrix {
	ns := img.NetStates[n.NetStateIndex]
	layer := img.Layers[n.LayerIndex]
	return Compose(netStateMatrix(ns), Rotate(layer.RotationDeg))
}

func netStateMatrix(ns image.NetState) Matrix {
	m := Identity()
	if ns.AxisSwap {
		m = Compose(AxisSwap(), m)
	}
	mx, my := 1.0, 1.0
	if ns.MirrorA {
		mx = -1
	}
	if ns.MirrorB {
		my = -1
	}
	m = Compose(Scale(mx*ns.ScaleA, my*ns.ScaleB), m)
	m = Compose(Translate(ns.OffsetA, ns.OffsetB), m)
	return m
}

// primitivesFor builds the canonical primitive(s) for one net: a
// single shape for a flash or a track, or one shape per simplified
// macro primitive for a macro-aperture flash, each keeping its own
// Kind/Exposure so a caller painting the macro can honor
// clear/dark/toggle in order.
func primitivesFor(idx int, n *image.Net, ap *aperture.Aperture, base Matrix) []Object {
	if n.ApertureState == image.Flash {
		if ap.Shape.Type == aperture.Macro {
			placement := Compose(base, Translate(n.StopX, n.StopY))
			return macroObjects(idx, n, ap, placement)
		}
		prim, extraRot := shapePrimitive(ap.Shape)
		placement := Compose(base, Compose(Translate(n.StopX, n.StopY), Rotate(extraRot)))
		return []Object{{NetIndex: idx, Net: n, Primitive: prim, Transform: placement}}
	}
	// Drawn segment (Linear or circular interpolation): a Track in the
	// segment's own frame for linear draws; circular segments degrade
	// to their chord as a track, since this engine models distance
	// queries per-primitive rather than rendering exact arcs.
	dx, dy := n.StopX-n.StartX, n.StopY-n.StartY
	length := math.Hypot(dx, dy)
	angle := math.Atan2(dy, dx) * 180 / math.Pi
	placement := Compose(base, Compose(Translate(n.StartX, n.StartY), Rotate(angle)))
	halfW, _ := ap.Envelope()
	if ap.Shape.Type == aperture.Rectangle || ap.Shape.Type == aperture.Oval {
		halfW = ap.Shape.Height / 2
	}
	return []Object{{NetIndex: idx, Net: n, Primitive: Primitive{Kind: KindTrack, Dx: length, Hlw: halfW}, Transform: placement}}
}

// shapePrimitive maps a standard %AD shape to its canonical primitive,
// plus an extra rotation the placement transform must add: Obround
// orients its capsule along the local X axis, so a taller-than-wide
// oval needs a 90-degree correction to still point along its actual
// long axis.
func shapePrimitive(s aperture.Shape) (Primitive, float64) {
	switch s.Type {
	case aperture.Circle:
		if s.HoleDiameter > 0 {
			return Primitive{Kind: KindRing, Dx: s.OuterDiameter / 2, Dy: s.HoleDiameter / 2}, 0
		}
		return Primitive{Kind: KindCircle, Dx: s.OuterDiameter / 2}, 0
	case aperture.Rectangle:
		return Primitive{Kind: KindRectangle, Dx: s.Width, Dy: s.Height}, 0
	case aperture.Oval:
		if s.Height > s.Width {
			return Primitive{Kind: KindObround, Dx: s.Height, Hlw: s.Width / 2}, 90
		}
		return Primitive{Kind: KindObround, Dx: s.Width, Hlw: s.Height / 2}, 0
	case aperture.Polygon:
		return Primitive{Kind: KindPolygon, Poly: regularPolygon(s.OuterDiameter/2, s.Sides, s.Rotation)}, 0
	default:
		return Primitive{Kind: KindCircle, Dx: 0}, 0
	}
}

func regularPolygon(radius float64, sides int, rotationDeg float64) []Point {
	if sides < 3 {
		sides = 3
	}
	pts := make([]Point, sides)
	rot := rotationDeg * math.Pi / 180
	for i := 0; i < sides; i++ {
		theta := rot + 2*math.Pi*float64(i)/float64(sides)
		pts[i] = Point{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return pts
}

// macroObjects expands a macro aperture's simplified primitive list
// into one Object per primitive, each placed at its own (cx, cy,
// rotation) inside the aperture's placement frame.
func macroObjects(idx int, n *image.Net, ap *aperture.Aperture, placement Matrix) []Object {
	out := make([]Object, 0, len(ap.Simplified))
	for _, prim := range ap.Simplified {
		cx, cy, rot := macroAnchor(prim)
		local := Compose(placement, Compose(Translate(cx, cy), Rotate(rot)))
		out = append(out, Object{NetIndex: idx, Net: n, Primitive: macroPrimitiveShape(prim), Transform: local})
	}
	return out
}

func macroAnchor(p aperture.Primitive) (cx, cy, rot float64) {
	switch p.Code {
	case aperture.PCircle:
		return p.Params[1], p.Params[2], 0
	case aperture.POutline:
		return 0, 0, paramAt(p.Params, 0)
	case aperture.PPolygon:
		return p.Params[1], p.Params[2], p.Params[4]
	case aperture.PMoire, aperture.PThermal:
		return p.Params[0], p.Params[1], lastParam(p)
	case aperture.PLine20:
		sx, sy, ex, ey, rot := p.Params[1], p.Params[2], p.Params[3], p.Params[4], p.Params[5]
		angle := math.Atan2(ey-sy, ex-sx) * 180 / math.Pi
		return sx, sy, angle + rot
	case aperture.PLine21:
		return p.Params[2], p.Params[3], p.Params[4]
	case aperture.PLine22:
		// Line22's (cx, cy) params are a lower-left corner, not a
		// center; recenter so the shared Rectangle primitive, which is
		// centered at local origin, ends up in the same place.
		return p.Params[2] + p.Params[0]/2, p.Params[3] + p.Params[1]/2, p.Params[4]
	default:
		return 0, 0, 0
	}
}

func paramAt(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}

func lastParam(p aperture.Primitive) float64 {
	if len(p.Params) == 0 {
		return 0
	}
	return p.Params[len(p.Params)-1]
}

// macroPrimitiveShape maps one simplified macro primitive to its
// canonical search descriptor, already centered at its own anchor
// (macroAnchor supplies the placement transform).
func macroPrimitiveShape(p aperture.Primitive) Primitive {
	switch p.Code {
	case aperture.PCircle:
		return Primitive{Kind: KindCircle, Dx: p.Params[0] / 2}
	case aperture.POutline:
		pts := make([]Point, len(p.Points))
		for i, v := range p.Points {
			pts[i] = Point{X: v.X, Y: v.Y}
		}
		return Primitive{Kind: KindPolygon, Poly: pts}
	case aperture.PPolygon:
		return Primitive{Kind: KindPolygon, Poly: regularPolygon(p.Params[3]/2, int(p.Params[0]), 0)}
	case aperture.PMoire:
		// Approximated as a single ring between the outer diameter and
		// the first ring's inner edge; a full concentric-ring/cross
		// decomposition is a rendering concern this search/annotation
		// engine has no need for.
		outerD, ringW := p.Params[2], p.Params[3]
		return Primitive{Kind: KindRing, Dx: outerD / 2, Dy: outerD/2 - ringW}
	case aperture.PThermal:
		return Primitive{Kind: KindRing, Dx: p.Params[2] / 2, Dy: p.Params[3] / 2}
	case aperture.PLine20:
		dx, dy := p.Params[3]-p.Params[1], p.Params[4]-p.Params[2]
		return Primitive{Kind: KindTrack, Dx: math.Hypot(dx, dy), Hlw: p.Params[0] / 2}
	case aperture.PLine21, aperture.PLine22:
		return Primitive{Kind: KindRectangle, Dx: p.Params[0], Dy: p.Params[1]}
	default:
		return Primitive{Kind: KindCircle, Dx: 0}
	}
}

// DistanceToBorder maps world point (wx, wy) into obj's local frame
// and returns its signed distance to the border: negative strictly
// inside, zero on the border, positive outside.
func DistanceToBorder(obj Object, wx, wy float64) float64 {
	inv, ok := obj.Transform.Invert()
	if !ok {
		return math.Inf(1)
	}
	lx, ly := inv.Apply(wx, wy)
	return obj.Primitive.SignedDistance(lx, ly) * obj.Transform.scaleFactor()
}
