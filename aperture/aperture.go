// Package aperture implements the aperture table and macro simplifier.
// Rather than a flat 200-float parameter array, each Aperture carries a
// tagged Shape with a small, variant-specific field set, and macro
// apertures additionally carry their Simplified primitive list.
package aperture

import "github.com/pcbtools/gerbcore/attr"

// PrimitiveType names an aperture's base shape.
type PrimitiveType int

const (
	Circle PrimitiveType = iota
	Rectangle
	Oval
	Polygon
	Macro
)

func (t PrimitiveType) String() string {
	switch t {
	case Circle:
		return "circle"
	case Rectangle:
		return "rectangle"
	case Oval:
		return "oval"
	case Polygon:
		return "polygon"
	case Macro:
		return "macro"
	default:
		return "unknown"
	}
}

// Shape is the standard-primitive geometry of an aperture, one of the
// %AD C/R/O/P bodies. Only the fields relevant to Type are meaningful.
type Shape struct {
	Type PrimitiveType

	// Circle: OuterDiameter [, HoleDiameter [, HoleHeight]].
	// Rectangle/Oval: Width, Height [, HoleDiameter [, HoleHeight]].
	// Polygon: OuterDiameter, Sides, Rotation [, HoleDiameter [, HoleHeight]].
	OuterDiameter float64
	Width         float64
	Height        float64
	Sides         int
	Rotation      float64
	HoleDiameter  float64
	HoleHeight    float64
}

// Envelope returns the half-width/half-height of the smallest
// axis-aligned rectangle enclosing the shape, used for incremental
// bounding-box maintenance.
func (s Shape) Envelope() (halfW, halfH float64) {
	switch s.Type {
	case Circle:
		r := s.OuterDiameter / 2
		return r, r
	case Rectangle:
		return s.Width / 2, s.Height / 2
	case Oval:
		return s.Width / 2, s.Height / 2
	case Polygon:
		r := s.OuterDiameter / 2
		return r, r
	default:
		return 0, 0
	}
}

// Aperture is one D-code's definition: either a standard shape, or a
// reference to a macro definition plus the simplified primitive list
// produced by Simplify for this aperture's actual macro parameters.
type Aperture struct {
	Code  int
	Shape Shape

	MacroName   string
	MacroParams []float64
	Simplified  []Primitive

	// Attrs is the aperture-scope attribute snapshot live when this
	// aperture was defined; it inherits into any object flashed/drawn
	// with that aperture.
	Attrs map[attr.Key]attr.Attribute
}

// Envelope returns the aperture's bounding half-extents, from its
// Shape for standard apertures or from the simplified macro primitive
// list's own bounds for macro apertures.
func (a *Aperture) Envelope() (halfW, halfH float64) {
	if a.Shape.Type != Macro {
		return a.Shape.Envelope()
	}
	return macroEnvelope(a.Simplified)
}

// Table is an image's sparse D-code -> Aperture map.
type Table struct {
	m map[int]*Aperture
}

// NewTable returns an empty aperture table.
func NewTable() *Table {
	return &Table{m: make(map[int]*Aperture)}
}

// Define installs ap, keyed by its Code. D-codes below 10 are
// reserved for D01/D02/D03 style commands; D10 is the lowest legal
// aperture code.
func (t *Table) Define(ap *Aperture) {
	t.m[ap.Code] = ap
}

// Get looks up an aperture by D-code.
func (t *Table) Get(code int) (*Aperture, bool) {
	ap, ok := t.m[code]
	return ap, ok
}

// EnsureCircle returns the aperture at code, synthesizing a circle of
// the given diameter and reporting synthesized=true if it was never
// defined.
func (t *Table) EnsureCircle(code int, diameter float64) (ap *Aperture, synthesized bool) {
	if existing, ok := t.m[code]; ok {
		return existing, false
	}
	ap = &Aperture{Code: code, Shape: Shape{Type: Circle, OuterDiameter: diameter}}
	t.m[code] = ap
	return ap, true
}

// Codes returns every defined D-code, for writer iteration.
func (t *Table) Codes() []int {
	out := make([]int, 0, len(t.m))
	for c := range t.m {
		out = append(out, c)
	}
	return out
}

// Len reports how many apertures are defined.
func (t *Table) Len() int { return len(t.m) }

// Clone returns a deep copy: a new map holding new *Aperture values, so
// mutating the clone's table or any aperture in it never affects t.
func (t *Table) Clone() *Table {
	out := &Table{m: make(map[int]*Aperture, len(t.m))}
	for code, ap := range t.m {
		cp := *ap
		if ap.MacroParams != nil {
			cp.MacroParams = append([]float64(nil), ap.MacroParams...)
		}
		if ap.Simplified != nil {
			cp.Simplified = append([]Primitive(nil), ap.Simplified...)
		}
		if ap.Attrs != nil {
			cp.Attrs = make(map[attr.Key]attr.Attribute, len(ap.Attrs))
			for k, v := range ap.Attrs {
				cp.Attrs[k] = v
			}
		}
		out.m[code] = &cp
	}
	return out
}
