package writer

import (
	"fmt"
	"strings"

	"github.com/pcbtools/gerbcore/aperture"
)

// serializeShape is the inverse of gerberx's %AD C/R/O/P parsing,
// re-emitting a standard aperture's primitive body text.
func serializeShape(s aperture.Shape) string {
	switch s.Type {
	case aperture.Circle:
		return withHole("C,"+fnum(s.OuterDiameter), s.HoleDiameter, s.HoleHeight)
	case aperture.Rectangle:
		return withHole(fmt.Sprintf("R,%sX%s", fnum(s.Width), fnum(s.Height)), s.HoleDiameter, s.HoleHeight)
	case aperture.Oval:
		return withHole(fmt.Sprintf("O,%sX%s", fnum(s.Width), fnum(s.Height)), s.HoleDiameter, s.HoleHeight)
	case aperture.Polygon:
		body := fmt.Sprintf("P,%sX%d", fnum(s.OuterDiameter), s.Sides)
		if s.Rotation != 0 {
			body += "X" + fnum(s.Rotation)
		}
		return withHole(body, s.HoleDiameter, s.HoleHeight)
	default:
		return "C,0"
	}
}

func withHole(prefix string, hole, holeHeight float64) string {
	if hole <= 0 {
		return prefix
	}
	if holeHeight > 0 {
		return fmt.Sprintf("%sX%sX%s", prefix, fnum(hole), fnum(holeHeight))
	}
	return fmt.Sprintf("%sX%s", prefix, fnum(hole))
}

func fnum(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}

// serializePrimitive re-emits one simplified macro primitive as a raw
// comma-separated record: evaluated primitives only, with no
// variables, since macros are emitted by serializing simplified
// primitives rather than their original expressions.
func serializePrimitive(p aperture.Primitive) string {
	var fields []string
	fields = append(fields, fmt.Sprintf("%d", p.Code))
	switch p.Code {
	case aperture.PCircle:
		fields = append(fields, fnum(float64(p.Exposure)), fnum(p.Params[0]), fnum(p.Params[1]), fnum(p.Params[2]))
	case aperture.POutline:
		fields = append(fields, fnum(float64(p.Exposure)), fmt.Sprintf("%d", len(p.Points)-1))
		for _, pt := range p.Points {
			fields = append(fields, fnum(pt.X), fnum(pt.Y))
		}
		fields = append(fields, fnum(p.Params[0]))
	case aperture.PPolygon:
		fields = append(fields, fnum(float64(p.Exposure)), fnum(p.Params[0]), fnum(p.Params[1]), fnum(p.Params[2]), fnum(p.Params[3]), fnum(p.Params[4]))
	case aperture.PMoire:
		for _, v := range p.Params {
			fields = append(fields, fnum(v))
		}
	case aperture.PThermal:
		for _, v := range p.Params {
			fields = append(fields, fnum(v))
		}
	case aperture.PLine20:
		fields = append(fields, fnum(float64(p.Exposure)))
		for _, v := range p.Params {
			fields = append(fields, fnum(v))
		}
	case aperture.PLine21, aperture.PLine22:
		fields = append(fields, fnum(float64(p.Exposure)))
		for _, v := range p.Params {
			fields = append(fields, fnum(v))
		}
	}
	return strings.Join(fields, ",")
}
