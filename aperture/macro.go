package aperture

import (
	"fmt"
	"strconv"
	"strings"
)

// PrimitiveCode identifies one of the simplified macro primitives.
type PrimitiveCode int

const (
	PCircle  PrimitiveCode = 1
	POutline PrimitiveCode = 4
	PPolygon PrimitiveCode = 5
	PMoire   PrimitiveCode = 6
	PThermal PrimitiveCode = 7
	PLine20  PrimitiveCode = 20
	PLine21  PrimitiveCode = 21
	PLine22  PrimitiveCode = 22
)

// Exposure is a macro primitive's polarity: 0 clear, 1 dark, 2 toggle.
type Exposure int

const (
	ExposureClear Exposure = iota
	ExposureDark
	ExposureToggle
)

// Primitive is one simplified, fully-evaluated macro primitive record.
// Params holds the shape-specific numbers
// following exposure (for the primitives that have one); Points holds
// Outline's vertex list.
type Primitive struct {
	Code     PrimitiveCode
	Exposure Exposure
	Params   []float64
	Points   []Point
}

// Point is a 2D vertex, used by the Outline primitive.
type Point struct{ X, Y float64 }

// record is one raw, unevaluated macro-body entry: either a variable
// assignment ($k = expr) or a primitive instantiation (code,
// expr-list).
type record struct {
	isAssignment bool
	varIndex     int
	assignExpr   expr

	code  PrimitiveCode
	exprs []expr
}

// MacroDef is a parsed %AM definition, retained in its raw,
// unevaluated form so it can be re-parameterized per aperture.
type MacroDef struct {
	Name    string
	records []record
}

// ParseMacro parses a macro body: '*'-separated records, each either
// "$k=expr" or "code,expr,expr,...".
func ParseMacro(name, body string) (*MacroDef, error) {
	def := &MacroDef{Name: name}
	for _, raw := range strings.Split(body, "*") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "0") && (len(raw) == 1 || raw[1] == ',' || raw[1] == ' ') {
			// "0,comment" primitive: a documentation-only record, skipped.
			continue
		}
		if idx := strings.Index(raw, "="); idx >= 0 && strings.HasPrefix(raw, "$") {
			varPart := strings.TrimSpace(raw[1:idx])
			n, err := strconv.Atoi(varPart)
			if err != nil {
				return nil, fmt.Errorf("aperture: malformed variable assignment %q: %w", raw, err)
			}
			e, err := parseExpr(raw[idx+1:])
			if err != nil {
				return nil, err
			}
			def.records = append(def.records, record{isAssignment: true, varIndex: n, assignExpr: e})
			continue
		}
		fields := splitTopLevelCommas(raw)
		if len(fields) == 0 {
			continue
		}
		codeVal, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			// malformed primitive record: recoverable, skip it.
			continue
		}
		exprs := make([]expr, 0, len(fields)-1)
		for _, f := range fields[1:] {
			e, err := parseExpr(f)
			if err != nil {
				// malformed record skipped without aborting the macro.
				exprs = nil
				break
			}
			exprs = append(exprs, e)
		}
		if exprs == nil && len(fields) > 1 {
			continue
		}
		def.records = append(def.records, record{code: PrimitiveCode(codeVal), exprs: exprs})
	}
	return def, nil
}

// Simplify evaluates def against the actual aperture parameters,
// producing the ordered primitive list. A macro with no records
// simplifies to an empty, valid list.
func Simplify(def *MacroDef, params []float64) []Primitive {
	vars := make(map[int]float64, len(params))
	for i, v := range params {
		vars[i+1] = v
	}
	var out []Primitive
	for _, rec := range def.records {
		if rec.isAssignment {
			vars[rec.varIndex] = rec.assignExpr.eval(vars)
			continue
		}
		vals := make([]float64, len(rec.exprs))
		for i, e := range rec.exprs {
			vals[i] = e.eval(vars)
		}
		prim, ok := buildPrimitive(rec.code, vals)
		if !ok {
			continue
		}
		out = append(out, prim)
	}
	return out
}

func buildPrimitive(code PrimitiveCode, v []float64) (Primitive, bool) {
	get := func(i int) float64 {
		if i < len(v) {
			return v[i]
		}
		return 0
	}
	switch code {
	case PCircle:
		if len(v) < 4 || get(1) <= 0 {
			return Primitive{}, false
		}
		return Primitive{Code: code, Exposure: Exposure(get(0)), Params: []float64{get(1), get(2), get(3)}}, true
	case POutline:
		if len(v) < 4 {
			return Primitive{}, false
		}
		n := int(get(1))
		if n < 1 || len(v) < 2+2*(n+1)+1 {
			return Primitive{}, false
		}
		pts := make([]Point, 0, n+1)
		for i := 0; i <= n; i++ {
			pts = append(pts, Point{X: get(2 + 2*i), Y: get(3 + 2*i)})
		}
		rotation := get(2 + 2*(n+1))
		return Primitive{Code: code, Exposure: Exposure(get(0)), Points: pts, Params: []float64{rotation}}, true
	case PPolygon:
		if len(v) < 6 || get(4) <= 0 || get(1) < 3 {
			return Primitive{}, false
		}
		return Primitive{Code: code, Exposure: Exposure(get(0)),
			Params: []float64{get(1), get(2), get(3), get(4), get(5)}}, true
	case PMoire:
		if len(v) < 9 {
			return Primitive{}, false
		}
		return Primitive{Code: code, Params: []float64{get(0), get(1), get(2), get(3), get(4), get(5), get(6), get(7), get(8)}}, true
	case PThermal:
		if len(v) < 6 {
			return Primitive{}, false
		}
		return Primitive{Code: code, Params: []float64{get(0), get(1), get(2), get(3), get(4), get(5)}}, true
	case PLine20:
		if len(v) < 7 || get(1) <= 0 {
			return Primitive{}, false
		}
		return Primitive{Code: code, Exposure: Exposure(get(0)), Params: []float64{get(1), get(2), get(3), get(4), get(5), get(6)}}, true
	case PLine21, PLine22:
		if len(v) < 6 || get(1) <= 0 || get(2) <= 0 {
			return Primitive{}, false
		}
		return Primitive{Code: code, Exposure: Exposure(get(0)), Params: []float64{get(1), get(2), get(3), get(4), get(5)}}, true
	default:
		// Unknown/unsupported primitive code: recoverable, skip.
		return Primitive{}, false
	}
}

// macroEnvelope returns the bounding half-extents of a simplified
// primitive list, for aperture.Envelope.
func macroEnvelope(prims []Primitive) (halfW, halfH float64) {
	minX, minY, maxX, maxY := 0.0, 0.0, 0.0, 0.0
	first := true
	expand := func(x, y, rx, ry float64) {
		lo, hi := x-rx, x+rx
		lo2, hi2 := y-ry, y+ry
		if first {
			minX, maxX, minY, maxY = lo, hi, lo2, hi2
			first = false
			return
		}
		if lo < minX {
			minX = lo
		}
		if hi > maxX {
			maxX = hi
		}
		if lo2 < minY {
			minY = lo2
		}
		if hi2 > maxY {
			maxY = hi2
		}
	}
	for _, p := range prims {
		switch p.Code {
		case PCircle:
			expand(p.Params[1], p.Params[2], p.Params[0]/2, p.Params[0]/2)
		case POutline:
			for _, pt := range p.Points {
				expand(pt.X, pt.Y, 0, 0)
			}
		case PPolygon:
			expand(p.Params[1], p.Params[2], p.Params[3]/2, p.Params[3]/2)
		case PMoire:
			expand(p.Params[0], p.Params[1], p.Params[2]/2, p.Params[2]/2)
		case PThermal:
			expand(p.Params[0], p.Params[1], p.Params[2]/2, p.Params[2]/2)
		case PLine20:
			expand(p.Params[1], p.Params[2], p.Params[0]/2, p.Params[0]/2)
			expand(p.Params[3], p.Params[4], p.Params[0]/2, p.Params[0]/2)
		case PLine21, PLine22:
			expand(p.Params[2], p.Params[3], p.Params[0]/2, p.Params[1]/2)
		}
	}
	if first {
		return 0, 0
	}
	return (maxX - minX) / 2, (maxY - minY) / 2
}
