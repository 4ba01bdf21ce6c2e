package gerberx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pcbtools/gerbcore/aperture"
	"github.com/pcbtools/gerbcore/format"
	"github.com/pcbtools/gerbcore/image"
	"github.com/pcbtools/gerbcore/internal/bytereader"
)

// errShort is returned by the %AD shape parsers when fewer parameters
// were given than the primitive requires.
var errShort = errors.New("aperture: too few parameters")

// processExtended dispatches one %...% command body (the '%'
// delimiters already stripped) on its two-letter subcommand prefix.
func (p *parser) processExtended(body string) error {
	body = strings.TrimSuffix(body, "*")
	if len(body) < 2 {
		return nil
	}
	sub := body[:2]
	rest := strings.TrimPrefix(body[2:], "")
	switch sub {
	case "FS":
		return p.handleFS(rest)
	case "MO":
		return p.handleMO(rest)
	case "AD":
		return p.handleAD(rest)
	case "AM":
		return p.handleAM(body[2:])
	case "SR":
		return p.handleSR(rest)
	case "LP":
		p.pushLayerPolarity(rest)
	case "LN":
		p.pushLayerName(rest)
	case "LR":
		p.pushLayerRotation(rest)
	case "IP":
		p.img.Info.Polarity = polarityFromIP(rest)
	case "IR":
		if v, err := strconv.ParseFloat(rest, 64); err == nil {
			p.img.Info.ImageRotationDeg = v
		}
	case "OF":
		p.handleOF(rest)
	case "MI":
		p.pushMirror(rest)
	case "SF":
		p.pushScale(rest)
	case "AS":
		p.pushAxisSwap(rest)
	case "IJ":
		p.img.Info.JustifyA = true
	case "IO":
		p.img.Info.JustifyB = true
	case "IN":
		p.img.Info.Name = rest
	case "PF":
		// Plotter film name: no image field beyond a file attribute;
		// retained as an anomaly-free no-op, matching the original's
		// handling as display metadata only.
	case "TF":
		return p.handleTF(rest)
	case "TA":
		return p.handleTA(rest)
	case "TO":
		return p.handleTO(rest)
	case "TD":
		p.handleTD(rest)
	case "IF":
		return p.handleIF(rest)
	default:
		p.warnf("unrecognized extended command %%%s", sub)
	}
	return nil
}

func polarityFromIP(rest string) image.Polarity {
	if strings.HasPrefix(rest, "NEG") {
		return image.Negative
	}
	return image.Positive
}

func (p *parser) handleFS(rest string) error {
	if len(rest) < 2 {
		return p.errf("malformed %%FS command %q", rest)
	}
	var omit format.OmitZeros
	switch rest[0] {
	case 'L':
		omit = format.OmitLeading
	case 'T':
		omit = format.OmitTrailing
	default:
		omit = format.OmitExplicit
	}
	var mode format.Mode
	switch rest[1] {
	case 'A':
		mode = format.Absolute
	case 'I':
		mode = format.Incremental
	default:
		return p.errf("malformed %%FS coordinate mode %q", rest)
	}
	xIdx := strings.IndexByte(rest, 'X')
	yIdx := strings.IndexByte(rest, 'Y')
	if xIdx < 0 || yIdx < 0 || xIdx+3 > len(rest) {
		return p.errf("malformed %%FS digit counts %q", rest)
	}
	xInt, err1 := strconv.Atoi(string(rest[xIdx+1]))
	xDec, err2 := strconv.Atoi(string(rest[xIdx+2]))
	yInt, err3 := strconv.Atoi(string(rest[yIdx+1]))
	yDec, err4 := strconv.Atoi(string(rest[yIdx+2]))
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return p.errf("malformed %%FS digit counts %q", rest)
	}
	f := format.Format{OmitZeros: omit, Mode: mode, XInteger: xInt, XDecimal: xDec, YInteger: yInt, YDecimal: yDec}
	if p.sawFS && p.img.Format != f {
		return fmt.Errorf("%v: %w", p.errf("%%FS seen twice with different values"), format.ErrContradiction)
	}
	p.img.Format = f
	p.mode = mode
	p.sawFS = true
	return nil
}

func (p *parser) handleMO(rest string) error {
	switch {
	case strings.HasPrefix(rest, "IN"):
		p.img.Info.Unit = format.Inch
	case strings.HasPrefix(rest, "MM"):
		p.img.Info.Unit = format.Mm
	default:
		return p.errf("malformed %%MO unit %q", rest)
	}
	return nil
}

func (p *parser) handleOF(rest string) {
	// OF[A{a}][B{b}]: image offset.
	a, b := scanAxisPair(rest)
	if v, err := strconv.ParseFloat(a, 64); err == nil {
		p.img.Info.OffsetA = v
	}
	if v, err := strconv.ParseFloat(b, 64); err == nil {
		p.img.Info.OffsetB = v
	}
}

// scanAxisPair splits an "A{x}B{y}"-shaped body into its A and B field
// text, used by %OF/%MI/%SF.
func scanAxisPair(rest string) (a, b string) {
	ai := strings.IndexByte(rest, 'A')
	bi := strings.IndexByte(rest, 'B')
	switch {
	case ai >= 0 && bi > ai:
		a, b = rest[ai+1:bi], rest[bi+1:]
	case ai >= 0:
		a = rest[ai+1:]
	case bi >= 0:
		b = rest[bi+1:]
	}
	return a, b
}

func (p *parser) pushMirror(rest string) {
	cur := p.img.NetStates[p.img.CurrentNetStateIndex()]
	a, b := scanAxisPair(rest)
	ns := cur
	if a != "" {
		ns.MirrorA = a == "1"
	}
	if b != "" {
		ns.MirrorB = b == "1"
	}
	p.img.PushNetState(ns)
}

func (p *parser) pushScale(rest string) {
	cur := p.img.NetStates[p.img.CurrentNetStateIndex()]
	a, b := scanAxisPair(rest)
	ns := cur
	if v, err := strconv.ParseFloat(a, 64); err == nil {
		ns.ScaleA = v
	}
	if v, err := strconv.ParseFloat(b, 64); err == nil {
		ns.ScaleB = v
	}
	p.img.PushNetState(ns)
}

func (p *parser) pushAxisSwap(rest string) {
	cur := p.img.NetStates[p.img.CurrentNetStateIndex()]
	ns := cur
	ns.AxisSwap = rest == "AYBX"
	p.img.PushNetState(ns)
}

func (p *parser) pushLayerPolarity(rest string) {
	cur := p.img.Layers[p.img.CurrentLayerIndex()]
	l := cur
	if strings.HasPrefix(rest, "C") {
		l.Polarity = image.Negative
	} else {
		l.Polarity = image.Positive
	}
	p.img.PushLayer(l)
}

func (p *parser) pushLayerName(rest string) {
	cur := p.img.Layers[p.img.CurrentLayerIndex()]
	l := cur
	l.Name = rest
	p.img.PushLayer(l)
}

func (p *parser) pushLayerRotation(rest string) {
	cur := p.img.Layers[p.img.CurrentLayerIndex()]
	l := cur
	if v, err := strconv.ParseFloat(rest, 64); err == nil {
		l.RotationDeg = v
	}
	p.img.PushLayer(l)
}

func (p *parser) handleAD(rest string) error {
	if len(rest) < 1 || rest[0] != 'D' {
		return p.errf("malformed %%AD command %q", rest)
	}
	rest = rest[1:]
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return p.errf("malformed %%AD aperture code %q", rest)
	}
	code, _ := strconv.Atoi(rest[:digits])
	if code < 10 {
		p.warnf("aperture code D%02d below the legal minimum D10, skipping definition", code)
		return nil
	}
	rest = rest[digits:]
	nameEnd := strings.IndexByte(rest, ',')
	var name, paramText string
	if nameEnd < 0 {
		name = rest
	} else {
		name, paramText = rest[:nameEnd], rest[nameEnd+1:]
	}

	ap := &aperture.Aperture{Code: code}
	if live := p.apertureAttrs.Snapshot(); len(live) > 0 {
		ap.Attrs = live
	}

	switch name {
	case "C":
		shape, err := parseCircle(paramText)
		if err != nil {
			p.warnf("malformed circle aperture D%02d: %v", code, err)
			return nil
		}
		ap.Shape = shape
	case "R":
		shape, err := parseRectOrOval(paramText, aperture.Rectangle)
		if err != nil {
			p.warnf("malformed rectangle aperture D%02d: %v", code, err)
			return nil
		}
		ap.Shape = shape
	case "O":
		shape, err := parseRectOrOval(paramText, aperture.Oval)
		if err != nil {
			p.warnf("malformed oval aperture D%02d: %v", code, err)
			return nil
		}
		ap.Shape = shape
	case "P":
		shape, err := parsePolygon(paramText)
		if err != nil {
			p.warnf("malformed polygon aperture D%02d: %v", code, err)
			return nil
		}
		ap.Shape = shape
	default:
		def, ok := p.macros[name]
		if !ok {
			p.warnf("aperture D%02d references undefined macro %q", code, name)
			return nil
		}
		params := parseFloatList(paramText, "X")
		ap.Shape = aperture.Shape{Type: aperture.Macro}
		ap.MacroName = name
		ap.MacroParams = params
		ap.Simplified = aperture.Simplify(def, params)
	}
	p.img.Apertures.Define(ap)
	return nil
}

func parseFloatList(s, sep string) []float64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func parseCircle(s string) (aperture.Shape, error) {
	f := parseFloatList(s, "X")
	if len(f) < 1 {
		return aperture.Shape{}, errShort
	}
	shape := aperture.Shape{Type: aperture.Circle, OuterDiameter: f[0]}
	if len(f) > 1 {
		shape.HoleDiameter = f[1]
	}
	if len(f) > 2 {
		shape.HoleHeight = f[2]
	}
	return shape, nil
}

func parseRectOrOval(s string, t aperture.PrimitiveType) (aperture.Shape, error) {
	f := parseFloatList(s, "X")
	if len(f) < 2 {
		return aperture.Shape{}, errShort
	}
	shape := aperture.Shape{Type: t, Width: f[0], Height: f[1]}
	if len(f) > 2 {
		shape.HoleDiameter = f[2]
	}
	if len(f) > 3 {
		shape.HoleHeight = f[3]
	}
	return shape, nil
}

func parsePolygon(s string) (aperture.Shape, error) {
	f := parseFloatList(s, "X")
	if len(f) < 2 {
		return aperture.Shape{}, errShort
	}
	shape := aperture.Shape{Type: aperture.Polygon, OuterDiameter: f[0], Sides: int(f[1])}
	if len(f) > 2 {
		shape.Rotation = f[2]
	}
	if len(f) > 3 {
		shape.HoleDiameter = f[3]
	}
	if len(f) > 4 {
		shape.HoleHeight = f[4]
	}
	return shape, nil
}

func (p *parser) handleAM(rest string) error {
	nameEnd := strings.IndexByte(rest, '*')
	var name, body string
	if nameEnd < 0 {
		name = rest
	} else {
		name, body = rest[:nameEnd], rest[nameEnd+1:]
	}
	def, err := aperture.ParseMacro(name, body)
	if err != nil {
		p.warnf("malformed macro %q: %v", name, err)
		return nil
	}
	p.macros[name] = def
	return nil
}

func (p *parser) handleSR(rest string) error {
	nx, ny, dx, dy := 1, 1, 0.0, 0.0
	fields := strings.Fields(rest)
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		switch f[0] {
		case 'X':
			if v, err := strconv.Atoi(f[1:]); err == nil {
				nx = v
			}
		case 'Y':
			if v, err := strconv.Atoi(f[1:]); err == nil {
				ny = v
			}
		case 'I':
			if v, err := strconv.ParseFloat(f[1:], 64); err == nil {
				dx = v
			}
		case 'J':
			if v, err := strconv.ParseFloat(f[1:], 64); err == nil {
				dy = v
			}
		}
	}
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}

	start := len(p.img.Nets)
	if err := p.parseUntilSRClose(); err != nil {
		return err
	}
	block := append([]image.Net(nil), p.img.Nets[start:]...)
	p.img.Nets = p.img.Nets[:start]

	if nx*ny > 1 {
		p.img.AddAnomaly(image.AnoStepAndRepeatFlattened)
	}

	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			if ix == 0 && iy == 0 {
				for _, n := range block {
					_ = p.img.AppendNet(n, 0, 0)
				}
				continue
			}
			for _, n := range block {
				nn := n
				nn.StartX += float64(ix) * dx
				nn.StartY += float64(iy) * dy
				nn.StopX += float64(ix) * dx
				nn.StopY += float64(iy) * dy
				if nn.HasCircular {
					nn.CenterX += float64(ix) * dx
					nn.CenterY += float64(iy) * dy
				}
				halfW, halfH := 0.0, 0.0
				if ap, ok := p.img.Apertures.Get(nn.Aperture); ok {
					halfW, halfH = ap.Envelope()
				}
				_ = p.img.AppendNet(nn, halfW, halfH)
			}
		}
	}
	return nil
}

// parseUntilSRClose parses standard blocks and extended commands until
// the %SR closing block is reached, i.e. the next %SR*% with no X/Y/I/J
// fields, or EOF.
func (p *parser) parseUntilSRClose() error {
	for {
		c, ok := p.r.GetChar()
		if !ok {
			return nil
		}
		if c == '%' {
			body, ok := p.readExtended()
			if !ok {
				return nil
			}
			trimmed := strings.TrimSuffix(body, "*")
			if trimmed == "SR" {
				return nil
			}
			if err := p.processExtended(body); err != nil {
				return err
			}
			continue
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			continue
		}
		p.r.UngetChar()
		block, ok := p.readBlock()
		if !ok {
			return nil
		}
		if err := p.processBlock(block); err != nil {
			return err
		}
		if p.sawM02 {
			return nil
		}
	}
}

func (p *parser) handleIF(rest string) error {
	if p.includeDepth >= p.opts.maxIncludeDepth() {
		return p.errf("%%IF include depth exceeded")
	}
	path := p.r.Resolve(strings.TrimSpace(rest))
	sub, err := bytereader.Open(path)
	if err != nil {
		return p.errf("cannot open include file %q: %v", path, err)
	}
	defer sub.Close()

	savedR := p.r
	p.r = sub
	p.includeDepth++
	err = p.run()
	p.includeDepth--
	p.r = savedR
	if err != nil {
		return err
	}
	p.sawM02 = false // only the outermost M02 ends the whole parse
	return nil
}
