package excellon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pcbtools/gerbcore/aperture"
	"github.com/pcbtools/gerbcore/format"
	"github.com/pcbtools/gerbcore/image"
	"github.com/pcbtools/gerbcore/internal/bytereader"
	"github.com/pcbtools/gerbcore/internal/log"
)

const mmPerInch = 25.4

// Options controls the drill parser, mirroring gerberx.Options.
type Options struct {
	Logger *log.Helper
}

func (o *Options) logger() *log.Helper {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return log.Default
}

// Parse reads and interprets the Excellon drill/rout file at path.
func Parse(path string, opts *Options) (*image.Image, error) {
	r, err := bytereader.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return parseFrom(r, opts)
}

// ParseBytes parses an in-memory Excellon source.
func ParseBytes(data []byte, name, dir string, opts *Options) (*image.Image, error) {
	r := bytereader.NewBytes(data, name, dir)
	return parseFrom(r, opts)
}

func parseFrom(r *bytereader.Reader, opts *Options) (*image.Image, error) {
	lines := r.Lines()
	inf := inferFormat(lines)

	p := &state{
		log: opts.logger(),
		img: image.New(image.Drill),
		tools: make(map[int]*aperture.Aperture),
		coordFmt: format.Format{OmitZeros: inf.omit, Mode: format.Absolute, XInteger: 2, XDecimal: inf.decimals, YInteger: 2, YDecimal: inf.decimals},
		unit: inf.unit,
		mode: modeDrill,
		name: r.Name(),
	}
	p.img.Info.Unit = format.Inch
	p.img.Format = p.coordFmt

	for i, raw := range lines {
		p.lineNo = i + 1
		if err := p.processLine(raw); err != nil {
			return p.img, err
		}
		if p.done {
			break
		}
	}
	if !p.done {
		p.warnf("file ended without M30/M00/M01")
	}
	return p.img, nil
}

type drillMode int

const (
	modeDrill drillMode = iota
	modeRoutLinear
	modeRoutCW
	modeRoutCCW
)

type state struct {
	log  *log.Helper
	img  *image.Image
	name string

	tools map[int]*aperture.Aperture
	coordFmt  format.Format
	unit  format.Unit

	inHeader     bool
	mode         drillMode
	coordMode    format.Mode
	curTool      int
	x, y         float64
	zeroOffsetX  float64
	zeroOffsetY  float64

	done   bool
	lineNo int
}

func (p *state) warnf(layout string, a ...interface{}) {
	msg := fmt.Sprintf("%s:%d: "+layout, append([]interface{}{p.name, p.lineNo}, a...)...)
	p.img.AddWarning(msg)
	p.log.Warnf("%s", msg)
}

// processLine interprets one line of the main pass against the
// Excellon command table.
func (p *state) processLine(raw string) error {
	line := strings.TrimSpace(raw)
	if line == "" {
		return nil
	}
	if idx := strings.IndexByte(line, ';'); idx == 0 {
		return nil
	}
	u := strings.ToUpper(line)

	switch {
	case u == "M48":
		p.inHeader = true
		return nil
	case u == "M95":
		p.inHeader = false
		return nil
	case u == "M30" || u == "M00" || u == "M01":
		p.done = true
		return nil
	case u == "M71" || strings.HasPrefix(u, "METRIC"):
		p.setUnit(format.Mm)
		return nil
	case u == "M72" || strings.HasPrefix(u, "INCH"):
		p.setUnit(format.Inch)
		return nil
	case u == "ICI,ON":
		p.coordMode = format.Incremental
		return nil
	case u == "ICI,OFF":
		p.coordMode = format.Absolute
		return nil
	}

	if strings.HasPrefix(u, "T") {
		return p.handleTool(u)
	}
	if strings.HasPrefix(u, "G") {
		return p.handleG(u)
	}
	if strings.HasPrefix(u, "X") || strings.HasPrefix(u, "Y") {
		return p.handleCoordLine(u)
	}
	p.warnf("unrecognized Excellon line %q", line)
	return nil
}

func (p *state) setUnit(u format.Unit) {
	p.unit = u
}

// toCanonical converts a parsed coordinate value (in the file's
// inferred unit) to the image's canonical inch unit.
func (p *state) toCanonical(v float64) float64 {
	if p.unit == format.Mm {
		return v / mmPerInch
	}
	return v
}

func (p *state) handleTool(u string) error {
	rest := u[1:]
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		p.warnf("malformed tool record %q", u)
		return nil
	}
	n, _ := strconv.Atoi(rest[:digits])
	rest = rest[digits:]

	ci := strings.IndexByte(rest, 'C')
	if ci < 0 {
		// Tool select in the body: no diameter field.
		p.curTool = n
		return nil
	}
	diaStr := rest[ci+1:]
	end := 0
	for end < len(diaStr) && (diaStr[end] == '.' || (diaStr[end] >= '0' && diaStr[end] <= '9')) {
		end++
	}
	dia, err := strconv.ParseFloat(diaStr[:end], 64)
	if err != nil {
		p.warnf("malformed tool diameter in %q", u)
		p.curTool = n
		return nil
	}
	diaInch := p.toCanonical(dia)
	if diaInch >= 4 {
		p.warnf("tool T%02d diameter %.4f looks like mils misread as inches, reinterpreting", n, dia)
		diaInch = diaInch / 1000
	}
	p.tools[n] = &aperture.Aperture{Code: n, Shape: aperture.Shape{Type: aperture.Circle, OuterDiameter: diaInch}}
	p.img.Apertures.Define(p.tools[n])
	p.curTool = n
	return nil
}

func (p *state) handleG(u string) error {
	code := u
	if len(u) >= 3 {
		code = u[:3]
	}
	switch code {
	case "G00", "G05":
		p.mode = modeDrill
	case "G01":
		p.mode = modeRoutLinear
	case "G02":
		p.mode = modeRoutCW
	case "G03":
		p.mode = modeRoutCCW
	case "G90":
		p.coordMode = format.Absolute
	case "G91":
		p.coordMode = format.Incremental
	case "G93":
		return p.handleZeroSet(u)
	default:
		p.warnf("unrecognized G-code %q", u)
	}
	return nil
}

func (p *state) handleZeroSet(u string) error {
	x, y, _, err := p.parseXY(u)
	if err != nil {
		return err
	}
	p.zeroOffsetX, p.zeroOffsetY = x, y
	p.x, p.y = x, y
	return nil
}

// handleCoordLine parses an X/Y record, possibly containing an
// embedded G85 slot command, and emits a flash or slot draw net.
func (p *state) handleCoordLine(u string) error {
	if idx := strings.Index(u, "G85"); idx >= 0 {
		first := u[:idx]
		second := u[idx+3:]
		x1, y1, _, err := p.parseXY(first)
		if err != nil {
			return err
		}
		x2, y2, _, err := p.parseXY(second)
		if err != nil {
			return err
		}
		p.emitSlot(x1, y1, x2, y2)
		p.x, p.y = x2, y2
		return nil
	}
	x, y, _, err := p.parseXY(u)
	if err != nil {
		return err
	}
	p.emitFlash(x, y)
	p.x, p.y = x, y
	return nil
}

// parseXY parses the X and/or Y fields of a token, applying
// incremental-mode accumulation against the current position.
func (p *state) parseXY(u string) (x, y float64, haveAny bool, err error) {
	x, y = p.x, p.y
	xi := strings.IndexByte(u, 'X')
	yi := strings.IndexByte(u, 'Y')
	if xi >= 0 {
		end := len(u)
		if yi > xi {
			end = yi
		}
		tok := u[xi+1 : end]
		v, e := p.coordFmt.ParseToken(tok, 'X')
		if e != nil {
			return 0, 0, false, e
		}
		if p.coordMode == format.Incremental {
			x = p.x + v
		} else {
			x = v
		}
		haveAny = true
	}
	if yi >= 0 {
		tok := u[yi+1:]
		v, e := p.coordFmt.ParseToken(tok, 'Y')
		if e != nil {
			return 0, 0, false, e
		}
		if p.coordMode == format.Incremental {
			y = p.y + v
		} else {
			y = v
		}
		haveAny = true
	}
	return x, y, haveAny, nil
}

// resolveTool returns the current tool's aperture, synthesizing one
// for an undefined tool. The bool reports whether an undefined-tool
// warning is due: never for T00, the unload code.
func (p *state) resolveTool() (*aperture.Aperture, bool) {
	if ap, ok := p.tools[p.curTool]; ok {
		return ap, false
	}
	dia := 0.016 + 0.008*float64(p.curTool)
	ap := &aperture.Aperture{Code: p.curTool, Shape: aperture.Shape{Type: aperture.Circle, OuterDiameter: dia}}
	p.tools[p.curTool] = ap
	p.img.Apertures.Define(ap)
	return ap, p.curTool != 0
}

func (p *state) emitFlash(x, y float64) {
	ap, synthesized := p.resolveTool()
	n := image.Net{
		StartX: x, StartY: y, StopX: x, StopY: y,
		Interpolation: image.Linear,
		ApertureState: image.Flash,
		Aperture:      p.curTool,
		LayerIndex:    p.img.CurrentLayerIndex(),
		NetStateIndex: p.img.CurrentNetStateIndex(),
		RegionID:      -1,
	}
	halfW, halfH := ap.Envelope()
	_ = p.img.AppendNet(n, halfW, halfH)
	if synthesized {
		p.warnf("tool T%02d undefined, synthesized %.4f in. diameter", p.curTool, ap.Shape.OuterDiameter)
	}
}

func (p *state) emitSlot(x1, y1, x2, y2 float64) {
	ap, synthesized := p.resolveTool()
	n := image.Net{
		StartX: x1, StartY: y1, StopX: x2, StopY: y2,
		Interpolation: image.Linear,
		ApertureState: image.On,
		Aperture:      p.curTool,
		LayerIndex:    p.img.CurrentLayerIndex(),
		NetStateIndex: p.img.CurrentNetStateIndex(),
		RegionID:      -1,
	}
	halfW, halfH := ap.Envelope()
	_ = p.img.AppendNet(n, halfW, halfH)
	if synthesized {
		p.warnf("tool T%02d undefined, synthesized %.4f in. diameter", p.curTool, ap.Shape.OuterDiameter)
	}
}
