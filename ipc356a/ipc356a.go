// Package ipc356a implements the IPC-D-356A netlist/test-point parser:
// an 80-column fixed-field format whose test-point and conductor
// records are synthesized into flashed/stroked nets on an image.Image,
// with netname aliasing and canonical aperture-signature deduplication.
package ipc356a

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pcbtools/gerbcore/aperture"
	"github.com/pcbtools/gerbcore/attr"
	"github.com/pcbtools/gerbcore/format"
	"github.com/pcbtools/gerbcore/image"
	"github.com/pcbtools/gerbcore/internal/bytereader"
	"github.com/pcbtools/gerbcore/internal/log"
)

// Options controls the IPC parser.
type Options struct {
	Logger *log.Helper
}

func (o *Options) logger() *log.Helper {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return log.Default
}

// ErrRadians is returned for "P  UNITS CUST 2", whose angular unit is
// radians: rejected outright rather than silently misinterpreting
// rotations.
var ErrRadians = errors.New("ipc356a: CUST 2 angular unit (radians) is not supported")

// Parse reads and interprets the IPC-D-356A netlist file at path.
func Parse(path string, opts *Options) (*image.Image, error) {
	r, err := bytereader.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return parseFrom(r, opts)
}

// ParseBytes parses an in-memory IPC-D-356A source.
func ParseBytes(data []byte, name, dir string, opts *Options) (*image.Image, error) {
	r := bytereader.NewBytes(data, name, dir)
	return parseFrom(r, opts)
}

func parseFrom(r *bytereader.Reader, opts *Options) (*image.Image, error) {
	p := &state{
		log:       opts.logger(),
		img:       image.New(image.IPCD356A),
		aliases:   make(map[string]string),
		apertures: make(map[string]int),
		nextCode:  10,
		linearDiv: 10000,
		unit:      format.Inch,
		name:      r.Name(),
	}
	lines := r.Lines()
	for i, raw := range lines {
		p.lineNo = i + 1
		if err := p.processLine(raw); err != nil {
			return p.img, err
		}
	}
	return p.img, nil
}

type state struct {
	log  *log.Helper
	img  *image.Image
	name string

	unit      format.Unit
	linearDiv float64

	aliases   map[string]string // NNAMEn alias -> full netname
	apertures map[string]int    // canonical signature -> D-code

	nextCode int

	// Conductor draw state: a draw state machine tracks whether the
	// next X/Y is sizing, movement, or a polyline vertex.
	conductorActive bool
	haveMoveTo      bool
	sizeW, sizeH    float64
	curX, curY      float64
	netName         string

	lineNo int
}

func (p *state) warnf(layout string, a ...interface{}) {
	msg := fmt.Sprintf("%s:%d: "+layout, append([]interface{}{p.name, p.lineNo}, a...)...)
	p.img.AddWarning(msg)
	p.log.Warnf("%s", msg)
}

// col returns line[lo-1:hi], 1-based inclusive, safely truncated when
// the line is shorter than hi.
func col(line string, lo, hi int) string {
	if lo < 1 {
		lo = 1
	}
	if lo-1 >= len(line) {
		return ""
	}
	if hi > len(line) {
		hi = len(line)
	}
	if hi < lo {
		return ""
	}
	return line[lo-1 : hi]
}

func (p *state) processLine(raw string) error {
	line := strings.ToUpper(strings.TrimRight(raw, " \t\r"))
	if line == "" {
		return nil
	}
	rec := col(line, 1, 3)
	switch rec {
	case "C  ", "C":
		return nil
	case "P  ", "P":
		return p.handleParam(line)
	case "317", "017":
		p.handleTestPoint(line, true)
	case "327", "027":
		p.handleTestPoint(line, false)
	case "378", "078":
		p.handleConductor(line)
	case "389", "089":
		p.handleOutline(line)
	case "999":
		return nil
	default:
		p.warnf("unrecognized record type %q", rec)
	}
	return nil
}

// handleParam interprets a "P  " header record: JOB/UNITS/TITLE/NUM/
// REV/VER/IMAGE/NNAMEn.
func (p *state) handleParam(line string) error {
	body := strings.TrimSpace(line[3:])
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil
	}
	key := fields[0]
	switch {
	case key == "UNITS":
		return p.handleUnits(fields[1:])
	case key == "JOB", key == "TITLE", key == "NUM", key == "REV", key == "VER", key == "IMAGE":
		p.img.FileAttrs.Set("."+strings.ToLower(key), []string{strings.Join(fields[1:], " ")})
	case strings.HasPrefix(key, "NNAME"):
		if len(fields) >= 2 {
			p.aliases[key] = fields[1]
		}
	}
	return nil
}

func (p *state) handleUnits(fields []string) error {
	mode := ""
	sub := ""
	if len(fields) > 0 {
		mode = fields[0]
	}
	if len(fields) > 1 {
		sub = fields[1]
	}
	switch mode {
	case "SI":
		p.unit, p.linearDiv = format.Mm, 1000
	case "CUST":
		switch sub {
		case "", "0":
			p.unit, p.linearDiv = format.Inch, 10000
		case "1":
			p.unit, p.linearDiv = format.Mm, 1000
		case "2":
			return ErrRadians
		default:
			p.unit, p.linearDiv = format.Inch, 10000
		}
	default:
		p.unit, p.linearDiv = format.Inch, 10000
	}
	p.img.Info.Unit = p.unit
	return nil
}

// resolveNet maps a raw netname field to its alias target, if any.
func (p *state) resolveNet(raw string) string {
	raw = strings.TrimSpace(raw)
	if full, ok := p.aliases[raw]; ok {
		return full
	}
	return raw
}

func (p *state) parseCoord(field string) (float64, bool) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, false
	}
	neg := false
	if field[0] == '-' || field[0] == '+' {
		neg = field[0] == '-'
		field = field[1:]
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, false
	}
	v /= p.linearDiv
	if neg {
		v = -v
	}
	return v, true
}

// handleTestPoint parses a 317/327 (+continuation) record into a
// flashed net. plated317 is true for a 317 record, whose hole-diameter
// field applies; a 327 gets no hole and the SMDPad function.
func (p *state) handleTestPoint(line string, plated317 bool) {
	netAlias := strings.TrimSpace(col(line, 4, 17))
	netName := p.resolveNet(netAlias)
	refdes := strings.TrimSpace(col(line, 21, 26))
	pin := strings.TrimSpace(col(line, 28, 31))

	holeDia := 0.0
	if plated317 {
		if d := col(line, 33, 37); strings.HasPrefix(d, "D") {
			if v, ok := p.parseCoord(d[1:]); ok {
				holeDia = v
			}
		}
	}
	plating := col(line, 38, 38)
	access := strings.TrimSpace(col(line, 39, 41))
	if strings.HasPrefix(access, "A") {
		access = access[1:]
	}

	x, xok := p.parseSignedField(line, 42, 49)
	y, yok := p.parseSignedField(line, 50, 57)
	if !xok || !yok {
		p.warnf("test-point record missing X/Y coordinate")
		return
	}

	sizeX := col(line, 58, 62)
	sizeY := col(line, 63, 67)
	fx, fxok := p.parseUnsignedField(sizeX)
	fy, fyok := p.parseUnsignedField(sizeY)
	rectangular := fyok
	if !fxok {
		fx = holeDia * 1.25
	}
	if !rectangular {
		fy = fx
	}

	// Minimum annular ring: pad the feature to 125% of hole diameter
	// when it would otherwise leave no visible ring.
	if holeDia > 0 && fx < holeDia*1.25 {
		fx = holeDia * 1.25
		if !rectangular {
			fy = fx
		}
	}

	rotField := col(line, 68, 71)
	rotation := 0.0
	if strings.HasPrefix(rotField, "R") {
		if v, err := strconv.Atoi(strings.TrimSpace(rotField[1:])); err == nil {
			rotation = math.Mod(float64(v), 180)
		}
	}

	aperFunc := "ViaPad"
	if refdes != "VIA" && refdes != "" {
		aperFunc = "ComponentPad,CuDef"
	}
	if !plated317 {
		aperFunc = "SMDPad"
	}

	sig := apertureSignature("tp", fx, fy, access, "", plating, holeDia, rotation)
	code := p.apertureFor(sig, func() *aperture.Aperture {
		shape := aperture.Shape{Type: aperture.Circle, OuterDiameter: fx}
		if rectangular {
			shape = aperture.Shape{Type: aperture.Rectangle, Width: fx, Height: fy}
		}
		if holeDia > 0 {
			shape.HoleDiameter = holeDia
		}
		ap := &aperture.Aperture{Shape: shape}
		ap.Attrs = map[attr.Key]attr.Attribute{
			attr.Intern(".AperFunction"): {Key: attr.Intern(".AperFunction"), Fields: strings.Split(aperFunc, ",")},
			attr.Intern("IPCAccess"):     {Key: attr.Intern("IPCAccess"), Fields: []string{access}},
		}
		if plating != "" {
			ap.Attrs[attr.Intern("IPCPlating")] = attr.Attribute{Key: attr.Intern("IPCPlating"), Fields: []string{plating}}
		}
		return ap
	})

	n := image.Net{
		StartX: x, StartY: y, StopX: x, StopY: y,
		Interpolation: image.Linear,
		ApertureState: image.Flash,
		Aperture:      code,
		LayerIndex:    p.img.CurrentLayerIndex(),
		NetStateIndex: p.img.CurrentNetStateIndex(),
		RegionID:      -1,
		Attrs: map[attr.Key]attr.Attribute{
			attr.Intern(".N"): {Key: attr.Intern(".N"), Fields: []string{netName}},
			attr.Intern(".P"): {Key: attr.Intern(".P"), Fields: []string{refdes, pin}},
			attr.Intern(".C"): {Key: attr.Intern(".C"), Fields: []string{refdes}},
			attr.Intern("IPCLayer"): {Key: attr.Intern("IPCLayer"), Fields: []string{access}},
		},
	}
	halfW, halfH := fx/2, fy/2
	if err := p.img.AppendNet(n, halfW, halfH); err != nil {
		p.warnf("%v", err)
	}
}

func (p *state) parseSignedField(line string, lo, hi int) (float64, bool) {
	return p.parseCoord(col(line, lo, hi))
}

func (p *state) parseUnsignedField(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v / p.linearDiv, true
}

// handleConductor advances the 378/078 draw state machine: the first
// record in a run carries width/height sizing and a moveto, subsequent
// records are lineto vertices until a new net's first record begins.
func (p *state) handleConductor(line string) {
	netAlias := strings.TrimSpace(col(line, 4, 17))
	if netAlias != "" {
		p.netName = p.resolveNet(netAlias)
		p.conductorActive = true
		p.haveMoveTo = false
	}
	if !p.conductorActive {
		return
	}

	sizeField := col(line, 20, 23)
	if v, ok := p.parseUnsignedField(sizeField); ok {
		p.sizeW = v
		p.sizeH = v
	}

	xField := col(line, 25, 31)
	yField := col(line, 33, 39)
	x, xok := p.parseSignedField(line, 25, 31)
	y, yok := p.parseSignedField(line, 33, 39)
	_ = xField
	_ = yField
	if !xok && !yok {
		return
	}
	if !xok {
		x = p.curX
	}
	if !yok {
		y = p.curY
	}

	if !p.haveMoveTo {
		p.curX, p.curY = x, y
		p.haveMoveTo = true
		return
	}

	sig := apertureSignature("cond", p.sizeW, p.sizeH, "", "", "", 0, 0)
	code := p.apertureFor(sig, func() *aperture.Aperture {
		ap := &aperture.Aperture{Shape: aperture.Shape{Type: aperture.Circle, OuterDiameter: p.sizeW}}
		ap.Attrs = map[attr.Key]attr.Attribute{
			attr.Intern(".AperFunction"): {Key: attr.Intern(".AperFunction"), Fields: []string{"Conductor"}},
		}
		return ap
	})

	n := image.Net{
		StartX: p.curX, StartY: p.curY, StopX: x, StopY: y,
		Interpolation: image.Linear,
		ApertureState: image.On,
		Aperture:      code,
		LayerIndex:    p.img.CurrentLayerIndex(),
		NetStateIndex: p.img.CurrentNetStateIndex(),
		RegionID:      -1,
		Attrs: map[attr.Key]attr.Attribute{
			attr.Intern(".N"): {Key: attr.Intern(".N"), Fields: []string{p.netName}},
		},
	}
	halfW, halfH := p.sizeW/2, p.sizeH/2
	if err := p.img.AppendNet(n, halfW, halfH); err != nil {
		p.warnf("%v", err)
	}
	p.curX, p.curY = x, y
}

// handleOutline parses a 389/089 board-edge/outline record as a
// conductor-shaped run drawn with a fixed 0.001 circle carrying the
// Profile AperFunction; its nets carry no .N attribute.
func (p *state) handleOutline(line string) {
	netAlias := strings.TrimSpace(col(line, 4, 17))
	if netAlias != "" {
		p.netName = p.resolveNet(netAlias)
		p.conductorActive = true
		p.haveMoveTo = false
	}
	if !p.conductorActive {
		return
	}
	x, xok := p.parseSignedField(line, 25, 31)
	y, yok := p.parseSignedField(line, 33, 39)
	if !xok || !yok {
		return
	}
	if !p.haveMoveTo {
		p.curX, p.curY = x, y
		p.haveMoveTo = true
		return
	}
	sig := apertureSignature("outline", 0, 0, "", "", "", 0, 0)
	code := p.apertureFor(sig, func() *aperture.Aperture {
		ap := &aperture.Aperture{Shape: aperture.Shape{Type: aperture.Circle, OuterDiameter: 0.001}}
		ap.Attrs = map[attr.Key]attr.Attribute{
			attr.Intern(".AperFunction"): {Key: attr.Intern(".AperFunction"), Fields: []string{"Profile"}},
		}
		return ap
	})
	n := image.Net{
		StartX: p.curX, StartY: p.curY, StopX: x, StopY: y,
		Interpolation: image.Linear,
		ApertureState: image.On,
		Aperture:      code,
		LayerIndex:    p.img.CurrentLayerIndex(),
		NetStateIndex: p.img.CurrentNetStateIndex(),
		RegionID:      -1,
	}
	if err := p.img.AppendNet(n, 0.0005, 0.0005); err != nil {
		p.warnf("%v", err)
	}
	p.curX, p.curY = x, y
}

// apertureSignature builds the canonical dedup key: record type, size
// X, size Y, access, soldermask, plating, hole diameter, and
// rotation-mod-180.
func apertureSignature(kind string, sx, sy float64, access, soldermask, plating string, hole, rot float64) string {
	return fmt.Sprintf("%s|%.6f|%.6f|%s|%s|%s|%.6f|%.2f", kind, sx, sy, access, soldermask, plating, hole, rot)
}

// apertureFor looks up sig in the dedup map, synthesizing via build and
// allocating the next free D-code on miss.
func (p *state) apertureFor(sig string, build func() *aperture.Aperture) int {
	if code, ok := p.apertures[sig]; ok {
		return code
	}
	ap := build()
	code := p.nextCode
	p.nextCode++
	ap.Code = code
	p.img.Apertures.Define(ap)
	p.apertures[sig] = code
	return code
}
