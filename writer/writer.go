// Package writer implements the RS-274-X/X2 writer, the functional
// inverse of the gerberx parser, and the Excellon drill re-emit
// format.
package writer

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/pcbtools/gerbcore/aperture"
	"github.com/pcbtools/gerbcore/attr"
	"github.com/pcbtools/gerbcore/format"
	"github.com/pcbtools/gerbcore/image"
)

// StdVersion selects which flavor of the standard Write emits.
type StdVersion int

const (
	StdRS274X StdVersion = 1
	StdRS274X2 StdVersion = 2
)

// Options controls the writer's coordinate format and attribute
// dialect.
type Options struct {
	StdVersion StdVersion

	// Format is the caller-selected output coordinate format:
	// caller-selectable, 2..6 decimals for mm, 3..7 for inch. Zero
	// value uses the image's own parsed format.
	Format *format.Format
}

func (o *Options) stdVersion() StdVersion {
	if o == nil || o.StdVersion == 0 {
		return StdRS274X2
	}
	return o.StdVersion
}

// Write serializes img as RS-274-X (StdVersion 1) or RS-274-X2
// (StdVersion 2) ASCII text, sufficient to round-trip the model.
func Write(w io.Writer, img *image.Image, opts *Options) error {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	f := img.Format
	if opts != nil && opts.Format != nil {
		f = *opts.Format
	}
	wr := &writerState{w: bw, img: img, fmt: f, std: opts.stdVersion()}
	return wr.run()
}

type writerState struct {
	w   *bufio.Writer
	img *image.Image
	fmt format.Format
	std StdVersion

	err error

	curLayer    int
	curNetState int
	curAperture int
	haveLayer   bool
	haveNS      bool
	haveAp      bool

	emittedFileAttrs bool
	aperTracker      map[attr.Key]attr.Attribute
	objTracker       map[attr.Key]attr.Attribute
}

func (s *writerState) printf(layout string, a ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, layout, a...)
}

func (s *writerState) run() error {
	s.aperTracker = make(map[attr.Key]attr.Attribute)
	s.objTracker = make(map[attr.Key]attr.Attribute)

	s.writeHeader()
	if s.std == StdRS274X2 {
		s.writeFileAttrs()
	}
	s.writeApertures()

	for i := range s.img.Nets {
		s.writeNet(i, &s.img.Nets[i])
		if s.err != nil {
			return s.err
		}
	}
	s.printf("M02*\n")
	return s.err
}

func (s *writerState) writeHeader() {
	omit := byte('L')
	switch s.fmt.OmitZeros {
	case format.OmitTrailing:
		omit = 'T'
	case format.OmitExplicit:
		omit = 'D'
	}
	mode := byte('A')
	if s.fmt.Mode == format.Incremental {
		mode = 'I'
	}
	s.printf("%%FS%c%cX%d%dY%d%d*%%\n", omit, mode, s.fmt.XInteger, s.fmt.XDecimal, s.fmt.YInteger, s.fmt.YDecimal)
	if s.img.Info.Unit == format.Mm {
		s.printf("%%MOMM*%%\n")
	} else {
		s.printf("%%MOIN*%%\n")
	}
}

func (s *writerState) writeFileAttrs() {
	for _, k := range sortedKeys(s.img.FileAttrs.Snapshot()) {
		a := s.img.FileAttrs.Snapshot()[k]
		s.printf("%%TF%s%s*%%\n", k.String(), fieldSuffix(a.Fields))
	}
	s.emittedFileAttrs = true
}

func (s *writerState) writeApertures() {
	codes := s.img.Apertures.Codes()
	sort.Ints(codes)
	for _, code := range codes {
		ap, _ := s.img.Apertures.Get(code)
		if s.std == StdRS274X2 {
			s.emitAttrDelta(s.aperTracker, ap.Attrs, "TA")
		}
		if ap.Shape.Type == aperture.Macro {
			name := fmt.Sprintf("MACRO%d", code)
			s.printf("%%AM%s*\n", name)
			for _, prim := range ap.Simplified {
				s.printf("%s*\n", serializePrimitive(prim))
			}
			s.printf("%%\n")
			s.printf("%%ADD%d%s*%%\n", code, name)
			continue
		}
		s.printf("%%ADD%d%s*%%\n", code, serializeShape(ap.Shape))
	}
}

func (s *writerState) writeNet(idx int, n *image.Net) {
	if n.Interpolation == image.Deleted {
		return
	}
	s.maybeEmitLayer(n.LayerIndex)
	s.maybeEmitNetState(n.NetStateIndex)

	if s.std == StdRS274X2 {
		ap, _ := s.img.Apertures.Get(n.Aperture)
		var apAttrs map[attr.Key]attr.Attribute
		if ap != nil {
			apAttrs = ap.Attrs
		}
		s.emitAttrDelta(s.aperTracker, apAttrs, "TA")
		s.emitAttrDelta(s.objTracker, n.Attrs, "TO")
	}

	if n.Interpolation == image.PolyAreaStart {
		s.printf("G36*\n")
		return
	}
	if n.Interpolation == image.PolyAreaEnd {
		s.printf("G37*\n")
		return
	}

	if n.Aperture != s.curAperture || !s.haveAp {
		s.printf("D%d*\n", n.Aperture)
		s.curAperture = n.Aperture
		s.haveAp = true
	}

	xTok := s.fmt.Encode(n.StopX, 'X')
	yTok := s.fmt.Encode(n.StopY, 'Y')
	switch {
	case n.HasCircular:
		gcode := 2
		if n.Interpolation == image.CounterclockwiseCircular {
			gcode = 3
		}
		iTok := s.fmt.Encode(n.CenterX-n.StartX, 'X')
		jTok := s.fmt.Encode(n.CenterY-n.StartY, 'Y')
		s.printf("G75*\nG%02dX%sY%sI%sJ%sD%02d*\n", gcode, xTok, yTok, iTok, jTok, netDCode(n))
	default:
		s.printf("X%sY%sD%02d*\n", xTok, yTok, netDCode(n))
	}
}

func netDCode(n *image.Net) int {
	switch n.ApertureState {
	case image.On:
		return 1
	case image.Flash:
		return 3
	default:
		return 2
	}
}

func (s *writerState) maybeEmitLayer(idx int) {
	if s.haveLayer && idx == s.curLayer {
		return
	}
	l := s.img.Layers[idx]
	if l.Polarity == image.Negative {
		s.printf("%%LPC*%%\n")
	} else {
		s.printf("%%LPD*%%\n")
	}
	if l.Name != "" {
		s.printf("%%LN%s*%%\n", l.Name)
	}
	if l.RotationDeg != 0 {
		s.printf("%%LR%g*%%\n", l.RotationDeg)
	}
	s.curLayer, s.haveLayer = idx, true
}

func (s *writerState) maybeEmitNetState(idx int) {
	if s.haveNS && idx == s.curNetState {
		return
	}
	ns := s.img.NetStates[idx]
	s.printf("%%MIA%dB%d*%%\n", boolToInt(ns.MirrorA), boolToInt(ns.MirrorB))
	s.printf("%%SFA%gB%g*%%\n", ns.ScaleA, ns.ScaleB)
	if ns.AxisSwap {
		s.printf("%%ASAYBX*%%\n")
	} else {
		s.printf("%%ASAXBY*%%\n")
	}
	s.curNetState, s.haveNS = idx, true
}

// emitAttrDelta emits %T{cmd} for every key in live that's new or
// changed since tracker, and %TD for every key tracker has that live
// lacks, then updates tracker to match: a key is emitted only if its
// value differs from the tracker, and deletions are emitted whenever
// a key leaves the live set.
func (s *writerState) emitAttrDelta(tracker map[attr.Key]attr.Attribute, live map[attr.Key]attr.Attribute, cmd string) {
	for k, v := range live {
		if old, ok := tracker[k]; ok && old.Key.Equal(v.Key) && sameFields(old.Fields, v.Fields) {
			continue
		}
		s.printf("%%%s%s%s*%%\n", cmd, k.String(), fieldSuffix(v.Fields))
		tracker[k] = v
	}
	for k := range tracker {
		if _, ok := live[k]; !ok {
			s.printf("%%TD%s*%%\n", k.String())
			delete(tracker, k)
		}
	}
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func fieldSuffix(fields []string) string {
	out := ""
	for _, f := range fields {
		out += "," + attr.Escape(f)
	}
	return out
}

func sortedKeys(m map[attr.Key]attr.Attribute) []attr.Key {
	out := make([]attr.Key, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
