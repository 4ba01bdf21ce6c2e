// Package gerberx implements the RS-274-X / RS-274-X2 Gerber parser:
// lexing G/D/M/X/Y/I/J words and %..% extended commands, driving the
// state machine that builds nets, apertures, macros, and attributes
// onto an image.Image.
package gerberx

import (
	"fmt"

	"github.com/pcbtools/gerbcore/aperture"
	"github.com/pcbtools/gerbcore/attr"
	"github.com/pcbtools/gerbcore/format"
	"github.com/pcbtools/gerbcore/image"
	"github.com/pcbtools/gerbcore/internal/bytereader"
	"github.com/pcbtools/gerbcore/internal/log"
)

// Options controls parse depth and the logger.
type Options struct {
	// MaxIncludeDepth bounds %IF recursion (default 8).
	MaxIncludeDepth int

	Logger *log.Helper
}

func (o *Options) logger() *log.Helper {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return log.Default
}

func (o *Options) maxIncludeDepth() int {
	if o != nil && o.MaxIncludeDepth > 0 {
		return o.MaxIncludeDepth
	}
	return 8
}

// interpMultiplier is the linear interpolation multiplier selected by
// G01/G10/G11/G12.
type interpMultiplier float64

const (
	mult1x    interpMultiplier = 1
	mult10x   interpMultiplier = 10
	mult01x   interpMultiplier = 0.1
	mult001x  interpMultiplier = 0.01
)

// quadMode selects single vs multi quadrant arc interpretation
// (G74/G75).
type quadMode int

const (
	singleQuadrant quadMode = iota
	multiQuadrant
)

// parser is the mutable parse state: the reader, the image under
// construction, the macro table, modal state, and the aperture- and
// object-scope attribute dictionaries.
type parser struct {
	r    *bytereader.Reader
	opts *Options
	log  *log.Helper

	img *image.Image

	macros map[string]*aperture.MacroDef

	// modal state
	x, y       float64
	havePoint  bool
	i, j       float64
	aperture   int
	interp     image.Interpolation
	mult       interpMultiplier
	quad       quadMode
	mode       format.Mode
	apState    image.ApertureState
	inRegion   bool
	regionNet  int // index of the PolyAreaStart net, -1 if not in a region
	legacyAD   int // G54/G55 pending legacy aperture select

	apertureAttrs *attr.Dict
	objectAttrs   *attr.Dict

	includeDepth int

	sawFS bool
	sawM02 bool
}

func newParser(r *bytereader.Reader, opts *Options) *parser {
	img := image.New(image.RS274X)
	return &parser{
		r:             r,
		opts:          opts,
		log:           opts.logger(),
		img:           img,
		macros:        make(map[string]*aperture.MacroDef),
		mult:          mult1x,
		mode:          format.Absolute,
		regionNet:     -1,
		apertureAttrs: attr.NewDict(attr.ScopeAperture),
		objectAttrs:   attr.NewDict(attr.ScopeObject),
	}
}

func (p *parser) warnf(format string, a ...interface{}) {
	msg := fmt.Sprintf("%s:%d: "+format, append([]interface{}{p.r.Name(), p.r.Line()}, a...)...)
	p.img.AddWarning(msg)
	p.log.Warnf("%s", msg)
}

func (p *parser) errf(format string, a ...interface{}) error {
	msg := fmt.Sprintf("%s:%d: "+format, append([]interface{}{p.r.Name(), p.r.Line()}, a...)...)
	return fmt.Errorf("%s", msg)
}
