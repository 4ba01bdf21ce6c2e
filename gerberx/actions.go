package gerberx

import (
	"math"

	"github.com/pcbtools/gerbcore/aperture"
	"github.com/pcbtools/gerbcore/format"
	"github.com/pcbtools/gerbcore/image"
)

// applyG interprets one modal G-code. Unrecognized G-codes are a
// recoverable warning that skips to the next '*', which processBlock
// already guarantees by construction.
func (p *parser) applyG(code int) error {
	switch code {
	case 1:
		p.interp, p.mult = image.Linear, mult1x
	case 10:
		p.interp, p.mult = image.Linear, mult10x
	case 11:
		p.interp, p.mult = image.Linear, mult01x
	case 12:
		p.interp, p.mult = image.Linear, mult001x
	case 2:
		p.interp = image.ClockwiseCircular
	case 3:
		p.interp = image.CounterclockwiseCircular
	case 4:
		// Comment block; processBlock skips a block starting with G04
		// before splitting it into words, so its text is discarded.
	case 36:
		p.startRegion()
	case 37:
		p.endRegion()
	case 54, 55:
		p.legacyAD = code
	case 70:
		p.img.Info.Unit = format.Inch
	case 71:
		p.img.Info.Unit = format.Mm
	case 74:
		p.quad = singleQuadrant
	case 75:
		p.quad = multiQuadrant
	case 90:
		p.mode = format.Absolute
	case 91:
		p.mode = format.Incremental
	default:
		p.warnf("unrecognized G-code G%02d", code)
	}
	return nil
}

// applyM interprets an M-code; M02 ends the file.
func (p *parser) applyM(code int) error {
	switch code {
	case 0, 1:
		p.warnf("optional stop M%02d", code)
	case 2:
		p.sawM02 = true
	default:
		p.warnf("unrecognized M-code M%02d", code)
	}
	return nil
}

// startRegion begins a G36 polygon-area fill: emit a PolyAreaStart net
// and remember its index so every boundary net until G37 shares it as
// RegionID.
func (p *parser) startRegion() {
	n := image.Net{
		StartX: p.x, StartY: p.y, StopX: p.x, StopY: p.y,
		Interpolation: image.PolyAreaStart,
		ApertureState: image.On,
		Aperture:      p.aperture,
		LayerIndex:    p.img.CurrentLayerIndex(),
		NetStateIndex: p.img.CurrentNetStateIndex(),
		RegionID:      -1,
	}
	idx := len(p.img.Nets)
	_ = p.img.AppendNet(n, 0, 0)
	p.inRegion = true
	p.regionNet = idx
}

// endRegion closes a G36/G37 region with a PolyAreaEnd net.
func (p *parser) endRegion() {
	n := image.Net{
		StartX: p.x, StartY: p.y, StopX: p.x, StopY: p.y,
		Interpolation: image.PolyAreaEnd,
		ApertureState: image.On,
		Aperture:      p.aperture,
		LayerIndex:    p.img.CurrentLayerIndex(),
		NetStateIndex: p.img.CurrentNetStateIndex(),
		RegionID:      p.regionNet,
	}
	_ = p.img.AppendNet(n, 0, 0)
	p.inRegion = false
	p.regionNet = -1
}

// emitNet appends one drawn/moved/flashed net from the parser's
// current point to (newX, newY) using state.
func (p *parser) emitNet(newX, newY float64, state image.ApertureState) {
	ap, synthesized := p.resolveAperture(state)

	n := image.Net{
		StartX: p.x, StartY: p.y,
		StopX: newX, StopY: newY,
		Interpolation: p.effectiveInterp(state),
		ApertureState: state,
		Aperture:      p.aperture,
		LayerIndex:    p.img.CurrentLayerIndex(),
		NetStateIndex: p.img.CurrentNetStateIndex(),
		RegionID:      -1,
	}
	if p.inRegion {
		n.RegionID = p.regionNet
		n.ApertureState = image.On
	}
	if p.interp == image.ClockwiseCircular || p.interp == image.CounterclockwiseCircular {
		n.HasCircular = true
		n.CenterX = p.x + p.i
		n.CenterY = p.y + p.j
		n.CircularWidth = 2 * math.Hypot(p.i, p.j)
		n.CircularHeight = n.CircularWidth
	}
	if len(p.objectAttrs.Snapshot()) > 0 {
		n.Attrs = p.objectAttrs.Snapshot()
	}

	halfW, halfH := 0.0, 0.0
	if ap != nil {
		halfW, halfH = ap.Envelope()
	}
	if err := p.img.AppendNet(n, halfW, halfH); err != nil {
		p.warnf("%v", err)
	}
	if synthesized {
		p.warnf("aperture D%02d undefined, synthesized %g-diameter circle", p.aperture, ap.Shape.OuterDiameter)
		p.img.AddAnomaly(image.AnoApertureSynthesized)
	}
	p.apState = state
}

// effectiveInterp reports Linear for a bare move (state Off), which
// carries no interpolation meaning, otherwise the modal interpolation.
func (p *parser) effectiveInterp(state image.ApertureState) image.Interpolation {
	if state == image.Off {
		return image.Linear
	}
	return p.interp
}

// resolveAperture looks up the current aperture, synthesizing a
// fallback circle if undefined and the net isn't a bare move.
func (p *parser) resolveAperture(state image.ApertureState) (*aperture.Aperture, bool) {
	if state == image.Off {
		ap, _ := p.img.Apertures.Get(p.aperture)
		return ap, false
	}
	return p.img.Apertures.EnsureCircle(p.aperture, 0.001)
}
