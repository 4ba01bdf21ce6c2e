package gerberx

import (
	"strconv"
	"strings"

	"github.com/pcbtools/gerbcore/format"
	"github.com/pcbtools/gerbcore/image"
)

// processBlock interprets one '*'-terminated standard block: G/D/M
// codes plus X/Y/I/J coordinate words.
func (p *parser) processBlock(text string) error {
	if text == "" {
		return nil
	}
	// G04 comment: the rest of the block is free text, not words.
	if strings.HasPrefix(text, "G04") {
		return nil
	}
	words := splitWords(text)

	var gCode, dCode, mCode int
	haveG, haveD, haveM := false, false, false
	var xTok, yTok, iTok, jTok string
	haveX, haveY, haveI, haveJ := false, false, false, false

	for _, w := range words {
		switch w.Letter {
		case 'G':
			if n, err := strconv.Atoi(w.Text); err == nil {
				gCode, haveG = n, true
			} else {
				p.warnf("malformed G-code %q", w.Text)
			}
		case 'D':
			if n, err := strconv.Atoi(w.Text); err == nil {
				dCode, haveD = n, true
			} else {
				p.warnf("malformed D-code %q", w.Text)
			}
		case 'M':
			if n, err := strconv.Atoi(w.Text); err == nil {
				mCode, haveM = n, true
			} else {
				p.warnf("malformed M-code %q", w.Text)
			}
		case 'X':
			xTok, haveX = w.Text, true
		case 'Y':
			yTok, haveY = w.Text, true
		case 'I':
			iTok, haveI = w.Text, true
		case 'J':
			jTok, haveJ = w.Text, true
		}
	}

	if haveG {
		if err := p.applyG(gCode); err != nil {
			return err
		}
	}

	newX, newY := p.x, p.y
	if haveX {
		v, err := p.img.Format.ParseToken(xTok, 'X')
		if err != nil {
			return p.errf("malformed X coordinate %q: %v", xTok, err)
		}
		if p.mode == format.Incremental {
			newX = p.x + v
		} else {
			newX = v
		}
	}
	if haveY {
		v, err := p.img.Format.ParseToken(yTok, 'Y')
		if err != nil {
			return p.errf("malformed Y coordinate %q: %v", yTok, err)
		}
		if p.mode == format.Incremental {
			newY = p.y + v
		} else {
			newY = v
		}
	}
	if haveI {
		v, err := p.img.Format.ParseToken(iTok, 'X')
		if err != nil {
			return p.errf("malformed I coordinate %q: %v", iTok, err)
		}
		p.i = v
	}
	if haveJ {
		v, err := p.img.Format.ParseToken(jTok, 'Y')
		if err != nil {
			return p.errf("malformed J coordinate %q: %v", jTok, err)
		}
		p.j = v
	}

	if haveD {
		switch dCode {
		case 1:
			p.emitNet(newX, newY, image.On)
		case 2:
			p.emitNet(newX, newY, image.Off)
		case 3:
			p.emitNet(newX, newY, image.Flash)
		default:
			if dCode >= 10 {
				p.aperture = dCode
			} else {
				p.warnf("reserved D-code D%02d ignored", dCode)
			}
		}
	} else if haveX || haveY {
		// A bare coordinate move with the modal aperture state.
		p.emitNet(newX, newY, p.apState)
	}

	p.x, p.y = newX, newY
	p.havePoint = true

	if haveM {
		return p.applyM(mCode)
	}
	return nil
}
