package gerberx

import (
	"github.com/pcbtools/gerbcore/image"
	"github.com/pcbtools/gerbcore/internal/bytereader"
)

// Parse reads and interprets the Gerber file at path, returning its
// image. Parsing continues past recoverable errors, recording them as
// warnings on the returned image, the same best-effort posture a real
// Gerber viewer takes toward malformed input.
func Parse(path string, opts *Options) (*image.Image, error) {
	r, err := bytereader.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return parseFrom(r, opts)
}

// ParseBytes parses an in-memory Gerber source. name and dir matter
// only for diagnostics and %IF include resolution.
func ParseBytes(data []byte, name, dir string, opts *Options) (*image.Image, error) {
	r := bytereader.NewBytes(data, name, dir)
	return parseFrom(r, opts)
}

func parseFrom(r *bytereader.Reader, opts *Options) (*image.Image, error) {
	p := newParser(r, opts)
	if err := p.run(); err != nil {
		return p.img, err
	}
	if !p.sawM02 {
		p.warnf("file ended without M02")
	}
	return p.img, nil
}

// run drives the main read loop: dispatch each '%'-delimited extended
// command or '*'-terminated standard block until M02 or EOF. It is
// also reentered by %IF includes and unwound early by %SR's own block
// scanning in parseUntilSRClose.
func (p *parser) run() error {
	for {
		if p.sawM02 {
			return nil
		}
		c, ok := p.r.GetChar()
		if !ok {
			return nil
		}
		switch {
		case c == '%':
			body, ok := p.readExtended()
			if !ok {
				p.warnf("unterminated extended command at end of file")
				return nil
			}
			if err := p.processExtended(body); err != nil {
				return err
			}
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			// insignificant between blocks
		default:
			p.r.UngetChar()
			block, ok := p.readBlock()
			if !ok {
				return nil
			}
			if err := p.processBlock(block); err != nil {
				return err
			}
		}
	}
}
