// Package bytereader implements the byte-oriented file reader:
// line/char/number tokenization with a single-character pushback, an
// EOF sentinel, and directory-relative include resolution (for Gerber
// %IF). Open backs it with an mmap.MMap rather than a read() call, so
// the file is not copied into the heap on open; Lines does copy the
// buffer into strings.
package bytereader

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	mmap "github.com/edsrzf/mmap-go"
)

// Reader streams bytes from a file or an in-memory buffer while
// tracking 1-based line numbers for diagnostics.
type Reader struct {
	data []byte
	pos  int
	line int

	name string
	dir  string

	mm mmap.MMap
	f  *os.File
}

// Open memory-maps path for reading. The returned Reader's Dir is the
// directory containing path, used to resolve Gerber %IF includes.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{
		data: data,
		line: 1,
		name: path,
		dir:  filepath.Dir(path),
		mm:   data,
		f:    f,
	}, nil
}

// NewBytes wraps an in-memory buffer. name and dir are used only for
// diagnostics and %IF resolution.
func NewBytes(data []byte, name, dir string) *Reader {
	return &Reader{data: data, line: 1, name: name, dir: dir}
}

// Close releases the mapping, if any.
func (r *Reader) Close() error {
	if r.mm != nil {
		_ = r.mm.Unmap()
	}
	if r.f != nil {
		return r.f.Close()
	}
	return nil
}

// Name returns the reader's source name, used for filename:line: log
// prefixes.
func (r *Reader) Name() string { return r.name }

// Dir returns the directory %IF include paths are resolved against.
func (r *Reader) Dir() string { return r.dir }

// Line returns the current 1-based line number.
func (r *Reader) Line() int { return r.line }

// Resolve maps an included path to an absolute path, relative to Dir()
// when path itself is relative.
func (r *Reader) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.dir, path)
}

// AtEOF reports whether the reader has consumed every byte.
func (r *Reader) AtEOF() bool { return r.pos >= len(r.data) }

// GetChar returns the next byte, or ok=false at EOF.
func (r *Reader) GetChar() (c byte, ok bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	c = r.data[r.pos]
	r.pos++
	if c == '\n' {
		r.line++
	}
	return c, true
}

// UngetChar pushes the most recently read byte back, single-character
// pushback only.
func (r *Reader) UngetChar() {
	if r.pos == 0 {
		return
	}
	r.pos--
	if r.data[r.pos] == '\n' && r.line > 1 {
		r.line--
	}
}

// PeekChar returns the next byte without consuming it.
func (r *Reader) PeekChar() (byte, bool) {
	c, ok := r.GetChar()
	if ok {
		r.UngetChar()
	}
	return c, ok
}

// SkipLine discards bytes through the next newline (or EOF).
func (r *Reader) SkipLine() {
	for {
		c, ok := r.GetChar()
		if !ok || c == '\n' {
			return
		}
	}
}

// ReadLineStripped reads one line, stripping a trailing CR/LF, and
// returns it with its length. ok is false only at EOF with nothing
// read.
func (r *Reader) ReadLineStripped() (line string, length int, ok bool) {
	if r.AtEOF() {
		return "", 0, false
	}
	var sb strings.Builder
	for {
		c, got := r.GetChar()
		if !got {
			break
		}
		if c == '\n' {
			break
		}
		if c == '\r' {
			continue
		}
		sb.WriteByte(c)
	}
	s := sb.String()
	return s, len(s), true
}

// Lines splits the reader's entire buffer into newline-separated lines
// (trailing CR stripped), independent of the current read position.
// Used by formats like Excellon that need a first inference pass over
// the whole file before their main line-scanning pass.
func (r *Reader) Lines() []string {
	text := string(r.data)
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Reset rewinds the reader to the start of its buffer, used after a
// first inference pass to begin the real parse.
func (r *Reader) Reset() {
	r.pos = 0
	r.line = 1
}

// isDigit reports whether c is an ASCII digit.
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// GetInt scans a signed base-10 integer. negativeZero is true when the
// literal is negative with value zero ("-0", "-00", ...), the case
// where a Gerber coordinate token's sign of zero matters.
func (r *Reader) GetInt() (value int, negativeZero bool, ok bool) {
	var sb strings.Builder
	neg := false
	c, got := r.GetChar()
	if !got {
		return 0, false, false
	}
	if c == '+' || c == '-' {
		neg = c == '-'
	} else if isDigit(c) {
		sb.WriteByte(c)
	} else {
		r.UngetChar()
		return 0, false, false
	}
	for {
		c, got = r.GetChar()
		if !got {
			break
		}
		if !isDigit(c) {
			r.UngetChar()
			break
		}
		sb.WriteByte(c)
	}
	digits := sb.String()
	if digits == "" {
		return 0, false, false
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false, false
	}
	if neg {
		v = -v
		negativeZero = v == 0
	}
	return v, negativeZero, true
}

// GetDouble scans a decimal literal: an optional sign, digits, an
// optional '.', and more digits. It does not interpret omit-zero
// coordinate scaling — that is format.Format's job.
func (r *Reader) GetDouble() (value float64, ok bool) {
	var sb strings.Builder
	c, got := r.GetChar()
	if !got {
		return 0, false
	}
	if c == '+' || c == '-' || isDigit(c) || c == '.' {
		sb.WriteByte(c)
	} else {
		r.UngetChar()
		return 0, false
	}
	seenDot := c == '.'
	for {
		c, got = r.GetChar()
		if !got {
			break
		}
		if isDigit(c) {
			sb.WriteByte(c)
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			sb.WriteByte(c)
			continue
		}
		r.UngetChar()
		break
	}
	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
