// Package format implements the coordinate-format state: omit-zero
// policy, coordinate mode, and per-axis digit counts, plus the
// integer-literal <-> value mapping that policy determines. Once set
// by a Gerber %FS (or inferred by the Excellon two-pass scan), a
// Format is immutable for the rest of the file: changing format
// mid-file is invalid.
package format

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// OmitZeros selects which end of a coordinate literal had its zeros
// suppressed.
type OmitZeros int

const (
	OmitLeading OmitZeros = iota
	OmitTrailing
	OmitExplicit
)

// Mode selects absolute or incremental coordinate interpretation.
type Mode int

const (
	Absolute Mode = iota
	Incremental
)

// Unit is the image's linear unit.
type Unit int

const (
	Inch Unit = iota
	Mm
)

func (u Unit) String() string {
	if u == Mm {
		return "mm"
	}
	return "in"
}

// Format fully determines how a numeric literal string maps to a
// coordinate value.
type Format struct {
	OmitZeros OmitZeros
	Mode      Mode
	XInteger  int
	XDecimal  int
	YInteger  int
	YDecimal  int
}

// ErrContradiction is returned when a second, different %FS is seen
// mid-file; this is a fatal error for the file.
var ErrContradiction = errors.New("format: coordinate format contradiction")

// digits returns the (integer, decimal) digit counts for axis 'X' or
// any other byte meaning Y/I/J (I and J share Y's digit counts in
// practice, same as the original gerbv).
func (f Format) digits(axis byte) (int, int) {
	if axis == 'X' {
		return f.XInteger, f.XDecimal
	}
	return f.YInteger, f.YDecimal
}

// Parse interprets a signed integer literal (as produced by
// bytereader.Reader.GetInt) for the given axis according to f.
func (f Format) Parse(literal int, negativeZero bool, axis byte) float64 {
	_, dec := f.digits(axis)
	scale := math.Pow10(dec)
	v := float64(literal) / scale
	if negativeZero && v == 0 {
		// -0 is distinct from 0 only in that callers may want to know;
		// the numeric value itself is unchanged.
		return math.Copysign(0, -1)
	}
	return v
}

// ParseToken decodes a raw coordinate token string (digits only, sign
// already consumed by the caller or leading the string) honoring the
// omit-zero policy: Leading-omit literals are left-padded to the full
// digit width before scaling, Trailing-omit literals are right-padded.
// Explicit literals already contain a decimal point and are parsed
// directly.
func (f Format) ParseToken(token string, axis byte) (float64, error) {
	if token == "" {
		return 0, errors.New("format: empty coordinate token")
	}
	neg := false
	t := token
	if t[0] == '+' || t[0] == '-' {
		neg = t[0] == '-'
		t = t[1:]
	}
	if strings.ContainsRune(t, '.') {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, err
		}
		if neg {
			v = -v
		}
		return v, nil
	}
	intDigits, decDigits := f.digits(axis)
	total := intDigits + decDigits
	switch f.OmitZeros {
	case OmitLeading:
		if len(t) < total {
			t = strings.Repeat("0", total-len(t)) + t
		}
	case OmitTrailing, OmitExplicit:
		if len(t) < total {
			t = t + strings.Repeat("0", total-len(t))
		}
	}
	lit, err := strconv.Atoi(t)
	if err != nil {
		return 0, err
	}
	v := float64(lit) / math.Pow10(decDigits)
	if neg {
		v = -v
	}
	if v == 0 && token == "-0" {
		return math.Copysign(0, -1), nil
	}
	return v, nil
}

// Encode is the writer-side inverse of ParseToken: round(value *
// 10^decimals) encoded as an integer literal, then zeros trimmed per
// policy. A value of exactly 0 under Trailing-omit encodes as "0", not
// the empty string.
func (f Format) Encode(value float64, axis byte) string {
	intDigits, decDigits := f.digits(axis)
	total := intDigits + decDigits
	scale := math.Pow10(decDigits)
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	lit := int64(math.Round(value * scale))
	digits := strconv.FormatInt(lit, 10)
	if len(digits) < total {
		digits = strings.Repeat("0", total-len(digits)) + digits
	}
	switch f.OmitZeros {
	case OmitLeading:
		trimmed := strings.TrimLeft(digits, "0")
		if trimmed == "" {
			trimmed = "0"
		}
		digits = trimmed
	case OmitTrailing:
		trimmed := strings.TrimRight(digits, "0")
		if trimmed == "" {
			trimmed = "0"
		}
		digits = trimmed
	case OmitExplicit:
		// Keep full width and insert the decimal point explicitly.
		if decDigits > 0 && len(digits) > decDigits {
			digits = digits[:len(digits)-decDigits] + "." + digits[len(digits)-decDigits:]
		}
	}
	return sign + digits
}
