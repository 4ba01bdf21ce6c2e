package attr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// utf16Encoder turns a rune outside the Basic Multilingual Plane into
// its UTF-16 surrogate pair. RS-274-X2 field text only ever escapes BMP
// code points as a single \uXXXX, but a non-BMP rune must become a
// surrogate pair to stay within the \uXXXX grammar, so the encoder is
// what mediates that split.
var utf16Encoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()

// Escape converts a utf8 string to the file-safe form required by
// RS-274-X2 field text: any byte < 0x20, 0x7F, '%', '*', ',', or '\'
// becomes \uXXXX (or a surrogate pair of \uXXXX for runes beyond the
// BMP).
func Escape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r < 0x20 || r == 0x7F || r == '%' || r == '*' || r == ',' || r == '\\':
			fmt.Fprintf(&sb, "\\u%04X", r)
		case r > 0xFFFF:
			units, err := utf16Encoder.String(string(r))
			if err != nil {
				sb.WriteRune(utf8.RuneError)
				continue
			}
			// units holds big-endian UTF-16 bytes, two per code unit.
			for i := 0; i+1 < len(units); i += 2 {
				fmt.Fprintf(&sb, "\\u%04X", uint16(units[i])<<8|uint16(units[i+1]))
			}
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Unescape converts file-safe text back to utf8, recognizing \uXXXX,
// \UXXXXXXXX, \xXX, \\, \r, \n, \t. A decoded NUL code point truncates
// the string; an unrecognized \x passes the backslash through
// unchanged rather than erroring, so unescape . escape is identity
// modulo that one case.
func Unescape(s string) string {
	var sb strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '\\' || i+1 >= len(s) {
			sb.WriteByte(s[i])
			i++
			continue
		}
		switch s[i+1] {
		case 'u':
			if i+6 <= len(s) {
				if v, err := strconv.ParseUint(s[i+2:i+6], 16, 32); err == nil {
					if v == 0 {
						return sb.String()
					}
					if utf16.IsSurrogate(rune(v)) && i+12 <= len(s) && s[i+6:i+8] == `\u` {
						if lo, err := strconv.ParseUint(s[i+8:i+12], 16, 32); err == nil {
							if r := utf16.DecodeRune(rune(v), rune(lo)); r != utf8.RuneError {
								sb.WriteRune(r)
								i += 12
								continue
							}
						}
					}
					sb.WriteRune(rune(v))
					i += 6
					continue
				}
			}
			sb.WriteByte(s[i])
			i++
		case 'U':
			if i+10 <= len(s) {
				if v, err := strconv.ParseUint(s[i+2:i+10], 16, 32); err == nil {
					if v == 0 {
						return sb.String()
					}
					sb.WriteRune(rune(v))
					i += 10
					continue
				}
			}
			sb.WriteByte(s[i])
			i++
		case 'x':
			if i+4 <= len(s) {
				if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
					if v == 0 {
						return sb.String()
					}
					sb.WriteByte(byte(v))
					i += 4
					continue
				}
			}
			sb.WriteByte(s[i])
			i++
		case '\\':
			sb.WriteByte('\\')
			i += 2
		case 'r':
			sb.WriteByte('\r')
			i += 2
		case 'n':
			sb.WriteByte('\n')
			i += 2
		case 't':
			sb.WriteByte('\t')
			i += 2
		default:
			sb.WriteByte(s[i])
			i++
		}
	}
	return sb.String()
}

// ParseFields splits a %T field-list terminated by "*%" into its
// comma-separated, individually unescaped fields.
func ParseFields(body string) []string {
	if body == "" {
		return nil
	}
	parts := strings.Split(body, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = Unescape(p)
	}
	return out
}
