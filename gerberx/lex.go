package gerberx

import "strings"

// word is one letter-prefixed token within a block, e.g. "X100" ->
// {Letter: 'X', Text: "100"}.
type word struct {
	Letter byte
	Text   string
}

// isLetter reports whether c is an uppercase ASCII letter; Gerber
// words are always uppercase.
func isLetter(c byte) bool { return c >= 'A' && c <= 'Z' }

// splitWords scans a '*'-terminated block's text into its
// letter-prefixed words, manually rather than with a regexp, in favor
// of explicit bounds-checked scanning over Gerber's wire format.
func splitWords(block string) []word {
	var words []word
	i := 0
	n := len(block)
	for i < n {
		c := block[i]
		if !isLetter(c) {
			i++
			continue
		}
		j := i + 1
		for j < n && !isLetter(block[j]) {
			j++
		}
		words = append(words, word{Letter: c, Text: block[i+1 : j]})
		i = j
	}
	return words
}

// readBlock reads bytes up to (and consuming) the next '*', or
// returns ok=false at EOF with nothing read. Whitespace is stripped:
// it is insignificant outside strings.
func (p *parser) readBlock() (text string, ok bool) {
	var sb strings.Builder
	sawAny := false
	for {
		c, got := p.r.GetChar()
		if !got {
			if !sawAny {
				return "", false
			}
			return sb.String(), true
		}
		sawAny = true
		if c == '*' {
			return sb.String(), true
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			continue
		}
		sb.WriteByte(c)
	}
}

// readExtended reads the body of a %...% extended command, having
// already consumed the opening '%'. Internal '*' block separators are
// preserved in the returned text (callers like %AM need them).
func (p *parser) readExtended() (text string, ok bool) {
	var sb strings.Builder
	for {
		c, got := p.r.GetChar()
		if !got {
			return sb.String(), false
		}
		if c == '%' {
			return sb.String(), true
		}
		sb.WriteByte(c)
	}
}
