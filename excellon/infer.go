// Package excellon implements the Excellon drill/rout parser: a
// format-inference pass over the whole file followed by a
// line-scanning main pass that builds tool definitions and flash/slot
// nets onto an image.Image.
package excellon

import (
	"strings"

	"github.com/pcbtools/gerbcore/format"
)

// inferred holds the format-inference pass's conclusions.
type inferred struct {
	unit     format.Unit
	omit     format.OmitZeros
	decimals int
}

// inferFormat scans every line of src once, never advancing any state
// besides its own counters, to guess the unit/omit-zero policy/decimal
// count a real main pass will then use.
func inferFormat(lines []string) inferred {
	metricVotes, inchVotes := 0, 0
	maxLeadingZeros, maxTrailingZeros := 0, 0
	sawLeadingZeros, sawTrailingZeros := false, false
	explicitDecimalDigits := -1

	for _, line := range lines {
		u := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case u == "M71" || u == "METRIC" || strings.HasPrefix(u, "METRIC"):
			metricVotes++
		case u == "M72" || u == "INCH" || strings.HasPrefix(u, "INCH"):
			inchVotes++
		}

		if strings.HasPrefix(u, "T") && strings.Contains(u, "C") {
			if d, ok := toolDecimalDigits(u); ok {
				explicitDecimalDigits = d
			}
		}

		for _, tok := range scanCoordTokens(u) {
			lead, trail := countZeroRuns(tok)
			if lead > 0 {
				sawLeadingZeros = true
			}
			if trail > 0 {
				sawTrailingZeros = true
			}
			if lead > maxLeadingZeros {
				maxLeadingZeros = lead
			}
			if trail > maxTrailingZeros {
				maxTrailingZeros = trail
			}
		}
	}

	unit := format.Inch
	if metricVotes > inchVotes {
		unit = format.Mm
	}

	var omit format.OmitZeros
	switch {
	case !sawTrailingZeros:
		omit = format.OmitTrailing
	case !sawLeadingZeros:
		omit = format.OmitLeading
	case maxTrailingZeros >= maxLeadingZeros:
		omit = format.OmitTrailing
	default:
		omit = format.OmitLeading
	}

	decimals := 4
	if explicitDecimalDigits >= 0 {
		decimals = explicitDecimalDigits
	}
	if omit == format.OmitLeading && decimals <= 3 && unit == format.Inch {
		decimals++
	}
	return inferred{unit: unit, omit: omit, decimals: decimals}
}

// toolDecimalDigits looks for a "C<digits>.<digits>" diameter field on
// a tool definition line and returns the decimal digit count.
func toolDecimalDigits(u string) (int, bool) {
	ci := strings.IndexByte(u, 'C')
	if ci < 0 {
		return 0, false
	}
	rest := u[ci+1:]
	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return 0, false
	}
	i := dot + 1
	n := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
		n++
	}
	return n, true
}

// scanCoordTokens pulls the raw digit runs following an X or Y letter
// on a line, ignoring sign.
func scanCoordTokens(u string) []string {
	var out []string
	for i := 0; i < len(u); i++ {
		if u[i] != 'X' && u[i] != 'Y' {
			continue
		}
		j := i + 1
		if j < len(u) && (u[j] == '+' || u[j] == '-') {
			j++
		}
		start := j
		for j < len(u) && u[j] >= '0' && u[j] <= '9' {
			j++
		}
		if j > start {
			out = append(out, u[start:j])
		}
	}
	return out
}

// countZeroRuns reports the leading and trailing run lengths of '0' in
// tok.
func countZeroRuns(tok string) (leading, trailing int) {
	for leading < len(tok) && tok[leading] == '0' {
		leading++
	}
	if leading == len(tok) {
		return leading, leading
	}
	for trailing < len(tok) && tok[len(tok)-1-trailing] == '0' {
		trailing++
	}
	return leading, trailing
}
