package sniffer

import "strings"

// gerberScorer looks for RS-274-X's extended-command syntax: %FS/%MO
// are near-definitive, word commands and a trailing M02/M00 add
// supporting weight.
type gerberScorer struct {
	sawWord    bool
	sawPercent bool
}

func (g *gerberScorer) score(line *string, lineNo int, ext string) int {
	if line == nil {
		if g.sawWord && g.sawPercent {
			return winScore
		}
		return 0
	}
	l := strings.TrimSpace(*line)
	switch {
	case strings.HasPrefix(l, "%FS"), strings.HasPrefix(l, "%MO"):
		return winScore
	case strings.HasPrefix(l, "%AD"), strings.HasPrefix(l, "%AM"), strings.HasPrefix(l, "%LP"),
		strings.HasPrefix(l, "%TF"), strings.HasPrefix(l, "%TO"), strings.HasPrefix(l, "%TA"):
		g.sawPercent = true
		return 150
	case strings.HasPrefix(l, "G04"), strings.HasPrefix(l, "G75"):
		g.sawWord = true
		return 100
	case strings.Contains(l, "D0") && (strings.Contains(l, "X") || strings.Contains(l, "Y")):
		g.sawWord = true
		return 60
	case l == "M02*" || l == "M00*":
		return 100
	case ext == "gbr" || ext == "ger" || ext == "gtl" || ext == "gbl":
		return 40
	}
	return -5
}

// excellonScorer keys on M48's header marker, the INCH/METRIC unit
// line, and T{n}C{dia} tool definitions.
type excellonScorer struct {
	sawHeader bool
}

func (e *excellonScorer) score(line *string, lineNo int, ext string) int {
	if line == nil {
		return 0
	}
	l := strings.TrimSpace(*line)
	switch {
	case l == "M48":
		e.sawHeader = true
		return winScore
	case strings.HasPrefix(l, "INCH") || strings.HasPrefix(l, "METRIC"):
		return 200
	case strings.HasPrefix(l, "%"):
		return 150
	case strings.HasPrefix(l, "T") && strings.Contains(l, "C"):
		return 120
	case strings.HasPrefix(l, "M30"):
		return 100
	case strings.HasPrefix(l, "X") && strings.Contains(l, "Y") && !strings.Contains(l, "D"):
		return 60
	case ext == "drl" || ext == "txt" || ext == "xln":
		return 40
	}
	return -5
}

// ipcScorer keys on IPC-D-356A's fixed-column record types: the "P  "
// parameter records (including the version stamp) and the "3"/"0"-led
// net/feature records. Overlong lines disqualify, since the format is
// strictly fixed-width.
type ipcScorer struct{}

func (p *ipcScorer) score(line *string, lineNo int, ext string) int {
	if line == nil {
		return 0
	}
	l := *line
	if len(l) > 120 {
		return loseScore
	}
	trimmed := strings.TrimRight(l, " ")
	switch {
	case strings.Contains(trimmed, "IPC-D-356"):
		return winScore
	case strings.HasPrefix(trimmed, "P  "):
		return 200
	case strings.HasPrefix(trimmed, "C  "):
		return 120
	case len(trimmed) > 0 && (trimmed[0] == '3' || trimmed[0] == '0') && len(trimmed) >= 14:
		return 100
	case strings.HasPrefix(trimmed, "999"):
		return 150
	case ext == "ipc" || ext == "356" || ext == "356a":
		return 40
	}
	return -20
}

// eagleScorer recognizes Eagle's partlist export header line.
type eagleScorer struct{}

func (e *eagleScorer) score(line *string, lineNo int, ext string) int {
	if line == nil {
		return 0
	}
	l := strings.TrimSpace(*line)
	switch {
	case strings.Contains(l, "Part") && strings.Contains(l, "Value") && strings.Contains(l, "Package"):
		return winScore
	case lineNo <= 3 && strings.HasPrefix(l, "#"):
		return 80
	case ext == "txt" && lineNo == 1:
		return 10
	}
	return -10
}

// pnpScorer recognizes delimiter-dense CSV pick-and-place exports: a
// header row naming Designator/Ref, Mid X/Y or similar columns.
type pnpScorer struct {
	sawHeader bool
}

func (p *pnpScorer) score(line *string, lineNo int, ext string) int {
	if line == nil {
		return 0
	}
	l := strings.ToLower(strings.TrimSpace(*line))
	delims := strings.Count(l, ",") + strings.Count(l, "\t")
	switch {
	case !p.sawHeader && (strings.Contains(l, "designator") || strings.Contains(l, "ref")) &&
		(strings.Contains(l, "mid x") || strings.Contains(l, "pos x") || strings.Contains(l, "x (mm)") || strings.Contains(l, "center-x")):
		p.sawHeader = true
		return winScore
	case delims >= 3:
		return 30
	case ext == "csv" && lineNo == 1:
		return 20
	}
	return -10
}
