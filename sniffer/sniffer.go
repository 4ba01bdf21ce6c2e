// Package sniffer implements the file-type sniffer: a competition
// scheduler across per-format scorers that race to +1000 (instant win)
// or are eliminated at -1000, deciding which parser should take a
// file before gerberx/excellon/ipc356a/pnp ever sees it.
package sniffer

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileType names the winning candidate's format.
type FileType int

const (
	Unknown FileType = iota
	GerberRS274X
	Excellon
	IPCD356A
	PickAndPlace
	EaglePartlist
)

func (t FileType) String() string {
	switch t {
	case GerberRS274X:
		return "gerber"
	case Excellon:
		return "excellon"
	case IPCD356A:
		return "ipc-d-356a"
	case PickAndPlace:
		return "pick-and-place"
	case EaglePartlist:
		return "eagle-partlist"
	default:
		return "unknown"
	}
}

// maxLines bounds the sniffer's line scan to lines 1..1000.
const maxLines = 1000

// winScore / loseScore are the competition's instant win/eliminate
// thresholds.
const (
	winScore  = 1000
	loseScore = -1000
)

// candidate is one (type, scorer) competitor, carrying its own
// per-file counters across calls.
type candidate struct {
	typ        FileType
	score      scorer
	sum        int
	eliminated bool
}

// scorer is called once per line (with trailing whitespace already
// stripped) and once more at EOF with line == nil.
type scorer interface {
	score(line *string, lineNo int, ext string) int
}

// Result carries the winning type plus every candidate's final score,
// for diagnostics.
type Result struct {
	Type   FileType
	Scores map[FileType]int
}

// Sniff classifies data, using ext (the file's extension, without the
// dot, lowercase) as a tie-breaking hint some scorers consult.
func Sniff(data []byte, ext string) Result {
	scores := map[FileType]int{}
	if !looksLikeText(data) {
		return Result{Type: Unknown, Scores: scores}
	}

	candidates := []*candidate{
		{typ: GerberRS274X, score: &gerberScorer{}},
		{typ: Excellon, score: &excellonScorer{}},
		{typ: IPCD356A, score: &ipcScorer{}},
		{typ: EaglePartlist, score: &eagleScorer{}},
		{typ: PickAndPlace, score: &pnpScorer{}},
	}

	lines := splitLines(data)
	winner := Unknown
	for lineNo, raw := range lines {
		if lineNo >= maxLines {
			break
		}
		line := strings.TrimRight(raw, " \t\r")
		disqualified := isDisqualifyingLine(line)
		for _, c := range candidates {
			if c.eliminated {
				continue
			}
			var v int
			if disqualified {
				v = loseScore
			} else {
				v = c.score.score(&line, lineNo+1, ext)
			}
			c.sum += v
			if c.sum <= loseScore {
				c.eliminated = true
			}
			if c.sum >= winScore {
				winner = c.typ
			}
		}
		if winner != Unknown {
			break
		}
	}
	if winner == Unknown {
		for _, c := range candidates {
			if !c.eliminated {
				c.sum += c.score.score(nil, len(lines)+1, ext)
			}
		}
	}

	best := Unknown
	bestScore := loseScore
	for _, c := range candidates {
		scores[c.typ] = c.sum
		if c.sum > bestScore {
			bestScore, best = c.sum, c.typ
		}
	}
	if winner != Unknown {
		return Result{Type: winner, Scores: scores}
	}
	if bestScore <= 0 {
		return Result{Type: Unknown, Scores: scores}
	}
	return Result{Type: best, Scores: scores}
}

// looksLikeText is the fast binary/text pre-classification pass run
// before the per-line scorers: any ASCII format detects as text/plain
// (or close enough) under mimetype's content sniffing; anything else
// is rejected outright.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}

// isDisqualifyingLine reports the immediate-disqualify rule: a short
// line (<3 bytes) or one containing a control byte other than
// whitespace.
func isDisqualifyingLine(line string) bool {
	if len(line) < 3 {
		return true
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\t' || c == '\n' || c == '\v' || c == '\f' || c == '\r' {
			continue
		}
		if (c >= 1 && c <= 31) || c == 0x7F {
			return true
		}
	}
	return false
}

func splitLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
