package project

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pcbtools/gerbcore/attr"
)

// Save writes p's persisted project file: one line per slot,
// tab-separated, in load order. No third-party encoder is warranted
// for a handful of scalar fields per line; this is a plain-text,
// line-oriented format the same way a quick dump/debug tool would
// write one.
func Save(w io.Writer, p *Project) error {
	bw := bufio.NewWriter(w)
	defer bw.Flush()
	for i, s := range p.Slots {
		fmt.Fprintf(bw, "%d\t%s\t%04x\t%04x\t%04x\t%d\t%d\t%d",
			i, s.Path, s.Color.R, s.Color.G, s.Color.B,
			boolToInt(s.Visible), boolToInt(s.Inverted), boolToInt(s.PnP))
		if s.Attrs != nil {
			for k, a := range s.Attrs.Snapshot() {
				fmt.Fprintf(bw, "\t%s=%s", k.String(), attr.Escape(strings.Join(a.Fields, ",")))
			}
		}
		fmt.Fprintln(bw)
	}
	return nil
}

// Load reconstructs slot order, color, visibility, inverted/PnP flags
// and attribute overrides from r into p, re-invoking
// p.OpenLayerFromFilename for each slot's path.
func Load(r io.Reader, p *Project) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 8 {
			continue
		}
		path := fields[1]
		idx, err := p.OpenLayerFromFilename(path)
		if err != nil {
			return err
		}
		s := p.Slots[idx]
		s.Color.R = hexField(fields[2])
		s.Color.G = hexField(fields[3])
		s.Color.B = hexField(fields[4])
		s.Visible = fields[5] == "1"
		s.Inverted = fields[6] == "1"
		s.PnP = fields[7] == "1"
		if len(fields) > 8 {
			s.Attrs = attr.NewDict(attr.ScopeFile)
			for _, kv := range fields[8:] {
				name, val, ok := strings.Cut(kv, "=")
				if !ok {
					continue
				}
				s.Attrs.Set(name, strings.Split(attr.Unescape(val), ","))
			}
		}
	}
	return sc.Err()
}

func hexField(s string) uint16 {
	v, _ := strconv.ParseUint(s, 16, 16)
	return uint16(v)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
