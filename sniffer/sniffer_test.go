package sniffer

import "testing"

func TestSniffGerberByFormatSpec(t *testing.T) {
	data := []byte("G04 header*\n%FSLAX24Y24*%\n%MOIN*%\nD10*\nX001000Y001000D03*\nM02*\n")
	r := Sniff(data, "gbr")
	if r.Type != GerberRS274X {
		t.Errorf("Sniff = %v, want GerberRS274X (scores=%v)", r.Type, r.Scores)
	}
}

func TestSniffExcellonByM48Header(t *testing.T) {
	data := []byte("M48\nINCH,TZ\nT01C0.0200\n%\nT01\nX001000Y001000\nM30\n")
	r := Sniff(data, "drl")
	if r.Type != Excellon {
		t.Errorf("Sniff = %v, want Excellon (scores=%v)", r.Type, r.Scores)
	}
}

func TestSniffIPCD356AByBannerLine(t *testing.T) {
	data := []byte("C  IPC-D-356 netlist export\nP  JOB  board\n317NET1    A1  A   1R100   50100+00500+00500X0000\n999\n")
	r := Sniff(data, "ipc")
	if r.Type != IPCD356A {
		t.Errorf("Sniff = %v, want IPCD356A (scores=%v)", r.Type, r.Scores)
	}
}

func TestSniffEaglePartlistByHeaderRow(t *testing.T) {
	data := []byte("# Eagle partlist export\nPart     Value    Package\nR1       10k      0805\n")
	r := Sniff(data, "txt")
	if r.Type != EaglePartlist {
		t.Errorf("Sniff = %v, want EaglePartlist (scores=%v)", r.Type, r.Scores)
	}
}

func TestSniffPickAndPlaceByHeaderRow(t *testing.T) {
	data := []byte("Designator,Mid X,Mid Y,Layer,Rotation\nR1,1.0,2.0,Top,0\n")
	r := Sniff(data, "csv")
	if r.Type != PickAndPlace {
		t.Errorf("Sniff = %v, want PickAndPlace (scores=%v)", r.Type, r.Scores)
	}
}

func TestSniffUnknownOnRandomBinary(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0xFE, 0xFF}
	r := Sniff(data, "")
	if r.Type != Unknown {
		t.Errorf("Sniff on raw binary = %v, want Unknown", r.Type)
	}
}

func TestSniffUnknownOnEmpty(t *testing.T) {
	r := Sniff(nil, "")
	if r.Type != Unknown {
		t.Errorf("Sniff(nil) = %v, want Unknown", r.Type)
	}
}

func TestIsDisqualifyingLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"M02*", false},
		{"ab", true},
		{"", true},
		{"valid line", false},
		{"has\x01control", true},
		{"has\ttab", false},
	}
	for _, tt := range tests {
		if got := isDisqualifyingLine(tt.line); got != tt.want {
			t.Errorf("isDisqualifyingLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestSplitLinesNormalizesCRLF(t *testing.T) {
	got := splitLines([]byte("a\r\nb\nc\r\n"))
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("splitLines returned %d lines, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitLinesEmpty(t *testing.T) {
	if got := splitLines(nil); got != nil {
		t.Errorf("splitLines(nil) = %v, want nil", got)
	}
}

func TestLooksLikeTextAcceptsPlainASCII(t *testing.T) {
	if !looksLikeText([]byte("G04 hello*\nM02*\n")) {
		t.Error("looksLikeText should accept plain ASCII gerber text")
	}
}

func TestFileTypeString(t *testing.T) {
	tests := []struct {
		typ  FileType
		want string
	}{
		{GerberRS274X, "gerber"},
		{Excellon, "excellon"},
		{IPCD356A, "ipc-d-356a"},
		{PickAndPlace, "pick-and-place"},
		{EaglePartlist, "eagle-partlist"},
		{Unknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", int(tt.typ), got, tt.want)
		}
	}
}
