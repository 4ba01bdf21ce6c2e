package gerberx

import (
	"math"
	"testing"

	"github.com/pcbtools/gerbcore/format"
	"github.com/pcbtools/gerbcore/image"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

const basicFixture = `%FSLAX24Y24*%
%MOIN*%
%ADD10C,0.010*%
G01*
D10*
X001000Y001000D02*
X002000Y002000D01*
X003000Y001000D03*
M02*
`

func TestParseBytesBasicGerber(t *testing.T) {
	img, err := ParseBytes([]byte(basicFixture), "job.gbr", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if img.LayerType != image.RS274X {
		t.Errorf("LayerType = %v, want RS274X", img.LayerType)
	}
	if img.Info.Unit != format.Inch {
		t.Errorf("Unit = %v, want Inch", img.Info.Unit)
	}
	if len(img.Nets) != 3 {
		t.Fatalf("got %d nets, want 3 (move, draw, flash)", len(img.Nets))
	}
	if img.Nets[0].ApertureState != image.Off {
		t.Errorf("net 0 = %+v, want an Off move", img.Nets[0])
	}
	if img.Nets[1].ApertureState != image.On || !almostEqual(img.Nets[1].StopX, 0.2) {
		t.Errorf("net 1 = %+v, want an On draw to x=0.2", img.Nets[1])
	}
	if img.Nets[2].ApertureState != image.Flash {
		t.Errorf("net 2 = %+v, want a Flash", img.Nets[2])
	}
	if _, ok := img.Apertures.Get(10); !ok {
		t.Error("aperture D10 should be defined")
	}
	if len(img.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", img.Warnings)
	}
}

func TestParseBytesUndefinedApertureSynthesizesAnomaly(t *testing.T) {
	src := `%FSLAX24Y24*%
%MOIN*%
G01*
D22*
X001000Y001000D03*
M02*
`
	img, err := ParseBytes([]byte(src), "synth.gbr", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if len(img.Nets) != 1 {
		t.Fatalf("got %d nets, want 1", len(img.Nets))
	}
	if len(img.Anomalies) != 1 || img.Anomalies[0] != image.AnoApertureSynthesized {
		t.Errorf("Anomalies = %v, want one AnoApertureSynthesized", img.Anomalies)
	}
	ap, ok := img.Apertures.Get(22)
	if !ok || ap.Shape.Type != 0 {
		t.Errorf("synthesized aperture = %+v, %v, want a circle", ap, ok)
	}
}

func TestParseBytesRegionBoundsNets(t *testing.T) {
	src := `%FSLAX24Y24*%
%MOIN*%
%ADD10C,0.010*%
G01*
D10*
G36*
X000000Y000000D02*
X010000Y000000D01*
X010000Y010000D01*
X000000Y000000D01*
G37*
M02*
`
	img, err := ParseBytes([]byte(src), "region.gbr", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if len(img.Nets) != 6 {
		t.Fatalf("got %d nets, want 6 (start + 4 boundary moves/draws + end)", len(img.Nets))
	}
	if img.Nets[0].Interpolation != image.PolyAreaStart {
		t.Errorf("net 0 = %+v, want PolyAreaStart", img.Nets[0])
	}
	last := img.Nets[len(img.Nets)-1]
	if last.Interpolation != image.PolyAreaEnd {
		t.Errorf("last net = %+v, want PolyAreaEnd", last)
	}
	for i := 1; i < len(img.Nets)-1; i++ {
		if img.Nets[i].RegionID != 0 {
			t.Errorf("net %d RegionID = %d, want 0 (index of the region start)", i, img.Nets[i].RegionID)
		}
	}
}

func TestParseBytesStepAndRepeatFlattensAndRecordsAnomaly(t *testing.T) {
	src := `%FSLAX24Y24*%
%MOIN*%
%ADD10C,0.010*%
G01*
D10*
%SRX2 Y1 I0.5 J0*%
X000000Y000000D03*
%SR*%
M02*
`
	img, err := ParseBytes([]byte(src), "sr.gbr", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if len(img.Nets) != 2 {
		t.Fatalf("got %d nets, want 2 (one flash x2 repeats)", len(img.Nets))
	}
	if !almostEqual(img.Nets[1].StartX, 0.5) {
		t.Errorf("second repeat StartX = %v, want 0.5 (I0.5 step)", img.Nets[1].StartX)
	}
	if len(img.Anomalies) != 1 || img.Anomalies[0] != image.AnoStepAndRepeatFlattened {
		t.Errorf("Anomalies = %v, want one AnoStepAndRepeatFlattened", img.Anomalies)
	}
}

func TestParseBytesFileAttribute(t *testing.T) {
	src := `%FSLAX24Y24*%
%MOIN*%
%TF.Part,Single*%
M02*
`
	img, err := ParseBytes([]byte(src), "attrs.gbr", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	a, ok := img.FileAttrs.Get(".Part")
	if !ok || a.Value() != "Single" {
		t.Errorf(".Part attribute = %+v, %v, want Single", a, ok)
	}
}

func TestParseBytesFormatContradictionErrors(t *testing.T) {
	src := `%FSLAX24Y24*%
%FSLAX36Y36*%
M02*
`
	_, err := ParseBytes([]byte(src), "bad.gbr", ".", nil)
	if err == nil {
		t.Fatal("expected a format contradiction error")
	}
}

func TestParseBytesMacroAperture(t *testing.T) {
	src := `%FSLAX24Y24*%
%MOIN*%
%AMCIRC*1,1,$1,0,0*%
%ADD11CIRC,0.5*%
G01*
D11*
X000000Y000000D03*
M02*
`
	img, err := ParseBytes([]byte(src), "macro.gbr", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	ap, ok := img.Apertures.Get(11)
	if !ok {
		t.Fatal("aperture D11 should be defined")
	}
	if len(ap.Simplified) != 1 {
		t.Fatalf("macro aperture should simplify to one primitive, got %+v", ap.Simplified)
	}
}

func TestParseBytesMissingM02Warns(t *testing.T) {
	src := `%FSLAX24Y24*%
%MOIN*%
`
	img, err := ParseBytes([]byte(src), "noeof.gbr", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if len(img.Warnings) == 0 {
		t.Error("expected a warning about the missing M02")
	}
}
