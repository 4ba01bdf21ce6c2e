package excellon

import (
	"testing"

	"github.com/pcbtools/gerbcore/format"
	"github.com/pcbtools/gerbcore/image"
)

const drillFixture = `M48
INCH,LZ
T01C0.0200
T02C0.0300
%
M95
T01
X01000Y01000
X02000Y02000
T02
X03000Y03000
M30
`

func TestParseBytesBasicDrillFile(t *testing.T) {
	img, err := ParseBytes([]byte(drillFixture), "job.drl", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if img.LayerType != image.Drill {
		t.Errorf("LayerType = %v, want Drill", img.LayerType)
	}
	if img.Info.Unit != format.Inch {
		t.Errorf("Unit = %v, want Inch", img.Info.Unit)
	}
	if len(img.Nets) != 3 {
		t.Fatalf("got %d nets, want 3 flashes", len(img.Nets))
	}
	if img.Nets[0].StartX != 1 || img.Nets[0].StartY != 1 {
		t.Errorf("net 0 = %+v, want (1,1)", img.Nets[0])
	}
	if img.Nets[2].Aperture != 2 {
		t.Errorf("net 2 aperture = %d, want tool 2", img.Nets[2].Aperture)
	}
	ap1, ok := img.Apertures.Get(1)
	if !ok || ap1.Shape.OuterDiameter != 0.02 {
		t.Errorf("tool 1 = %+v, %v, want 0.02in circle", ap1, ok)
	}
	ap2, ok := img.Apertures.Get(2)
	if !ok || ap2.Shape.OuterDiameter != 0.03 {
		t.Errorf("tool 2 = %+v, %v, want 0.03in circle", ap2, ok)
	}
}

func TestParseBytesSlotEmitsDrawNet(t *testing.T) {
	src := `M48
INCH,LZ
T03C0.0100
%
M95
T03
X05000Y05000G85X06000Y06000
M30
`
	img, err := ParseBytes([]byte(src), "slot.drl", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if len(img.Nets) != 1 {
		t.Fatalf("got %d nets, want 1 slot net", len(img.Nets))
	}
	n := img.Nets[0]
	if n.ApertureState != image.On {
		t.Errorf("slot ApertureState = %v, want On", n.ApertureState)
	}
	if n.StartX != 5 || n.StartY != 5 || n.StopX != 6 || n.StopY != 6 {
		t.Errorf("slot net = %+v, want (5,5)->(6,6)", n)
	}
}

func TestParseBytesUnknownToolSynthesizesAndWarns(t *testing.T) {
	src := `M48
%
M95
T07
X01000Y01000
M30
`
	img, err := ParseBytes([]byte(src), "unk.drl", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if len(img.Nets) != 1 {
		t.Fatalf("got %d nets, want 1", len(img.Nets))
	}
	if len(img.Warnings) == 0 {
		t.Error("expected a warning for the undefined tool")
	}
	if _, ok := img.Apertures.Get(7); !ok {
		t.Error("an undefined tool should still synthesize an aperture")
	}
}

func TestParseBytesT00StillFlashesWithSynthesizedTool(t *testing.T) {
	src := `M48
%
M95
T01C0.0200
T01
X01000Y01000
T00
X02000Y02000
M30
`
	img, err := ParseBytes([]byte(src), "unload.drl", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if len(img.Nets) != 2 {
		t.Fatalf("got %d nets, want 2: T00 selects tool 0, it does not suppress the following flash", len(img.Nets))
	}
	if _, ok := img.Apertures.Get(0); !ok {
		t.Error("tool 0 should synthesize an aperture like any other undefined tool code")
	}
}

func TestParseBytesFlashWithNoToolSelectEver(t *testing.T) {
	src := `M48
%
M95
X015000Y020000
X030000Y040000
M30
`
	img, err := ParseBytes([]byte(src), "notool.drl", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if len(img.Nets) != 2 {
		t.Fatalf("got %d nets, want 2: a flash with no preceding tool select still emits", len(img.Nets))
	}
	if n := img.Nets[0]; n.StartX != 1.5 || n.StartY != 2.0 {
		t.Errorf("first net = %+v, want (1.5, 2.0)", n)
	}
	if n := img.Nets[1]; n.StartX != 3.0 || n.StartY != 4.0 {
		t.Errorf("second net = %+v, want (3.0, 4.0)", n)
	}
}

func TestParseBytesMetricUnit(t *testing.T) {
	src := `M48
METRIC,LZ
T01C0.200
%
M95
T01
X0100Y0100
M30
`
	img, err := ParseBytes([]byte(src), "metric.drl", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if img.Info.Unit != format.Inch {
		t.Errorf("Info.Unit should stay canonical Inch regardless of source unit, got %v", img.Info.Unit)
	}
}

func TestParseBytesMissingM30Warns(t *testing.T) {
	src := `M48
%
M95
T01C0.0200
T01
X01000Y01000
`
	img, err := ParseBytes([]byte(src), "noeof.drl", ".", nil)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	found := false
	for _, w := range img.Warnings {
		if w != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning about the missing end-of-program record")
	}
}
