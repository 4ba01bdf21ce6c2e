package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pcbtools/gerbcore/aperture"
	"github.com/pcbtools/gerbcore/format"
	"github.com/pcbtools/gerbcore/image"
)

func sampleImage() *image.Image {
	img := image.New(image.RS274X)
	img.Format = format.Format{OmitZeros: format.OmitLeading, XInteger: 2, XDecimal: 4, YInteger: 2, YDecimal: 4}
	img.Info.Unit = format.Inch
	img.Apertures.Define(&aperture.Aperture{Code: 10, Shape: aperture.Shape{Type: aperture.Circle, OuterDiameter: 0.01}})
	img.AppendNet(image.Net{
		StartX: 0, StartY: 0, StopX: 1, StopY: 1,
		Interpolation: image.Linear,
		ApertureState: image.On,
		Aperture:      10,
		NetStateIndex: 0,
		LayerIndex:    0,
		RegionID:      -1,
	}, 0.005, 0.005)
	return img
}

func TestWriteBasicGerber(t *testing.T) {
	img := sampleImage()
	var buf bytes.Buffer
	if err := Write(&buf, img, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"%FSLAX24Y24*%", "%MOIN*%", "%ADD10C,0.01*%", "D10*", "M02*"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteDefaultsToStdRS274X2(t *testing.T) {
	o := &Options{}
	if o.stdVersion() != StdRS274X2 {
		t.Errorf("default stdVersion = %v, want StdRS274X2", o.stdVersion())
	}
}

func TestWriteStdRS274X1OmitsFileAttrs(t *testing.T) {
	img := sampleImage()
	img.FileAttrs.Set(".Part", []string{"Single"})
	var buf bytes.Buffer
	if err := Write(&buf, img, &Options{StdVersion: StdRS274X}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.Contains(buf.String(), "%TF") {
		t.Errorf("StdRS274X output should not carry %%TF file attributes:\n%s", buf.String())
	}
}

func TestWriteStdRS274X2EmitsFileAttrs(t *testing.T) {
	img := sampleImage()
	img.FileAttrs.Set(".Part", []string{"Single"})
	var buf bytes.Buffer
	if err := Write(&buf, img, &Options{StdVersion: StdRS274X2}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "%TF.Part,Single*%") {
		t.Errorf("output missing %%TF.Part,Single*%%:\n%s", buf.String())
	}
}

func TestWriteEmitsCircularInterpolationPreamble(t *testing.T) {
	img := image.New(image.RS274X)
	img.Apertures.Define(&aperture.Aperture{Code: 10, Shape: aperture.Shape{Type: aperture.Circle, OuterDiameter: 0.01}})
	img.AppendNet(image.Net{
		StartX: 0, StartY: 0, StopX: 1, StopY: 0,
		HasCircular: true, CenterX: 0.5, CenterY: 0, CircularWidth: 1, CircularHeight: 1,
		Interpolation: image.ClockwiseCircular,
		ApertureState: image.On,
		Aperture:      10,
		NetStateIndex: 0,
		LayerIndex:    0,
		RegionID:      -1,
	}, 0.005, 0.005)

	var buf bytes.Buffer
	if err := Write(&buf, img, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "G75*") || !strings.Contains(buf.String(), "G02") {
		t.Errorf("circular draw should emit G75 then G02:\n%s", buf.String())
	}
}

func TestNetDCode(t *testing.T) {
	tests := []struct {
		state image.ApertureState
		want  int
	}{
		{image.On, 1}, {image.Off, 2}, {image.Flash, 3},
	}
	for _, tt := range tests {
		n := &image.Net{ApertureState: tt.state}
		if got := netDCode(n); got != tt.want {
			t.Errorf("netDCode(%v) = %d, want %d", tt.state, got, tt.want)
		}
	}
}

func TestSerializeShapeCircleWithHole(t *testing.T) {
	s := aperture.Shape{Type: aperture.Circle, OuterDiameter: 0.02, HoleDiameter: 0.01}
	if got := serializeShape(s); got != "C,0.02X0.01" {
		t.Errorf("serializeShape = %q, want C,0.02X0.01", got)
	}
}

func TestSerializeShapeRectangleNoHole(t *testing.T) {
	s := aperture.Shape{Type: aperture.Rectangle, Width: 1, Height: 2}
	if got := serializeShape(s); got != "R,1X2" {
		t.Errorf("serializeShape = %q, want R,1X2", got)
	}
}
