package search

import (
	"testing"

	"github.com/pcbtools/gerbcore/aperture"
	"github.com/pcbtools/gerbcore/attr"
	"github.com/pcbtools/gerbcore/image"
)

func flashImage(x, y, dia float64) *image.Image {
	img := image.New(image.RS274X)
	img.Apertures.Define(&aperture.Aperture{Code: 10, Shape: aperture.Shape{Type: aperture.Circle, OuterDiameter: dia}})
	img.AppendNet(image.Net{
		StartX: x, StartY: y, StopX: x, StopY: y,
		Interpolation: image.Linear,
		ApertureState: image.Flash,
		Aperture:      10,
		NetStateIndex: 0,
		LayerIndex:    0,
		RegionID:      -1,
	}, dia/2, dia/2)
	return img
}

func TestAnnotateFromIPCCopiesNetAttribute(t *testing.T) {
	gerber := flashImage(1, 1, 1.0)
	ipc := flashImage(1, 1, 0.5)
	ipc.Nets[0].Attrs = map[attr.Key]attr.Attribute{
		attr.Intern(".N"): {Key: attr.Intern(".N"), Fields: []string{"NET1"}},
	}

	n := AnnotateFromIPC(gerber, ipc, false)
	if n != 1 {
		t.Fatalf("AnnotateFromIPC annotated %d nets, want 1", n)
	}
	got, ok := gerber.Nets[0].Attrs[attr.Intern(".N")]
	if !ok || got.Value() != "NET1" {
		t.Errorf(".N on the gerber net = %+v, %v, want NET1", got, ok)
	}
}

func TestAnnotateFromIPCRespectsOverwriteFlag(t *testing.T) {
	gerber := flashImage(1, 1, 1.0)
	gerber.Nets[0].Attrs = map[attr.Key]attr.Attribute{
		attr.Intern(".N"): {Key: attr.Intern(".N"), Fields: []string{"EXISTING"}},
	}
	ipc := flashImage(1, 1, 0.5)
	ipc.Nets[0].Attrs = map[attr.Key]attr.Attribute{
		attr.Intern(".N"): {Key: attr.Intern(".N"), Fields: []string{"NEW"}},
	}

	AnnotateFromIPC(gerber, ipc, false)
	if got := gerber.Nets[0].Attrs[attr.Intern(".N")].Value(); got != "EXISTING" {
		t.Errorf("overwrite=false should keep EXISTING, got %q", got)
	}

	AnnotateFromIPC(gerber, ipc, true)
	if got := gerber.Nets[0].Attrs[attr.Intern(".N")].Value(); got != "NEW" {
		t.Errorf("overwrite=true should replace with NEW, got %q", got)
	}
}

func TestAnnotateFromIPCNoMatchOutsideBorder(t *testing.T) {
	gerber := flashImage(1, 1, 1.0)
	ipc := flashImage(100, 100, 0.5)
	ipc.Nets[0].Attrs = map[attr.Key]attr.Attribute{
		attr.Intern(".N"): {Key: attr.Intern(".N"), Fields: []string{"FAR"}},
	}
	if n := AnnotateFromIPC(gerber, ipc, false); n != 0 {
		t.Errorf("AnnotateFromIPC annotated %d nets, want 0 (feature is far outside)", n)
	}
}
