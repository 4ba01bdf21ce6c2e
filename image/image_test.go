package image

import (
	"testing"

	"github.com/pcbtools/gerbcore/aperture"
)

func TestNewHasIdentityLayerAndNetState(t *testing.T) {
	img := New(RS274X)
	if len(img.Layers) != 1 || img.Layers[0].Polarity != Positive {
		t.Fatalf("New() layers = %+v, want one positive layer", img.Layers)
	}
	if len(img.NetStates) != 1 || img.NetStates[0].ScaleA != 1 || img.NetStates[0].ScaleB != 1 {
		t.Fatalf("New() netstates = %+v, want identity scale", img.NetStates)
	}
	if img.CurrentLayerIndex() != 0 || img.CurrentNetStateIndex() != 0 {
		t.Errorf("current indices = (%d,%d), want (0,0)", img.CurrentLayerIndex(), img.CurrentNetStateIndex())
	}
}

func TestAppendNetRejectsUnknownLayerOrNetState(t *testing.T) {
	img := New(RS274X)
	n := Net{LayerIndex: 5, NetStateIndex: 0}
	if err := img.AppendNet(n, 0, 0); err != ErrUnknownLayer {
		t.Errorf("AppendNet with bad LayerIndex = %v, want ErrUnknownLayer", err)
	}
	n = Net{LayerIndex: 0, NetStateIndex: 5}
	if err := img.AppendNet(n, 0, 0); err != ErrUnknownNetState {
		t.Errorf("AppendNet with bad NetStateIndex = %v, want ErrUnknownNetState", err)
	}
}

func TestAppendNetExpandsBoundingBox(t *testing.T) {
	img := New(RS274X)
	n1 := Net{StartX: 0, StartY: 0, StopX: 1, StopY: 1, ApertureState: On}
	if err := img.AppendNet(n1, 0.5, 0.5); err != nil {
		t.Fatalf("AppendNet: %v", err)
	}
	if img.Info.MinX != -0.5 || img.Info.MaxX != 1.5 || img.Info.MinY != -0.5 || img.Info.MaxY != 1.5 {
		t.Fatalf("bbox after first net = %+v", img.Info)
	}
	n2 := Net{StartX: -2, StartY: -2, StopX: -2, StopY: -2, ApertureState: Flash}
	if err := img.AppendNet(n2, 0, 0); err != nil {
		t.Fatalf("AppendNet: %v", err)
	}
	if img.Info.MinX != -2 || img.Info.MinY != -2 {
		t.Errorf("bbox did not expand to second net: %+v", img.Info)
	}
	if img.Info.MaxX != 1.5 || img.Info.MaxY != 1.5 {
		t.Errorf("bbox should keep its earlier extent: %+v", img.Info)
	}
}

func TestAppendNetMoveDoesNotExpandBoundingBox(t *testing.T) {
	img := New(RS274X)
	n := Net{StartX: 10, StartY: 10, StopX: 20, StopY: 20, ApertureState: Off}
	if err := img.AppendNet(n, 1, 1); err != nil {
		t.Fatalf("AppendNet: %v", err)
	}
	if img.Info.MaxX != 0 || img.Info.MaxY != 0 {
		t.Errorf("a move-only net should not touch the bounding box, got %+v", img.Info)
	}
}

func TestAddWarningAndAnomaly(t *testing.T) {
	img := New(RS274X)
	img.AddWarning("missing %MO, assuming inch")
	img.AddAnomaly(AnoApertureSynthesized)
	if len(img.Warnings) != 1 || len(img.Anomalies) != 1 {
		t.Fatalf("Warnings=%v Anomalies=%v", img.Warnings, img.Anomalies)
	}
	if img.Anomalies[0] != AnoApertureSynthesized {
		t.Errorf("Anomalies[0] = %q, want %q", img.Anomalies[0], AnoApertureSynthesized)
	}
}

func TestCheckInvariantsCatchesUndefinedAperture(t *testing.T) {
	img := New(RS274X)
	img.Nets = append(img.Nets, Net{ApertureState: Flash, Aperture: 10})
	errs := img.CheckInvariants()
	if len(errs) != 1 {
		t.Fatalf("CheckInvariants() = %v, want exactly one error", errs)
	}
}

func TestCheckInvariantsCleanImage(t *testing.T) {
	img := New(RS274X)
	img.Apertures.Define(&aperture.Aperture{Code: 10, Shape: aperture.Shape{Type: aperture.Circle, OuterDiameter: 1}})
	img.Nets = append(img.Nets, Net{ApertureState: Flash, Aperture: 10})
	if errs := img.CheckInvariants(); len(errs) != 0 {
		t.Errorf("CheckInvariants() on a clean image = %v, want none", errs)
	}
}
