package writer

import (
	"testing"

	"github.com/pcbtools/gerbcore/aperture"
)

func TestSerializeShapeOvalWithHole(t *testing.T) {
	s := aperture.Shape{Type: aperture.Oval, Width: 2, Height: 1, HoleDiameter: 0.3}
	if got := serializeShape(s); got != "O,2X1X0.3" {
		t.Errorf("serializeShape = %q, want O,2X1X0.3", got)
	}
}

func TestSerializeShapeOvalWithSlottedHole(t *testing.T) {
	s := aperture.Shape{Type: aperture.Oval, Width: 2, Height: 1, HoleDiameter: 0.3, HoleHeight: 0.6}
	if got := serializeShape(s); got != "O,2X1X0.3X0.6" {
		t.Errorf("serializeShape = %q, want O,2X1X0.3X0.6", got)
	}
}

func TestSerializeShapePolygonNoRotation(t *testing.T) {
	s := aperture.Shape{Type: aperture.Polygon, OuterDiameter: 1, Sides: 6}
	if got := serializeShape(s); got != "P,1X6" {
		t.Errorf("serializeShape = %q, want P,1X6", got)
	}
}

func TestSerializeShapePolygonWithRotation(t *testing.T) {
	s := aperture.Shape{Type: aperture.Polygon, OuterDiameter: 1, Sides: 6, Rotation: 30}
	if got := serializeShape(s); got != "P,1X6X30" {
		t.Errorf("serializeShape = %q, want P,1X6X30", got)
	}
}

func TestSerializePrimitiveCircle(t *testing.T) {
	p := aperture.Primitive{Code: aperture.PCircle, Exposure: aperture.ExposureDark, Params: []float64{0.5, 0, 0}}
	if got := serializePrimitive(p); got != "1,1,0.5,0,0" {
		t.Errorf("serializePrimitive = %q, want 1,1,0.5,0,0", got)
	}
}

func TestSerializePrimitiveOutline(t *testing.T) {
	p := aperture.Primitive{
		Code:     aperture.POutline,
		Exposure: aperture.ExposureDark,
		Points: []aperture.Point{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0},
		},
		Params: []float64{0},
	}
	if got := serializePrimitive(p); got != "4,1,3,0,0,1,0,1,1,0,0,0" {
		t.Errorf("serializePrimitive = %q, want 4,1,3,0,0,1,0,1,1,0,0,0", got)
	}
}

func TestSerializePrimitivePolygon(t *testing.T) {
	p := aperture.Primitive{Code: aperture.PPolygon, Exposure: aperture.ExposureDark, Params: []float64{6, 0, 0, 1, 0}}
	if got := serializePrimitive(p); got != "5,1,6,0,0,1,0" {
		t.Errorf("serializePrimitive = %q, want 5,1,6,0,0,1,0", got)
	}
}

func TestSerializePrimitiveMoire(t *testing.T) {
	p := aperture.Primitive{Code: aperture.PMoire, Params: []float64{0, 0, 1, 0.1, 0.2, 2, 0.1, 0.2, 0}}
	if got := serializePrimitive(p); got != "6,0,0,1,0.1,0.2,2,0.1,0.2,0" {
		t.Errorf("serializePrimitive = %q, want 6,0,0,1,0.1,0.2,2,0.1,0.2,0", got)
	}
}

func TestSerializePrimitiveThermal(t *testing.T) {
	p := aperture.Primitive{Code: aperture.PThermal, Params: []float64{0, 0, 1, 0.5, 0.1, 0}}
	if got := serializePrimitive(p); got != "7,0,0,1,0.5,0.1,0" {
		t.Errorf("serializePrimitive = %q, want 7,0,0,1,0.5,0.1,0", got)
	}
}

func TestSerializePrimitiveLine20(t *testing.T) {
	p := aperture.Primitive{Code: aperture.PLine20, Exposure: aperture.ExposureDark, Params: []float64{0.1, 0, 0, 1, 0, 0}}
	if got := serializePrimitive(p); got != "20,1,0.1,0,0,1,0,0" {
		t.Errorf("serializePrimitive = %q, want 20,1,0.1,0,0,1,0,0", got)
	}
}

func TestSerializePrimitiveLine21(t *testing.T) {
	p := aperture.Primitive{Code: aperture.PLine21, Exposure: aperture.ExposureDark, Params: []float64{1, 0.5, 0, 0, 0}}
	if got := serializePrimitive(p); got != "21,1,1,0.5,0,0,0" {
		t.Errorf("serializePrimitive = %q, want 21,1,1,0.5,0,0,0", got)
	}
}

func TestFnumFormatsCompactly(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.01, "0.01"},
		{1, "1"},
		{6, "6"},
	}
	for _, tt := range tests {
		if got := fnum(tt.in); got != tt.want {
			t.Errorf("fnum(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
