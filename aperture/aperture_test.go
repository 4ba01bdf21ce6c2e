package aperture

import "testing"

func TestShapeEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		shape      Shape
		wantW      float64
		wantH      float64
	}{
		{"circle", Shape{Type: Circle, OuterDiameter: 10}, 5, 5},
		{"rectangle", Shape{Type: Rectangle, Width: 4, Height: 6}, 2, 3},
		{"oval", Shape{Type: Oval, Width: 8, Height: 2}, 4, 1},
		{"polygon", Shape{Type: Polygon, OuterDiameter: 6, Sides: 5}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.shape.Envelope()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Envelope() = (%v,%v), want (%v,%v)", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestTableDefineGet(t *testing.T) {
	tbl := NewTable()
	ap := &Aperture{Code: 10, Shape: Shape{Type: Circle, OuterDiameter: 1}}
	tbl.Define(ap)
	got, ok := tbl.Get(10)
	if !ok || got != ap {
		t.Fatalf("Get(10) = %+v, %v", got, ok)
	}
	if _, ok := tbl.Get(11); ok {
		t.Error("Get(11) should not find an undefined aperture")
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
}

func TestEnsureCircleSynthesizes(t *testing.T) {
	tbl := NewTable()
	ap, synthesized := tbl.EnsureCircle(22, 0.001)
	if !synthesized {
		t.Fatal("EnsureCircle on an undefined code should report synthesized=true")
	}
	if ap.Shape.Type != Circle || ap.Shape.OuterDiameter != 0.001 {
		t.Errorf("synthesized aperture = %+v, want a 0.001-diameter circle", ap.Shape)
	}
	again, synthesized := tbl.EnsureCircle(22, 0.5)
	if synthesized {
		t.Error("EnsureCircle on an already-defined code should report synthesized=false")
	}
	if again != ap {
		t.Error("EnsureCircle should return the same aperture on a second call")
	}
}

func TestApertureEnvelopeMacro(t *testing.T) {
	ap := &Aperture{
		Code: 30,
		Shape: Shape{Type: Macro},
		Simplified: []Primitive{
			{Code: PCircle, Params: []float64{4, 0, 0}},
		},
	}
	w, h := ap.Envelope()
	if w != 2 || h != 2 {
		t.Errorf("macro Envelope() = (%v,%v), want (2,2)", w, h)
	}
}

func TestPrimitiveTypeString(t *testing.T) {
	tests := map[PrimitiveType]string{
		Circle: "circle", Rectangle: "rectangle", Oval: "oval", Polygon: "polygon", Macro: "macro",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", p, got, want)
		}
	}
}
