package image

import "math"

// UserTransform is the affine transform applied when duplicating an
// image for export: translate, scale, rotate, mirror X/Y, and an
// invert-polarity flag.
type UserTransform struct {
	TranslateX, TranslateY float64
	ScaleX, ScaleY         float64
	RotationDeg            float64
	MirrorX, MirrorY       bool
	Inverted               bool
}

// IdentityTransform is the no-op transform.
func IdentityTransform() UserTransform {
	return UserTransform{ScaleX: 1, ScaleY: 1}
}

func (t UserTransform) apply(x, y float64) (float64, float64) {
	if t.MirrorX {
		x = -x
	}
	if t.MirrorY {
		y = -y
	}
	x *= t.ScaleX
	y *= t.ScaleY
	rad := t.RotationDeg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	rx := x*cos - y*sin
	ry := x*sin + y*cos
	return rx + t.TranslateX, ry + t.TranslateY
}

// Duplicate deep-copies the netlist/apertures/layers/states and
// applies t to every coordinate, producing a fresh image independent
// of the original. Attribute dictionaries are reference-copied: they
// track live parser state, not per-object geometry.
func (img *Image) Duplicate(t UserTransform) *Image {
	dup := &Image{
		LayerType: img.LayerType,
		Info:      img.Info,
		Format:    img.Format,
		Apertures: img.Apertures.Clone(),
		FileAttrs: img.FileAttrs,
		Registry:  img.Registry,
	}
	dup.Layers = append([]Layer(nil), img.Layers...)
	dup.NetStates = append([]NetState(nil), img.NetStates...)
	dup.Nets = make([]Net, len(img.Nets))

	dup.Info.hasBBox = false
	for i, n := range img.Nets {
		nn := n
		nn.StartX, nn.StartY = t.apply(n.StartX, n.StartY)
		nn.StopX, nn.StopY = t.apply(n.StopX, n.StopY)
		if n.HasCircular {
			nn.CenterX, nn.CenterY = t.apply(n.CenterX, n.CenterY)
		}
		halfW, halfH := 0.0, 0.0
		if ap, ok := img.Apertures.Get(n.Aperture); ok && n.ApertureState != Off {
			halfW, halfH = ap.Envelope()
			halfW *= math.Max(t.ScaleX, t.ScaleY)
			halfH *= math.Max(t.ScaleX, t.ScaleY)
		}
		dup.expandBBox(nn.StartX, nn.StartY, halfW, halfH)
		dup.expandBBox(nn.StopX, nn.StopY, halfW, halfH)
		dup.Nets[i] = nn
	}
	if t.Inverted {
		dup.Layers = invertLayers(dup.Layers)
	}
	return dup
}

func invertLayers(layers []Layer) []Layer {
	out := make([]Layer, len(layers))
	for i, l := range layers {
		if l.Polarity == Positive {
			l.Polarity = Negative
		} else {
			l.Polarity = Positive
		}
		out[i] = l
	}
	return out
}
