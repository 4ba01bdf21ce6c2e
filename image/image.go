// Package image implements the layered image model: an Image owns an
// aperture table, an append-only list of layers and netstates, and a
// netlist of nets, with incrementally maintained bounding boxes and a
// set of testable structural invariants.
//
// Layers and netstates are owned slices indexed by a stable integer
// index rather than a linked list compared by pointer identity, which
// replaces pointer-identity comparisons with integer comparisons.
package image

import (
	"errors"
	"fmt"
	"math"

	"github.com/pcbtools/gerbcore/aperture"
	"github.com/pcbtools/gerbcore/attr"
	"github.com/pcbtools/gerbcore/format"
)

// LayerType names which parser produced this image.
type LayerType int

const (
	RS274X LayerType = iota
	Drill
	PickAndPlaceTop
	PickAndPlaceBot
	IPCD356A
)

// Polarity is the image-wide (or per-layer) draw polarity.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

// Info carries the image-wide metadata.
type Info struct {
	Polarity        Polarity
	Unit            format.Unit
	Name            string
	JustifyA        bool
	JustifyB        bool
	OffsetA         float64
	OffsetB         float64
	ImageRotationDeg float64
	MinX, MinY      float64
	MaxX, MaxY      float64
	hasBBox         bool
}

// Layer is one %LP/%LN/%LR/%SR/knockout polarity+rotation snapshot,
// distinct from a physical copper layer.
type Layer struct {
	Polarity    Polarity
	Name        string
	RotationDeg float64
}

// NetState is one %SF/%MI/%AS snapshot of scale/offset/mirror/axis
// swap.
type NetState struct {
	ScaleA, ScaleB   float64
	OffsetA, OffsetB float64
	MirrorA, MirrorB bool
	AxisSwap         bool
}

// DefaultNetState is the identity transform used until the first %SF/
// %MI/%AS appears.
func DefaultNetState() NetState {
	return NetState{ScaleA: 1, ScaleB: 1}
}

// Interpolation is how a net's start->stop span is drawn.
type Interpolation int

const (
	Linear Interpolation = iota
	ClockwiseCircular
	CounterclockwiseCircular
	PolyAreaStart
	PolyAreaEnd
	Deleted
)

// ApertureState is a net's exposure: off (move), on (draw), or flash.
type ApertureState int

const (
	Off ApertureState = iota
	On
	Flash
)

// Net is one stroked or flashed geometric object.
type Net struct {
	StartX, StartY float64
	StopX, StopY   float64

	HasCircular            bool
	CenterX, CenterY       float64
	CircularWidth          float64
	CircularHeight         float64

	Interpolation Interpolation
	ApertureState ApertureState
	Aperture      int

	MinX, MinY float64
	MaxX, MaxY float64

	Label string
	Attrs map[attr.Key]attr.Attribute

	LayerIndex    int
	NetStateIndex int

	// RegionID indexes the PolyAreaStart net bracketing this net when
	// it belongs to a polygon region; -1 when not in a region.
	RegionID int
}

// Image is one parsed file.
type Image struct {
	LayerType LayerType
	Info      Info
	Format    format.Format

	Apertures *aperture.Table

	Layers    []Layer
	NetStates []NetState
	Nets      []Net

	FileAttrs *attr.Dict
	Registry  *attr.Registry

	Anomalies []string
	Warnings  []string
}

// New creates an empty image with the identity layer/netstate already
// pushed (index 0), positive polarity, and an empty aperture table.
func New(lt LayerType) *Image {
	img := &Image{
		LayerType: lt,
		Apertures: aperture.NewTable(),
		FileAttrs: attr.NewDict(attr.ScopeFile),
		Registry:  attr.NewRegistry(),
	}
	img.Layers = append(img.Layers, Layer{Polarity: Positive})
	img.NetStates = append(img.NetStates, DefaultNetState())
	return img
}

// ErrUnknownLayer/ErrUnknownNetState flag a net whose layer or
// netstate index doesn't resolve.
var (
	ErrUnknownLayer    = errors.New("image: net references unknown layer")
	ErrUnknownNetState = errors.New("image: net references unknown netstate")
)

// PushLayer appends a new layer snapshot and returns its index.
func (img *Image) PushLayer(l Layer) int {
	img.Layers = append(img.Layers, l)
	return len(img.Layers) - 1
}

// PushNetState appends a new netstate snapshot and returns its index.
func (img *Image) PushNetState(s NetState) int {
	img.NetStates = append(img.NetStates, s)
	return len(img.NetStates) - 1
}

// CurrentLayerIndex is the most recently pushed layer.
func (img *Image) CurrentLayerIndex() int { return len(img.Layers) - 1 }

// CurrentNetStateIndex is the most recently pushed netstate.
func (img *Image) CurrentNetStateIndex() int { return len(img.NetStates) - 1 }

// AppendNet validates and appends n, updating the image bounding box
// for drawn/flashed nets. extentW/extentH are the aperture's
// half-extents (0 for moves, or when the aperture is unknown).
func (img *Image) AppendNet(n Net, extentW, extentH float64) error {
	if n.LayerIndex < 0 || n.LayerIndex >= len(img.Layers) {
		return ErrUnknownLayer
	}
	if n.NetStateIndex < 0 || n.NetStateIndex >= len(img.NetStates) {
		return ErrUnknownNetState
	}
	if n.Interpolation != Deleted && n.ApertureState != Off {
		img.expandBBox(n.StartX, n.StartY, extentW, extentH)
		img.expandBBox(n.StopX, n.StopY, extentW, extentH)
	}
	img.Nets = append(img.Nets, n)
	return nil
}

func (img *Image) expandBBox(x, y, halfW, halfH float64) {
	lo, hi := x-halfW, x+halfW
	lo2, hi2 := y-halfH, y+halfH
	if !img.Info.hasBBox {
		img.Info.MinX, img.Info.MaxX = lo, hi
		img.Info.MinY, img.Info.MaxY = lo2, hi2
		img.Info.hasBBox = true
		return
	}
	img.Info.MinX = math.Min(img.Info.MinX, lo)
	img.Info.MaxX = math.Max(img.Info.MaxX, hi)
	img.Info.MinY = math.Min(img.Info.MinY, lo2)
	img.Info.MaxY = math.Max(img.Info.MaxY, hi2)
}

// AddWarning records a recoverable parse issue.
func (img *Image) AddWarning(msg string) {
	img.Warnings = append(img.Warnings, msg)
}

// AddAnomaly records a policy finding, distinct from a parse warning.
func (img *Image) AddAnomaly(msg string) {
	img.Anomalies = append(img.Anomalies, msg)
}

// CheckInvariants re-validates the testable structural properties that
// can be checked after the fact: every net's layer/netstate indices
// resolve, and every non-Off net references a defined aperture.
func (img *Image) CheckInvariants() []error {
	var errs []error
	for i, n := range img.Nets {
		if n.LayerIndex < 0 || n.LayerIndex >= len(img.Layers) {
			errs = append(errs, errFor(i, ErrUnknownLayer))
		}
		if n.NetStateIndex < 0 || n.NetStateIndex >= len(img.NetStates) {
			errs = append(errs, errFor(i, ErrUnknownNetState))
		}
		if n.ApertureState != Off {
			if _, ok := img.Apertures.Get(n.Aperture); !ok {
				errs = append(errs, errFor(i, errors.New("aperture not defined")))
			}
		}
	}
	return errs
}

func errFor(netIndex int, err error) error {
	return fmt.Errorf("net %d: %w", netIndex, err)
}
