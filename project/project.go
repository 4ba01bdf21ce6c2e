// Package project implements the project/file-slot container and its
// persisted project file format: a root owning an ordered list of file
// slots, each wrapping one parsed image plus the display-side fields
// the core treats as opaque, and the operations a UI/CLI collaborator
// drives it through.
package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pcbtools/gerbcore"
	"github.com/pcbtools/gerbcore/attr"
	"github.com/pcbtools/gerbcore/excellon"
	"github.com/pcbtools/gerbcore/gerberx"
	"github.com/pcbtools/gerbcore/image"
	"github.com/pcbtools/gerbcore/internal/log"
	"github.com/pcbtools/gerbcore/ipc356a"
	"github.com/pcbtools/gerbcore/search"
	"github.com/pcbtools/gerbcore/sniffer"
)

// ErrSlotOutOfRange is returned by any operation addressing a file
// slot index outside [0, len(Slots)).
var ErrSlotOutOfRange = errors.New("project: slot index out of range")

// Color is an opaque RGB display color, each component 0..0xFFFF; the
// core never interprets it.
type Color struct {
	R, G, B uint16
}

// Slot is one loaded file: its image plus the opaque display-side
// fields (color, visibility, per-file affine transform).
type Slot struct {
	Path      string
	Image     *image.Image
	Color     Color
	Visible   bool
	Inverted  bool
	PnP       bool
	Transform image.UserTransform

	// Attrs holds parser-attribute overrides for this slot, persisted
	// by Save/Load. Parsing (OpenLayerFromFilename, RevertFile) does
	// not consult them.
	Attrs *attr.Dict
}

// Project is a root owning file slots and a project-scope attribute
// dictionary used to thread CLI-supplied options into the parsers.
type Project struct {
	Slots []*Slot

	// Attrs is the project-scope dictionary for options like `layers`,
	// `ipcd356a-layers`, `annotate`, `text-*`.
	Attrs *attr.Dict

	Logger *log.Helper
}

// New returns an empty project.
func New() *Project {
	return &Project{Attrs: attr.NewDict(attr.ScopeFile)}
}

func (p *Project) logger() *log.Helper {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default
}

// OpenLayerFromFilename sniffs path's format and dispatches it to the
// matching parser, appending a new file slot.
func (p *Project) OpenLayerFromFilename(path string) (int, error) {
	img, err := p.parseFile(path)
	if err != nil {
		return -1, err
	}
	slot := &Slot{
		Path:      path,
		Image:     img,
		Visible:   true,
		Transform: image.IdentityTransform(),
	}
	p.Slots = append(p.Slots, slot)
	return len(p.Slots) - 1, nil
}

func (p *Project) parseFile(path string) (*image.Image, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	result := sniffer.Sniff(data, ext)

	switch result.Type {
	case sniffer.GerberRS274X:
		return gerberx.Parse(path, &gerberx.Options{Logger: p.logger()})
	case sniffer.Excellon:
		return excellon.Parse(path, &excellon.Options{Logger: p.logger()})
	case sniffer.IPCD356A:
		return ipc356a.Parse(path, &ipc356a.Options{Logger: p.logger()})
	default:
		return nil, gerbcore.ErrUnrecognizedFormat
	}
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// SaveLayerFromIndex hands slot i's image and path to write; the
// output format is whatever write produces.
func (p *Project) SaveLayerFromIndex(i int, path string, write func(*image.Image, string) error) error {
	if i < 0 || i >= len(p.Slots) {
		return ErrSlotOutOfRange
	}
	return write(p.Slots[i].Image, path)
}

// RevertFile re-parses slot i's original path, replacing its image in
// place while keeping its display fields.
func (p *Project) RevertFile(i int) error {
	if i < 0 || i >= len(p.Slots) {
		return ErrSlotOutOfRange
	}
	img, err := p.parseFile(p.Slots[i].Path)
	if err != nil {
		return err
	}
	p.Slots[i].Image = img
	return nil
}

// UnloadLayer removes slot i, shifting later slots down.
func (p *Project) UnloadLayer(i int) error {
	if i < 0 || i >= len(p.Slots) {
		return ErrSlotOutOfRange
	}
	p.Slots = append(p.Slots[:i], p.Slots[i+1:]...)
	return nil
}

// UnloadAll empties the project's slot list.
func (p *Project) UnloadAll() {
	p.Slots = nil
}

// ChangeLayerOrder moves the slot at old to position new, shifting the
// slots between.
func (p *Project) ChangeLayerOrder(old, newIdx int) error {
	if old < 0 || old >= len(p.Slots) || newIdx < 0 || newIdx >= len(p.Slots) {
		return ErrSlotOutOfRange
	}
	s := p.Slots[old]
	p.Slots = append(p.Slots[:old], p.Slots[old+1:]...)
	head := append([]*Slot{}, p.Slots[:newIdx]...)
	head = append(head, s)
	p.Slots = append(head, p.Slots[newIdx:]...)
	return nil
}

// BoundingBox is the union bounding box of every visible slot's image
// under its user transform.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// GetBoundingBox returns the union bounding box across every visible
// slot, transformed by each slot's Transform. ok is false if no
// visible slot contributes any geometry.
func (p *Project) GetBoundingBox() (bb BoundingBox, ok bool) {
	for _, s := range p.Slots {
		if !s.Visible || s.Image == nil {
			continue
		}
		dup := s.Image.Duplicate(s.Transform)
		if dup.Info.MaxX == dup.Info.MinX && dup.Info.MaxY == dup.Info.MinY && len(dup.Nets) == 0 {
			continue
		}
		if !ok {
			bb = BoundingBox{dup.Info.MinX, dup.Info.MinY, dup.Info.MaxX, dup.Info.MaxY}
			ok = true
			continue
		}
		bb.MinX = min(bb.MinX, dup.Info.MinX)
		bb.MinY = min(bb.MinY, dup.Info.MinY)
		bb.MaxX = max(bb.MaxX, dup.Info.MaxX)
		bb.MaxY = max(bb.MaxY, dup.Info.MaxY)
	}
	return bb, ok
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// AnnotateRS274XFromIPCD356A copies test-point attributes from the IPC
// slot onto the Gerber slot's enclosing flashes/tracks, across the
// whole Gerber image: layerNum and maxLayer are not consulted. It
// returns the number of nets annotated.
func (p *Project) AnnotateRS274XFromIPCD356A(layerNum, maxLayer, gerberSlot, ipcSlot int, overwrite bool) (int, error) {
	if gerberSlot < 0 || gerberSlot >= len(p.Slots) || ipcSlot < 0 || ipcSlot >= len(p.Slots) {
		return 0, ErrSlotOutOfRange
	}
	gerber := p.Slots[gerberSlot].Image
	ipc := p.Slots[ipcSlot].Image
	_, _ = layerNum, maxLayer // layer range selection is carried in ipc's own records; this project-level pass annotates the whole image.
	return search.AnnotateFromIPC(gerber, ipc, overwrite), nil
}

// ImageIterator walks slot i's image, invoking visit per geometric
// object, wired to search.Walk.
func (p *Project) ImageIterator(i int, visit search.Visitor) error {
	if i < 0 || i >= len(p.Slots) {
		return ErrSlotOutOfRange
	}
	search.Walk(p.Slots[i].Image, visit)
	return nil
}
