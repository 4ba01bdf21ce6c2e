package search

import (
	"github.com/pcbtools/gerbcore/attr"
	"github.com/pcbtools/gerbcore/image"
)

// ipcPoint is one candidate feature collected from the IPC image: the
// net carrying the .N/.P/.C attributes to copy, its world-frame point,
// and whether it came from a flash (pad) or a track endpoint.
type ipcPoint struct {
	net     *image.Net
	x, y    float64
	isFlash bool
}

// AnnotateFromIPC walks ipc collecting test-point/conductor features,
// then walks gerber looking for an object that encloses each feature
// point, copying the IPC net's object attributes onto the enclosing
// Gerber net. overwrite selects whether attributes already on a Gerber
// net are replaced or left alone.
func AnnotateFromIPC(gerber, ipc *image.Image, overwrite bool) int {
	points := collectIPCPoints(ipc)
	annotated := 0
	Walk(gerber, func(obj Object) bool {
		for _, pt := range points {
			if pt.isFlash != (obj.Net.ApertureState == image.Flash) {
				// Avoid mapping a pad to a stub track.
				continue
			}
			if DistanceToBorder(obj, pt.x, pt.y) >= 0 {
				continue
			}
			if applyAnnotation(obj.Net, pt.net, overwrite) {
				annotated++
			}
		}
		return true
	})
	return annotated
}

func collectIPCPoints(ipc *image.Image) []ipcPoint {
	var out []ipcPoint
	for i := range ipc.Nets {
		n := &ipc.Nets[i]
		if n.Interpolation == image.Deleted || n.Attrs == nil {
			continue
		}
		if _, ok := n.Attrs[attr.Intern(".N")]; !ok {
			continue
		}
		out = append(out, ipcPoint{net: n, x: n.StopX, y: n.StopY, isFlash: n.ApertureState == image.Flash})
		if n.ApertureState != image.Flash && (n.StartX != n.StopX || n.StartY != n.StopY) {
			out = append(out, ipcPoint{net: n, x: n.StartX, y: n.StartY, isFlash: n.ApertureState == image.Flash})
		}
	}
	return out
}

// applyAnnotation copies the annotation keys IPC test points carry
// (.N, .P, .C, IPCLayer) from src onto dst, honoring overwrite.
func applyAnnotation(dst, src *image.Net, overwrite bool) bool {
	if dst.Attrs == nil {
		dst.Attrs = make(map[attr.Key]attr.Attribute)
	}
	changed := false
	for _, name := range []string{".N", ".P", ".C", "IPCLayer"} {
		k := attr.Intern(name)
		v, ok := src.Attrs[k]
		if !ok {
			continue
		}
		if _, exists := dst.Attrs[k]; exists && !overwrite {
			continue
		}
		dst.Attrs[k] = v
		changed = true
	}
	return changed
}
