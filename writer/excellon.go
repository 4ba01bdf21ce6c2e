package writer

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/pcbtools/gerbcore/aperture"
	"github.com/pcbtools/gerbcore/image"
)

// WriteExcellon re-emits img (a image.Drill image) as Excellon text:
// an M48 header with one T{n}C{dia} per circle aperture in the table, then
// T{n} tool selects, X{6d}Y{6d} flashes, and X{6d}Y{6d}G85X{6d}Y{6d}
// slots, all at a fixed 0.0001" resolution with trailing zeros kept,
// trailed by M30.
func WriteExcellon(w io.Writer, img *image.Image) error {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	codes := img.Apertures.Codes()
	sort.Ints(codes)
	toolNumber := make(map[int]int, len(codes))

	var err error
	printf := func(layout string, a ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(bw, layout, a...)
	}

	printf("M48\n")
	printf("INCH,TZ\n")
	n := 1
	for _, code := range codes {
		ap, _ := img.Apertures.Get(code)
		if ap.Shape.Type != aperture.Circle {
			continue
		}
		toolNumber[code] = n
		printf("T%02dC%s\n", n, excellonDia(ap.Shape.OuterDiameter))
		n++
	}
	printf("%%\n")

	lastTool := -1
	for i := range img.Nets {
		net := &img.Nets[i]
		if net.Interpolation == image.Deleted || net.ApertureState == image.Off {
			continue
		}
		tn, ok := toolNumber[net.Aperture]
		if !ok {
			continue
		}
		if tn != lastTool {
			printf("T%02d\n", tn)
			lastTool = tn
		}
		if net.Interpolation == image.Linear && (net.StartX != net.StopX || net.StartY != net.StopY) {
			printf("X%sY%sG85X%sY%s\n",
				excellonCoord(net.StartX), excellonCoord(net.StartY),
				excellonCoord(net.StopX), excellonCoord(net.StopY))
			continue
		}
		printf("X%sY%s\n", excellonCoord(net.StopX), excellonCoord(net.StopY))
	}
	printf("M30\n")
	return err
}

// excellonCoord encodes a coordinate at a fixed 0.0001" resolution,
// trailing zeros kept, 6 digits wide.
func excellonCoord(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	lit := int64(math.Round(v * 10000))
	return fmt.Sprintf("%s%06d", sign, lit)
}

// excellonDia formats a tool diameter to 4 decimal places, the
// resolution Excellon tool definitions conventionally carry.
func excellonDia(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
