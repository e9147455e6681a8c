package volume

import (
	"math"
	"strings"

	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
)

// ProbeGeometry is the acquisition shape of an ultrasound probe.
type ProbeGeometry int

const (
	GeometryLinear ProbeGeometry = iota
	GeometryCurved
	GeometryPhased
)

// String returns the display name of the probe geometry.
func (g ProbeGeometry) String() string {
	switch g {
	case GeometryCurved:
		return "curved"
	case GeometryPhased:
		return "phased"
	default:
		return "linear"
	}
}

// Fan parameters per geometry. A phased-array (cardiac) probe sweeps a wide
// sector from a point apex; a curved probe sweeps a narrower sector from a
// virtual apex behind the transducer face.
const (
	phasedSectorRad = 90 * math.Pi / 180
	curvedSectorRad = 60 * math.Pi / 180

	// curvedApexOffset is the virtual apex distance above the transducer
	// face, as a fraction of the image depth.
	curvedApexOffset = 0.5
)

// DetectProbeGeometry decides the probe geometry from the region calibration
// format code when present, else from description-text heuristics, defaulting
// to linear.
func DetectProbeGeometry(in *dicom.Instance) ProbeGeometry {
	switch in.USRegionFormat {
	case dicom.RegionFormatLinear:
		return GeometryLinear
	case dicom.RegionFormatCurved:
		return GeometryCurved
	case dicom.RegionFormatPhased:
		return GeometryPhased
	}

	desc := in.DescriptionText()
	for _, kw := range []string{"phased", "sector", "cardiac"} {
		if strings.Contains(desc, kw) {
			return GeometryPhased
		}
	}
	for _, kw := range []string{"curved", "convex", "abdom"} {
		if strings.Contains(desc, kw) {
			return GeometryCurved
		}
	}
	return GeometryLinear
}

// scanConvert resamples one fan-geometry slice onto the rectilinear output
// grid. The source samples are treated as a polar grid: rows are range
// samples along a beam, columns are beams across the sector. Output pixels
// outside the fan are zero, so the stacked volume is a regular grid
// regardless of source acquisition geometry.
func scanConvert(raw []float64, width, height int, geom ProbeGeometry, interpolation string) []float64 {
	if width < 2 || height < 2 {
		return raw
	}

	sector := phasedSectorRad
	apexY := 0.0
	if geom == GeometryCurved {
		sector = curvedSectorRad
		apexY = -curvedApexOffset * float64(height)
	}
	halfSector := sector / 2
	apexX := float64(width-1) / 2

	// Range along a beam spans from the apex to the bottom of the image.
	maxRange := float64(height-1) - apexY

	out := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - apexX
			dy := float64(y) - apexY
			if dy <= 0 {
				continue
			}

			theta := math.Atan2(dx, dy)
			if theta < -halfSector || theta > halfSector {
				continue
			}
			r := math.Hypot(dx, dy)
			if geom == GeometryCurved {
				// Discard the region between the virtual apex and the
				// transducer face.
				if r < -apexY {
					continue
				}
				r -= -apexY
				r = r / (maxRange + apexY) * maxRange
			}
			if r > maxRange {
				continue
			}

			// Map (theta, r) back onto the source beam/sample grid.
			beam := (theta + halfSector) / sector * float64(width-1)
			sample := r / maxRange * float64(height-1)

			if interpolation == InterpolationNearest {
				bx := int(math.Round(beam))
				by := int(math.Round(sample))
				out[y*width+x] = sampleAt(raw, width, height, bx, by)
				continue
			}
			out[y*width+x] = bilinear(raw, width, height, beam, sample)
		}
	}
	return out
}

func sampleAt(raw []float64, width, height, x, y int) float64 {
	if x < 0 || y < 0 || x >= width || y >= height {
		return 0
	}
	return raw[y*width+x]
}

func bilinear(raw []float64, width, height int, x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	v00 := sampleAt(raw, width, height, x0, y0)
	v10 := sampleAt(raw, width, height, x0+1, y0)
	v01 := sampleAt(raw, width, height, x0, y0+1)
	v11 := sampleAt(raw, width, height, x0+1, y0+1)

	top := v00*(1-fx) + v10*fx
	bottom := v01*(1-fx) + v11*fx
	return top*(1-fy) + bottom*fy
}
