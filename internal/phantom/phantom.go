// Package phantom generates synthetic instance batches with known geometry,
// used by the demo CLI and by tests that need a series whose correct order
// and sample values are known in advance.
package phantom

import (
	"fmt"
	"math"

	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
)

// CTSeries returns an axial CT series of n slices with the given in-plane
// size and inter-slice spacing in mm. Stored values are offset so that a
// rescale intercept of -1024 recovers Hounsfield units; each slice contains
// a centered sphere of water density in air.
func CTSeries(n, rows, cols int, spacing float64) []*dicom.Instance {
	instances := make([]*dicom.Instance, n)
	radius := float64(rows) / 3

	for i := 0; i < n; i++ {
		pixels := make([]float64, rows*cols)
		// Sphere cross-section shrinks away from the center slice.
		dz := float64(i) - float64(n-1)/2
		r2 := radius*radius - dz*dz*spacing*spacing
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				dx := float64(x) - float64(cols-1)/2
				dy := float64(y) - float64(rows-1)/2
				if r2 > 0 && dx*dx+dy*dy <= r2 {
					pixels[y*cols+x] = 1024 // water after intercept
				}
			}
		}

		instances[i] = &dicom.Instance{
			SOPInstanceUID:    fmt.Sprintf("1.2.3.4.%d", i+1),
			SeriesInstanceUID: "1.2.3.4",
			StudyInstanceUID:  "1.2.3",
			Modality:          dicom.ModalityCT,
			Rows:              rows,
			Columns:           cols,
			BitsAllocated:     16,
			PixelSpacing:      &[2]float64{0.7, 0.7},
			SliceThickness:    spacing,
			Position:          &dicom.Vec3{Z: float64(i) * spacing},
			Orientation: &dicom.Orientation{
				Row: dicom.Vec3{X: 1},
				Col: dicom.Vec3{Y: 1},
			},
			SliceLocation:     dicom.Float(float64(i) * spacing),
			InstanceNumber:    dicom.Int(i + 1),
			RescaleSlope:      dicom.Float(1),
			RescaleIntercept:  dicom.Float(-1024),
			SeriesDescription: "Synthetic axial CT phantom",
			Pixels:            pixels,
		}
	}
	return instances
}

// MRSeries returns an axial MR series of n slices carrying a smooth
// intensity gradient, suitable for exercising series-wide normalization.
func MRSeries(n, rows, cols int, spacing float64, description string) []*dicom.Instance {
	instances := make([]*dicom.Instance, n)
	for i := 0; i < n; i++ {
		pixels := make([]float64, rows*cols)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				phase := float64(x+y+i) / float64(rows+cols+n)
				pixels[y*cols+x] = 2000 * math.Sin(phase*math.Pi)
			}
		}

		instances[i] = &dicom.Instance{
			SOPInstanceUID:    fmt.Sprintf("2.3.4.5.%d", i+1),
			SeriesInstanceUID: "2.3.4.5",
			StudyInstanceUID:  "2.3.4",
			Modality:          dicom.ModalityMR,
			Rows:              rows,
			Columns:           cols,
			BitsAllocated:     16,
			PixelSpacing:      &[2]float64{0.9, 0.9},
			SliceThickness:    spacing,
			Position:          &dicom.Vec3{Z: float64(i) * spacing},
			Orientation: &dicom.Orientation{
				Row: dicom.Vec3{X: 1},
				Col: dicom.Vec3{Y: 1},
			},
			InstanceNumber:    dicom.Int(i + 1),
			SeriesDescription: description,
			Pixels:            pixels,
		}
	}
	return instances
}
