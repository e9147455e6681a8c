package volume

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
)

// Plane names an orthogonal reconstruction plane through the volume.
type Plane string

const (
	// PlaneAxial is the native XY plane (one stored slice).
	PlaneAxial Plane = "axial"
	// PlaneSagittal is the YZ plane, perpendicular to the stored rows.
	PlaneSagittal Plane = "sagittal"
	// PlaneCoronal is the XZ plane, perpendicular to the stored columns.
	PlaneCoronal Plane = "coronal"
)

// ExtractPlane reconstructs a 2D plane from the volume at the given voxel
// index along the plane's normal axis. The returned samples are row-major
// with the reported width and height.
func (v *Volume) ExtractPlane(plane Plane, index int) (samples []float64, width, height int, err error) {
	d := v.Meta.Dimensions

	switch plane {
	case PlaneAxial:
		if index < 0 || index >= d.Z {
			return nil, 0, 0, fmt.Errorf("volume: axial index %d outside [0,%d)", index, d.Z)
		}
		width, height = d.X, d.Y
		samples = make([]float64, width*height)
		for y := 0; y < d.Y; y++ {
			for x := 0; x < d.X; x++ {
				samples[y*width+x] = v.Value(x, y, index)
			}
		}

	case PlaneSagittal:
		if index < 0 || index >= d.X {
			return nil, 0, 0, fmt.Errorf("volume: sagittal index %d outside [0,%d)", index, d.X)
		}
		width, height = d.Y, d.Z
		samples = make([]float64, width*height)
		for z := 0; z < d.Z; z++ {
			for y := 0; y < d.Y; y++ {
				samples[z*width+y] = v.Value(index, y, z)
			}
		}

	case PlaneCoronal:
		if index < 0 || index >= d.Y {
			return nil, 0, 0, fmt.Errorf("volume: coronal index %d outside [0,%d)", index, d.Y)
		}
		width, height = d.X, d.Z
		samples = make([]float64, width*height)
		for z := 0; z < d.Z; z++ {
			for x := 0; x < d.X; x++ {
				samples[z*width+x] = v.Value(x, index, z)
			}
		}

	default:
		return nil, 0, 0, fmt.Errorf("volume: invalid plane %q (must be axial, sagittal, or coronal)", plane)
	}

	return samples, width, height, nil
}

// ExtractPlaneAt reconstructs a plane at a normalized position in [0,1]
// along the plane's normal axis, the addressing used by interactive viewers.
func (v *Volume) ExtractPlaneAt(plane Plane, position float64) ([]float64, int, int, error) {
	if position < 0 || position > 1 {
		return nil, 0, 0, fmt.Errorf("volume: position %v outside [0,1]", position)
	}

	d := v.Meta.Dimensions
	var extent int
	switch plane {
	case PlaneAxial:
		extent = d.Z
	case PlaneSagittal:
		extent = d.X
	case PlaneCoronal:
		extent = d.Y
	default:
		return nil, 0, 0, fmt.Errorf("volume: invalid plane %q (must be axial, sagittal, or coronal)", plane)
	}

	index := int(position * float64(extent-1))
	return v.ExtractPlane(plane, index)
}

// SavePlaneJPEG extracts a plane, applies the given window/level, and writes
// the result as a grayscale JPEG.
func (v *Volume) SavePlaneJPEG(plane Plane, index int, wl WindowLevel, path string) error {
	samples, width, height, err := v.ExtractPlane(plane, index)
	if err != nil {
		return err
	}

	display := ApplyWindow(samples, wl)
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: display[y*width+x]})
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}
