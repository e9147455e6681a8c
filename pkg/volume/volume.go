// Package volume assembles a sorted instance sequence into a single
// addressable 3D sample volume with modality-appropriate intensity semantics,
// together with default display parameters (window/level presets and an
// opacity/color transfer function) for downstream rendering.
package volume

import (
	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
)

// SampleFormat is the element width and signedness of a volume's buffer,
// fixed per modality.
type SampleFormat int

const (
	// FormatInt16 holds calibrated Hounsfield units (CT).
	FormatInt16 SampleFormat = iota
	// FormatFloat32 holds normalized intensities (MR and the generic path).
	FormatFloat32
	// FormatUint8 holds B-mode amplitude samples (US).
	FormatUint8
)

// String returns the display name of the sample format.
func (f SampleFormat) String() string {
	switch f {
	case FormatInt16:
		return "int16"
	case FormatFloat32:
		return "float32"
	default:
		return "uint8"
	}
}

// Dimensions is the voxel count along each axis.
type Dimensions struct {
	X, Y, Z int
}

// Spacing is the physical voxel size in mm along each axis. Z is derived as
// the mean inter-slice distance, never copied verbatim from one instance's
// slice thickness unless no position data exists anywhere in the series.
type Spacing struct {
	X, Y, Z float64
}

// Metadata fully describes the physical extent of a volume: together with
// the buffer layout guarantee (row-major within a slice, slices concatenated
// in sorted order) it is everything a renderer or measurement tool needs.
type Metadata struct {
	Dimensions  Dimensions
	Spacing     Spacing
	Origin      dicom.Vec3
	Orientation dicom.Orientation
	Modality    dicom.Modality
	SeriesUID   string
	StudyUID    string
}

// WindowLevel is a display range mapping: Window is the width of the visible
// sample range and Level its center.
type WindowLevel struct {
	Window float64
	Level  float64
}

// OpacityPoint maps a sample value to a rendered opacity in [0,1].
type OpacityPoint struct {
	Value   float64
	Opacity float64
}

// ColorPoint maps a sample value to an RGB color with components in [0,1].
type ColorPoint struct {
	Value   float64
	R, G, B float64
}

// TransferFunction is an ordered list of opacity and color control points
// used to visualize a volume.
type TransferFunction struct {
	Opacity []OpacityPoint
	Color   []ColorPoint
}

// Volume owns one flat sample buffer of length X*Y*Z in exactly one of the
// typed slices, selected by Format. A Volume is created once per
// (series, options) combination and is immutable afterwards; re-processing
// with different options produces a distinct Volume.
type Volume struct {
	Meta   Metadata
	Format SampleFormat

	Int16   []int16
	Float32 []float32
	Uint8   []uint8

	// Presets are named window/level presets; DefaultPreset names the one
	// used for first display.
	Presets       map[string]WindowLevel
	DefaultPreset string

	Transfer TransferFunction
}

// NumVoxels returns the total voxel count.
func (v *Volume) NumVoxels() int {
	return v.Meta.Dimensions.X * v.Meta.Dimensions.Y * v.Meta.Dimensions.Z
}

// Value returns the sample at voxel (x, y, z) as a float64 regardless of the
// underlying format. Out-of-range coordinates return 0.
func (v *Volume) Value(x, y, z int) float64 {
	d := v.Meta.Dimensions
	if x < 0 || y < 0 || z < 0 || x >= d.X || y >= d.Y || z >= d.Z {
		return 0
	}
	idx := z*d.X*d.Y + y*d.X + x
	switch v.Format {
	case FormatInt16:
		return float64(v.Int16[idx])
	case FormatFloat32:
		return float64(v.Float32[idx])
	default:
		return float64(v.Uint8[idx])
	}
}

// DefaultWindow returns the window/level of the default preset.
func (v *Volume) DefaultWindow() WindowLevel {
	return v.Presets[v.DefaultPreset]
}

// MinMax scans the buffer and returns the smallest and largest sample.
func (v *Volume) MinMax() (lo, hi float64) {
	n := v.NumVoxels()
	if n == 0 {
		return 0, 0
	}
	lo = v.at(0)
	hi = lo
	for i := 1; i < n; i++ {
		s := v.at(i)
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return lo, hi
}

func (v *Volume) at(idx int) float64 {
	switch v.Format {
	case FormatInt16:
		return float64(v.Int16[idx])
	case FormatFloat32:
		return float64(v.Float32[idx])
	default:
		return float64(v.Uint8[idx])
	}
}
