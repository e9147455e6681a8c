package dicom

import (
	"math"
	"strings"
)

// Vec3 is a point or direction in patient space, in mm.
type Vec3 struct {
	X, Y, Z float64
}

// Component returns the axis-indexed component (0=x, 1=y, 2=z).
func (v Vec3) Component(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product of v and w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Orientation holds the row and column direction cosines of an image plane
// (the six ImageOrientationPatient values).
type Orientation struct {
	Row Vec3
	Col Vec3
}

// IdentityOrientation is the default axial orientation: rows along +x,
// columns along +y, slice normal along +z.
func IdentityOrientation() Orientation {
	return Orientation{
		Row: Vec3{X: 1},
		Col: Vec3{Y: 1},
	}
}

// Normal returns the slice normal, the cross product of the row and column
// direction cosines.
func (o Orientation) Normal() Vec3 {
	return o.Row.Cross(o.Col)
}

// PrimaryAxis returns the index (0=x, 1=y, 2=z) of the largest-magnitude
// component of the slice normal: the spatial axis most nearly perpendicular
// to the imaging plane. Ordering slices by their position along this axis is
// correct for oblique acquisitions, not just axis-aligned ones.
func (o Orientation) PrimaryAxis() int {
	n := o.Normal()
	axis := 0
	best := math.Abs(n.X)
	if m := math.Abs(n.Y); m > best {
		axis, best = 1, m
	}
	if m := math.Abs(n.Z); m > best {
		axis = 2
	}
	return axis
}

// DescriptionText joins the free-text description fields into one lowercase
// string for heuristic substring matching.
func (in *Instance) DescriptionText() string {
	return strings.ToLower(strings.Join([]string{
		in.SeriesDescription,
		in.ProtocolName,
		in.SequenceName,
	}, " "))
}
