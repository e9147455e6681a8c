package dicom

import (
	"math"
	"testing"
)

func TestPrimaryAxis(t *testing.T) {
	cases := []struct {
		name string
		o    Orientation
		want int
	}{
		{
			name: "Axial",
			o:    Orientation{Row: Vec3{X: 1}, Col: Vec3{Y: 1}},
			want: 2,
		},
		{
			name: "Sagittal",
			o:    Orientation{Row: Vec3{Y: 1}, Col: Vec3{Z: 1}},
			want: 0,
		},
		{
			name: "Coronal",
			o:    Orientation{Row: Vec3{X: 1}, Col: Vec3{Z: 1}},
			want: 1,
		},
		{
			name: "ObliqueNearAxial",
			o: Orientation{
				Row: Vec3{X: math.Cos(0.2), Y: math.Sin(0.2)},
				Col: Vec3{X: -math.Sin(0.2), Y: math.Cos(0.2)},
			},
			want: 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.o.PrimaryAxis(); got != tc.want {
				t.Errorf("PrimaryAxis = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestNormalIsCrossProduct(t *testing.T) {
	o := Orientation{Row: Vec3{X: 1}, Col: Vec3{Y: 1}}
	n := o.Normal()
	if n.X != 0 || n.Y != 0 || n.Z != 1 {
		t.Errorf("Normal = %+v, want (0,0,1)", n)
	}

	flipped := Orientation{Row: Vec3{Y: 1}, Col: Vec3{X: 1}}
	n = flipped.Normal()
	if n.Z != -1 {
		t.Errorf("flipped Normal.Z = %v, want -1", n.Z)
	}
}

func TestInstanceDefaults(t *testing.T) {
	in := &Instance{}

	if got := in.Slope(); got != 1.0 {
		t.Errorf("default Slope = %v, want 1", got)
	}
	if got := in.Intercept(); got != 0.0 {
		t.Errorf("default Intercept = %v, want 0", got)
	}
	sx, sy := in.SpacingXY()
	if sx != 1.0 || sy != 1.0 {
		t.Errorf("default spacing = %v,%v, want 1,1", sx, sy)
	}
	if got := in.OrientationOrDefault(); got != IdentityOrientation() {
		t.Errorf("default orientation = %+v, want identity", got)
	}
	if _, ok := in.TimeValue(); ok {
		t.Error("TimeValue reported a timestamp on an empty instance")
	}
}

func TestTimeValuePrefersAcquisition(t *testing.T) {
	in := &Instance{
		AcquisitionTime: Float(100),
		ContentTime:     Float(200),
	}
	if got, ok := in.TimeValue(); !ok || got != 100 {
		t.Errorf("TimeValue = %v,%v, want 100,true", got, ok)
	}

	in.AcquisitionTime = nil
	if got, ok := in.TimeValue(); !ok || got != 200 {
		t.Errorf("TimeValue fallback = %v,%v, want 200,true", got, ok)
	}
}
