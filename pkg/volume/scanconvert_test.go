package volume

import (
	"testing"

	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
)

func TestDetectProbeGeometry(t *testing.T) {
	cases := []struct {
		name string
		in   *dicom.Instance
		want ProbeGeometry
	}{
		{
			name: "RegionFormatWins",
			in: &dicom.Instance{
				USRegionFormat:    dicom.RegionFormatPhased,
				SeriesDescription: "linear vascular",
			},
			want: GeometryPhased,
		},
		{
			name: "CurvedRegionFormat",
			in:   &dicom.Instance{USRegionFormat: dicom.RegionFormatCurved},
			want: GeometryCurved,
		},
		{
			name: "PhasedByDescription",
			in:   &dicom.Instance{SeriesDescription: "Cardiac sector scan"},
			want: GeometryPhased,
		},
		{
			name: "CurvedByDescription",
			in:   &dicom.Instance{ProtocolName: "Abdominal convex"},
			want: GeometryCurved,
		},
		{
			name: "DefaultLinear",
			in:   &dicom.Instance{SeriesDescription: "Thyroid"},
			want: GeometryLinear,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectProbeGeometry(tc.in); got != tc.want {
				t.Errorf("DetectProbeGeometry = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestScanConvertOutputIsRegularGrid(t *testing.T) {
	const width, height = 32, 32
	raw := make([]float64, width*height)
	for i := range raw {
		raw[i] = 100
	}

	for _, geom := range []ProbeGeometry{GeometryPhased, GeometryCurved} {
		t.Run(geom.String(), func(t *testing.T) {
			out := scanConvert(raw, width, height, geom, InterpolationBilinear)
			if len(out) != width*height {
				t.Fatalf("output length = %d, want %d", len(out), width*height)
			}

			// Corners of the Cartesian grid lie outside the fan.
			if out[0] != 0 {
				t.Errorf("top-left corner = %v, want 0 outside the fan", out[0])
			}
			if out[width-1] != 0 {
				t.Errorf("top-right corner = %v, want 0 outside the fan", out[width-1])
			}

			// A point on the central beam keeps the source amplitude.
			center := (height/2)*width + width/2
			if out[center] == 0 {
				t.Errorf("central beam sample = 0, want nonzero inside the fan")
			}
		})
	}
}

func TestScanConvertNearestMatchesSourceValues(t *testing.T) {
	const width, height = 16, 16
	raw := make([]float64, width*height)
	for i := range raw {
		raw[i] = float64(i % 7)
	}

	out := scanConvert(raw, width, height, GeometryPhased, InterpolationNearest)
	// Nearest-neighbor output only ever contains source values or zero.
	allowed := map[float64]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for i, v := range out {
		if !allowed[v] {
			t.Fatalf("output[%d] = %v, not a source sample value", i, v)
		}
	}
}

func TestScanConvertTinySliceUntouched(t *testing.T) {
	raw := []float64{1}
	out := scanConvert(raw, 1, 1, GeometryPhased, InterpolationBilinear)
	if out[0] != 1 {
		t.Errorf("1x1 slice changed: %v", out)
	}
}
