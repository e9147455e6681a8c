package volume

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/internal/phantom"
	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/series"
)

// testSeries builds a small sorted series with the given modality and
// per-slice raw sample value.
func testSeries(t *testing.T, modality dicom.Modality, n int, sample func(slice int) float64) *series.Result {
	t.Helper()

	var batch []*dicom.Instance
	for i := 0; i < n; i++ {
		pixels := make([]float64, 4*4)
		for p := range pixels {
			pixels[p] = sample(i)
		}
		batch = append(batch, &dicom.Instance{
			SOPInstanceUID:    fmt.Sprintf("sop-%d", i),
			SeriesInstanceUID: "series-vol",
			StudyInstanceUID:  "study-vol",
			Modality:          modality,
			Rows:              4,
			Columns:           4,
			PixelSpacing:      &[2]float64{0.5, 0.5},
			SliceThickness:    2.0,
			Position:          &dicom.Vec3{Z: float64(i) * 2.0},
			Pixels:            pixels,
		})
	}

	res, err := series.Sort(batch)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	return res
}

func TestBuildCTRescale(t *testing.T) {
	// Raw sample 1024 with slope 1 / intercept -1024 must produce 0 HU
	// (water) at every voxel.
	sorted := testSeries(t, dicom.ModalityCT, 3, func(int) float64 { return 1024 })
	for _, in := range sorted.Instances {
		in.RescaleSlope = dicom.Float(1)
		in.RescaleIntercept = dicom.Float(-1024)
	}

	vol, err := NewBuilder(nil).Build(context.Background(), sorted, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if vol.Format != FormatInt16 {
		t.Fatalf("format = %s, want int16", vol.Format)
	}
	if got := vol.Value(2, 2, 1); got != 0 {
		t.Errorf("rescaled voxel = %v, want 0 (water)", got)
	}
	if vol.DefaultPreset != "Soft Tissue" {
		t.Errorf("default preset = %q, want Soft Tissue", vol.DefaultPreset)
	}
	wl := vol.DefaultWindow()
	if wl.Window != 400 || wl.Level != 40 {
		t.Errorf("Soft Tissue preset = %+v, want 400/40", wl)
	}
}

func TestBuildGeometry(t *testing.T) {
	sorted := testSeries(t, dicom.ModalityCT, 5, func(int) float64 { return 0 })

	vol, err := NewBuilder(nil).Build(context.Background(), sorted, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	d := vol.Meta.Dimensions
	if d.X != 4 || d.Y != 4 || d.Z != 5 {
		t.Errorf("dimensions = %+v, want 4x4x5", d)
	}
	s := vol.Meta.Spacing
	if s.X != 0.5 || s.Y != 0.5 {
		t.Errorf("in-plane spacing = %v,%v, want 0.5,0.5", s.X, s.Y)
	}
	// Z spacing is the mean inter-slice distance, not the slice thickness.
	if math.Abs(s.Z-2.0) > 1e-9 {
		t.Errorf("z spacing = %v, want 2.0", s.Z)
	}
	if len(vol.Int16) != d.X*d.Y*d.Z {
		t.Errorf("buffer length = %d, want %d", len(vol.Int16), d.X*d.Y*d.Z)
	}
}

func TestBuildZSpacingFallsBackToThickness(t *testing.T) {
	sorted := testSeries(t, dicom.ModalityCT, 3, func(int) float64 { return 0 })
	for _, in := range sorted.Instances {
		in.Position = nil
		in.SliceLocation = nil
	}

	vol, err := NewBuilder(nil).Build(context.Background(), sorted, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if vol.Meta.Spacing.Z != 2.0 {
		t.Errorf("z spacing = %v, want slice thickness 2.0", vol.Meta.Spacing.Z)
	}
}

func TestBuildUnsupportedModality(t *testing.T) {
	sorted := testSeries(t, dicom.Modality("XA"), 2, func(int) float64 { return 0 })

	_, err := NewBuilder(nil).Build(context.Background(), sorted, Options{})
	if !errors.Is(err, ErrUnsupportedModality) {
		t.Fatalf("error = %v, want ErrUnsupportedModality", err)
	}
}

func TestBuildMRNormalization(t *testing.T) {
	// Slice intensities 0, 500, 1000: after series-wide normalization the
	// volume spans [0,1] and every voxel of a slice shares one value, so no
	// per-slice banding is possible.
	sorted := testSeries(t, dicom.ModalityMR, 3, func(slice int) float64 {
		return float64(slice) * 500
	})

	vol, err := NewBuilder(nil).Build(context.Background(), sorted, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if vol.Format != FormatFloat32 {
		t.Fatalf("format = %s, want float32", vol.Format)
	}

	if got := vol.Value(0, 0, 0); got != 0 {
		t.Errorf("lowest slice voxel = %v, want 0", got)
	}
	if got := vol.Value(0, 0, 2); got != 1 {
		t.Errorf("highest slice voxel = %v, want 1", got)
	}
	if got := vol.Value(0, 0, 1); math.Abs(got-0.5) > 1e-6 {
		t.Errorf("middle slice voxel = %v, want 0.5", got)
	}

	wl := vol.DefaultWindow()
	if math.Abs(wl.Window-1) > 1e-6 || math.Abs(wl.Level-0.5) > 1e-6 {
		t.Errorf("default window = %+v, want window 1 level 0.5", wl)
	}
}

func TestBuildUSLinear(t *testing.T) {
	sorted := testSeries(t, dicom.ModalityUS, 2, func(int) float64 { return 300 })
	for _, in := range sorted.Instances {
		in.USRegionFormat = dicom.RegionFormatLinear
	}

	vol, err := NewBuilder(nil).Build(context.Background(), sorted, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if vol.Format != FormatUint8 {
		t.Fatalf("format = %s, want uint8", vol.Format)
	}
	// Raw 300 clamps to the 8-bit ceiling.
	if got := vol.Value(1, 1, 0); got != 255 {
		t.Errorf("clamped voxel = %v, want 255", got)
	}
	wl := vol.DefaultWindow()
	if wl.Window != 255 || wl.Level != 128 {
		t.Errorf("default window = %+v, want 255/128", wl)
	}
}

func TestBuildGenericPassThrough(t *testing.T) {
	sorted := testSeries(t, dicom.ModalityPT, 2, func(slice int) float64 {
		return float64(slice+1) * 7
	})

	vol, err := NewBuilder(nil).Build(context.Background(), sorted, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if vol.Format != FormatFloat32 {
		t.Fatalf("format = %s, want float32", vol.Format)
	}
	if got := vol.Value(0, 0, 1); got != 14 {
		t.Errorf("pass-through voxel = %v, want 14", got)
	}
}

func TestBuildProgressMonotonic(t *testing.T) {
	sorted := testSeries(t, dicom.ModalityCT, 8, func(int) float64 { return 0 })

	var fractions []float64
	opts := Options{
		Workers: 4,
		Progress: func(frac float64) {
			fractions = append(fractions, frac)
		},
	}
	if _, err := NewBuilder(nil).Build(context.Background(), sorted, opts); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(fractions) != 8 {
		t.Fatalf("progress called %d times, want 8", len(fractions))
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Fatalf("progress decreased: %v", fractions)
		}
	}
	if fractions[len(fractions)-1] != 1.0 {
		t.Errorf("final fraction = %v, want 1.0", fractions[len(fractions)-1])
	}
}

func TestBuildCancelled(t *testing.T) {
	sorted := testSeries(t, dicom.ModalityCT, 4, func(int) float64 { return 0 })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(nil).Build(ctx, sorted, Options{Workers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestBuildCaching(t *testing.T) {
	cache := NewCache(4)
	builder := NewBuilder(cache)
	sorted := testSeries(t, dicom.ModalityCT, 3, func(slice int) float64 { return float64(slice) })

	first, err := builder.Build(context.Background(), sorted, Options{})
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	second, err := builder.Build(context.Background(), sorted, Options{})
	if err != nil {
		t.Fatalf("second Build failed: %v", err)
	}

	if first != second {
		t.Error("second Build did not return the cached volume")
	}
	stats := cache.Stats()
	if stats.Size != 1 {
		t.Errorf("cache size = %d, want 1", stats.Size)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("cache traffic = %d hits / %d misses, want 1/1", stats.Hits, stats.Misses)
	}

	// Different content-affecting options must produce a distinct volume.
	third, err := builder.Build(context.Background(), sorted, Options{QualityLevel: QualityHigh})
	if err != nil {
		t.Fatalf("third Build failed: %v", err)
	}
	if third == first {
		t.Error("options change returned the same cached volume")
	}
	if got := cache.Stats().Size; got != 2 {
		t.Errorf("cache size after options change = %d, want 2", got)
	}
}

func TestBuildPhantomSeries(t *testing.T) {
	batch := phantom.CTSeries(16, 32, 32, 2.0)
	sorted, err := series.Sort(batch)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if sorted.Confidence != 1.0 {
		t.Errorf("phantom confidence = %v, want 1.0", sorted.Confidence)
	}

	vol, err := NewBuilder(nil).Build(context.Background(), sorted, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Center of the phantom sphere is water (0 HU); the corner is air after
	// the -1024 intercept.
	if got := vol.Value(16, 16, 8); got != 0 {
		t.Errorf("sphere center = %v HU, want 0", got)
	}
	if got := vol.Value(0, 0, 0); got != -1024 {
		t.Errorf("corner = %v HU, want -1024", got)
	}
}
