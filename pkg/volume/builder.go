package volume

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/series"
)

// ErrUnsupportedModality is returned by Build for modalities outside
// CT, MR, US, PT, and NM.
var ErrUnsupportedModality = errors.New("volume: unsupported modality")

// ProgressFunc receives the completed fraction in [0,1] after each processed
// slice. Invocations are serialized and the fraction never decreases.
type ProgressFunc func(fraction float64)

// Quality levels for processing.
const (
	QualityStandard = "standard"
	QualityHigh     = "high"
)

// Interpolation modes for ultrasound scan conversion.
const (
	InterpolationNearest  = "nearest"
	InterpolationBilinear = "bilinear"
)

// Options controls a build. Interpolation and QualityLevel affect the
// produced samples and participate in the cache key; Workers and Progress
// are execution knobs that never change buffer contents.
type Options struct {
	Interpolation string       `yaml:"interpolation"`
	QualityLevel  string       `yaml:"qualityLevel"`
	Workers       int          `yaml:"workers"`
	Progress      ProgressFunc `yaml:"-"`
}

func (o Options) withDefaults() Options {
	if o.Interpolation == "" {
		o.Interpolation = InterpolationBilinear
	}
	if o.QualityLevel == "" {
		o.QualityLevel = QualityStandard
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}

// Builder assembles volumes from sorted series. It owns the only long-lived
// shared resource of the engine, the volume cache; everything else is a pure
// function of its inputs plus the optional progress callback.
type Builder struct {
	cache *Cache
}

// NewBuilder returns a Builder backed by the given cache. A nil cache
// disables caching entirely.
func NewBuilder(cache *Cache) *Builder {
	return &Builder{cache: cache}
}

// Cache exposes the builder's cache for maintenance operations; nil when
// caching is disabled.
func (b *Builder) Cache() *Cache {
	return b.cache
}

// Build assembles the sorted instances into a typed sample volume. The
// context is observed between slices, so a very large build can be
// interrupted at slice granularity. Repeated calls with an identical series
// and content-affecting options return the cached Volume.
func (b *Builder) Build(ctx context.Context, sorted *series.Result, opts Options) (*Volume, error) {
	if sorted == nil || len(sorted.Instances) == 0 {
		return nil, series.ErrEmptySeries
	}
	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults()

	first := sorted.Instances[0]
	modality := first.Modality
	switch modality {
	case dicom.ModalityCT, dicom.ModalityMR, dicom.ModalityUS, dicom.ModalityPT, dicom.ModalityNM:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModality, modality)
	}

	key := cacheKey(first.SeriesInstanceUID, opts)
	if b.cache != nil {
		if v, ok := b.cache.Get(key); ok {
			return v, nil
		}
	}

	meta := deriveMetadata(sorted.Instances)
	meta.Modality = modality

	var (
		vol *Volume
		err error
	)
	switch modality {
	case dicom.ModalityCT:
		vol, err = buildCT(ctx, sorted.Instances, meta, opts)
	case dicom.ModalityMR:
		vol, err = buildMR(ctx, sorted.Instances, meta, opts)
	case dicom.ModalityUS:
		vol, err = buildUS(ctx, sorted.Instances, meta, opts)
	default:
		vol, err = buildGeneric(ctx, sorted.Instances, meta, opts)
	}
	if err != nil {
		return nil, err
	}

	if b.cache != nil {
		b.cache.Add(key, vol)
	}
	return vol, nil
}

// cacheKey is a deterministic function of the series and the
// content-affecting options.
func cacheKey(seriesUID string, opts Options) string {
	return fmt.Sprintf("%s|interp=%s|quality=%s", seriesUID, opts.Interpolation, opts.QualityLevel)
}

// deriveMetadata computes the volume geometry from the sorted sequence.
func deriveMetadata(insts []*dicom.Instance) Metadata {
	first := insts[0]
	sx, sy := first.SpacingXY()

	meta := Metadata{
		Dimensions: Dimensions{
			X: first.Columns,
			Y: first.Rows,
			Z: len(insts),
		},
		Spacing: Spacing{
			X: sx,
			Y: sy,
			Z: deriveZSpacing(insts),
		},
		Origin:      first.PositionOrZero(),
		Orientation: first.OrientationOrDefault(),
		SeriesUID:   first.SeriesInstanceUID,
		StudyUID:    first.StudyInstanceUID,
	}
	return meta
}

// deriveZSpacing is the mean absolute inter-slice distance over consecutive
// pairs, taken from projected positions or slice locations, whichever a pair
// has. Only when no pairwise position data exists at all does it fall back to
// the first instance's slice thickness (default 1.0).
func deriveZSpacing(insts []*dicom.Instance) float64 {
	axis := insts[0].OrientationOrDefault().PrimaryAxis()

	locate := func(in *dicom.Instance) (float64, bool) {
		if in.Position != nil {
			return in.Position.Component(axis), true
		}
		if in.SliceLocation != nil {
			return *in.SliceLocation, true
		}
		return 0, false
	}

	var gaps []float64
	for i := 1; i < len(insts); i++ {
		prev, pok := locate(insts[i-1])
		cur, cok := locate(insts[i])
		if pok && cok {
			if gap := math.Abs(cur - prev); gap > 0 {
				gaps = append(gaps, gap)
			}
		}
	}
	if len(gaps) > 0 {
		return stat.Mean(gaps, nil)
	}
	if insts[0].SliceThickness > 0 {
		return insts[0].SliceThickness
	}
	return 1.0
}

// progressTracker serializes progress callback invocations so reported
// fractions are monotonically non-decreasing even with parallel slice fill.
type progressTracker struct {
	mu        sync.Mutex
	completed int
	total     int
	fn        ProgressFunc
}

func (p *progressTracker) sliceDone() {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	p.completed++
	frac := float64(p.completed) / float64(p.total)
	p.fn(frac)
	p.mu.Unlock()
}

// fillSlices runs fill(z) for every slice index on a bounded worker group,
// each worker writing only its slice's disjoint region of the pre-allocated
// buffer. Cancellation is observed before each slice.
func fillSlices(ctx context.Context, numSlices int, opts Options, fill func(z int)) error {
	tracker := &progressTracker{total: numSlices, fn: opts.Progress}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for z := 0; z < numSlices; z++ {
		z := z
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fill(z)
			tracker.sliceDone()
			return nil
		})
	}
	return g.Wait()
}

// sliceSamples returns the instance's raw samples padded or truncated to the
// volume's slice length; instances without pixel data yield zeros.
func sliceSamples(in *dicom.Instance, n int) []float64 {
	if len(in.Pixels) == n {
		return in.Pixels
	}
	out := make([]float64, n)
	copy(out, in.Pixels)
	return out
}

// buildCT fills a 16-bit signed buffer with calibrated Hounsfield values:
// output = round(raw*slope + intercept), slope defaulting to 1 and intercept
// to 0.
func buildCT(ctx context.Context, insts []*dicom.Instance, meta Metadata, opts Options) (*Volume, error) {
	d := meta.Dimensions
	sliceLen := d.X * d.Y
	buf := make([]int16, sliceLen*d.Z)

	err := fillSlices(ctx, d.Z, opts, func(z int) {
		in := insts[z]
		slope, intercept := in.Slope(), in.Intercept()
		raw := sliceSamples(in, sliceLen)
		base := z * sliceLen
		for i, s := range raw {
			hu := math.Round(s*slope + intercept)
			if hu < math.MinInt16 {
				hu = math.MinInt16
			} else if hu > math.MaxInt16 {
				hu = math.MaxInt16
			}
			buf[base+i] = int16(hu)
		}
	})
	if err != nil {
		return nil, err
	}

	presets, def := ctPresets()
	return &Volume{
		Meta:          meta,
		Format:        FormatInt16,
		Int16:         buf,
		Presets:       presets,
		DefaultPreset: def,
		Transfer:      ctTransferFunction(),
	}, nil
}

// buildMR fills a 32-bit float buffer with intensities normalized once over
// the whole series, never per slice, so adjacent slices cannot show banding.
// Standard quality normalizes by the series min/max; high quality by the
// 1st/99th percentiles, which resists hot-pixel outliers.
func buildMR(ctx context.Context, insts []*dicom.Instance, meta Metadata, opts Options) (*Volume, error) {
	d := meta.Dimensions
	sliceLen := d.X * d.Y

	lo, hi := seriesIntensityRange(insts, opts.QualityLevel)
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	buf := make([]float32, sliceLen*d.Z)
	err := fillSlices(ctx, d.Z, opts, func(z int) {
		raw := sliceSamples(insts[z], sliceLen)
		base := z * sliceLen
		for i, s := range raw {
			norm := (s - lo) / span
			if norm < 0 {
				norm = 0
			} else if norm > 1 {
				norm = 1
			}
			buf[base+i] = float32(norm)
		}
	})
	if err != nil {
		return nil, err
	}

	vol := &Volume{
		Meta:    meta,
		Format:  FormatFloat32,
		Float32: buf,
	}
	vmin, vmax := vol.MinMax()
	vol.Presets = map[string]WindowLevel{
		"Default": {Window: vmax - vmin, Level: (vmax + vmin) / 2},
	}
	vol.DefaultPreset = "Default"
	vol.Transfer = mrTransferFunction(DetectMRSequence(insts[0]), vmin, vmax)
	return vol, nil
}

// seriesIntensityRange computes the normalization bounds over every slice of
// the series in one pass.
func seriesIntensityRange(insts []*dicom.Instance, quality string) (lo, hi float64) {
	var all []float64
	for _, in := range insts {
		all = append(all, in.Pixels...)
	}
	if len(all) == 0 {
		return 0, 1
	}

	if quality == QualityHigh && len(all) > 2 {
		sorted := make([]float64, len(all))
		copy(sorted, all)
		sort.Float64s(sorted)
		lo = stat.Quantile(0.01, stat.Empirical, sorted, nil)
		hi = stat.Quantile(0.99, stat.Empirical, sorted, nil)
		if hi > lo {
			return lo, hi
		}
	}

	lo, hi = all[0], all[0]
	for _, s := range all {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return lo, hi
}

// buildUS fills an 8-bit unsigned buffer. Curved and phased-array
// acquisitions are resampled from fan geometry onto the rectilinear grid
// before stacking; linear probes pass through.
func buildUS(ctx context.Context, insts []*dicom.Instance, meta Metadata, opts Options) (*Volume, error) {
	d := meta.Dimensions
	sliceLen := d.X * d.Y
	geom := DetectProbeGeometry(insts[0])

	buf := make([]uint8, sliceLen*d.Z)
	err := fillSlices(ctx, d.Z, opts, func(z int) {
		raw := sliceSamples(insts[z], sliceLen)
		if geom != GeometryLinear {
			raw = scanConvert(raw, d.X, d.Y, geom, opts.Interpolation)
		}
		base := z * sliceLen
		for i, s := range raw {
			if s < 0 {
				s = 0
			} else if s > 255 {
				s = 255
			}
			buf[base+i] = uint8(s)
		}
	})
	if err != nil {
		return nil, err
	}

	return &Volume{
		Meta:   meta,
		Format: FormatUint8,
		Uint8:  buf,
		Presets: map[string]WindowLevel{
			"Default": {Window: 255, Level: 128},
		},
		DefaultPreset: "Default",
		Transfer:      usTransferFunction(),
	}, nil
}

// buildGeneric is the PT/NM fallback: an MR-like float buffer with samples
// passed through unchanged, a neutral min/max window, and a linear grayscale
// transfer function.
func buildGeneric(ctx context.Context, insts []*dicom.Instance, meta Metadata, opts Options) (*Volume, error) {
	d := meta.Dimensions
	sliceLen := d.X * d.Y

	buf := make([]float32, sliceLen*d.Z)
	err := fillSlices(ctx, d.Z, opts, func(z int) {
		raw := sliceSamples(insts[z], sliceLen)
		base := z * sliceLen
		for i, s := range raw {
			buf[base+i] = float32(s)
		}
	})
	if err != nil {
		return nil, err
	}

	vol := &Volume{
		Meta:    meta,
		Format:  FormatFloat32,
		Float32: buf,
	}
	vmin, vmax := vol.MinMax()
	vol.Presets = map[string]WindowLevel{
		"Default": {Window: vmax - vmin, Level: (vmax + vmin) / 2},
	}
	vol.DefaultPreset = "Default"
	vol.Transfer = grayTransferFunction(vmin, vmax)
	return vol, nil
}
