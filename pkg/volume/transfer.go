package volume

import (
	"strings"

	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
)

// MRSequence is the detected MR pulse-sequence family, used to pick a
// sequence-appropriate color ramp.
type MRSequence string

// Known MR sequence families, in fixed detection priority order. The order is
// a clinical default carried over from the original viewer; reordering it
// changes which ramp ambiguous descriptions get.
const (
	SequenceT1      MRSequence = "T1"
	SequenceT2      MRSequence = "T2"
	SequenceFLAIR   MRSequence = "FLAIR"
	SequenceDWI     MRSequence = "DWI"
	SequenceADC     MRSequence = "ADC"
	SequenceSWI     MRSequence = "SWI"
	SequenceTOF     MRSequence = "TOF"
	SequenceUnknown MRSequence = "UNKNOWN"
)

var mrSequencePriority = []MRSequence{
	SequenceT1, SequenceT2, SequenceFLAIR, SequenceDWI,
	SequenceADC, SequenceSWI, SequenceTOF,
}

// DetectMRSequence matches the combined sequence/protocol/series description
// text against the fixed priority list. Detected once per volume from the
// first instance.
func DetectMRSequence(in *dicom.Instance) MRSequence {
	desc := in.DescriptionText()
	for _, seq := range mrSequencePriority {
		if strings.Contains(desc, strings.ToLower(string(seq))) {
			return seq
		}
	}
	return SequenceUnknown
}

// ctPresets are the fixed clinical window/level constants for CT display.
func ctPresets() (map[string]WindowLevel, string) {
	presets := map[string]WindowLevel{
		"Soft Tissue": {Window: 400, Level: 40},
		"Lung":        {Window: 1500, Level: -600},
		"Bone":        {Window: 1800, Level: 400},
		"Brain":       {Window: 80, Level: 40},
	}
	return presets, "Soft Tissue"
}

// ctTransferFunction is the fixed 6-point piecewise table spanning -1000 HU
// (air, fully transparent and black) to +3000 HU (dense bone, fully opaque
// and white), with intermediate control points for lung, water, soft tissue,
// and bone.
func ctTransferFunction() TransferFunction {
	return TransferFunction{
		Opacity: []OpacityPoint{
			{Value: -1000, Opacity: 0.00},
			{Value: -500, Opacity: 0.02},
			{Value: 0, Opacity: 0.05},
			{Value: 200, Opacity: 0.30},
			{Value: 1000, Opacity: 0.85},
			{Value: 3000, Opacity: 1.00},
		},
		Color: []ColorPoint{
			{Value: -1000, R: 0.00, G: 0.00, B: 0.00},
			{Value: -500, R: 0.30, G: 0.15, B: 0.15},
			{Value: 0, R: 0.45, G: 0.30, B: 0.25},
			{Value: 200, R: 0.85, G: 0.65, B: 0.55},
			{Value: 1000, R: 0.95, G: 0.95, B: 0.90},
			{Value: 3000, R: 1.00, G: 1.00, B: 1.00},
		},
	}
}

// mrTransferFunction returns a 4-point ramp over [lo, hi] tinted per the
// detected sequence family: neutral gray for T1, blue-tinted for T2,
// red-tinted for FLAIR, generic gray otherwise. Opacity is a linear ramp from
// fully transparent at lo to fully opaque at hi.
func mrTransferFunction(seq MRSequence, lo, hi float64) TransferFunction {
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	at := func(frac float64) float64 { return lo + frac*span }

	var tint ColorPoint
	switch seq {
	case SequenceT1:
		tint = ColorPoint{R: 1.00, G: 1.00, B: 1.00}
	case SequenceT2:
		tint = ColorPoint{R: 0.85, G: 0.90, B: 1.00}
	case SequenceFLAIR:
		tint = ColorPoint{R: 1.00, G: 0.88, B: 0.85}
	default:
		tint = ColorPoint{R: 1.00, G: 1.00, B: 1.00}
	}

	color := make([]ColorPoint, 4)
	for i, frac := range []float64{0, 1.0 / 3.0, 2.0 / 3.0, 1} {
		color[i] = ColorPoint{
			Value: at(frac),
			R:     tint.R * frac,
			G:     tint.G * frac,
			B:     tint.B * frac,
		}
	}

	return TransferFunction{
		Opacity: []OpacityPoint{
			{Value: at(0), Opacity: 0.00},
			{Value: at(1.0 / 3.0), Opacity: 1.0 / 3.0},
			{Value: at(2.0 / 3.0), Opacity: 2.0 / 3.0},
			{Value: at(1), Opacity: 1.00},
		},
		Color: color,
	}
}

// usTransferFunction is the fixed 5-point brown/tan-toned ramp typical of
// B-mode ultrasound, spanning the 8-bit sample range.
func usTransferFunction() TransferFunction {
	return TransferFunction{
		Opacity: []OpacityPoint{
			{Value: 0, Opacity: 0.00},
			{Value: 64, Opacity: 0.15},
			{Value: 128, Opacity: 0.45},
			{Value: 192, Opacity: 0.80},
			{Value: 255, Opacity: 1.00},
		},
		Color: []ColorPoint{
			{Value: 0, R: 0.00, G: 0.00, B: 0.00},
			{Value: 64, R: 0.35, G: 0.25, B: 0.15},
			{Value: 128, R: 0.62, G: 0.48, B: 0.32},
			{Value: 192, R: 0.85, G: 0.72, B: 0.55},
			{Value: 255, R: 1.00, G: 0.92, B: 0.78},
		},
	}
}

// grayTransferFunction is the linear grayscale ramp used by the generic
// modality path.
func grayTransferFunction(lo, hi float64) TransferFunction {
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	return TransferFunction{
		Opacity: []OpacityPoint{
			{Value: lo, Opacity: 0},
			{Value: lo + span, Opacity: 1},
		},
		Color: []ColorPoint{
			{Value: lo, R: 0, G: 0, B: 0},
			{Value: lo + span, R: 1, G: 1, B: 1},
		},
	}
}

// ApplyWindow maps samples through a window/level to 8-bit display values:
// values at or below the window floor become 0, values at or above the
// ceiling become 255, with linear contrast between.
func ApplyWindow(samples []float64, wl WindowLevel) []uint8 {
	out := make([]uint8, len(samples))
	width := wl.Window
	if width <= 0 {
		width = 1
	}
	lo := wl.Level - width/2
	for i, s := range samples {
		frac := (s - lo) / width
		switch {
		case frac <= 0:
			out[i] = 0
		case frac >= 1:
			out[i] = 255
		default:
			out[i] = uint8(frac * 255)
		}
	}
	return out
}
