// Package series classifies an acquisition from instance metadata and
// recovers the correct anatomical/temporal order of its instances despite
// inconsistent, missing, or conflicting position metadata. Classification and
// ordering are separate pure functions; neither mutates its input.
package series

import (
	"strings"

	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
)

// Classification is the acquisition type of a series, derived once per batch
// from the first instance. A series never changes classification mid-sort.
type Classification int

const (
	ClassStandard Classification = iota
	ClassCTAxial
	ClassCTHelical
	ClassMRAxial
	ClassMRMultiphase
	ClassLocalizer
	ClassDynamic
)

// String returns the display name of the classification.
func (c Classification) String() string {
	switch c {
	case ClassCTAxial:
		return "CT_AXIAL"
	case ClassCTHelical:
		return "CT_HELICAL"
	case ClassMRAxial:
		return "MR_AXIAL"
	case ClassMRMultiphase:
		return "MR_MULTIPHASE"
	case ClassLocalizer:
		return "LOCALIZER"
	case ClassDynamic:
		return "DYNAMIC"
	default:
		return "STANDARD"
	}
}

// Description keywords are fixed heuristics carried over from clinical usage;
// changing the match order changes clinical defaults.
var (
	localizerKeywords = []string{"scout", "localizer", "topogram"}
	dynamicKeywords   = []string{"dynamic", "perfusion"}
)

// Classify derives the acquisition type from a single instance's metadata
// using case-insensitive substring matches on the combined description fields.
func Classify(in *dicom.Instance) Classification {
	desc := in.DescriptionText()

	for _, kw := range localizerKeywords {
		if strings.Contains(desc, kw) {
			return ClassLocalizer
		}
	}

	// Only the declared phase count marks a dynamic acquisition. A
	// per-instance temporal identifier alone does not: multiphase MR carries
	// those too, and it must keep its phase-grouped ordering.
	if in.NumberOfTemporalPositions > 1 {
		return ClassDynamic
	}
	for _, kw := range dynamicKeywords {
		if strings.Contains(desc, kw) {
			return ClassDynamic
		}
	}

	switch in.Modality {
	case dicom.ModalityCT:
		if in.PitchFactor != nil || strings.Contains(desc, "helical") {
			return ClassCTHelical
		}
		return ClassCTAxial
	case dicom.ModalityMR:
		if in.PhaseEncodingSteps > 0 && in.EchoTrainLength > 0 {
			return ClassMRMultiphase
		}
		return ClassMRAxial
	}

	return ClassStandard
}
