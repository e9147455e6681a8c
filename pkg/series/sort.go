package series

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
)

// Sorting errors. Only structurally invalid input is a hard failure; missing
// geometry is recovered locally and surfaced through the confidence score.
var (
	// ErrEmptySeries is returned when Sort is called with zero instances.
	ErrEmptySeries = errors.New("series: empty instance batch")

	// ErrNoValidInstances is returned when consistency filtering removes
	// every instance from the batch.
	ErrNoValidInstances = errors.New("series: no instances consistent with the series")
)

// WellSortedConfidence is the threshold above which a sort is considered
// reliable; callers may treat lower values as a "possible resort needed"
// signal. The engine itself never retries.
const WellSortedConfidence = 0.8

// Result is an ordered sequence of instance references plus the quality of
// the sort. Confidence is a property of the sort, not of any one instance.
type Result struct {
	Instances      []*dicom.Instance
	Classification Classification

	// Confidence is in [0,1]; 1.0 means uniform spacing and monotonic time.
	Confidence float64

	// ReversedCorrected reports that the sorted sequence was inverted after
	// reversed-order detection.
	ReversedCorrected bool

	// MissingGeometry reports that no positional signal existed anywhere in
	// the series, so spacing validation was skipped.
	MissingGeometry bool

	// PositionGaps and TimeGaps are the anomaly counts behind Confidence.
	PositionGaps int
	TimeGaps     int
}

// Sort classifies the batch from its first instance and returns the
// instances in correct anatomical/temporal order. Instances whose series,
// study, or modality disagree with the first instance are filtered out first.
func Sort(instances []*dicom.Instance) (*Result, error) {
	if len(instances) == 0 {
		return nil, ErrEmptySeries
	}

	insts := filterConsistent(instances)
	if len(insts) == 0 {
		return nil, ErrNoValidInstances
	}

	class := Classify(insts[0])
	ordered := orderFor(class, insts)

	res := &Result{
		Instances:      ordered,
		Classification: class,
	}

	if isReversed(ordered) {
		reverse(ordered)
		res.ReversedCorrected = true
	}

	res.Confidence, res.PositionGaps, res.TimeGaps, res.MissingGeometry = validate(ordered)
	return res, nil
}

// filterConsistent keeps instances that agree with the first instance's
// series, study, and modality. An instance never changes series mid-sort.
func filterConsistent(instances []*dicom.Instance) []*dicom.Instance {
	var ref *dicom.Instance
	for _, in := range instances {
		if in != nil {
			ref = in
			break
		}
	}
	if ref == nil {
		return nil
	}

	out := make([]*dicom.Instance, 0, len(instances))
	for _, in := range instances {
		if in == nil {
			continue
		}
		if in.SeriesInstanceUID != ref.SeriesInstanceUID ||
			in.StudyInstanceUID != ref.StudyInstanceUID ||
			in.Modality != ref.Modality {
			continue
		}
		out = append(out, in)
	}
	return out
}

// orderFor applies the classification-specific ordering strategy. All sorts
// are stable, so ties preserve original batch order.
func orderFor(class Classification, insts []*dicom.Instance) []*dicom.Instance {
	out := make([]*dicom.Instance, len(insts))
	copy(out, insts)

	switch class {
	case ClassCTAxial, ClassMRAxial:
		sortByPosition(out)
	case ClassCTHelical:
		// Helical acquisitions can have overlapping, time-ordered but
		// position-unordered slices. Time groups them; position is the
		// ground truth once grouped.
		sortByTime(out)
		sortByLocation(out)
	case ClassMRMultiphase:
		out = sortMultiphase(out)
	case ClassDynamic:
		sortDynamic(out)
	case ClassLocalizer:
		sortByInstanceNumber(out)
	default:
		sortFallback(out)
	}
	return out
}

// scanAxis returns the primary axis index and the travel direction sign for
// the series, taken from the first instance's orientation. With orientation
// absent this is axis 2 (z) in the positive direction.
func scanAxis(insts []*dicom.Instance) (axis int, sign float64) {
	o := insts[0].OrientationOrDefault()
	axis = o.PrimaryAxis()
	sign = 1.0
	if o.Normal().Component(axis) < 0 {
		sign = -1.0
	}
	return axis, sign
}

// sortByPosition orders by the position coordinate along the series' primary
// axis, following the slice normal's direction of travel. Instances missing
// position fall through the tie-break chain.
func sortByPosition(insts []*dicom.Instance) {
	axis, sign := scanAxis(insts)
	sort.SliceStable(insts, func(i, j int) bool {
		a, b := insts[i], insts[j]
		if a.Position != nil && b.Position != nil {
			pa := a.Position.Component(axis) * sign
			pb := b.Position.Component(axis) * sign
			if pa != pb {
				return pa < pb
			}
		}
		return tieBreakLess(a, b)
	})
}

// sortByLocation orders by SliceLocation, falling back to the chain when
// either side lacks one.
func sortByLocation(insts []*dicom.Instance) {
	sort.SliceStable(insts, func(i, j int) bool {
		a, b := insts[i], insts[j]
		if a.SliceLocation != nil && b.SliceLocation != nil {
			if *a.SliceLocation != *b.SliceLocation {
				return *a.SliceLocation < *b.SliceLocation
			}
			return false
		}
		return tieBreakLess(a, b)
	})
}

// sortByTime orders by acquisition/content time; instances without any
// timestamp keep their relative order.
func sortByTime(insts []*dicom.Instance) {
	sort.SliceStable(insts, func(i, j int) bool {
		ta, aok := insts[i].TimeValue()
		tb, bok := insts[j].TimeValue()
		if aok && bok {
			return ta < tb
		}
		return false
	})
}

// sortByInstanceNumber orders by InstanceNumber ascending; ties and missing
// numbers keep original batch order.
func sortByInstanceNumber(insts []*dicom.Instance) {
	sort.SliceStable(insts, func(i, j int) bool {
		a, b := insts[i].InstanceNumber, insts[j].InstanceNumber
		if a != nil && b != nil {
			return *a < *b
		}
		return false
	})
}

// sortFallback applies the full fallback chain as the primary strategy:
// position projection, then slice location, then instance number, then
// acquisition time, then stable original order.
func sortFallback(insts []*dicom.Instance) {
	axis, sign := scanAxis(insts)
	sort.SliceStable(insts, func(i, j int) bool {
		a, b := insts[i], insts[j]
		if a.Position != nil && b.Position != nil {
			pa := a.Position.Component(axis) * sign
			pb := b.Position.Component(axis) * sign
			if pa != pb {
				return pa < pb
			}
		}
		return tieBreakLess(a, b)
	})
}

// tieBreakLess is the shared fallback chain below position: slice location,
// instance number, then time. Returning false leaves the stable sort to keep
// original batch order.
func tieBreakLess(a, b *dicom.Instance) bool {
	if a.SliceLocation != nil && b.SliceLocation != nil && *a.SliceLocation != *b.SliceLocation {
		return *a.SliceLocation < *b.SliceLocation
	}
	if a.InstanceNumber != nil && b.InstanceNumber != nil && *a.InstanceNumber != *b.InstanceNumber {
		return *a.InstanceNumber < *b.InstanceNumber
	}
	ta, aok := a.TimeValue()
	tb, bok := b.TimeValue()
	if aok && bok && ta != tb {
		return ta < tb
	}
	return false
}

// sortMultiphase groups by temporal position (instance number when absent),
// sorts groups by phase index ascending, applies the positional sort within
// each group, and concatenates the groups in phase order.
func sortMultiphase(insts []*dicom.Instance) []*dicom.Instance {
	groups := make(map[int][]*dicom.Instance)
	var phases []int
	for _, in := range insts {
		phase := 0
		if in.TemporalPosition != nil {
			phase = *in.TemporalPosition
		} else if in.InstanceNumber != nil {
			phase = *in.InstanceNumber
		}
		if _, seen := groups[phase]; !seen {
			phases = append(phases, phase)
		}
		groups[phase] = append(groups[phase], in)
	}
	sort.Ints(phases)

	out := make([]*dicom.Instance, 0, len(insts))
	for _, phase := range phases {
		group := groups[phase]
		sortByPosition(group)
		out = append(out, group...)
	}
	return out
}

// sortDynamic produces a time-major, space-minor ordering suited to 4D
// playback: temporal indicator first, slice location within equal time points.
func sortDynamic(insts []*dicom.Instance) {
	temporal := func(in *dicom.Instance) (float64, bool) {
		if t, ok := in.TimeValue(); ok {
			return t, true
		}
		if in.TemporalPosition != nil {
			return float64(*in.TemporalPosition), true
		}
		return 0, false
	}
	sort.SliceStable(insts, func(i, j int) bool {
		a, b := insts[i], insts[j]
		ta, aok := temporal(a)
		tb, bok := temporal(b)
		if aok && bok && ta != tb {
			return ta < tb
		}
		if a.SliceLocation != nil && b.SliceLocation != nil {
			return *a.SliceLocation < *b.SliceLocation
		}
		return tieBreakLess(a, b)
	})
}

// locationOf returns the best positional signal for validation: the raw
// position coordinate along the series' primary axis, or SliceLocation.
// The raw coordinate is deliberately unsigned by travel direction so that a
// flipped normal (head-to-feet vs feet-to-head) shows up as a descending
// sequence.
func locationOf(in *dicom.Instance, axis int) (float64, bool) {
	if in.Position != nil {
		return in.Position.Component(axis), true
	}
	if in.SliceLocation != nil {
		return *in.SliceLocation, true
	}
	return 0, false
}

// isReversed samples the position/location sequence of the sorted result and
// reports whether monotonic-decreasing adjacent pairs strictly outnumber
// increasing ones. This guards against orientation vectors that are
// anatomically valid but invert the direction of travel.
func isReversed(ordered []*dicom.Instance) bool {
	axis, _ := scanAxis(ordered)

	var seq []float64
	for _, in := range ordered {
		if v, ok := locationOf(in, axis); ok {
			seq = append(seq, v)
		}
	}
	if len(seq) < 3 {
		return false
	}

	increasing, decreasing := 0, 0
	for i := 1; i < len(seq); i++ {
		switch {
		case seq[i] > seq[i-1]:
			increasing++
		case seq[i] < seq[i-1]:
			decreasing++
		}
	}
	return decreasing > increasing
}

func reverse(insts []*dicom.Instance) {
	for i, j := 0, len(insts)-1; i < j; i, j = i+1, j-1 {
		insts[i], insts[j] = insts[j], insts[i]
	}
}

// validate scores the sorted sequence. A position gap is an adjacent pair
// whose observed spacing deviates from the expected spacing by more than 50%;
// a time gap is an acquisition timestamp that decreases between adjacent
// sorted instances. The score is 1 - (positionGaps+timeGaps)/(2*(n-1)),
// clamped to [0,1].
func validate(ordered []*dicom.Instance) (confidence float64, positionGaps, timeGaps int, missingGeometry bool) {
	n := len(ordered)
	if n < 2 {
		return 1.0, 0, 0, false
	}

	axis, _ := scanAxis(ordered)

	var gaps []float64
	for i := 1; i < n; i++ {
		prev, pok := locationOf(ordered[i-1], axis)
		cur, cok := locationOf(ordered[i], axis)
		if pok && cok {
			gaps = append(gaps, math.Abs(cur-prev))
		}
	}

	for i := 1; i < n; i++ {
		tp, pok := ordered[i-1].TimeValue()
		tc, cok := ordered[i].TimeValue()
		if pok && cok && tc < tp {
			timeGaps++
		}
	}

	if len(gaps) == 0 {
		// No positional signal anywhere in the series: spacing cannot be
		// validated, so report a fixed mid confidence instead.
		return 0.5, 0, timeGaps, true
	}

	expected := ordered[0].SliceThickness
	if expected <= 0 {
		expected = stat.Mean(gaps, nil)
	}
	if expected > 0 {
		for _, g := range gaps {
			if math.Abs(g-expected) > 0.5*expected {
				positionGaps++
			}
		}
	}

	confidence = 1.0 - float64(positionGaps+timeGaps)/float64(2*(n-1))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence, positionGaps, timeGaps, false
}
