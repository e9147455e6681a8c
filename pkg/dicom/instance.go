// Package dicom defines the instance metadata model consumed by the series
// sorter and the volume builder. Tag extraction has already happened by the
// time an Instance exists; every optional field carries a documented default
// that is decided once at construction, not ad hoc at each read site.
package dicom

// Modality identifies the acquisition device type of a series.
type Modality string

// Modalities understood by the engine.
const (
	ModalityCT Modality = "CT"
	ModalityMR Modality = "MR"
	ModalityUS Modality = "US"
	ModalityPT Modality = "PT"
	ModalityNM Modality = "NM"
)

// Ultrasound region calibration format codes, from the region calibration
// metadata block when present.
const (
	RegionFormatLinear = 1
	RegionFormatCurved = 2
	RegionFormatPhased = 3
)

// Instance is one 2D image plane with its metadata. Instances are immutable
// once constructed; the engine only reorders references and never mutates
// metadata. Optional fields are pointers: nil means the tag was absent from
// the source object, and the accessor methods apply the documented default.
type Instance struct {
	SOPInstanceUID    string
	SeriesInstanceUID string
	StudyInstanceUID  string
	Modality          Modality

	// Rows and Columns are the in-plane pixel dimensions.
	Rows    int
	Columns int

	// BitsAllocated is the stored sample width of the source object.
	BitsAllocated int

	// PixelSpacing is the physical row/column spacing in mm. Default 1.0/1.0.
	PixelSpacing *[2]float64

	// SliceThickness is the nominal slice thickness in mm. Zero means absent;
	// geometry derivation falls back to 1.0 only when no pairwise position
	// data exists anywhere in the series.
	SliceThickness float64

	// Position is ImagePositionPatient, the physical location of the first
	// voxel of this plane. Default is the zero vector.
	Position *Vec3

	// Orientation is ImageOrientationPatient (row and column direction
	// cosines). Default is the identity row/column pair.
	Orientation *Orientation

	// SliceLocation is the scalar slice position along the acquisition axis.
	SliceLocation *float64

	// InstanceNumber is the scanner-assigned ordinal within the series.
	InstanceNumber *int

	// AcquisitionTime and ContentTime are seconds since midnight. Absent
	// timestamps default to zero and never count as time regressions.
	AcquisitionTime *float64
	ContentTime     *float64

	// RescaleSlope and RescaleIntercept calibrate stored CT values into
	// Hounsfield units. Defaults 1.0 and 0.0.
	RescaleSlope     *float64
	RescaleIntercept *float64

	// Free-text fields used by heuristic classification.
	SequenceName      string
	ProtocolName      string
	SeriesDescription string

	// TemporalPosition identifies the phase of a dynamic/4D acquisition.
	TemporalPosition *int

	// NumberOfTemporalPositions is the declared phase count. Zero means absent.
	NumberOfTemporalPositions int

	// PitchFactor is the helical pitch of a spiral CT acquisition.
	PitchFactor *float64

	// PhaseEncodingSteps and EchoTrainLength describe an MR acquisition;
	// both present marks a multiphase sequence. Zero means absent.
	PhaseEncodingSteps int
	EchoTrainLength    int

	// USRegionFormat is the region calibration format code (1=linear,
	// 2=curved, 3=phased). Zero means no calibration block was present.
	USRegionFormat int

	// Pixels holds the raw stored sample values in row-major order. The
	// slice is owned by the ingestion layer; the engine only reads it.
	Pixels []float64
}

// Float returns a pointer to v, for optional Instance fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to n, for optional Instance fields.
func Int(n int) *int { return &n }

// Slope returns the rescale slope, defaulting to 1.0.
func (in *Instance) Slope() float64 {
	if in.RescaleSlope == nil {
		return 1.0
	}
	return *in.RescaleSlope
}

// Intercept returns the rescale intercept, defaulting to 0.0.
func (in *Instance) Intercept() float64 {
	if in.RescaleIntercept == nil {
		return 0.0
	}
	return *in.RescaleIntercept
}

// SpacingXY returns the column and row pixel spacing in mm, defaulting to 1.0.
func (in *Instance) SpacingXY() (sx, sy float64) {
	if in.PixelSpacing == nil {
		return 1.0, 1.0
	}
	// PixelSpacing is (row spacing, column spacing) in the source object.
	return in.PixelSpacing[1], in.PixelSpacing[0]
}

// OrientationOrDefault returns the plane orientation, or the identity
// row/column pair when the tag was absent.
func (in *Instance) OrientationOrDefault() Orientation {
	if in.Orientation == nil {
		return IdentityOrientation()
	}
	return *in.Orientation
}

// PositionOrZero returns ImagePositionPatient or the zero vector.
func (in *Instance) PositionOrZero() Vec3 {
	if in.Position == nil {
		return Vec3{}
	}
	return *in.Position
}

// TimeValue returns the best available timestamp for ordering: acquisition
// time when present, content time otherwise. The boolean reports whether any
// timestamp existed.
func (in *Instance) TimeValue() (float64, bool) {
	if in.AcquisitionTime != nil {
		return *in.AcquisitionTime, true
	}
	if in.ContentTime != nil {
		return *in.ContentTime, true
	}
	return 0, false
}
