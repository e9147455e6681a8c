package series

import (
	"testing"

	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   *dicom.Instance
		want Classification
	}{
		{
			name: "LocalizerByDescription",
			in:   &dicom.Instance{Modality: dicom.ModalityCT, SeriesDescription: "Head SCOUT"},
			want: ClassLocalizer,
		},
		{
			name: "LocalizerBeatsHelical",
			in:   &dicom.Instance{Modality: dicom.ModalityCT, SeriesDescription: "helical topogram"},
			want: ClassLocalizer,
		},
		{
			name: "DynamicByTemporalPositions",
			in:   &dicom.Instance{Modality: dicom.ModalityMR, NumberOfTemporalPositions: 12},
			want: ClassDynamic,
		},
		{
			// A temporal identifier without a declared phase count stays in
			// the spatial class.
			name: "TemporalIdentifierAloneIsNotDynamic",
			in: &dicom.Instance{
				Modality:         dicom.ModalityMR,
				TemporalPosition: dicom.Int(2),
			},
			want: ClassMRAxial,
		},
		{
			name: "DynamicByDescription",
			in:   &dicom.Instance{Modality: dicom.ModalityCT, ProtocolName: "Liver Perfusion"},
			want: ClassDynamic,
		},
		{
			name: "CTHelicalByPitch",
			in:   &dicom.Instance{Modality: dicom.ModalityCT, PitchFactor: dicom.Float(1.375)},
			want: ClassCTHelical,
		},
		{
			name: "CTHelicalByDescription",
			in:   &dicom.Instance{Modality: dicom.ModalityCT, SeriesDescription: "Chest Helical 1.25mm"},
			want: ClassCTHelical,
		},
		{
			name: "CTAxialDefault",
			in:   &dicom.Instance{Modality: dicom.ModalityCT},
			want: ClassCTAxial,
		},
		{
			name: "MRMultiphase",
			in: &dicom.Instance{
				Modality:           dicom.ModalityMR,
				PhaseEncodingSteps: 256,
				EchoTrainLength:    8,
				TemporalPosition:   dicom.Int(1),
			},
			want: ClassMRMultiphase,
		},
		{
			name: "MRAxialWithoutEchoTrain",
			in:   &dicom.Instance{Modality: dicom.ModalityMR, PhaseEncodingSteps: 256},
			want: ClassMRAxial,
		},
		{
			name: "StandardForUltrasound",
			in:   &dicom.Instance{Modality: dicom.ModalityUS},
			want: ClassStandard,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.in); got != tc.want {
				t.Errorf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}
