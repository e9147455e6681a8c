// Package ingest adapts DICOM files on disk into the Instance metadata
// records the engine consumes. Parsing is tolerant: files that fail to parse
// are skipped with a log line so one corrupt object cannot sink a batch.
package ingest

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	suyash "github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/dicomtag"
	"github.com/suyashkumar/dicom/element"

	"github.com/Jobeer1/Ubuntu-Patient-Care-sub019/pkg/dicom"
)

// ReadDir parses every DICOM file in dir into Instance records. Unparseable
// files are logged and skipped; an empty directory yields an empty batch.
func ReadDir(dir string) ([]*dicom.Instance, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var instances []*dicom.Instance
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ".dcm") && !strings.HasSuffix(name, ".dicom") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		in, err := ReadFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		instances = append(instances, in)
	}
	return instances, nil
}

// ReadFile parses one DICOM file into an Instance record, including its
// native pixel frames.
func ReadFile(path string) (*dicom.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p, err := suyash.NewParserFromBytes(data, nil)
	if err != nil {
		return nil, err
	}
	parsed, err := p.Parse(suyash.ParseOptions{DropPixelData: false})
	if parsed == nil || err != nil {
		return nil, fmt.Errorf("parsing dicom: %v", err)
	}

	in := &dicom.Instance{}
	for _, elem := range parsed.Elements {
		switch {
		case elem.Tag == dicomtag.SOPInstanceUID:
			in.SOPInstanceUID = elemString(elem)
		case elem.Tag == dicomtag.SeriesInstanceUID:
			in.SeriesInstanceUID = elemString(elem)
		case elem.Tag == dicomtag.StudyInstanceUID:
			in.StudyInstanceUID = elemString(elem)
		case elem.Tag == dicomtag.Modality:
			in.Modality = dicom.Modality(strings.ToUpper(elemString(elem)))
		case elem.Tag == dicomtag.Rows:
			in.Rows = elemInt(elem)
		case elem.Tag == dicomtag.Columns:
			in.Columns = elemInt(elem)
		case elem.Tag == dicomtag.BitsAllocated:
			in.BitsAllocated = elemInt(elem)
		case elem.Tag == dicomtag.PixelSpacing:
			if vals := elemFloats(elem); len(vals) >= 2 {
				in.PixelSpacing = &[2]float64{vals[0], vals[1]}
			}
		case elem.Tag == dicomtag.SliceThickness:
			if vals := elemFloats(elem); len(vals) == 1 {
				in.SliceThickness = vals[0]
			}
		case elem.Tag == dicomtag.ImagePositionPatient:
			if vals := elemFloats(elem); len(vals) >= 3 {
				in.Position = &dicom.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}
			}
		case elem.Tag == dicomtag.ImageOrientationPatient:
			if vals := elemFloats(elem); len(vals) >= 6 {
				in.Orientation = &dicom.Orientation{
					Row: dicom.Vec3{X: vals[0], Y: vals[1], Z: vals[2]},
					Col: dicom.Vec3{X: vals[3], Y: vals[4], Z: vals[5]},
				}
			}
		case elem.Tag == dicomtag.SliceLocation:
			if vals := elemFloats(elem); len(vals) == 1 {
				in.SliceLocation = dicom.Float(vals[0])
			}
		case elem.Tag == dicomtag.InstanceNumber:
			if n, ok := elemIntOK(elem); ok {
				in.InstanceNumber = dicom.Int(n)
			}
		case elem.Tag == dicomtag.AcquisitionTime:
			if t, ok := parseTime(elemString(elem)); ok {
				in.AcquisitionTime = dicom.Float(t)
			}
		case elem.Tag == dicomtag.ContentTime:
			if t, ok := parseTime(elemString(elem)); ok {
				in.ContentTime = dicom.Float(t)
			}
		case elem.Tag == dicomtag.RescaleSlope:
			if vals := elemFloats(elem); len(vals) == 1 {
				in.RescaleSlope = dicom.Float(vals[0])
			}
		case elem.Tag == dicomtag.RescaleIntercept:
			if vals := elemFloats(elem); len(vals) == 1 {
				in.RescaleIntercept = dicom.Float(vals[0])
			}
		case elem.Tag == dicomtag.SequenceName:
			in.SequenceName = elemString(elem)
		case elem.Tag == dicomtag.ProtocolName:
			in.ProtocolName = elemString(elem)
		case elem.Tag == dicomtag.SeriesDescription:
			in.SeriesDescription = elemString(elem)
		case elem.Tag == dicomtag.TemporalPositionIdentifier:
			if n, ok := elemIntOK(elem); ok {
				in.TemporalPosition = dicom.Int(n)
			}
		case elem.Tag == dicomtag.NumberOfTemporalPositions:
			in.NumberOfTemporalPositions = elemInt(elem)
		case elem.Tag == dicomtag.NumberOfPhaseEncodingSteps:
			in.PhaseEncodingSteps = elemInt(elem)
		case elem.Tag == dicomtag.EchoTrainLength:
			in.EchoTrainLength = elemInt(elem)
		case elem.Tag == dicomtag.SpiralPitchFactor:
			if vals := elemFloats(elem); len(vals) == 1 {
				in.PitchFactor = dicom.Float(vals[0])
			}
		case elem.Tag == dicomtag.PixelData:
			in.Pixels = extractPixels(elem)
		}
	}

	if in.Rows == 0 || in.Columns == 0 {
		return nil, fmt.Errorf("missing image dimensions")
	}
	return in, nil
}

// extractPixels flattens the native (unencapsulated) pixel frames of the
// element into stored sample values.
func extractPixels(elem *element.Element) []float64 {
	if len(elem.Value) == 0 {
		return nil
	}
	info, ok := elem.Value[0].(element.PixelDataInfo)
	if !ok {
		return nil
	}

	var pixels []float64
	for _, frame := range info.Frames {
		if frame.IsEncapsulated() {
			// Compressed transfer syntaxes are out of scope for ingestion.
			return nil
		}
		for _, sample := range frame.NativeData.Data {
			pixels = append(pixels, float64(sample[0]))
		}
	}
	return pixels
}

// elemString returns the first value of the element as a trimmed string.
func elemString(elem *element.Element) string {
	if len(elem.Value) == 0 {
		return ""
	}
	if s, ok := elem.Value[0].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// elemFloats parses every value of a decimal-string element.
func elemFloats(elem *element.Element) []float64 {
	var out []float64
	for _, v := range elem.Value {
		switch val := v.(type) {
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil {
				return nil
			}
			out = append(out, f)
		case float64:
			out = append(out, val)
		case uint16:
			out = append(out, float64(val))
		case int:
			out = append(out, float64(val))
		}
	}
	return out
}

func elemInt(elem *element.Element) int {
	n, _ := elemIntOK(elem)
	return n
}

func elemIntOK(elem *element.Element) (int, bool) {
	if len(elem.Value) == 0 {
		return 0, false
	}
	switch val := elem.Value[0].(type) {
	case uint16:
		return int(val), true
	case uint32:
		return int(val), true
	case int:
		return val, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// parseTime converts a DICOM TM value (HHMMSS.FRAC) to seconds since
// midnight.
func parseTime(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 6 {
		return 0, false
	}
	hours, err1 := strconv.Atoi(s[0:2])
	minutes, err2 := strconv.Atoi(s[2:4])
	seconds, err3 := strconv.ParseFloat(s[4:], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return float64(hours*3600+minutes*60) + seconds, true
}
