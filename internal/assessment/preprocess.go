package assessment

import (
	"fmt"
	"math"
)

// FeatureCount is the fixed length of the standardized feature vector: 7
// demographic features followed by the 26 questionnaire answers in order.
const FeatureCount = demographicFeatures + PHQ9Items + GAD7Items + PSSItems

const demographicFeatures = 7

// Categorical encodings are a training-time contract. Unseen categories map to
// the zero "unknown" bucket rather than failing, since onboarding data can be
// partially filled.
var ageBuckets = map[string]float64{
	"18-20": 1,
	"21-23": 2,
	"24-26": 3,
	"27+":   4,
}

var academicYears = map[string]float64{
	"first":  1,
	"second": 2,
	"third":  3,
	"fourth": 4,
}

// Scaler holds the per-feature standardization parameters shipped alongside
// the classifier artifact.
type Scaler struct {
	SchemaVersion int       `json:"schema_version"`
	Mean          []float64 `json:"mean"`
	Std           []float64 `json:"std"`
}

func (s *Scaler) validate(expectedVersion int) error {
	if s.SchemaVersion != expectedVersion {
		return fmt.Errorf("%w: scaler schema version %d, expected %d",
			ErrSchemaMismatch, s.SchemaVersion, expectedVersion)
	}
	if len(s.Mean) != FeatureCount || len(s.Std) != FeatureCount {
		return fmt.Errorf("%w: scaler has %d/%d parameters, expected %d",
			ErrSchemaMismatch, len(s.Mean), len(s.Std), FeatureCount)
	}
	return nil
}

type Preprocessor struct {
	scaler *Scaler
}

func NewPreprocessor(scaler *Scaler) *Preprocessor {
	return &Preprocessor{scaler: scaler}
}

// Vector encodes demographics and answers into the standardized feature vector
// the classifier was trained on. It fails fast on missing answers: a
// zero-filled vector would produce a confidently wrong prediction.
func (p *Preprocessor) Vector(d Demographics, a Answers) ([]float64, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	raw := make([]float64, 0, FeatureCount)

	raw = append(raw, ageBuckets[d.Age])
	raw = append(raw, oneHot(d.Gender, "male"), oneHot(d.Gender, "female"), oneHot(d.Gender, "other"))
	raw = append(raw, academicYears[d.AcademicYear])

	if gpa, ok := d.GPA.Float(); ok {
		raw = append(raw, gpa)
	} else {
		// Unparseable GPA standardizes to the feature mean below.
		raw = append(raw, math.NaN())
	}

	if d.Scholarship {
		raw = append(raw, 1)
	} else {
		raw = append(raw, 0)
	}

	for _, v := range a.PHQ9 {
		raw = append(raw, float64(v))
	}
	for _, v := range a.GAD7 {
		raw = append(raw, float64(v))
	}
	for _, v := range a.PSS {
		raw = append(raw, float64(v))
	}

	return p.standardize(raw), nil
}

func (p *Preprocessor) standardize(raw []float64) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		if math.IsNaN(v) {
			out[i] = 0
			continue
		}
		std := p.scaler.Std[i]
		if std == 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - p.scaler.Mean[i]) / std
	}
	return out
}

func oneHot(value, category string) float64 {
	if value == category {
		return 1
	}
	return 0
}
