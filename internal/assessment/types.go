package assessment

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type Condition string

const (
	ConditionDepression Condition = "depression"
	ConditionAnxiety    Condition = "anxiety"
	ConditionStress     Condition = "stress"
)

// Questionnaire dimensions. Item counts and per-item maximums are fixed by the
// instruments themselves (PHQ-9, GAD-7, PSS-10).
const (
	PHQ9Items = 9
	GAD7Items = 7
	PSSItems  = 10

	PHQ9ItemMax = 3
	GAD7ItemMax = 3
	PSSItemMax  = 4
)

// Severity label spaces, ordered by increasing severity. Class index order is a
// fixed contract with the trained classifier and must not be reordered.
var (
	DepressionLabels = []string{
		"Minimal Depression",
		"Mild Depression",
		"Moderate Depression",
		"Moderately Severe Depression",
		"Severe Depression",
	}
	AnxietyLabels = []string{
		"Minimal Anxiety",
		"Mild Anxiety",
		"Moderate Anxiety",
		"Severe Anxiety",
	}
	StressLabels = []string{
		"Low Stress",
		"Moderate Stress",
		"High Perceived Stress",
	}
)

// conditionOrder fixes the order distributions are produced in by both the
// classifier output layout and the postprocessor.
var conditionOrder = []Condition{ConditionDepression, ConditionAnxiety, ConditionStress}

func Labels(c Condition) []string {
	switch c {
	case ConditionDepression:
		return DepressionLabels
	case ConditionAnxiety:
		return AnxietyLabels
	case ConditionStress:
		return StressLabels
	default:
		return nil
	}
}

// FlexString accepts either a JSON string or a JSON number. Onboarding clients
// have historically sent GPA both ways.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("gpa must be a string or number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) Float() (float64, bool) {
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Demographics is the onboarding snapshot consumed read-only by the pipeline.
type Demographics struct {
	Age          string     `json:"age"`
	Gender       string     `json:"gender"`
	AcademicYear string     `json:"academicYear"`
	GPA          FlexString `json:"gpa"`
	Scholarship  bool       `json:"scholarship"`
}

// Answers holds the three ordered questionnaire answer arrays. Order is
// significant: it must match the trained feature ordering and the fallback
// scorer's reverse-scoring positions.
type Answers struct {
	PHQ9 []int `json:"phq9Answers"`
	GAD7 []int `json:"gad7Answers"`
	PSS  []int `json:"pssAnswers"`
}

func (a Answers) Validate() error {
	if len(a.PHQ9) == 0 || len(a.GAD7) == 0 || len(a.PSS) == 0 {
		return ErrMissingInput
	}
	if len(a.PHQ9) != PHQ9Items {
		return fmt.Errorf("%w: expected %d depression answers, got %d", ErrMissingInput, PHQ9Items, len(a.PHQ9))
	}
	if len(a.GAD7) != GAD7Items {
		return fmt.Errorf("%w: expected %d anxiety answers, got %d", ErrMissingInput, GAD7Items, len(a.GAD7))
	}
	if len(a.PSS) != PSSItems {
		return fmt.Errorf("%w: expected %d stress answers, got %d", ErrMissingInput, PSSItems, len(a.PSS))
	}

	for i, v := range a.PHQ9 {
		if v < 0 || v > PHQ9ItemMax {
			return fmt.Errorf("%w: depression answer %d out of range: %d", ErrMissingInput, i, v)
		}
	}
	for i, v := range a.GAD7 {
		if v < 0 || v > GAD7ItemMax {
			return fmt.Errorf("%w: anxiety answer %d out of range: %d", ErrMissingInput, i, v)
		}
	}
	for i, v := range a.PSS {
		if v < 0 || v > PSSItemMax {
			return fmt.Errorf("%w: stress answer %d out of range: %d", ErrMissingInput, i, v)
		}
	}

	return nil
}

type ClassProbability struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// ConditionResult carries the winning label, its confidence, and the full
// distribution sorted descending by probability for display.
type ConditionResult struct {
	Label         string             `json:"label"`
	Probability   float64            `json:"probability"`
	Probabilities []ClassProbability `json:"probabilities"`
}

type PredictionResults struct {
	Depression ConditionResult `json:"depression"`
	Anxiety    ConditionResult `json:"anxiety"`
	Stress     ConditionResult `json:"stress"`
}

// RawScores are the traditional questionnaire totals, always computed and
// stored regardless of which path produced the labels.
type RawScores struct {
	PHQ9 int `json:"phq9_score"`
	GAD7 int `json:"gad7_score"`
	PSS  int `json:"pss_score"`
}

// Outcome is the terminal artifact of a pipeline run. The pipeline always
// converges to an Outcome unless input is missing or the schema contract is
// violated.
type Outcome struct {
	Results      PredictionResults `json:"prediction_results"`
	Scores       RawScores         `json:"scores"`
	UsedFallback bool              `json:"used_fallback"`
	Warning      string            `json:"warning,omitempty"`
}
