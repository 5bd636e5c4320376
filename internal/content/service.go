package content

import (
	"fmt"

	"github.com/serenoa/backend/internal/assessment"
)

// CrisisResource is a hotline or service surfaced when crisis language is
// detected or a severe result is returned.
type CrisisResource struct {
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description"`
	Available   string `json:"available"`
}

// Recommendation pairs a condition's severity label with guidance text.
type Recommendation struct {
	Condition string `json:"condition"`
	Label     string `json:"label"`
	Text      string `json:"text"`
	SeekHelp  bool   `json:"seek_help"`
}

var crisisResources = []CrisisResource{
	{
		Name:        "988 Suicide & Crisis Lifeline",
		Phone:       "988",
		URL:         "https://988lifeline.org",
		Description: "Free, confidential support for people in distress",
		Available:   "24/7",
	},
	{
		Name:        "Crisis Text Line",
		Phone:       "Text HOME to 741741",
		URL:         "https://www.crisistextline.org",
		Description: "Text-based crisis counseling",
		Available:   "24/7",
	},
	{
		Name:        "Campus Counseling Center",
		Description: "Most universities offer free short-term counseling to enrolled students",
		Available:   "Business hours, check your student portal",
	},
}

// CrisisResources returns the static hotline list.
func CrisisResources() []CrisisResource {
	return crisisResources
}

var depressionAdvice = map[string]string{
	assessment.DepressionLabels[0]: "Your responses do not indicate depressive symptoms. Keep up routines that support your mood, like regular sleep and social contact.",
	assessment.DepressionLabels[1]: "You reported a few mild symptoms. Gentle structure helps: short daily walks, consistent wake times, and checking in with a friend.",
	assessment.DepressionLabels[2]: "Your symptoms are in the moderate range. Consider talking with a counselor; behavioral activation and structured journaling often help at this level.",
	assessment.DepressionLabels[3]: "Your symptoms are moderately severe. We recommend scheduling an appointment with a mental health professional soon.",
	assessment.DepressionLabels[4]: "Your symptoms are in the severe range. Please reach out to a mental health professional as soon as you can. If you are in crisis, use the hotline resources below.",
}

var anxietyAdvice = map[string]string{
	assessment.AnxietyLabels[0]: "Your responses do not indicate significant anxiety. Brief breathing exercises are still a useful habit during exam periods.",
	assessment.AnxietyLabels[1]: "You reported mild anxiety symptoms. Try paced breathing (4 seconds in, 6 out) and limiting caffeine late in the day.",
	assessment.AnxietyLabels[2]: "Your anxiety is in the moderate range. A counselor can teach cognitive techniques that work well at this level; grounding exercises help in the meantime.",
	assessment.AnxietyLabels[3]: "Your anxiety is in the severe range. Please consider professional support; persistent severe anxiety responds well to treatment.",
}

var stressAdvice = map[string]string{
	assessment.StressLabels[0]: "Your perceived stress is low. Whatever you are doing to manage demands is working.",
	assessment.StressLabels[1]: "Your perceived stress is moderate. Look at what you can delegate or drop this week, and protect at least one unscheduled evening.",
	assessment.StressLabels[2]: "Your perceived stress is high. Sustained high stress wears down sleep and concentration; talking it through with a counselor or advisor is worth the hour.",
}

// Recommendations maps a prediction's severity labels to guidance text. The
// label spaces are closed, so an unknown label indicates results produced by
// an incompatible model build.
func Recommendations(results *assessment.PredictionResults) ([]Recommendation, error) {
	if results == nil {
		return nil, fmt.Errorf("no prediction results")
	}

	depText, ok := depressionAdvice[results.Depression.Label]
	if !ok {
		return nil, fmt.Errorf("unknown depression label %q", results.Depression.Label)
	}
	anxText, ok := anxietyAdvice[results.Anxiety.Label]
	if !ok {
		return nil, fmt.Errorf("unknown anxiety label %q", results.Anxiety.Label)
	}
	strText, ok := stressAdvice[results.Stress.Label]
	if !ok {
		return nil, fmt.Errorf("unknown stress label %q", results.Stress.Label)
	}

	return []Recommendation{
		{
			Condition: string(assessment.ConditionDepression),
			Label:     results.Depression.Label,
			Text:      depText,
			SeekHelp:  results.Depression.Label == assessment.DepressionLabels[3] || results.Depression.Label == assessment.DepressionLabels[4],
		},
		{
			Condition: string(assessment.ConditionAnxiety),
			Label:     results.Anxiety.Label,
			Text:      anxText,
			SeekHelp:  results.Anxiety.Label == assessment.AnxietyLabels[3],
		},
		{
			Condition: string(assessment.ConditionStress),
			Label:     results.Stress.Label,
			Text:      strText,
			SeekHelp:  results.Stress.Label == assessment.StressLabels[2],
		},
	}, nil
}
