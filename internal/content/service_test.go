package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenoa/backend/internal/assessment"
)

func TestRecommendations(t *testing.T) {
	results := &assessment.PredictionResults{
		Depression: assessment.ConditionResult{Label: "Moderately Severe Depression"},
		Anxiety:    assessment.ConditionResult{Label: "Mild Anxiety"},
		Stress:     assessment.ConditionResult{Label: "High Perceived Stress"},
	}

	recs, err := Recommendations(results)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "depression", recs[0].Condition)
	assert.True(t, recs[0].SeekHelp)
	assert.NotEmpty(t, recs[0].Text)

	assert.Equal(t, "anxiety", recs[1].Condition)
	assert.False(t, recs[1].SeekHelp)

	assert.Equal(t, "stress", recs[2].Condition)
	assert.True(t, recs[2].SeekHelp)
}

func TestRecommendations_CoversAllLabels(t *testing.T) {
	for _, dep := range assessment.DepressionLabels {
		for _, anx := range assessment.AnxietyLabels {
			for _, str := range assessment.StressLabels {
				results := &assessment.PredictionResults{
					Depression: assessment.ConditionResult{Label: dep},
					Anxiety:    assessment.ConditionResult{Label: anx},
					Stress:     assessment.ConditionResult{Label: str},
				}
				recs, err := Recommendations(results)
				require.NoError(t, err, "labels %s / %s / %s", dep, anx, str)
				require.Len(t, recs, 3)
			}
		}
	}
}

func TestRecommendations_UnknownLabel(t *testing.T) {
	results := &assessment.PredictionResults{
		Depression: assessment.ConditionResult{Label: "Catastrophic Depression"},
		Anxiety:    assessment.ConditionResult{Label: "Mild Anxiety"},
		Stress:     assessment.ConditionResult{Label: "Low Stress"},
	}

	_, err := Recommendations(results)
	assert.Error(t, err)
}

func TestRecommendations_NilResults(t *testing.T) {
	_, err := Recommendations(nil)
	assert.Error(t, err)
}

func TestCrisisResources(t *testing.T) {
	resources := CrisisResources()
	require.NotEmpty(t, resources)
	for _, r := range resources {
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Description)
	}
}
