package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelCondition_TieBreaksToLowerIndex(t *testing.T) {
	// Equal probabilities must resolve to the lower (less severe) class.
	r, err := labelCondition(ConditionStress, []float64{0.4, 0.4, 0.2})
	require.NoError(t, err)
	assert.Equal(t, "Low Stress", r.Label)
	assert.Equal(t, 0.4, r.Probability)

	// The stable sort keeps the tied pair in class order as well.
	assert.Equal(t, "Low Stress", r.Probabilities[0].Label)
	assert.Equal(t, "Moderate Stress", r.Probabilities[1].Label)
}

func TestLabelCondition_SortsDescending(t *testing.T) {
	r, err := labelCondition(ConditionAnxiety, []float64{0.1, 0.2, 0.6, 0.1})
	require.NoError(t, err)
	assert.Equal(t, "Moderate Anxiety", r.Label)

	require.Len(t, r.Probabilities, 4)
	for i := 1; i < len(r.Probabilities); i++ {
		assert.GreaterOrEqual(t, r.Probabilities[i-1].Probability, r.Probabilities[i].Probability)
	}
	assert.Equal(t, "Moderate Anxiety", r.Probabilities[0].Label)
}

func TestLabelCondition_WrongWidth(t *testing.T) {
	_, err := labelCondition(ConditionDepression, []float64{0.5, 0.5})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestToLabeledResults(t *testing.T) {
	distributions := [][]float64{
		{0.1, 0.1, 0.6, 0.1, 0.1}, // depression: Moderate
		{0.7, 0.1, 0.1, 0.1},      // anxiety: Minimal
		{0.2, 0.3, 0.5},           // stress: High
	}

	results, err := toLabeledResults(distributions)
	require.NoError(t, err)
	assert.Equal(t, "Moderate Depression", results.Depression.Label)
	assert.Equal(t, "Minimal Anxiety", results.Anxiety.Label)
	assert.Equal(t, "High Perceived Stress", results.Stress.Label)
}

func TestToLabeledResults_WrongConditionCount(t *testing.T) {
	_, err := toLabeledResults([][]float64{{1, 0, 0, 0, 0}})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}
