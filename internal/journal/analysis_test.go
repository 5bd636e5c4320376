package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	a, err := Analyze("Finals week was stressful. I felt anxious about the chemistry exam, but my roommate helped me study and I felt better afterwards.")
	require.NoError(t, err)

	assert.Greater(t, a.WordCount, 10)
	assert.NotEmpty(t, a.Keywords)
	assert.LessOrEqual(t, len(a.Keywords), maxKeywords)
}

func TestAnalyze_SentimentDirection(t *testing.T) {
	positive, err := Analyze("I felt happy and grateful today. Everything was good and I was relaxed.")
	require.NoError(t, err)
	assert.Greater(t, positive.Sentiment, 0.0)

	negative, err := Analyze("I was sad and tired all day. I felt lonely and hopeless.")
	require.NoError(t, err)
	assert.Less(t, negative.Sentiment, 0.0)
}

func TestAnalyze_NeutralTextHasZeroSentiment(t *testing.T) {
	a, err := Analyze("The lecture covered thermodynamics and enthalpy calculations.")
	require.NoError(t, err)
	assert.Equal(t, 0.0, a.Sentiment)
}

func TestAnalyze_KeywordsExcludeShortWords(t *testing.T) {
	a, err := Analyze("My cat sat on the windowsill watching the garden all morning.")
	require.NoError(t, err)
	for _, kw := range a.Keywords {
		assert.Greater(t, len(kw), 2)
	}
}
