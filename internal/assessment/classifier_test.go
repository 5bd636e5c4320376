package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zeroLayer builds a layer whose output is exactly its biases, which makes
// assertions on the network output deterministic.
func zeroLayer(outWidth, inWidth int, biases []float64, activation string) ArtifactLayer {
	weights := make([][]float64, outWidth)
	for i := range weights {
		weights[i] = make([]float64, inWidth)
	}
	return ArtifactLayer{Weights: weights, Biases: biases, Activation: activation}
}

func combinedArtifact() *Artifact {
	biases := make([]float64, combinedClasses)
	biases[2] = 5  // Moderate Depression
	biases[5] = 5  // Minimal Anxiety
	biases[11] = 5 // High Perceived Stress
	return &Artifact{
		SchemaVersion: 1,
		OutputLayout:  LayoutCombined,
		Layers:        []ArtifactLayer{zeroLayer(combinedClasses, FeatureCount, biases, "")},
	}
}

func splitArtifact() *Artifact {
	return &Artifact{
		SchemaVersion: 1,
		OutputLayout:  LayoutSplit,
		Layers:        []ArtifactLayer{zeroLayer(4, FeatureCount, []float64{1, 1, 1, 1}, "relu")},
		Heads: []ArtifactLayer{
			zeroLayer(5, 4, []float64{0, 0, 0, 0, 5}, ""),
			zeroLayer(4, 4, []float64{0, 5, 0, 0}, ""),
			zeroLayer(3, 4, []float64{5, 0, 0}, ""),
		},
	}
}

func TestClassifier_PredictCombined(t *testing.T) {
	c, err := newClassifier(combinedArtifact(), identityScaler(), 1)
	require.NoError(t, err)

	raw, err := c.Predict(make([]float64, FeatureCount))
	require.NoError(t, err)
	require.NotNil(t, raw.Combined)

	distributions, err := raw.Distributions()
	require.NoError(t, err)

	results, err := toLabeledResults(distributions)
	require.NoError(t, err)
	assert.Equal(t, "Moderate Depression", results.Depression.Label)
	assert.Equal(t, "Minimal Anxiety", results.Anxiety.Label)
	assert.Equal(t, "High Perceived Stress", results.Stress.Label)
}

func TestClassifier_PredictSplit(t *testing.T) {
	c, err := newClassifier(splitArtifact(), identityScaler(), 1)
	require.NoError(t, err)

	raw, err := c.Predict(make([]float64, FeatureCount))
	require.NoError(t, err)
	require.Len(t, raw.Split, 3)

	distributions, err := raw.Distributions()
	require.NoError(t, err)

	results, err := toLabeledResults(distributions)
	require.NoError(t, err)
	assert.Equal(t, "Severe Depression", results.Depression.Label)
	assert.Equal(t, "Mild Anxiety", results.Anxiety.Label)
	assert.Equal(t, "Low Stress", results.Stress.Label)
}

func TestClassifier_PredictWrongFeatureCount(t *testing.T) {
	c, err := newClassifier(combinedArtifact(), identityScaler(), 1)
	require.NoError(t, err)

	_, err = c.Predict(make([]float64, 5))
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestNewClassifier_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact, s *Scaler)
	}{
		{"artifact version mismatch", func(a *Artifact, s *Scaler) { a.SchemaVersion = 9 }},
		{"scaler version mismatch", func(a *Artifact, s *Scaler) { s.SchemaVersion = 9 }},
		{"no layers", func(a *Artifact, s *Scaler) { a.Layers = nil }},
		{"wrong row width", func(a *Artifact, s *Scaler) {
			a.Layers[0].Weights[0] = []float64{1, 2}
		}},
		{"bias count mismatch", func(a *Artifact, s *Scaler) {
			a.Layers[0].Biases = []float64{1}
		}},
		{"combined width wrong", func(a *Artifact, s *Scaler) {
			a.Layers = []ArtifactLayer{zeroLayer(7, FeatureCount, make([]float64, 7), "")}
		}},
		{"unknown layout", func(a *Artifact, s *Scaler) { a.OutputLayout = "wide" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact := combinedArtifact()
			scaler := identityScaler()
			tt.mutate(artifact, scaler)

			_, err := newClassifier(artifact, scaler, 1)
			assert.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}
}

func TestNewClassifier_SplitHeadWidth(t *testing.T) {
	artifact := splitArtifact()
	artifact.Heads[1] = zeroLayer(2, 4, []float64{0, 0}, "")

	_, err := newClassifier(artifact, identityScaler(), 1)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestRawOutputs_Distributions(t *testing.T) {
	t.Run("combined wrong width", func(t *testing.T) {
		_, err := RawOutputs{Combined: []float64{1, 2, 3}}.Distributions()
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("split wrong head count", func(t *testing.T) {
		_, err := RawOutputs{Split: [][]float64{{1}}}.Distributions()
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("split wrong head width", func(t *testing.T) {
		_, err := RawOutputs{Split: [][]float64{
			{1, 1, 1, 1, 1},
			{1, 1, 1},
			{1, 1, 1},
		}}.Distributions()
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("distributions sum to one", func(t *testing.T) {
		out, err := RawOutputs{Combined: []float64{
			0, 1, 2, 3, 4,
			0, 1, 2, 3,
			0, 1, 2,
		}}.Distributions()
		require.NoError(t, err)
		require.Len(t, out, 3)
		for _, dist := range out {
			var sum float64
			for _, p := range dist {
				sum += p
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		}
	})
}

func TestSoftmax_StableUnderLargeLogits(t *testing.T) {
	out := softmax([]float64{1000, 1001, 1002})
	var sum float64
	for _, p := range out {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, out[2], out[1])
	assert.Greater(t, out[1], out[0])
}
