package assessment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	scaler  *Scaler
	outputs RawOutputs
	err     error
}

func (f *fakeModel) Scaler() *Scaler { return f.scaler }

func (f *fakeModel) Predict(features []float64) (RawOutputs, error) {
	if f.err != nil {
		return RawOutputs{}, f.err
	}
	return f.outputs, nil
}

type fakeProvider struct {
	model Model
	err   error
	calls int
}

func (f *fakeProvider) Model(ctx context.Context) (Model, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

func healthyProvider() *fakeProvider {
	combined := make([]float64, combinedClasses)
	combined[1] = 10 // Mild Depression
	combined[7] = 10 // Moderate Anxiety
	combined[9] = 10 // Low Stress
	return &fakeProvider{
		model: &fakeModel{
			scaler:  identityScaler(),
			outputs: RawOutputs{Combined: combined},
		},
	}
}

func TestPipeline_ModelPath(t *testing.T) {
	p := NewPipeline(healthyProvider(), time.Second)

	outcome, err := p.Run(context.Background(), Demographics{}, validAnswers())
	require.NoError(t, err)

	assert.False(t, outcome.UsedFallback)
	assert.Empty(t, outcome.Warning)
	assert.Equal(t, "Mild Depression", outcome.Results.Depression.Label)
	assert.Equal(t, "Moderate Anxiety", outcome.Results.Anxiety.Label)
	assert.Equal(t, "Low Stress", outcome.Results.Stress.Label)

	// Raw totals are present regardless of the path.
	assert.Equal(t, 12, outcome.Scores.PHQ9)
	assert.Equal(t, 7, outcome.Scores.GAD7)
	assert.Equal(t, 20, outcome.Scores.PSS)
}

func TestPipeline_FallbackOnUnavailableModel(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("%w: artifact host unreachable", ErrModelUnavailable)}
	p := NewPipeline(provider, time.Second)

	outcome, err := p.Run(context.Background(), Demographics{}, validAnswers())
	require.NoError(t, err)

	assert.True(t, outcome.UsedFallback)
	assert.Equal(t, fallbackWarning, outcome.Warning)

	// Fallback labels come from the rule-based scorer, with certainty 1.0.
	assert.Equal(t, "Moderate Depression", outcome.Results.Depression.Label)
	assert.Equal(t, 1.0, outcome.Results.Depression.Probability)
	assert.Equal(t, "Mild Anxiety", outcome.Results.Anxiety.Label)
	assert.Equal(t, "Moderate Stress", outcome.Results.Stress.Label)
}

func TestPipeline_FallbackOnInferenceError(t *testing.T) {
	provider := &fakeProvider{
		model: &fakeModel{
			scaler: identityScaler(),
			err:    errors.New("matrix dimensions do not agree"),
		},
	}
	p := NewPipeline(provider, time.Second)

	outcome, err := p.Run(context.Background(), Demographics{}, validAnswers())
	require.NoError(t, err)
	assert.True(t, outcome.UsedFallback)
	assert.Equal(t, fallbackWarning, outcome.Warning)
}

func TestPipeline_SchemaMismatchIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		provider ModelProvider
	}{
		{
			name:     "provider reports mismatch",
			provider: &fakeProvider{err: fmt.Errorf("%w: scaler schema version 2, expected 1", ErrSchemaMismatch)},
		},
		{
			name: "model emits wrong output shape",
			provider: &fakeProvider{
				model: &fakeModel{
					scaler:  identityScaler(),
					outputs: RawOutputs{Combined: []float64{1, 2, 3}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(tt.provider, time.Second)

			outcome, err := p.Run(context.Background(), Demographics{}, validAnswers())
			assert.Nil(t, outcome)
			assert.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}
}

func TestPipeline_MissingInput(t *testing.T) {
	provider := healthyProvider()
	p := NewPipeline(provider, time.Second)

	outcome, err := p.Run(context.Background(), Demographics{}, Answers{})
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Zero(t, provider.calls, "no prediction attempted on missing input")
}
