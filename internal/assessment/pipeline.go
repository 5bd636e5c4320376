package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/serenoa/backend/pkg/logger"
)

const fallbackWarning = "the statistical model was unavailable; traditional questionnaire scoring was used"

// Pipeline runs the full scoring flow: preprocess, infer, postprocess, with
// the traditional scorer substituting on any recoverable model failure. A run
// always converges to an Outcome unless input is missing or the model/code
// schema contract is broken.
type Pipeline struct {
	provider ModelProvider
	timeout  time.Duration
}

func NewPipeline(provider ModelProvider, timeout time.Duration) *Pipeline {
	return &Pipeline{provider: provider, timeout: timeout}
}

func (p *Pipeline) Run(ctx context.Context, d Demographics, a Answers) (*Outcome, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	// Raw totals are always computed and stored, whichever path labels them.
	scores := computeRawScores(a)

	results, err := p.runModelPath(ctx, d, a)
	if err != nil {
		if errors.Is(err, ErrSchemaMismatch) {
			logger.Error("Model schema contract violated", zap.Error(err))
			return nil, err
		}

		logger.Warn("Model path failed, downgrading to traditional scoring", zap.Error(err))

		fallback, fbErr := ScoreTraditional(a)
		if fbErr != nil {
			return nil, fbErr
		}

		return &Outcome{
			Results:      *fallback,
			Scores:       scores,
			UsedFallback: true,
			Warning:      fallbackWarning,
		}, nil
	}

	return &Outcome{Results: *results, Scores: scores}, nil
}

func (p *Pipeline) runModelPath(ctx context.Context, d Demographics, a Answers) (*PredictionResults, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	model, err := p.provider.Model(ctx)
	if err != nil {
		if errors.Is(err, ErrSchemaMismatch) || errors.Is(err, ErrModelUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	vector, err := NewPreprocessor(model.Scaler()).Vector(d, a)
	if err != nil {
		return nil, err
	}

	raw, err := model.Predict(vector)
	if err != nil {
		// Inference failures, including shape complaints from the model
		// itself, are recoverable and handled like an unavailable model.
		return nil, fmt.Errorf("%w: inference failed: %v", ErrModelUnavailable, err)
	}

	distributions, err := raw.Distributions()
	if err != nil {
		return nil, err
	}

	return toLabeledResults(distributions)
}
