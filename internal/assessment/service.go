package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/metrics"
	"github.com/serenoa/backend/internal/storage/models"
	"github.com/serenoa/backend/internal/storage/sqlite"
	"github.com/serenoa/backend/pkg/logger"
)

// Service runs the pipeline and persists the terminal artifact.
type Service struct {
	pipeline *Pipeline
	db       *sqlite.Client
}

func NewService(pipeline *Pipeline, db *sqlite.Client) *Service {
	return &Service{pipeline: pipeline, db: db}
}

func (s *Service) Evaluate(ctx context.Context, userID string, d Demographics, a Answers) (*models.AssessmentResult, *Outcome, error) {
	start := time.Now()

	outcome, err := s.pipeline.Run(ctx, d, a)
	if err != nil {
		return nil, nil, err
	}

	metrics.AssessmentDuration.Observe(time.Since(start).Seconds())
	if outcome.UsedFallback {
		metrics.AssessmentsTotal.WithLabelValues("fallback").Inc()
		metrics.FallbackUsed.Inc()
	} else {
		metrics.AssessmentsTotal.WithLabelValues("model").Inc()
	}
	metrics.SeverityPredicted.WithLabelValues(string(ConditionDepression), outcome.Results.Depression.Label).Inc()
	metrics.SeverityPredicted.WithLabelValues(string(ConditionAnxiety), outcome.Results.Anxiety.Label).Inc()
	metrics.SeverityPredicted.WithLabelValues(string(ConditionStress), outcome.Results.Stress.Label).Inc()

	resultsJSON, err := json.Marshal(outcome.Results)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal results: %w", err)
	}

	record := &models.AssessmentResult{
		ID:           uuid.New().String(),
		UserID:       userID,
		ResultsJSON:  string(resultsJSON),
		PHQ9Score:    outcome.Scores.PHQ9,
		GAD7Score:    outcome.Scores.GAD7,
		PSSScore:     outcome.Scores.PSS,
		UsedFallback: outcome.UsedFallback,
		Warning:      outcome.Warning,
		CreatedAt:    time.Now(),
	}

	if err := s.db.InsertAssessmentResult(record); err != nil {
		// Persistence failure should not withhold the result from the user,
		// but a record id that cannot be fetched later must not leak out.
		logger.Error("Failed to persist assessment result", zap.Error(err))
		record.ID = ""
	}

	logger.Info("Assessment evaluated",
		zap.String("assessment_id", record.ID),
		zap.String("depression", outcome.Results.Depression.Label),
		zap.String("anxiety", outcome.Results.Anxiety.Label),
		zap.String("stress", outcome.Results.Stress.Label),
		zap.Bool("used_fallback", outcome.UsedFallback),
		zap.Duration("elapsed", time.Since(start)),
	)

	return record, outcome, nil
}

func (s *Service) Get(id string) (*models.AssessmentResult, error) {
	return s.db.GetAssessmentResult(id)
}

func (s *Service) History(userID string, limit int) ([]models.AssessmentResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.db.ListAssessmentResults(userID, limit)
}
