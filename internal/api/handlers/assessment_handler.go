package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/assessment"
	"github.com/serenoa/backend/internal/content"
	"github.com/serenoa/backend/pkg/logger"
)

type AssessmentHandler struct {
	service *assessment.Service
}

func NewAssessmentHandler(service *assessment.Service) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
	}
}

func (h *AssessmentHandler) HandleSubmit(c *fiber.Ctx) error {
	var req struct {
		UserID       string                  `json:"user_id"`
		Demographics assessment.Demographics `json:"demographics"`
		Answers      assessment.Answers      `json:"answers"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	record, outcome, err := h.service.Evaluate(c.Context(), req.UserID, req.Demographics, req.Answers)
	if err != nil {
		if errors.Is(err, assessment.ErrMissingInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, assessment.ErrSchemaMismatch) {
			logger.Error("Assessment schema mismatch", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Scoring is temporarily unavailable due to a model configuration problem",
			})
		}
		logger.Error("Failed to evaluate assessment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to evaluate assessment",
		})
	}

	resp := fiber.Map{
		"prediction_results": outcome.Results,
		"scores":             outcome.Scores,
		"used_fallback":      outcome.UsedFallback,
	}
	// An empty id means the result could not be stored and is not fetchable.
	if record.ID != "" {
		resp["id"] = record.ID
	} else {
		resp["persisted"] = false
	}
	if outcome.Warning != "" {
		resp["warning"] = outcome.Warning
	}

	if recs, err := content.Recommendations(&outcome.Results); err == nil {
		resp["recommendations"] = recs
	} else {
		logger.Warn("Failed to build recommendations", zap.Error(err))
	}

	return c.JSON(resp)
}

func (h *AssessmentHandler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("id")

	record, err := h.service.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Assessment not found",
		})
	}

	var results assessment.PredictionResults
	if err := json.Unmarshal([]byte(record.ResultsJSON), &results); err != nil {
		logger.Error("Failed to decode stored results", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to decode stored results",
		})
	}

	return c.JSON(fiber.Map{
		"id":                 record.ID,
		"user_id":            record.UserID,
		"prediction_results": results,
		"scores": assessment.RawScores{
			PHQ9: record.PHQ9Score,
			GAD7: record.GAD7Score,
			PSS:  record.PSSScore,
		},
		"used_fallback": record.UsedFallback,
		"warning":       record.Warning,
		"created_at":    record.CreatedAt,
	})
}

func (h *AssessmentHandler) HandleHistory(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	limit := c.QueryInt("limit", 20)
	records, err := h.service.History(userID, limit)
	if err != nil {
		logger.Error("Failed to list assessments", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list assessments",
		})
	}

	return c.JSON(fiber.Map{
		"assessments": records,
	})
}

func (h *AssessmentHandler) HandleRecommendations(c *fiber.Ctx) error {
	id := c.Params("id")

	record, err := h.service.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Assessment not found",
		})
	}

	var results assessment.PredictionResults
	if err := json.Unmarshal([]byte(record.ResultsJSON), &results); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to decode stored results",
		})
	}

	recs, err := content.Recommendations(&results)
	if err != nil {
		logger.Error("Failed to build recommendations", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build recommendations",
		})
	}

	seekHelp := false
	for _, r := range recs {
		if r.SeekHelp {
			seekHelp = true
			break
		}
	}

	resp := fiber.Map{
		"recommendations": recs,
	}
	if seekHelp {
		resp["crisis_resources"] = content.CrisisResources()
	}

	return c.JSON(resp)
}
