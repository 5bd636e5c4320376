package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/mood"
	"github.com/serenoa/backend/pkg/logger"
)

type MoodHandler struct {
	service *mood.Service
}

func NewMoodHandler(service *mood.Service) *MoodHandler {
	return &MoodHandler{
		service: service,
	}
}

func (h *MoodHandler) HandleRecord(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"`
		Score  int    `json:"score"`
		Note   string `json:"note"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	entry, err := h.service.Record(req.UserID, req.Score, req.Note)
	if err != nil {
		if errors.Is(err, mood.ErrScoreOutOfRange) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		logger.Error("Failed to record mood", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record mood",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *MoodHandler) HandleTrend(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	trend, err := h.service.TrendSince(userID, c.QueryInt("days", 30))
	if err != nil {
		logger.Error("Failed to compute mood trend", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute mood trend",
		})
	}

	return c.JSON(trend)
}
