package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/journal"
	"github.com/serenoa/backend/pkg/logger"
)

type JournalHandler struct {
	service *journal.Service
}

func NewJournalHandler(service *journal.Service) *JournalHandler {
	return &JournalHandler{
		service: service,
	}
}

func (h *JournalHandler) HandleCreate(c *fiber.Ctx) error {
	var req struct {
		UserID  string `json:"user_id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.UserID == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id and content are required",
		})
	}

	entry, err := h.service.Create(c.Context(), req.UserID, req.Title, req.Content)
	if err != nil {
		logger.Error("Failed to create journal entry", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create journal entry",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *JournalHandler) HandleUpdate(c *fiber.Ctx) error {
	entryID := c.Params("id")

	var req struct {
		UserID  string `json:"user_id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	entry, err := h.service.Update(c.Context(), req.UserID, entryID, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Journal entry not found",
			})
		}
		logger.Error("Failed to update journal entry", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update journal entry",
		})
	}

	return c.JSON(entry)
}

func (h *JournalHandler) HandleDelete(c *fiber.Ctx) error {
	entryID := c.Params("id")
	userID := c.Query("user_id")

	if err := h.service.Delete(c.Context(), userID, entryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Journal entry not found",
			})
		}
		logger.Error("Failed to delete journal entry", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete journal entry",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *JournalHandler) HandleGet(c *fiber.Ctx) error {
	entry, err := h.service.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Journal entry not found",
		})
	}

	return c.JSON(entry)
}

func (h *JournalHandler) HandleList(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	entries, err := h.service.List(userID, c.QueryInt("limit", 20))
	if err != nil {
		logger.Error("Failed to list journal entries", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list journal entries",
		})
	}

	return c.JSON(fiber.Map{
		"entries": entries,
	})
}

func (h *JournalHandler) HandleRelated(c *fiber.Ctx) error {
	entryID := c.Params("id")
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	entries, err := h.service.Related(c.Context(), userID, entryID, c.QueryInt("limit", 5))
	if err != nil {
		logger.Error("Failed to find related entries", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find related entries",
		})
	}

	return c.JSON(fiber.Map{
		"entries": entries,
	})
}
