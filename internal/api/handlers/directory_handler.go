package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/content"
	"github.com/serenoa/backend/internal/directory"
	"github.com/serenoa/backend/pkg/logger"
)

type DirectoryHandler struct {
	client *directory.Client
}

func NewDirectoryHandler(client *directory.Client) *DirectoryHandler {
	return &DirectoryHandler{
		client: client,
	}
}

func (h *DirectoryHandler) HandleSearch(c *fiber.Ctx) error {
	region := c.Query("region")
	page := c.QueryInt("page", 1)

	result, err := h.client.Search(c.Context(), region, page)
	if err != nil {
		logger.Error("Failed to search directory", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Professional directory is temporarily unavailable",
		})
	}

	return c.JSON(result)
}

func (h *DirectoryHandler) HandleCrisisResources(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"resources": content.CrisisResources(),
	})
}
