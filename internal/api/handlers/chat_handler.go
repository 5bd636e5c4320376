package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/chat"
	"github.com/serenoa/backend/internal/content"
	"github.com/serenoa/backend/pkg/logger"
)

type ChatHandler struct {
	service *chat.Service
}

func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{
		service: service,
	}
}

func (h *ChatHandler) HandleSend(c *fiber.Ctx) error {
	var req struct {
		UserID    string `json:"user_id"`
		SessionID string `json:"session_id"`
		Content   string `json:"content"`
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

	reply, err := h.service.Send(c.Context(), req.UserID, req.SessionID, req.Content)
	if err != nil {
		logger.Error("Failed to process chat message", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process chat message",
		})
	}

	resp := fiber.Map{
		"session_id":  reply.SessionID,
		"message_id":  reply.MessageID,
		"content":     reply.Content,
		"crisis_flag": reply.CrisisFlag,
	}
	if reply.CrisisFlag {
		resp["crisis_resources"] = content.CrisisResources()
	}

	return c.JSON(resp)
}

func (h *ChatHandler) HandleHistory(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	messages, err := h.service.History(sessionID, c.QueryInt("limit", 50))
	if err != nil {
		logger.Error("Failed to load chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load chat history",
		})
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"messages":   messages,
	})
}

func (h *ChatHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type      string `json:"type"`
			UserID    string `json:"user_id"`
			SessionID string `json:"session_id"`
			Content   string `json:"content"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "message" {
			continue
		}

		err = h.streamReply(c, msg.UserID, msg.SessionID, msg.Content)
		if err != nil {
			logger.Error("Failed to stream reply", zap.Error(err))
			h.sendError(c, "Failed to process message")
		}
	}
}

func (h *ChatHandler) streamReply(c *websocket.Conn, userID, sessionID, text string) error {
	ctx := context.Background()

	h.sendChunk(c, "status", "Thinking...")

	reply, err := h.service.Send(ctx, userID, sessionID, text)
	if err != nil {
		return err
	}

	words := splitIntoWords(reply.Content)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}

		err := h.sendChunk(c, "chunk", chunk)
		if err != nil {
			return err
		}
	}

	return h.sendComplete(c, reply)
}

func (h *ChatHandler) sendChunk(c *websocket.Conn, msgType, text string) error {
	msg := map[string]interface{}{
		"type":    msgType,
		"content": text,
	}

	return c.WriteJSON(msg)
}

func (h *ChatHandler) sendComplete(c *websocket.Conn, reply *chat.Reply) error {
	msg := map[string]interface{}{
		"type":        "complete",
		"session_id":  reply.SessionID,
		"message_id":  reply.MessageID,
		"crisis_flag": reply.CrisisFlag,
	}
	if reply.CrisisFlag {
		msg["crisis_resources"] = content.CrisisResources()
	}

	return c.WriteJSON(msg)
}

func (h *ChatHandler) sendError(c *websocket.Conn, errorMsg string) {
	msg := map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	}

	c.WriteJSON(msg)
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
