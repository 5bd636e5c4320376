package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/llm"
	"github.com/serenoa/backend/internal/metrics"
	"github.com/serenoa/backend/internal/storage/models"
	"github.com/serenoa/backend/internal/storage/sqlite"
	"github.com/serenoa/backend/pkg/logger"
)

const systemPrompt = `You are a supportive wellness companion for university students using the Serenoa app.

Your role:
1. Listen empathetically and respond with warmth
2. Offer evidence-based coping suggestions (breathing exercises, journaling prompts, sleep hygiene)
3. Encourage professional help for persistent or severe concerns
4. NEVER diagnose, prescribe, or contradict a clinician

If the user expresses self-harm or suicidal intent, respond with care and always include
the crisis resources notice so the app can surface hotline information.

Keep replies short, concrete, and free of clinical jargon.`

// crisisKeywords trigger the crisis-resource flag on a reply regardless of
// what the model says.
var crisisKeywords = []string{
	"suicide", "suicidal", "kill myself", "end my life",
	"self-harm", "hurt myself", "want to die",
}

const historyWindow = 20

type Service struct {
	llmClient *llm.Client
	db        *sqlite.Client
}

type Reply struct {
	SessionID  string `json:"session_id"`
	MessageID  string `json:"message_id"`
	Content    string `json:"content"`
	CrisisFlag bool   `json:"crisis_flag"`
}

func NewService(llmClient *llm.Client, db *sqlite.Client) *Service {
	return &Service{llmClient: llmClient, db: db}
}

func (s *Service) Send(ctx context.Context, userID, sessionID, content string) (*Reply, error) {
	if content == "" {
		return nil, fmt.Errorf("message content is required")
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	crisis := containsCrisisLanguage(content)

	userMsg := &models.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      llm.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.db.InsertChatMessage(userMsg); err != nil {
		logger.Warn("Failed to persist chat message", zap.Error(err))
	}
	metrics.ChatMessagesTotal.WithLabelValues(llm.RoleUser).Inc()

	history, err := s.db.ListChatMessages(sessionID, historyWindow)
	if err != nil {
		logger.Warn("Failed to load chat history", zap.Error(err))
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	// The current message may be absent if the insert above failed.
	if len(messages) == 0 || messages[len(messages)-1].Content != content {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: content})
	}

	resp, err := s.llmClient.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages:     messages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	assistantMsg := &models.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      llm.RoleAssistant,
		Content:   resp.Content,
		CreatedAt: time.Now(),
	}
	if err := s.db.InsertChatMessage(assistantMsg); err != nil {
		logger.Warn("Failed to persist chat reply", zap.Error(err))
	}
	metrics.ChatMessagesTotal.WithLabelValues(llm.RoleAssistant).Inc()

	return &Reply{
		SessionID:  sessionID,
		MessageID:  assistantMsg.ID,
		Content:    resp.Content,
		CrisisFlag: crisis || containsCrisisLanguage(resp.Content),
	}, nil
}

func (s *Service) History(sessionID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.db.ListChatMessages(sessionID, limit)
}

func containsCrisisLanguage(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range crisisKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
