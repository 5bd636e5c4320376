package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/cache/redis"
	"github.com/serenoa/backend/internal/llm"
	"github.com/serenoa/backend/internal/metrics"
	"github.com/serenoa/backend/internal/storage/models"
	"github.com/serenoa/backend/internal/storage/sqlite"
	"github.com/serenoa/backend/internal/vector/milvus"
	"github.com/serenoa/backend/pkg/logger"
	"github.com/serenoa/backend/pkg/utils"
)

// Service owns journal entries: CRUD against sqlite, NLP analysis on write,
// and embedding-backed related-entry lookup. The vector store is optional;
// without it, related-entry lookup reports unavailable.
type Service struct {
	db        *sqlite.Client
	llmClient *llm.Client
	vectors   *milvus.Client
	cache     *redis.Client
}

func NewService(db *sqlite.Client, llmClient *llm.Client, vectors *milvus.Client, cache *redis.Client) *Service {
	return &Service{db: db, llmClient: llmClient, vectors: vectors, cache: cache}
}

const embeddingCacheTTL = 24 * time.Hour

// embed generates an embedding for the text, going through the cache when one
// is configured. Entry content rarely changes, so a day of reuse is safe.
func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	if s.cache == nil {
		return s.llmClient.GenerateEmbedding(ctx, text)
	}

	textHash := utils.HashString(text)
	if cached, found, err := s.cache.GetEmbedding(ctx, textHash); err == nil && found {
		return cached, nil
	}

	embedding, err := s.llmClient.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetEmbedding(ctx, textHash, embedding, embeddingCacheTTL); err != nil {
		logger.Warn("Failed to cache embedding", zap.Error(err))
	}

	return embedding, nil
}

func (s *Service) Create(ctx context.Context, userID, title, content string) (*models.JournalEntry, error) {
	if content == "" {
		return nil, fmt.Errorf("journal content is required")
	}

	analysis, err := Analyze(content)
	if err != nil {
		logger.Warn("Journal analysis failed", zap.Error(err))
		analysis = &Analysis{}
	}

	now := time.Now()
	entry := &models.JournalEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Keywords:  analysis.Keywords,
		Sentiment: analysis.Sentiment,
		WordCount: analysis.WordCount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.InsertJournalEntry(entry); err != nil {
		return nil, err
	}

	metrics.JournalEntriesTotal.Inc()

	// Embedding indexing is best effort; the entry is already durable.
	s.indexEntry(ctx, entry)

	return entry, nil
}

func (s *Service) Update(ctx context.Context, userID, entryID, title, content string) (*models.JournalEntry, error) {
	entry, err := s.db.GetJournalEntry(entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, fmt.Errorf("journal entry does not belong to user")
	}

	analysis, err := Analyze(content)
	if err != nil {
		logger.Warn("Journal analysis failed", zap.Error(err))
		analysis = &Analysis{}
	}

	entry.Title = title
	entry.Content = content
	entry.Keywords = analysis.Keywords
	entry.Sentiment = analysis.Sentiment
	entry.WordCount = analysis.WordCount
	entry.UpdatedAt = time.Now()

	if err := s.db.UpdateJournalEntry(entry); err != nil {
		return nil, err
	}

	s.indexEntry(ctx, entry)

	return entry, nil
}

func (s *Service) Delete(ctx context.Context, userID, entryID string) error {
	if err := s.db.DeleteJournalEntry(entryID, userID); err != nil {
		return err
	}

	if s.vectors != nil {
		if err := s.vectors.Delete(ctx, entryID); err != nil {
			logger.Warn("Failed to delete entry vector", zap.String("entry_id", entryID), zap.Error(err))
		}
	}

	return nil
}

func (s *Service) Get(entryID string) (*models.JournalEntry, error) {
	return s.db.GetJournalEntry(entryID)
}

func (s *Service) List(userID string, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.db.ListJournalEntries(userID, limit)
}

// Related returns the user's most similar past entries to the given one.
func (s *Service) Related(ctx context.Context, userID, entryID string, limit int) ([]models.JournalEntry, error) {
	if s.vectors == nil {
		return nil, fmt.Errorf("related entries are not available")
	}
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	entry, err := s.db.GetJournalEntry(entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, fmt.Errorf("journal entry does not belong to user")
	}

	embedding, err := s.embed(ctx, entry.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to embed entry: %w", err)
	}

	hits, err := s.vectors.SearchSimilar(ctx, userID, embedding, limit+1)
	if err != nil {
		return nil, err
	}

	related := make([]models.JournalEntry, 0, limit)
	for _, hit := range hits {
		if hit.EntryID == entryID {
			continue
		}
		e, err := s.db.GetJournalEntry(hit.EntryID)
		if err != nil {
			logger.Warn("Similar entry missing from store", zap.String("entry_id", hit.EntryID), zap.Error(err))
			continue
		}
		related = append(related, *e)
		if len(related) == limit {
			break
		}
	}

	return related, nil
}

func (s *Service) indexEntry(ctx context.Context, entry *models.JournalEntry) {
	if s.vectors == nil {
		return
	}

	embedding, err := s.embed(ctx, entry.Content)
	if err != nil {
		logger.Warn("Failed to embed journal entry", zap.String("entry_id", entry.ID), zap.Error(err))
		return
	}

	err = s.vectors.Insert(ctx, milvus.EntryVector{
		EntryID:   entry.ID,
		UserID:    entry.UserID,
		Embedding: embedding,
		CreatedAt: entry.CreatedAt,
	})
	if err != nil {
		logger.Warn("Failed to index journal entry", zap.String("entry_id", entry.ID), zap.Error(err))
	}
}
