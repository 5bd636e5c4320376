package mood

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/serenoa/backend/internal/storage/models"
	"github.com/serenoa/backend/internal/storage/sqlite"
)

const (
	MinScore = 1
	MaxScore = 5
)

var ErrScoreOutOfRange = errors.New("mood score must be between 1 and 5")

type Service struct {
	db *sqlite.Client
}

// Trend is a simple rolling summary for the dashboard mood chart.
type Trend struct {
	Average float64            `json:"average"`
	Count   int                `json:"count"`
	Entries []models.MoodEntry `json:"entries"`
}

func NewService(db *sqlite.Client) *Service {
	return &Service{db: db}
}

func (s *Service) Record(userID string, score int, note string) (*models.MoodEntry, error) {
	if score < MinScore || score > MaxScore {
		return nil, ErrScoreOutOfRange
	}

	entry := &models.MoodEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Score:     score,
		Note:      note,
		CreatedAt: time.Now(),
	}

	if err := s.db.InsertMoodEntry(entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *Service) TrendSince(userID string, days int) (*Trend, error) {
	if days <= 0 || days > 365 {
		days = 30
	}

	since := time.Now().AddDate(0, 0, -days)
	entries, err := s.db.ListMoodEntries(userID, since, 500)
	if err != nil {
		return nil, err
	}

	trend := &Trend{Entries: entries, Count: len(entries)}
	if len(entries) > 0 {
		sum := 0
		for _, e := range entries {
			sum += e.Score
		}
		trend.Average = float64(sum) / float64(len(entries))
	}

	return trend, nil
}
