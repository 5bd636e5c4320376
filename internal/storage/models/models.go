package models

import "time"

type AssessmentResult struct {
	ID           string
	UserID       string
	ResultsJSON  string
	PHQ9Score    int
	GAD7Score    int
	PSSScore     int
	UsedFallback bool
	Warning      string
	CreatedAt    time.Time
}

type JournalEntry struct {
	ID          string
	UserID      string
	Title       string
	Content     string
	Keywords    []string
	Sentiment   float64
	WordCount   int
	EmbeddingID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MoodEntry struct {
	ID        string
	UserID    string
	Score     int
	Note      string
	CreatedAt time.Time
}

type ChatMessage struct {
	ID        string
	SessionID string
	UserID    string
	Role      string
	Content   string
	CreatedAt time.Time
}
