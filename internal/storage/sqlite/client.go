package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/storage/models"
	"github.com/serenoa/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessment_results (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		results_json TEXT NOT NULL,
		phq9_score INTEGER NOT NULL,
		gad7_score INTEGER NOT NULL,
		pss_score INTEGER NOT NULL,
		used_fallback INTEGER NOT NULL DEFAULT 0,
		warning TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assessments_user ON assessment_results(user_id);
	CREATE INDEX IF NOT EXISTS idx_assessments_created ON assessment_results(created_at);

	CREATE TABLE IF NOT EXISTS journal_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		keywords TEXT,
		sentiment REAL,
		word_count INTEGER,
		embedding_id TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journal_user ON journal_entries(user_id);
	CREATE INDEX IF NOT EXISTS idx_journal_created ON journal_entries(created_at);

	CREATE TABLE IF NOT EXISTS mood_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		score INTEGER NOT NULL,
		note TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mood_user ON mood_entries(user_id);
	CREATE INDEX IF NOT EXISTS idx_mood_created ON mood_entries(created_at);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_session ON chat_messages(session_id);
	CREATE INDEX IF NOT EXISTS idx_chat_created ON chat_messages(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertAssessmentResult(r *models.AssessmentResult) error {
	query := `
		INSERT INTO assessment_results (id, user_id, results_json, phq9_score, gad7_score, pss_score, used_fallback, warning, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	usedFallback := 0
	if r.UsedFallback {
		usedFallback = 1
	}

	_, err := c.db.Exec(
		query,
		r.ID,
		r.UserID,
		r.ResultsJSON,
		r.PHQ9Score,
		r.GAD7Score,
		r.PSSScore,
		usedFallback,
		r.Warning,
		r.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert assessment result: %w", err)
	}

	logger.Info("Assessment result recorded",
		zap.String("assessment_id", r.ID),
		zap.Bool("used_fallback", r.UsedFallback),
	)

	return nil
}

func (c *Client) GetAssessmentResult(id string) (*models.AssessmentResult, error) {
	query := `
		SELECT id, user_id, results_json, phq9_score, gad7_score, pss_score, used_fallback, warning, created_at
		FROM assessment_results WHERE id = ?
	`

	var r models.AssessmentResult
	var usedFallback int
	var createdAt int64

	err := c.db.QueryRow(query, id).Scan(
		&r.ID,
		&r.UserID,
		&r.ResultsJSON,
		&r.PHQ9Score,
		&r.GAD7Score,
		&r.PSSScore,
		&usedFallback,
		&r.Warning,
		&createdAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get assessment result: %w", err)
	}

	r.UsedFallback = usedFallback == 1
	r.CreatedAt = time.Unix(createdAt, 0)

	return &r, nil
}

func (c *Client) ListAssessmentResults(userID string, limit int) ([]models.AssessmentResult, error) {
	query := `
		SELECT id, user_id, results_json, phq9_score, gad7_score, pss_score, used_fallback, warning, created_at
		FROM assessment_results
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessment results: %w", err)
	}
	defer rows.Close()

	var results []models.AssessmentResult
	for rows.Next() {
		var r models.AssessmentResult
		var usedFallback int
		var createdAt int64

		err := rows.Scan(&r.ID, &r.UserID, &r.ResultsJSON, &r.PHQ9Score, &r.GAD7Score, &r.PSSScore, &usedFallback, &r.Warning, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.UsedFallback = usedFallback == 1
		r.CreatedAt = time.Unix(createdAt, 0)
		results = append(results, r)
	}

	return results, nil
}

func (c *Client) InsertJournalEntry(e *models.JournalEntry) error {
	keywordsJSON, _ := json.Marshal(e.Keywords)

	query := `
		INSERT INTO journal_entries (id, user_id, title, content, keywords, sentiment, word_count, embedding_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		e.ID,
		e.UserID,
		e.Title,
		e.Content,
		string(keywordsJSON),
		e.Sentiment,
		e.WordCount,
		e.EmbeddingID,
		e.CreatedAt.Unix(),
		e.UpdatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}

	logger.Debug("Journal entry inserted", zap.String("entry_id", e.ID))
	return nil
}

func (c *Client) UpdateJournalEntry(e *models.JournalEntry) error {
	keywordsJSON, _ := json.Marshal(e.Keywords)

	query := `
		UPDATE journal_entries
		SET title = ?, content = ?, keywords = ?, sentiment = ?, word_count = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	res, err := c.db.Exec(
		query,
		e.Title,
		e.Content,
		string(keywordsJSON),
		e.Sentiment,
		e.WordCount,
		e.UpdatedAt.Unix(),
		e.ID,
		e.UserID,
	)

	if err != nil {
		return fmt.Errorf("failed to update journal entry: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (c *Client) DeleteJournalEntry(id, userID string) error {
	res, err := c.db.Exec(`DELETE FROM journal_entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (c *Client) GetJournalEntry(id string) (*models.JournalEntry, error) {
	query := `
		SELECT id, user_id, title, content, keywords, sentiment, word_count, embedding_id, created_at, updated_at
		FROM journal_entries WHERE id = ?
	`

	var e models.JournalEntry
	var keywordsJSON string
	var createdAt, updatedAt int64

	err := c.db.QueryRow(query, id).Scan(
		&e.ID,
		&e.UserID,
		&e.Title,
		&e.Content,
		&keywordsJSON,
		&e.Sentiment,
		&e.WordCount,
		&e.EmbeddingID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}

	if err := json.Unmarshal([]byte(keywordsJSON), &e.Keywords); err != nil {
		logger.Warn("Failed to decode journal keywords", zap.String("entry_id", e.ID), zap.Error(err))
	}
	e.CreatedAt = time.Unix(createdAt, 0)
	e.UpdatedAt = time.Unix(updatedAt, 0)

	return &e, nil
}

func (c *Client) ListJournalEntries(userID string, limit int) ([]models.JournalEntry, error) {
	query := `
		SELECT id, user_id, title, content, keywords, sentiment, word_count, embedding_id, created_at, updated_at
		FROM journal_entries
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var e models.JournalEntry
		var keywordsJSON string
		var createdAt, updatedAt int64

		err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &keywordsJSON, &e.Sentiment, &e.WordCount, &e.EmbeddingID, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if err := json.Unmarshal([]byte(keywordsJSON), &e.Keywords); err != nil {
			logger.Warn("Failed to decode journal keywords", zap.String("entry_id", e.ID), zap.Error(err))
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		e.UpdatedAt = time.Unix(updatedAt, 0)
		entries = append(entries, e)
	}

	return entries, nil
}

func (c *Client) InsertMoodEntry(e *models.MoodEntry) error {
	query := `INSERT INTO mood_entries (id, user_id, score, note, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := c.db.Exec(query, e.ID, e.UserID, e.Score, e.Note, e.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert mood entry: %w", err)
	}

	return nil
}

func (c *Client) ListMoodEntries(userID string, since time.Time, limit int) ([]models.MoodEntry, error) {
	query := `
		SELECT id, user_id, score, note, created_at
		FROM mood_entries
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, userID, since.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list mood entries: %w", err)
	}
	defer rows.Close()

	var entries []models.MoodEntry
	for rows.Next() {
		var e models.MoodEntry
		var createdAt int64

		err := rows.Scan(&e.ID, &e.UserID, &e.Score, &e.Note, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}

	return entries, nil
}

func (c *Client) InsertChatMessage(m *models.ChatMessage) error {
	query := `INSERT INTO chat_messages (id, session_id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := c.db.Exec(query, m.ID, m.SessionID, m.UserID, m.Role, m.Content, m.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	return nil
}

// ListChatMessages returns the most recent messages of a session in
// chronological order. created_at has second granularity, so rowid breaks
// ties between messages inserted within the same second.
func (c *Client) ListChatMessages(sessionID string, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, session_id, user_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		var createdAt int64

		err := rows.Scan(&m.ID, &m.SessionID, &m.UserID, &m.Role, &m.Content, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		m.CreatedAt = time.Unix(createdAt, 0)
		messages = append(messages, m)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
