package sqlite

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenoa/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(":memory:")
	require.NoError(t, err)
	require.NoError(t, c.InitSchema())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestAssessmentResults(t *testing.T) {
	c := newTestClient(t)

	r := &models.AssessmentResult{
		ID:           "a1",
		UserID:       "u1",
		ResultsJSON:  `{"depression":{"label":"Mild Depression"}}`,
		PHQ9Score:    7,
		GAD7Score:    5,
		PSSScore:     18,
		UsedFallback: true,
		Warning:      "the statistical model was unavailable; traditional questionnaire scoring was used",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, c.InsertAssessmentResult(r))

	got, err := c.GetAssessmentResult("a1")
	require.NoError(t, err)
	assert.Equal(t, r.UserID, got.UserID)
	assert.Equal(t, r.ResultsJSON, got.ResultsJSON)
	assert.Equal(t, 7, got.PHQ9Score)
	assert.True(t, got.UsedFallback)
	assert.Equal(t, r.Warning, got.Warning)

	list, err := c.ListAssessmentResults("u1", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = c.ListAssessmentResults("someone-else", 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestJournalEntries(t *testing.T) {
	c := newTestClient(t)

	e := &models.JournalEntry{
		ID:        "j1",
		UserID:    "u1",
		Title:     "Finals",
		Content:   "Long week of studying.",
		Keywords:  []string{"finals", "studying"},
		Sentiment: -0.2,
		WordCount: 4,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, c.InsertJournalEntry(e))

	got, err := c.GetJournalEntry("j1")
	require.NoError(t, err)
	assert.Equal(t, e.Title, got.Title)
	assert.Equal(t, e.Keywords, got.Keywords)

	e.Title = "Finals week"
	e.UpdatedAt = time.Now()
	require.NoError(t, c.UpdateJournalEntry(e))

	got, err = c.GetJournalEntry("j1")
	require.NoError(t, err)
	assert.Equal(t, "Finals week", got.Title)

	require.NoError(t, c.DeleteJournalEntry("j1", "u1"))
	_, err = c.GetJournalEntry("j1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteJournalEntry_WrongUser(t *testing.T) {
	c := newTestClient(t)

	e := &models.JournalEntry{
		ID: "j1", UserID: "u1", Title: "t", Content: "c",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, c.InsertJournalEntry(e))

	err := c.DeleteJournalEntry("j1", "u2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMoodEntries_SinceFilter(t *testing.T) {
	c := newTestClient(t)

	old := &models.MoodEntry{ID: "m1", UserID: "u1", Score: 2, CreatedAt: time.Now().AddDate(0, 0, -60)}
	recent := &models.MoodEntry{ID: "m2", UserID: "u1", Score: 4, Note: "better", CreatedAt: time.Now()}
	require.NoError(t, c.InsertMoodEntry(old))
	require.NoError(t, c.InsertMoodEntry(recent))

	entries, err := c.ListMoodEntries("u1", time.Now().AddDate(0, 0, -30), 100)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "m2", entries[0].ID)
	assert.Equal(t, 4, entries[0].Score)
}

func TestChatMessages_OrderedBySession(t *testing.T) {
	c := newTestClient(t)

	base := time.Now()
	msgs := []*models.ChatMessage{
		{ID: "c1", SessionID: "s1", UserID: "u1", Role: "user", Content: "hi", CreatedAt: base},
		{ID: "c2", SessionID: "s1", UserID: "u1", Role: "assistant", Content: "hello", CreatedAt: base.Add(time.Second)},
		{ID: "c3", SessionID: "s2", UserID: "u1", Role: "user", Content: "other session", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, m := range msgs {
		require.NoError(t, c.InsertChatMessage(m))
	}

	history, err := c.ListChatMessages("s1", 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "c1", history[0].ID)
	assert.Equal(t, "c2", history[1].ID)
}

func TestChatMessages_WindowKeepsNewest(t *testing.T) {
	c := newTestClient(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 30; i++ {
		m := &models.ChatMessage{
			ID:        uuid.New().String(),
			SessionID: "s1",
			UserID:    "u1",
			Role:      "user",
			Content:   fmt.Sprintf("message %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, c.InsertChatMessage(m))
	}

	history, err := c.ListChatMessages("s1", 20)
	require.NoError(t, err)
	require.Len(t, history, 20)

	// The window drops the oldest messages, not the newest.
	assert.Equal(t, "message 10", history[0].Content)
	assert.Equal(t, "message 29", history[19].Content)
}

func TestChatMessages_SameSecondKeepsInsertionOrder(t *testing.T) {
	c := newTestClient(t)

	now := time.Now()
	for i := 0; i < 5; i++ {
		m := &models.ChatMessage{
			ID:        uuid.New().String(),
			SessionID: "s1",
			UserID:    "u1",
			Role:      "user",
			Content:   fmt.Sprintf("burst %d", i),
			CreatedAt: now,
		}
		require.NoError(t, c.InsertChatMessage(m))
	}

	history, err := c.ListChatMessages("s1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "burst 2", history[0].Content)
	assert.Equal(t, "burst 4", history[2].Content)
}

func TestJournalEntries_CorruptKeywordsStillReadable(t *testing.T) {
	c := newTestClient(t)

	now := time.Now().Unix()
	_, err := c.db.Exec(
		`INSERT INTO journal_entries (id, user_id, title, content, keywords, sentiment, word_count, embedding_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"j1", "u1", "old entry", "body", "not-json", 0.0, 1, "", now, now,
	)
	require.NoError(t, err)

	got, err := c.GetJournalEntry("j1")
	require.NoError(t, err)
	assert.Equal(t, "old entry", got.Title)
	assert.Nil(t, got.Keywords)

	entries, err := c.ListJournalEntries("u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Keywords)
}
