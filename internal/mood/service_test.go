package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenoa/backend/internal/storage/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := sqlite.NewClient(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { db.Close() })
	return NewService(db)
}

func TestRecord(t *testing.T) {
	svc := newTestService(t)

	entry, err := svc.Record("u1", 4, "slept well")
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, 4, entry.Score)
	assert.Equal(t, "slept well", entry.Note)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestRecord_ScoreBounds(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name    string
		score   int
		wantErr bool
	}{
		{"below minimum", 0, true},
		{"negative", -3, true},
		{"minimum", 1, false},
		{"maximum", 5, false},
		{"above maximum", 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record("u1", tt.score, "")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrScoreOutOfRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTrendSince(t *testing.T) {
	svc := newTestService(t)

	for _, score := range []int{2, 4, 5, 3} {
		_, err := svc.Record("u1", score, "")
		require.NoError(t, err)
	}
	_, err := svc.Record("u2", 1, "other user")
	require.NoError(t, err)

	trend, err := svc.TrendSince("u1", 30)
	require.NoError(t, err)
	assert.Equal(t, 4, trend.Count)
	assert.Len(t, trend.Entries, 4)
	assert.InDelta(t, 3.5, trend.Average, 1e-9)
}

func TestTrendSince_EmptyWindow(t *testing.T) {
	svc := newTestService(t)

	trend, err := svc.TrendSince("u1", 7)
	require.NoError(t, err)
	assert.Equal(t, 0, trend.Count)
	assert.Zero(t, trend.Average)
	assert.Empty(t, trend.Entries)
}

func TestTrendSince_DaysClampedToDefault(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Record("u1", 3, "")
	require.NoError(t, err)

	for _, days := range []int{0, -5, 400} {
		trend, err := svc.TrendSince("u1", days)
		require.NoError(t, err)
		assert.Equal(t, 1, trend.Count)
	}
}
