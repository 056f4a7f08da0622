package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportRecordLifecycle(t *testing.T) {
	now := time.Now().UTC()

	t.Run("complete sets chunks count and completed at", func(t *testing.T) {
		r := &ImportRecord{Status: ImportStatusProcessing}
		require.NoError(t, r.Complete(3, now))

		assert.Equal(t, ImportStatusCompleted, r.Status)
		require.NotNil(t, r.ChunksCount)
		assert.Equal(t, 3, *r.ChunksCount)
		require.NotNil(t, r.CompletedAt)
		assert.Equal(t, now, *r.CompletedAt)
	})

	t.Run("fail sets error message", func(t *testing.T) {
		r := &ImportRecord{Status: ImportStatusProcessing}
		require.NoError(t, r.Fail("parse error", now))

		assert.Equal(t, ImportStatusFailed, r.Status)
		require.NotNil(t, r.ErrorMessage)
		assert.Equal(t, "parse error", *r.ErrorMessage)
		assert.Nil(t, r.ChunksCount)
	})

	t.Run("terminal states are immutable", func(t *testing.T) {
		r := &ImportRecord{Status: ImportStatusProcessing}
		require.NoError(t, r.Complete(1, now))

		assert.ErrorIs(t, r.Complete(2, now), ErrImportRecordTerminal)
		assert.ErrorIs(t, r.Fail("late failure", now), ErrImportRecordTerminal)
		require.NotNil(t, r.ChunksCount)
		assert.Equal(t, 1, *r.ChunksCount)
	})
}

func TestSearchResultRankScore(t *testing.T) {
	sim := 0.87
	withSim := &SearchResult{ID: 1, Similarity: &sim}
	keywordOnly := &SearchResult{ID: 2}

	assert.Equal(t, 0.87, withSim.RankScore())
	assert.Equal(t, 0.0, keywordOnly.RankScore())
}
