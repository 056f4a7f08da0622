//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/corpusai/internal/domain"
	"github.com/cloo-solutions/corpusai/internal/pagination"
	"github.com/cloo-solutions/corpusai/internal/service"
	"github.com/cloo-solutions/corpusai/internal/testutil"
	"github.com/cloo-solutions/corpusai/internal/vectortext"
)

const testDimension = 1024

// axisVector returns a unit vector along the given axis, encoded for storage.
func axisVector(axis int) string {
	v := make([]float32, testDimension)
	v[axis] = 1
	return vectortext.Encode(v)
}

func insertTestChunk(ctx context.Context, t *testing.T, repo *ChunkRepository, title, chunkContent, embeddingText string) int64 {
	t.Helper()
	id, err := repo.Insert(ctx, service.InsertChunkInput{
		Title:         title,
		Content:       chunkContent,
		ChunkContent:  chunkContent,
		EmbeddingText: embeddingText,
		SourceType:    domain.SourceTypeExternal,
	})
	require.NoError(t, err)
	return id
}

func TestChunkRepository_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool, testDimension)

	id := insertTestChunk(ctx, t, repo, "Go Basics", "Go has goroutines.", axisVector(0))
	require.Positive(t, id)

	chunk, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", chunk.Title)
	assert.Equal(t, "Go has goroutines.", chunk.ChunkContent)
	assert.Equal(t, domain.SourceTypeExternal, chunk.SourceType)
	assert.Len(t, chunk.Embedding, testDimension)
	assert.False(t, chunk.CreatedAt.IsZero())
}

func TestChunkRepository_Insert_EmptyEmbeddingStoredAsNull(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool, testDimension)

	id := insertTestChunk(ctx, t, repo, "No Vector", "plain text", "")

	chunk, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, chunk.Embedding)

	// NULL embeddings never participate in similarity search.
	results, err := repo.SearchSimilar(ctx, axisVector(0), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChunkRepository_Insert_WrongDimension(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool, testDimension)

	_, err := repo.Insert(ctx, service.InsertChunkInput{
		ChunkContent:  "bad vector",
		EmbeddingText: vectortext.Encode([]float32{1, 2, 3}),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWrongEmbeddingDimension)
}

func TestChunkRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool, testDimension)

	_, err := repo.GetByID(ctx, 999999)
	assert.ErrorIs(t, err, domain.ErrChunkNotFound)
}

func TestChunkRepository_Update(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool, testDimension)

	id := insertTestChunk(ctx, t, repo, "Title", "old content", axisVector(0))

	before, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	err = repo.Update(ctx, id, "new content", "new content", axisVector(1))
	require.NoError(t, err)

	after, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new content", after.ChunkContent)
	assert.Equal(t, float32(1), after.Embedding[1])
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt) || after.UpdatedAt.Equal(before.UpdatedAt))
}

func TestChunkRepository_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool, testDimension)

	err := repo.Update(ctx, 999999, "c", "c", axisVector(0))
	assert.ErrorIs(t, err, domain.ErrChunkNotFound)
}

func TestChunkRepository_SearchSimilar(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool, testDimension)

	matchID := insertTestChunk(ctx, t, repo, "Match", "matching chunk", axisVector(0))
	insertTestChunk(ctx, t, repo, "Orthogonal", "unrelated chunk", axisVector(1))

	// Query along axis 0: cosine similarity 1 for the match, 0 for the rest.
	results, err := repo.SearchSimilar(ctx, axisVector(0), 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, matchID, results[0].ID)
	assert.Equal(t, "Match", results[0].Title)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
}

func TestChunkRepository_SearchSimilar_LimitAndOrder(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool, testDimension)

	// Axis 0 matches perfectly, a mixed vector matches partially.
	exactID := insertTestChunk(ctx, t, repo, "Exact", "exact", axisVector(0))

	mixed := make([]float32, testDimension)
	mixed[0] = 1
	mixed[1] = 1
	partialID := insertTestChunk(ctx, t, repo, "Partial", "partial", vectortext.Encode(mixed))

	results, err := repo.SearchSimilar(ctx, axisVector(0), 0.1, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, exactID, results[0].ID)
	assert.Equal(t, partialID, results[1].ID)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)

	limited, err := repo.SearchSimilar(ctx, axisVector(0), 0.1, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, exactID, limited[0].ID)
}

func TestChunkRepository_SearchByKeyword(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool, testDimension)

	id := insertTestChunk(ctx, t, repo, "Doc", "Goroutines are lightweight threads.", axisVector(0))
	insertTestChunk(ctx, t, repo, "Other", "Channels synchronize.", axisVector(1))

	results, err := repo.SearchByKeyword(ctx, "goroutines")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, id, results[0].ID)
}

func TestChunkRepository_List_Pagination(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool, testDimension)

	for i := 0; i < 5; i++ {
		insertTestChunk(ctx, t, repo, "Doc", "chunk content", axisVector(i))
	}

	first, err := repo.List(ctx, nil, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)

	last := first[len(first)-1]
	second, err := repo.List(ctx, &pagination.Cursor{LastID: last.ID, Timestamp: last.CreatedAt}, 3)
	require.NoError(t, err)
	require.Len(t, second, 2)

	seen := map[int64]bool{}
	for _, c := range append(first, second...) {
		assert.False(t, seen[c.ID], "chunk %d returned twice", c.ID)
		seen[c.ID] = true
	}
}

func TestChunkRepository_CountChunks(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool, testDimension)

	count, err := repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	insertTestChunk(ctx, t, repo, "Doc", "chunk", axisVector(0))
	insertTestChunk(ctx, t, repo, "Doc", "chunk", axisVector(1))

	count, err = repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
