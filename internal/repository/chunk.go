package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/cloo-solutions/corpusai/internal/domain"
	"github.com/cloo-solutions/corpusai/internal/pagination"
	"github.com/cloo-solutions/corpusai/internal/service"
	"github.com/cloo-solutions/corpusai/internal/vectortext"
)

const chunkColumns = `id, title, content, chunk_content, chunk_index, parent_id, embedding, metadata, source_type, source_url, created_at, updated_at`

// ChunkRepository persists knowledge chunks and runs similarity and keyword
// searches against them.
type ChunkRepository struct {
	db        dbtx
	dimension int
}

func NewChunkRepository(pool *pgxpool.Pool, dimension int) *ChunkRepository {
	return &ChunkRepository{db: pool, dimension: dimension}
}

func NewChunkRepositoryWithTx(tx pgx.Tx, dimension int) *ChunkRepository {
	return &ChunkRepository{db: tx, dimension: dimension}
}

// Insert stores one chunk and returns its generated id. The embedding text
// is validated against the configured dimension before it reaches the
// database; an empty vector is stored as NULL.
func (r *ChunkRepository) Insert(ctx context.Context, input service.InsertChunkInput) (int64, error) {
	var embeddingText *string
	if input.EmbeddingText != "" && input.EmbeddingText != "[]" {
		if err := vectortext.Validate(input.EmbeddingText, r.dimension); err != nil {
			return 0, err
		}
		embeddingText = &input.EmbeddingText
	}

	now := time.Now().UTC()
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO knowledge_chunks
			(title, content, chunk_content, chunk_index, parent_id, embedding, metadata, source_type, source_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6::vector, $7, $8, $9, $10, $11)
		 RETURNING id`,
		input.Title, input.Content, input.ChunkContent, input.ChunkIndex, input.ParentID,
		embeddingText, input.Metadata, input.SourceType, input.SourceURL, now, now,
	).Scan(&id)
	if err != nil {
		return 0, domain.NewStorageFailure(err)
	}
	return id, nil
}

// Update replaces a chunk's content and embedding and refreshes updated_at.
func (r *ChunkRepository) Update(ctx context.Context, id int64, newContent, newChunkContent, newEmbeddingText string) error {
	var embeddingText *string
	if newEmbeddingText != "" && newEmbeddingText != "[]" {
		if err := vectortext.Validate(newEmbeddingText, r.dimension); err != nil {
			return err
		}
		embeddingText = &newEmbeddingText
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_chunks
		 SET content = $1, chunk_content = $2, embedding = $3::vector, updated_at = $4
		 WHERE id = $5`,
		newContent, newChunkContent, embeddingText, time.Now().UTC(), id,
	)
	if err != nil {
		return domain.NewStorageFailure(err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

func (r *ChunkRepository) GetByID(ctx context.Context, id int64) (*domain.Chunk, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+chunkColumns+` FROM knowledge_chunks WHERE id = $1`, id)
	chunk, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, domain.NewStorageFailure(err)
	}
	return chunk, nil
}

// List returns chunks newest first with keyset pagination on
// (created_at, id).
func (r *ChunkRepository) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.Chunk, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+chunkColumns+`
			 FROM knowledge_chunks
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+chunkColumns+`
			 FROM knowledge_chunks
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit,
		)
	}
	if err != nil {
		return nil, domain.NewStorageFailure(err)
	}
	defer rows.Close()

	return scanChunkRows(rows)
}

// SearchSimilar returns chunks above the cosine similarity threshold,
// closest first. Rows with a NULL embedding never match.
func (r *ChunkRepository) SearchSimilar(ctx context.Context, embeddingText string, threshold float64, limit int) ([]*service.SimilarChunk, error) {
	if err := vectortext.Validate(embeddingText, r.dimension); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, title, chunk_content, source_type,
		        1 - (embedding <=> $1::vector) AS similarity
		 FROM knowledge_chunks
		 WHERE embedding IS NOT NULL
		   AND 1 - (embedding <=> $1::vector) > $2
		 ORDER BY embedding <=> $1::vector
		 LIMIT $3`,
		embeddingText, threshold, limit,
	)
	if err != nil {
		return nil, domain.NewStorageFailure(err)
	}
	defer rows.Close()

	var results []*service.SimilarChunk
	for rows.Next() {
		var c service.SimilarChunk
		var sourceType *string
		if err := rows.Scan(&c.ID, &c.Title, &c.ChunkContent, &sourceType, &c.Similarity); err != nil {
			return nil, domain.NewStorageFailure(err)
		}
		if sourceType != nil {
			c.SourceType = domain.SourceType(*sourceType)
		}
		results = append(results, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageFailure(err)
	}
	return results, nil
}

// SearchByKeyword returns chunks whose chunk content contains substring,
// matched case-insensitively.
func (r *ChunkRepository) SearchByKeyword(ctx context.Context, substring string) ([]*domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+chunkColumns+`
		 FROM knowledge_chunks
		 WHERE chunk_content ILIKE '%' || $1 || '%'`,
		substring,
	)
	if err != nil {
		return nil, domain.NewStorageFailure(err)
	}
	defer rows.Close()

	return scanChunkRows(rows)
}

// CountChunks returns the total number of stored chunks.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_chunks`).Scan(&count); err != nil {
		return 0, domain.NewStorageFailure(err)
	}
	return count, nil
}

func scanChunk(row pgx.Row) (*domain.Chunk, error) {
	var c domain.Chunk
	var embedding *pgvector.Vector
	var sourceType *string
	if err := row.Scan(&c.ID, &c.Title, &c.Content, &c.ChunkContent, &c.ChunkIndex, &c.ParentID,
		&embedding, &c.Metadata, &sourceType, &c.SourceURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if embedding != nil {
		c.Embedding = embedding.Slice()
	}
	if sourceType != nil {
		c.SourceType = domain.SourceType(*sourceType)
	}
	return &c, nil
}

func scanChunkRows(rows pgx.Rows) ([]*domain.Chunk, error) {
	var results []*domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, domain.NewStorageFailure(err)
		}
		results = append(results, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageFailure(err)
	}
	return results, nil
}
