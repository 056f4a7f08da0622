package service

import (
	"context"
	"strconv"
	"time"

	"github.com/cloo-solutions/corpusai/internal/domain"
	"github.com/cloo-solutions/corpusai/internal/pagination"
	"github.com/cloo-solutions/corpusai/internal/telemetry"
	"github.com/cloo-solutions/corpusai/internal/vectortext"
)

// ChunkStore defines the repository interface for chunk CRUD.
type ChunkStore interface {
	Insert(ctx context.Context, input InsertChunkInput) (int64, error)
	Update(ctx context.Context, id int64, newContent, newChunkContent, newEmbeddingText string) error
	GetByID(ctx context.Context, id int64) (*domain.Chunk, error)
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.Chunk, error)
}

// KnowledgeService manages chunks created outside the upload flow and
// content updates to existing chunks.
type KnowledgeService struct {
	store     ChunkStore
	embedder  *Embedder
	chunkSize int
}

// NewKnowledgeService creates a KnowledgeService.
func NewKnowledgeService(store ChunkStore, embedder *Embedder, chunkSize int) *KnowledgeService {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &KnowledgeService{store: store, embedder: embedder, chunkSize: chunkSize}
}

// CreateFromExternal splits external content into chunks, embeds each and
// persists them with sourceType external. Content too short to split is
// stored as a single whole-content chunk.
func (s *KnowledgeService) CreateFromExternal(ctx context.Context, title, content, sourceURL string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.CreateFromExternal", telemetry.SpanAttributes{
		Operation: "create",
	})
	defer span.End()

	chunks := SplitText(content, s.chunkSize)
	if len(chunks) == 0 {
		if content == "" {
			return 0, domain.ErrEmptyChunkContent
		}
		chunks = []string{content}
	}

	var url *string
	if sourceURL != "" {
		url = &sourceURL
	}

	for i, chunk := range chunks {
		embedding := s.embedder.Embed(ctx, chunk)
		_, err := s.store.Insert(ctx, InsertChunkInput{
			Title:         title,
			Content:       content,
			ChunkContent:  chunk,
			ChunkIndex:    i,
			EmbeddingText: vectortext.Encode(embedding),
			SourceType:    domain.SourceTypeExternal,
			SourceURL:     url,
		})
		if err != nil {
			return i, err
		}
	}
	return len(chunks), nil
}

// UpdateContent re-embeds newContent and replaces the chunk's content and
// embedding. Fails with NotFound for an unknown id.
func (s *KnowledgeService) UpdateContent(ctx context.Context, id int64, newContent string) error {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.UpdateContent", telemetry.SpanAttributes{
		ChunkID:   strconv.FormatInt(id, 10),
		Operation: "update",
	})
	defer span.End()

	embedding := s.embedder.Embed(ctx, newContent)
	return s.store.Update(ctx, id, newContent, newContent, vectortext.Encode(embedding))
}

// GetByID returns one chunk.
func (s *KnowledgeService) GetByID(ctx context.Context, id int64) (*domain.Chunk, error) {
	return s.store.GetByID(ctx, id)
}

// List returns chunks, newest first, with cursor pagination.
func (s *KnowledgeService) List(ctx context.Context, cursorToken string, limit int) ([]*domain.Chunk, string, error) {
	cursor, err := pagination.DecodeCursor(cursorToken)
	if err != nil {
		return nil, "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	if limit <= 0 {
		limit = 20
	}

	chunks, err := s.store.List(ctx, cursor, limit)
	if err != nil {
		return nil, "", err
	}

	next := pagination.CreateNextCursor(chunks, limit,
		func(c *domain.Chunk) int64 { return c.ID },
		func(c *domain.Chunk) time.Time { return c.CreatedAt })
	return chunks, next, nil
}
