package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloo-solutions/corpusai/internal/domain"
	"github.com/cloo-solutions/corpusai/internal/telemetry"
	"github.com/cloo-solutions/corpusai/internal/vectortext"
)

// SimilarChunk is one row of a store-side similarity search.
type SimilarChunk struct {
	ID           int64
	Title        string
	ChunkContent string
	SourceType   domain.SourceType
	Similarity   float64
}

// SearchStore defines the repository interface for retrieval.
type SearchStore interface {
	// SearchSimilar returns chunks whose similarity to the encoded query
	// vector exceeds threshold, ordered by descending similarity, capped at
	// limit. The filter and ordering are computed by the storage engine.
	SearchSimilar(ctx context.Context, embeddingText string, threshold float64, limit int) ([]*SimilarChunk, error)

	// SearchByKeyword returns chunks whose chunk content contains substring
	// case-insensitively. Order is unspecified.
	SearchByKeyword(ctx context.Context, substring string) ([]*domain.Chunk, error)
}

// ResultCache caches ranked result sets for repeated queries. Both methods
// are best-effort: cache trouble must never fail a search.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]*domain.SearchResult, bool)
	Set(ctx context.Context, key string, results []*domain.SearchResult)
}

// SearchService issues vector and keyword searches against the store and
// merges them into one ranked result set.
type SearchService struct {
	store    SearchStore
	embedder *Embedder
	cache    ResultCache
}

// NewSearchService creates a SearchService. cache may be nil.
func NewSearchService(store SearchStore, embedder *Embedder, cache ResultCache) *SearchService {
	return &SearchService{store: store, embedder: embedder, cache: cache}
}

// VectorSearch embeds the query and delegates to the store's similarity
// search. A query that embeds to an empty vector returns no results.
func (s *SearchService) VectorSearch(ctx context.Context, query string, limit int, threshold float64) ([]*domain.SearchResult, error) {
	if limit <= 0 {
		return []*domain.SearchResult{}, nil
	}

	embedding := s.embedder.Embed(ctx, query)
	if len(embedding) == 0 {
		return []*domain.SearchResult{}, nil
	}

	rows, err := s.store.SearchSimilar(ctx, vectortext.Encode(embedding), threshold, limit)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.SearchResult, 0, len(rows))
	for _, row := range rows {
		similarity := row.Similarity
		results = append(results, &domain.SearchResult{
			ID:         row.ID,
			Title:      row.Title,
			Content:    row.ChunkContent,
			Similarity: &similarity,
			Source:     string(row.SourceType),
		})
	}
	return results, nil
}

// HybridSearch merges vector and keyword hits by chunk ID. Vector results
// win on collision (their score is preserved); keyword-only hits are added
// with a nil similarity that ranks as zero, which deliberately sinks pure
// lexical matches below any positive vector match. Secondary order among
// equal scores is unspecified.
func (s *SearchService) HybridSearch(ctx context.Context, query string, limit int, threshold float64) ([]*domain.SearchResult, error) {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return []*domain.SearchResult{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "SearchService.HybridSearch", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	key := searchCacheKey(query, limit, threshold)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	vectorResults, err := s.VectorSearch(ctx, query, limit, threshold)
	if err != nil {
		return nil, err
	}

	keywordChunks, err := s.store.SearchByKeyword(ctx, query)
	if err != nil {
		return nil, err
	}

	merged := make(map[int64]*domain.SearchResult, len(vectorResults)+len(keywordChunks))
	order := make([]int64, 0, len(vectorResults)+len(keywordChunks))
	for _, r := range vectorResults {
		if _, ok := merged[r.ID]; !ok {
			order = append(order, r.ID)
		}
		merged[r.ID] = r
	}
	for _, c := range keywordChunks {
		if _, ok := merged[c.ID]; ok {
			continue
		}
		merged[c.ID] = &domain.SearchResult{
			ID:      c.ID,
			Title:   c.Title,
			Content: c.ChunkContent,
			Source:  string(c.SourceType),
		}
		order = append(order, c.ID)
	}

	results := make([]*domain.SearchResult, 0, len(merged))
	for _, id := range order {
		results = append(results, merged[id])
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RankScore() > results[j].RankScore()
	})
	if len(results) > limit {
		results = results[:limit]
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, results)
	}
	return results, nil
}

func searchCacheKey(query string, limit int, threshold float64) string {
	return fmt.Sprintf("hybrid|%d|%g|%s", limit, threshold, query)
}
