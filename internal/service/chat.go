package service

import (
	"context"

	"github.com/cloo-solutions/corpusai/internal/domain"
	"github.com/cloo-solutions/corpusai/internal/telemetry"
)

const (
	// DefaultChatLimit is used when a chat request omits the source limit.
	DefaultChatLimit = 6
	// DefaultChatThreshold is used when a chat request omits the similarity threshold.
	DefaultChatThreshold = 0.7
)

// ChatResponse carries a generated answer together with the sources it was
// grounded in.
type ChatResponse struct {
	Answer  string                 `json:"answer"`
	Sources []*domain.SearchResult `json:"sources"`
}

// ChatService answers questions from the knowledge corpus: vector retrieval
// followed by context-grounded answer generation.
type ChatService struct {
	search  *SearchService
	answers *AnswerGenerator
}

// NewChatService creates a ChatService.
func NewChatService(search *SearchService, answers *AnswerGenerator) *ChatService {
	return &ChatService{search: search, answers: answers}
}

// ChatWithKnowledge retrieves sources for the query and generates an answer
// from the composed context. limit and threshold fall back to the chat
// defaults when nil.
func (s *ChatService) ChatWithKnowledge(ctx context.Context, query string, limit *int, threshold *float64) (*ChatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.ChatWithKnowledge", telemetry.SpanAttributes{
		Operation: "chat",
	})
	defer span.End()

	safeLimit := DefaultChatLimit
	if limit != nil {
		safeLimit = *limit
	}
	safeThreshold := DefaultChatThreshold
	if threshold != nil {
		safeThreshold = *threshold
	}

	sources, err := s.search.VectorSearch(ctx, query, safeLimit, safeThreshold)
	if err != nil {
		return nil, err
	}

	answer := s.answers.Answer(ctx, query, BuildContext(sources))
	return &ChatResponse{Answer: answer, Sources: sources}, nil
}
