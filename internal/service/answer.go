package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloo-solutions/corpusai/internal/domain"
)

const (
	// MaxContextChars bounds the overall composed context.
	MaxContextChars = 4000
	// MaxSnippetChars bounds the content snippet taken from each source.
	MaxSnippetChars = 480

	fallbackAnswerChars = 200

	// NoKnowledgeAnswer is returned when generation is unavailable and no
	// context could be composed.
	NoKnowledgeAnswer = "The knowledge base has no relevant content for this question."

	answerSystemPrompt = "You are a helpful assistant. Answer the question using the provided " +
		"knowledge base snippets. If the answer is not in the snippets, say you do not know. " +
		"Keep the answer concise."
)

// ChatClient defines the interface for chat completions. It may be absent;
// absence and runtime failure both route to the fallback answer.
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// BuildContext assembles a numbered, budget-bounded context from ranked
// sources. Entries with both title and content blank are skipped; the
// result never exceeds MaxContextChars.
func BuildContext(sources []*domain.SearchResult) string {
	if len(sources) == 0 {
		return ""
	}

	var sb strings.Builder
	total := 0
	index := 1
	for _, source := range sources {
		if source == nil {
			continue
		}
		title := strings.TrimSpace(source.Title)
		content := strings.TrimSpace(source.Content)
		if title == "" && content == "" {
			continue
		}

		entry := fmt.Sprintf("[%d] ", index)
		if title != "" {
			entry += title + "\n"
		}
		if content != "" {
			entry += truncateRunes(content, MaxSnippetChars) + "\n"
		}
		entry += "\n"

		sb.WriteString(entry)
		total += len([]rune(entry))
		index++
		if total >= MaxContextChars {
			break
		}
	}

	if total > MaxContextChars {
		return truncateRunes(sb.String(), MaxContextChars)
	}
	return sb.String()
}

// AnswerGenerator produces a natural-language answer from a question and a
// composed context, degrading to an extractive summary when the chat
// capability is missing or failing.
type AnswerGenerator struct {
	client ChatClient
}

// NewAnswerGenerator creates an AnswerGenerator. client may be nil.
func NewAnswerGenerator(client ChatClient) *AnswerGenerator {
	if client == nil {
		log.Println("chat client not configured; answers will use fallback logic")
	}
	return &AnswerGenerator{client: client}
}

// Answer generates an answer grounded in context. On any failure: a fixed
// no-knowledge message when context is blank, otherwise the leading slice of
// the context itself.
func (g *AnswerGenerator) Answer(ctx context.Context, question, contextText string) string {
	if strings.TrimSpace(question) == "" {
		return ""
	}

	if g.client != nil {
		userPrompt := fmt.Sprintf("Question: %s\n\nKnowledge base snippets:\n%s", question, contextText)
		answer, err := g.client.Complete(ctx, answerSystemPrompt, userPrompt)
		if err == nil {
			return answer
		}
		log.Printf("chat completion failed, falling back to extractive answer: %v", err)
	}

	if strings.TrimSpace(contextText) == "" {
		return NoKnowledgeAnswer
	}
	return strings.TrimSpace(truncateRunes(contextText, fallbackAnswerChars))
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
