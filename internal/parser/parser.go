// Package parser extracts plain text from uploaded documents.
//
// Markdown is handled natively. Word and PDF extraction depend on external
// tooling, so their parsers are registered at startup only when available.
package parser

import (
	"fmt"

	"github.com/cloo-solutions/corpusai/internal/domain"
)

// Parser extracts plain text from a raw document payload.
type Parser interface {
	Parse(data []byte) (string, error)
}

// Registry maps source types to their document parsers.
type Registry struct {
	parsers map[domain.SourceType]Parser
}

// NewRegistry creates a registry with the built-in markdown parser installed.
func NewRegistry() *Registry {
	return &Registry{
		parsers: map[domain.SourceType]Parser{
			domain.SourceTypeMarkdown: NewMarkdownParser(),
		},
	}
}

// Register installs a parser for the given source type, replacing any
// existing one.
func (r *Registry) Register(sourceType domain.SourceType, p Parser) {
	r.parsers[sourceType] = p
}

// Parse extracts text from data using the parser registered for sourceType.
func (r *Registry) Parse(sourceType domain.SourceType, data []byte) (string, error) {
	p, ok := r.parsers[sourceType]
	if !ok {
		return "", domain.NewDomainErrorWithCause(
			domain.ErrCodeCapabilityUnavailable,
			fmt.Sprintf("no parser registered for source type %q", sourceType),
			domain.ErrParserUnavailable,
		)
	}
	return p.Parse(data)
}
