package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser extracts plain text from markdown documents by walking the
// parsed AST and collecting text segments. Formatting markers, link targets
// and raw HTML are dropped.
type MarkdownParser struct {
	md goldmark.Markdown
}

// NewMarkdownParser creates a markdown parser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		md: goldmark.New(),
	}
}

// Parse extracts the plain text content of a markdown document. Block
// boundaries become newlines so chunking does not glue paragraphs together.
func (p *MarkdownParser) Parse(data []byte) (string, error) {
	doc := p.md.Parser().Parse(text.NewReader(data))

	var sb strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(data))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.AutoLink:
			sb.Write(node.URL(data))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(sb.String()), nil
}
