// Package preprocess prepares raw note content for embedding generation.
package preprocess

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// maxCleanedLength bounds the cost of a single embedding call.
// Truncation happens after cleanup so the limit applies to cleaned text.
const maxCleanedLength = 2000

var parser = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Table),
)

// Clean strips markdown syntax from note content and normalizes whitespace,
// producing plain text suitable for embedding. It is deterministic and has no
// side effects. Heading, emphasis, code-fence and strikethrough markers are
// dropped, links are reduced to their label text, whitespace runs collapse to
// a single space, and the result is trimmed and truncated to maxCleanedLength
// characters.
func Clean(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	src := []byte(content)
	doc := parser.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		// Block boundaries become whitespace so adjacent paragraphs,
		// headings and list items do not run together.
		if n.Type() == ast.TypeBlock && b.Len() > 0 {
			b.WriteByte(' ')
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}

		case *ast.String:
			b.Write(node.Value)

		case *ast.AutoLink:
			b.Write(node.Label(src))

		case *ast.CodeBlock:
			writeLines(&b, node, src)

		case *ast.FencedCodeBlock:
			writeLines(&b, node, src)
		}

		return ast.WalkContinue, nil
	})

	cleaned := strings.Join(strings.Fields(b.String()), " ")

	// Truncate last, measured in runes for multi-byte safety.
	runes := []rune(cleaned)
	if len(runes) > maxCleanedLength {
		cleaned = string(runes[:maxCleanedLength])
	}

	return cleaned
}

// writeLines appends the raw lines of a code block node, without fence markers.
func writeLines(b *strings.Builder, node ast.Node, src []byte) {
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(src))
	}
}
