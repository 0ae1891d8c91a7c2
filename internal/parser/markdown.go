package parser

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
)

// extractMarkdown walks the goldmark AST and collects the plain text,
// separating block elements with blank lines.
func extractMarkdown(r io.Reader) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(gtext.NewReader(src))

	var buf strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n.Kind() {
		case ast.KindHeading, ast.KindParagraph, ast.KindListItem, ast.KindBlockquote:
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
		case ast.KindCodeBlock, ast.KindFencedCodeBlock:
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		}

		if t, ok := n.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return joinPages([]string{buf.String()}), nil
}
