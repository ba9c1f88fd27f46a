package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// loadMarkdown reads a Markdown file and strips formatting, keeping the plain
// text (including code block contents) so that embeddings see prose, not syntax.
func loadMarkdown(path string) ([]Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	text, err := markdownToText(src)
	if err != nil {
		return nil, fmt.Errorf("parse markdown: %w", err)
	}

	return []Document{{
		Source: filepath.Base(path),
		Path:   path,
		Text:   text,
		Type:   TypeMarkdown,
	}}, nil
}

// markdownToText walks the goldmark AST and collects text content,
// separating block-level nodes by blank lines so the splitter can find
// paragraph boundaries.
func markdownToText(src []byte) (string, error) {
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var buf bytes.Buffer
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch t := n.(type) {
			case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.Blockquote:
				buf.WriteString("\n\n")
			case *ast.Link:
				// Keep the destination: URLs in documents are content too.
				buf.WriteString(" (")
				buf.Write(t.Destination)
				buf.WriteString(")")
			}
			return ast.WalkContinue, nil
		}

		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			buf.WriteString("\n\n")
		case *ast.AutoLink:
			buf.Write(t.URL(src))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}
