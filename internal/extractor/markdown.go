package extractor

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/gbarros/docfields/internal/block"
)

// MarkdownExtractor handles Markdown files using goldmark. Every top-level
// AST block (heading, paragraph, list, ...) becomes one raw block.
type MarkdownExtractor struct{}

func (p *MarkdownExtractor) Extract(r io.Reader, filename string) ([]block.RawBlock, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var blocks []block.RawBlock
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		t := strings.TrimSpace(nodeText(n, src))
		if t == "" {
			continue
		}
		blocks = append(blocks, block.RawBlock{Text: t, Page: 1})
	}
	return blocks, nil
}

// nodeText gets the text content of a goldmark AST node. Blocks with inline
// children render through them; raw lines are only for leaf blocks like code
// fences, otherwise the text would be emitted twice.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(nodeText(c, src))
		}
	}
	return buf.String()
}
