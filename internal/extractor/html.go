package extractor

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/gbarros/docfields/internal/block"
)

// HTMLExtractor handles HTML files. Headings and content elements each
// become one raw block, preserving document order for the index-window
// strategies.
type HTMLExtractor struct{}

func (p *HTMLExtractor) Extract(r io.Reader, filename string) ([]block.RawBlock, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var blocks []block.RawBlock
	emit := func(text string) {
		text = strings.TrimSpace(text)
		if text != "" {
			blocks = append(blocks, block.RawBlock{Text: text, Page: 1})
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6",
				"p", "li", "td", "th", "blockquote", "pre":
				emit(textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return blocks, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}
