package extractor

import (
	"bufio"
	"io"

	"github.com/gbarros/docfields/internal/block"
)

// TextExtractor handles plain text files. One raw block per non-empty line:
// scanned forms put one labelled field per line, and line granularity is
// what the label/next-block strategies expect.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, filename string) ([]block.RawBlock, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []block.RawBlock
	for scanner.Scan() {
		blocks = append(blocks, lineBlocks(scanner.Text(), 1)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}
