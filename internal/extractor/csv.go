package extractor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gbarros/docfields/internal/block"
)

// CSVExtractor handles CSV files. Each data row becomes one raw block of
// "header: cell" pairs so labelled-value strategies can fire on exports.
type CSVExtractor struct{}

func (p *CSVExtractor) Extract(r io.Reader, filename string) ([]block.RawBlock, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	var blocks []block.RawBlock
	for _, row := range records[1:] {
		var sb strings.Builder
		for j, cell := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			if j < len(headers) {
				sb.WriteString(headers[j] + ": " + cell)
			} else {
				sb.WriteString(cell)
			}
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		blocks = append(blocks, block.RawBlock{Text: text, Page: 1})
	}
	return blocks, nil
}
