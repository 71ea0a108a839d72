package extractor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/gbarros/docfields/internal/block"
)

// PDFExtractor handles PDF files. It reads positioned text rows via the Go
// library first, then falls back to plain text, then to pdftotext if
// enabled.
type PDFExtractor struct {
	FallbackPdftotext bool
}

func (p *PDFExtractor) Extract(r io.Reader, filename string) ([]block.RawBlock, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docfields-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	blocks, err := extractPDFRows(tmpPath)
	if err == nil && len(blocks) > 0 {
		return blocks, nil
	}

	blocks, err = extractPDFPlain(tmpPath)
	if err != nil && p.FallbackPdftotext {
		blocks, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return blocks, nil
}

// extractPDFRows emits one raw block per text row, carrying a bounding box
// so the engine can use vertical position evidence. PDF user space has y
// growing upward; rows are flipped against the page media box so y=0 means
// top of page.
func extractPDFRows(path string) ([]block.RawBlock, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var blocks []block.RawBlock
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageHeight := mediaBoxHeight(page)
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			if len(row.Content) == 0 {
				continue
			}
			var sb strings.Builder
			minX, maxX := row.Content[0].X, row.Content[0].X
			minY, maxY := row.Content[0].Y, row.Content[0].Y
			for _, t := range row.Content {
				sb.WriteString(t.S)
				if t.X < minX {
					minX = t.X
				}
				if x := t.X + t.W; x > maxX {
					maxX = x
				}
				if t.Y < minY {
					minY = t.Y
				}
				if t.Y > maxY {
					maxY = t.Y
				}
			}
			text := strings.TrimSpace(sb.String())
			if text == "" {
				continue
			}
			y0, y1 := minY, maxY
			if pageHeight > 0 {
				y0, y1 = pageHeight-maxY, pageHeight-minY
			}
			blocks = append(blocks, block.RawBlock{
				Text: text,
				Page: i,
				BBox: block.BBox{X0: minX, Y0: y0, X1: maxX, Y1: y1},
			})
		}
	}
	return blocks, nil
}

func mediaBoxHeight(page pdflib.Page) float64 {
	mb := page.V.Key("MediaBox")
	if mb.IsNull() || mb.Len() != 4 {
		return 0
	}
	y0 := mb.Index(1).Float64()
	y1 := mb.Index(3).Float64()
	if y1 > y0 {
		return y1 - y0
	}
	return 0
}

// extractPDFPlain falls back to unpositioned page text, one block per line.
func extractPDFPlain(path string) ([]block.RawBlock, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var blocks []block.RawBlock
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		blocks = append(blocks, lineBlocks(text, i)...)
	}
	return blocks, nil
}

func extractPdftotext(path string) ([]block.RawBlock, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	var blocks []block.RawBlock
	for i, pageText := range strings.Split(string(out), "\f") {
		blocks = append(blocks, lineBlocks(pageText, i+1)...)
	}
	return blocks, nil
}

func lineBlocks(text string, page int) []block.RawBlock {
	var blocks []block.RawBlock
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks, block.RawBlock{Text: line, Page: page})
	}
	return blocks
}
