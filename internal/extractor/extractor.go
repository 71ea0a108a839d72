// Package extractor adapts heterogeneous document formats into the narrow
// []block.RawBlock contract the resolution engine consumes. The engine never
// sees upstream format variability; adapters that cannot produce positions
// simply omit bounding boxes.
package extractor

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gbarros/docfields/internal/block"
	"github.com/gbarros/docfields/internal/textutil"
)

// Extractor converts raw document bytes into ordered raw blocks.
type Extractor interface {
	Extract(r io.Reader, filename string) ([]block.RawBlock, error)
}

// Quality is the outcome of the extraction quality gate.
type Quality string

const (
	QualityOK   Quality = "ok"
	QualityWeak Quality = "weak"
)

// AssessQuality gates on the amount of useful alphanumeric text. A weak
// result short-circuits the run to the sentinel outcome, which is expected,
// not an error.
func AssessQuality(raw []block.RawBlock, minUsefulChars int) Quality {
	texts := make([]string, 0, len(raw))
	for _, rb := range raw {
		texts = append(texts, rb.Text)
	}
	if textutil.UsefulCharCount(texts) >= minUsefulChars {
		return QualityOK
	}
	return QualityWeak
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tunes adapter behavior.
type Options struct {
	// PDFFallbackPdftotext enables shelling out to pdftotext when the
	// native PDF reader yields nothing.
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".csv":
		return &CSVExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
