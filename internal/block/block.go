// Package block turns raw extractor records into immutable, uniquely
// identified blocks with per-page normalized vertical positions.
package block

import (
	"encoding/json"
	"fmt"

	"github.com/gbarros/docfields/internal/textutil"
)

const idLength = 12

// RawBlock is the narrow contract every structural extractor adapter must
// produce. BBox accepts a corner-pair array, an {x0,y0,x1,y1} object, or a
// {left,top,right,bottom} object; anything else is treated as absent.
type RawBlock struct {
	Text string `json:"text"`
	Page int    `json:"page"`
	BBox any    `json:"bbox,omitempty"`
}

// BBox is an axis-aligned bounding box in page coordinates.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// Block is a normalized unit of extracted text. Never mutated after Build.
type Block struct {
	ID    string
	Page  int
	Index int
	Text  string
	BBox  *BBox
	YNorm float64
}

// ParseBBox converts the tolerated upstream bbox shapes into a BBox.
// Malformed boxes yield nil, never an error.
func ParseBBox(v any) *BBox {
	switch b := v.(type) {
	case nil:
		return nil
	case BBox:
		return &b
	case *BBox:
		return b
	case []float64:
		if len(b) == 4 {
			return &BBox{b[0], b[1], b[2], b[3]}
		}
	case [4]float64:
		return &BBox{b[0], b[1], b[2], b[3]}
	case []any:
		if len(b) != 4 {
			return nil
		}
		var out [4]float64
		for i, e := range b {
			f, ok := toFloat(e)
			if !ok {
				return nil
			}
			out[i] = f
		}
		return &BBox{out[0], out[1], out[2], out[3]}
	case map[string]any:
		if bb := bboxFromKeys(b, "x0", "y0", "x1", "y1"); bb != nil {
			return bb
		}
		return bboxFromKeys(b, "left", "top", "right", "bottom")
	}
	return nil
}

func bboxFromKeys(m map[string]any, kx0, ky0, kx1, ky1 string) *BBox {
	vals := make([]float64, 0, 4)
	for _, k := range []string{kx0, ky0, kx1, ky1} {
		raw, ok := m[k]
		if !ok {
			return nil
		}
		f, ok := toFloat(raw)
		if !ok {
			return nil
		}
		vals = append(vals, f)
	}
	return &BBox{vals[0], vals[1], vals[2], vals[3]}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Build converts raw records into ordered Blocks. Pages at or below zero are
// coerced to 1; text is normalized; the per-page vertical denominator is the
// maximum y0/y1 seen on that page. Identifiers are a pure function of
// (page, index, bbox, text).
func Build(raw []RawBlock) []Block {
	blocks := make([]Block, 0, len(raw))
	for idx, rb := range raw {
		page := rb.Page
		if page <= 0 {
			page = 1
		}
		blocks = append(blocks, Block{
			Page:  page,
			Index: idx,
			Text:  textutil.NormalizeText(rb.Text),
			BBox:  ParseBBox(rb.BBox),
		})
	}

	maxYByPage := make(map[int]float64)
	for _, b := range blocks {
		if b.BBox == nil {
			continue
		}
		if b.BBox.Y0 > maxYByPage[b.Page] {
			maxYByPage[b.Page] = b.BBox.Y0
		}
		if b.BBox.Y1 > maxYByPage[b.Page] {
			maxYByPage[b.Page] = b.BBox.Y1
		}
	}

	for i := range blocks {
		b := &blocks[i]
		if b.BBox != nil {
			if denom := maxYByPage[b.Page]; denom > 0 {
				b.YNorm = b.BBox.Y0 / denom
			}
		}
		b.ID = textutil.StableShortHash(idMaterial(b), idLength)
	}
	return blocks
}

func idMaterial(b *Block) string {
	bbox := "nil"
	if b.BBox != nil {
		bbox = fmt.Sprintf("%g,%g,%g,%g", b.BBox.X0, b.BBox.Y0, b.BBox.X1, b.BBox.Y1)
	}
	return fmt.Sprintf("%d:%d:%s:%s", b.Page, b.Index, bbox, b.Text)
}

// ByID indexes blocks by identifier.
func ByID(blocks []Block) map[string]*Block {
	m := make(map[string]*Block, len(blocks))
	for i := range blocks {
		m[blocks[i].ID] = &blocks[i]
	}
	return m
}

// ByIndex indexes blocks by sequence index.
func ByIndex(blocks []Block) map[int]*Block {
	m := make(map[int]*Block, len(blocks))
	for i := range blocks {
		m[blocks[i].Index] = &blocks[i]
	}
	return m
}
