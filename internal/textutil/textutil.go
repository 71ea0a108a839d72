// Package textutil holds the text canonicalization primitives shared by the
// resolution pipeline: display normalization, match-key normalization, and
// the stable short hash used for block identifiers.
package textutil

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	wsRE    = regexp.MustCompile(`\s+`)
	punctRE = regexp.MustCompile(`[^\p{L}\p{N}_\s\-/&.]`)

	foldCaser = cases.Fold()
)

// StableShortHash returns the first length hex chars of SHA-1 over text.
// Deterministic across runs; collision-resistant at single-document scale.
func StableShortHash(text string, length int) string {
	h := sha1.Sum([]byte(text))
	s := hex.EncodeToString(h[:])
	if length > 0 && length < len(s) {
		return s[:length]
	}
	return s
}

// NormalizeText applies NFKC, trims, and collapses whitespace runs to a
// single space. This is the display form carried on blocks and candidates.
func NormalizeText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.TrimSpace(text)
	return wsRE.ReplaceAllString(text, " ")
}

// NormalizeForMatch produces the match key: case-folded, punctuation
// stripped, whitespace collapsed. Used for dedup and frequency counting,
// never displayed.
func NormalizeForMatch(text string) string {
	text = NormalizeText(text)
	text = foldCaser.String(text)
	text = punctRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(wsRE.ReplaceAllString(text, " "))
}

// UsefulCharCount counts alphanumeric runes across the given texts after
// normalization. The extraction quality gate compares this against a
// configured minimum.
func UsefulCharCount(texts []string) int {
	total := 0
	for _, t := range texts {
		for _, ch := range NormalizeText(t) {
			if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
				total++
			}
		}
	}
	return total
}

// HasDigit reports whether text contains any decimal digit rune.
func HasDigit(text string) bool {
	return strings.IndexFunc(text, unicode.IsDigit) >= 0
}
