package candidate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gbarros/docfields/internal/block"
	"github.com/gbarros/docfields/internal/textutil"
)

// Evidence patterns for Brazilian occupational-health documents. These are
// the configuration of the engine, not incidental constants.
var (
	personFallbackRE = regexp.MustCompile(
		`\b([A-ZÁÀÂÃÉÈÊÍÌÎÓÒÔÕÚÙÛÇ][a-záàâãéèêíìîóòôõúùûç]+(?:\s+` +
			`[A-ZÁÀÂÃÉÈÊÍÌÎÓÒÔÕÚÙÛÇ][a-záàâãéèêíìîóòôõúùûç]+){1,3})\b`)

	personAllCapsRE = regexp.MustCompile(
		`\b([A-ZÁÀÂÃÉÈÊÍÌÎÓÒÔÕÚÙÛÇ]{2,}(?:\s+(?:DA|DE|DO|DOS|DAS)\s+)?` +
			`[A-ZÁÀÂÃÉÈÊÍÌÎÓÒÔÕÚÙÛÇ]{2,}(?:\s+[A-ZÁÀÂÃÉÈÊÍÌÎÓÒÔÕÚÙÛÇ]{2,}){0,2})\b`)

	personKeywordLineRE = regexp.MustCompile(
		`(?i)\b(?:nome|funcion[áa]rio|empregado)\b\s*[:\-]\s*(.+)$`)

	companyHintRE = regexp.MustCompile(
		`\b(LTDA|Ltda|S/A|SA|EIRELI|ME|EPP|E\.?P\.?P\.?|IND[ÚU]STRIA|COM[ÉE]RCIO|SERVI[ÇC]OS)\b`)

	companyKeywordLineRE = regexp.MustCompile(
		`(?i)\b(?:empresa|empregador|raz[aã]o\s+social|unidade|estabelecimento|local|fantasia|nome\s+fantasia)\b\s*(?:[:\-]\s*)?(.+)$`)
)

// Label tokens that, alone in a block or line, announce the company value.
var companyLabels = map[string]struct{}{
	"empresa":         {},
	"empregador":      {},
	"razao social":    {},
	"razão social":    {},
	"fantasia":        {},
	"nome fantasia":   {},
	"unidade":         {},
	"estabelecimento": {},
	"local":           {},
}

const (
	maxPersonValueTokens  = 4
	maxCompanyValueTokens = 12
)

func firstTokens(text string, n int) string {
	parts := strings.Fields(text)
	if len(parts) > n {
		parts = parts[:n]
	}
	return strings.Join(parts, " ")
}

func newCandidate(kind Kind, value string, b *block.Block, source string) Candidate {
	return Candidate{
		Kind:       kind,
		Text:       value,
		Norm:       textutil.NormalizeForMatch(value),
		BlockID:    b.ID,
		Page:       b.Page,
		BlockIndex: b.Index,
		Source:     source,
	}
}

// extractPersonKeywordLine finds "Nome: ..." style lines. The value is cut
// after four tokens so trailing fields (CPF/RG/...) don't ride along.
func extractPersonKeywordLine(blocks []block.Block) []Candidate {
	var out []Candidate
	for i := range blocks {
		b := &blocks[i]
		m := personKeywordLineRE.FindStringSubmatch(b.Text)
		if m == nil {
			continue
		}
		value := firstTokens(textutil.NormalizeText(m[1]), maxPersonValueTokens)
		if !LooksLikePerson(value) {
			continue
		}
		out = append(out, newCandidate(KindPerson, value, b, SourceKeywordLine))
	}
	return out
}

// extractPersonFallback runs the two pattern extractors that work without
// any recognizer: capitalized multi-token sequences, then fully upper-cased
// sequences allowing name connectors.
func extractPersonFallback(blocks []block.Block) []Candidate {
	var out []Candidate
	for i := range blocks {
		b := &blocks[i]
		for _, m := range personFallbackRE.FindAllStringSubmatch(b.Text, -1) {
			value := textutil.NormalizeText(m[1])
			if !LooksLikePerson(value) {
				continue
			}
			out = append(out, newCandidate(KindPerson, value, b, SourceRegex))
		}
		for _, m := range personAllCapsRE.FindAllStringSubmatch(b.Text, -1) {
			value := textutil.NormalizeText(m[1])
			if !LooksLikePerson(value) {
				continue
			}
			out = append(out, newCandidate(KindPerson, value, b, SourceRegexCaps))
		}
	}
	return out
}

// extractCompany runs every organization strategy over each block, appending
// in a fixed order so dedup keeps the strongest provenance.
func extractCompany(blocks []block.Block) []Candidate {
	var out []Candidate
	for i := range blocks {
		b := &blocks[i]
		txt := b.Text
		if strings.TrimSpace(txt) == "" {
			continue
		}

		// Label and value inside the same block, value on the next line.
		lines := nonEmptyLines(txt)
		if len(lines) >= 2 {
			if _, ok := companyLabels[textutil.NormalizeForMatch(lines[0])]; ok {
				value := firstTokens(textutil.NormalizeText(lines[1]), maxCompanyValueTokens)
				if LooksLikeCompany(value) {
					out = append(out, newCandidate(KindCompany, value, b, SourceLabelNextLine))
				}
			}
		}

		// "Empresa: CEI Erinice Siqueira" style keyword lines.
		if m := companyKeywordLineRE.FindStringSubmatch(txt); m != nil && strings.TrimSpace(m[1]) != "" {
			value := firstTokens(textutil.NormalizeText(m[1]), maxCompanyValueTokens)
			if LooksLikeCompany(value) {
				out = append(out, newCandidate(KindCompany, value, b, SourceKeywordLine))
			}
		}

		// Label alone in a block, value in one of the next blocks on the
		// same page.
		if _, ok := companyLabels[textutil.NormalizeForMatch(txt)]; ok {
			for delta := 1; delta <= 3; delta++ {
				nxt := b.Index + delta
				if nxt >= len(blocks) {
					break
				}
				nb := &blocks[nxt]
				if nb.Page != b.Page {
					break
				}
				value := firstTokens(textutil.NormalizeText(nb.Text), maxCompanyValueTokens)
				if value == "" {
					continue
				}
				if LooksLikeCompany(value) {
					out = append(out, newCandidate(KindCompany, value, nb, SourceLabelNextBlock))
					break
				}
			}
		}

		// Legal-entity suffixes make the block itself a candidate.
		if companyHintRE.MatchString(txt) {
			value := textutil.NormalizeText(txt)
			if utf8.RuneCountInString(value) >= 4 && LooksLikeCompany(value) {
				out = append(out, newCandidate(KindCompany, value, b, SourceCompanyHint))
			}
		}

		// All-caps digit-free blocks are often headers or company names.
		if utf8.RuneCountInString(txt) >= 8 && isUpperString(txt) && !textutil.HasDigit(txt) {
			value := textutil.NormalizeText(txt)
			if LooksLikeCompany(value) {
				out = append(out, newCandidate(KindCompany, value, b, SourceCaps))
			}
		}
	}
	return out
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}
