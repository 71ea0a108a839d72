package candidate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gbarros/docfields/internal/textutil"
)

// Stoplist of field-label words: a value containing one of these is the
// label itself, not a name.
var stopTokens = map[string]struct{}{
	"cpf":         {},
	"rg":          {},
	"cnpj":        {},
	"ctps":        {},
	"pis":         {},
	"nascimento":  {},
	"endereco":    {},
	"endereço":    {},
	"empresa":     {},
	"empregador":  {},
	"funcionario": {},
	"funcionário": {},
	"nome":        {},
	"razao":       {},
	"razão":       {},
	"social":      {},
	"medica":      {},
	"médica":      {},
	"saude":       {},
	"saúde":       {},
	"ocupacional": {},
}

// Document-section phrases that disqualify a company value.
var companyStopPhrases = []string{
	"exame",
	"físico",
	"fisico",
	"periódico",
	"periodico",
	"atestado",
	"laudo",
	"resultado",
	"relatório",
	"relatorio",
	"ocupacional",
	"saúde ocupacional",
	"saude ocupacional",
}

var nameConnectors = map[string]struct{}{
	"da": {}, "de": {}, "do": {}, "dos": {}, "das": {},
}

var upperConnectors = map[string]struct{}{
	"DA": {}, "DE": {}, "DO": {}, "DOS": {}, "DAS": {},
}

var companyPrefixRE = regexp.MustCompile(`(?i)\b(CEI|EMEI|EMEF|EE|E\.E\.|E\.M\.|E\.M\.E\.I\.)\b`)

var longDigitRunRE = regexp.MustCompile(`\d{8,}`)

// LooksLikePerson validates the shape of a person name value: no digits,
// 2-4 tokens, no label stop-words, and enough capitalized (or connector)
// tokens.
func LooksLikePerson(text string) bool {
	t := textutil.NormalizeText(text)
	if textutil.HasDigit(t) {
		return false
	}
	parts := strings.Fields(t)
	if len(parts) < 2 || len(parts) > 4 {
		return false
	}
	for _, tok := range strings.Fields(textutil.NormalizeForMatch(t)) {
		if _, bad := stopTokens[tok]; bad {
			return false
		}
	}

	// ALL-CAPS names are common in forms; require sane tokens.
	if isUpperString(t) {
		alpha := 0
		for _, p := range parts {
			if isAlphaToken(p) {
				alpha++
				continue
			}
			if _, ok := upperConnectors[p]; ok {
				alpha++
			}
		}
		return alpha >= 2
	}

	// Mixed case: at least two capitalized tokens, ignoring connectors.
	title := 0
	for _, p := range parts {
		if _, ok := nameConnectors[textutil.NormalizeForMatch(p)]; ok {
			continue
		}
		r := []rune(p)
		if len(r) > 0 && unicode.IsUpper(r[0]) {
			title++
		}
	}
	return title >= 2
}

// LooksLikeCompany validates the shape of an organization value: bounded
// length, no long digit runs (identifier numbers are not names), none of the
// section stop-phrases, and either a known institutional prefix or 2+ tokens.
func LooksLikeCompany(text string) bool {
	v := textutil.NormalizeText(text)
	if n := utf8.RuneCountInString(v); n < 3 || n > 140 {
		return false
	}
	// Small numbers are fine (e.g. "CEI 1"); long runs mean CNPJ/CPF.
	if longDigitRunRE.MatchString(v) {
		return false
	}
	vNorm := textutil.NormalizeForMatch(v)
	for _, bad := range companyStopPhrases {
		if strings.Contains(vNorm, textutil.NormalizeForMatch(bad)) {
			return false
		}
	}
	if companyPrefixRE.MatchString(v) {
		return true
	}
	return len(strings.Fields(v)) >= 2
}

// isUpperString mirrors the "fully upper-cased" test: at least one cased
// rune, and no lowercase rune.
func isUpperString(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func isAlphaToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
