// Package scoring assigns evidence scores to candidates and produces a
// deterministic total order per kind.
package scoring

import (
	"sort"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"

	"github.com/gbarros/docfields/internal/block"
	"github.com/gbarros/docfields/internal/candidate"
	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/textutil"
)

// Reason tags recorded on scored candidates for auditability. Appended by
// the rule that applied, never retracted.
const (
	ReasonLabelValue       = "label_value"
	ReasonKeywordSameBlock = "keyword_same_block"
	ReasonKeywordNearby    = "keyword_nearby"
	ReasonTopOfDoc         = "top_of_doc"
	ReasonFrequency        = "frequency"
	ReasonShape            = "shape"
)

// Scoring keyword sets. Deliberately smaller than the generation label sets:
// these mark evidence near a candidate, not extraction anchors.
var (
	companyKeywords = []string{
		"empregador",
		"empresa",
		"razao social",
		"razão social",
		"cnpj",
		"contratante",
	}

	personKeywords = []string{
		"funcionario",
		"funcionário",
		"empregado",
		"nome",
		"trabalhador",
		"colaborador",
	}
)

// Matcher.Match mutates internal per-node counters, so matchers must not be
// shared between runs. Each Rank call builds its own pair.
func newKeywordMatcher(keywords []string) *ahocorasick.Matcher {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if n := textutil.NormalizeForMatch(kw); n != "" {
			normalized = append(normalized, n)
		}
	}
	return ahocorasick.NewStringMatcher(normalized)
}

// ScoredCandidate pairs a candidate with its evidence score and the ordered
// reason tags explaining it.
type ScoredCandidate struct {
	Candidate candidate.Candidate `json:"-"`
	Text      string              `json:"text"`
	BlockID   string              `json:"block_id"`
	Page      int                 `json:"page"`
	Score     float64             `json:"score"`
	Reasons   []string            `json:"reasons"`
}

// Ranked holds the per-kind ranked lists, highest score first.
type Ranked struct {
	People    []ScoredCandidate
	Companies []ScoredCandidate
}

// ForKind returns the ranked list for a kind.
func (r Ranked) ForKind(kind candidate.Kind) []ScoredCandidate {
	if kind == candidate.KindPerson {
		return r.People
	}
	return r.Companies
}

// TopTexts returns the display texts of the first k entries.
func TopTexts(ranked []ScoredCandidate, k int) []string {
	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]string, 0, k)
	for _, sc := range ranked[:k] {
		out = append(out, sc.Text)
	}
	return out
}

type labelAttached map[string]struct{}

var labelSources = labelAttached{
	candidate.SourceKeywordLine:    {},
	candidate.SourceLabelNextLine:  {},
	candidate.SourceLabelNextBlock: {},
}

// Rank scores every candidate against the block evidence and sorts each kind
// into a fully deterministic total order: score descending, then block
// sequence index ascending, then display text ascending.
func Rank(blocks []block.Block, set candidate.Set, cfg config.Config) Ranked {
	byID := block.ByID(blocks)
	byIndex := block.ByIndex(blocks)

	blockNorms := make([]string, len(blocks))
	for i := range blocks {
		blockNorms[i] = textutil.NormalizeForMatch(blocks[i].Text)
	}

	freq := countOccurrences(blockNorms, set)

	personMatcher := newKeywordMatcher(personKeywords)
	companyMatcher := newKeywordMatcher(companyKeywords)
	matcherFor := func(kind candidate.Kind) *ahocorasick.Matcher {
		if kind == candidate.KindPerson {
			return personMatcher
		}
		return companyMatcher
	}

	scoreOne := func(c candidate.Candidate) ScoredCandidate {
		b := byID[c.BlockID]
		var reasons []string
		score := 0.0

		if c.Kind == candidate.KindCompany {
			if _, ok := labelSources[c.Source]; ok {
				score += cfg.WeightKeywordSameBlock
				reasons = append(reasons, ReasonLabelValue)
			}
		}

		if b != nil {
			m := matcherFor(c.Kind)
			if containsKeyword(m, blockNorms[b.Index]) {
				score += cfg.WeightKeywordSameBlock
				reasons = append(reasons, ReasonKeywordSameBlock)
			}

			// Nearby blocks, same page, index +/- 2. First match wins.
			for _, delta := range []int{-2, -1, 1, 2} {
				nb := byIndex[b.Index+delta]
				if nb == nil || nb.Page != b.Page {
					continue
				}
				if containsKeyword(m, blockNorms[nb.Index]) {
					score += cfg.WeightKeywordNearby
					reasons = append(reasons, ReasonKeywordNearby)
					break
				}
			}

			// Company identity is conventionally stated near the top of
			// page one.
			if c.Kind == candidate.KindCompany && b.Page == 1 && b.YNorm <= 0.25 {
				score += cfg.WeightTopOfDocCompany
				reasons = append(reasons, ReasonTopOfDoc)
			}
		}

		if f := freq[freqKey{c.Kind, c.Norm}]; f > 1 {
			if f > 5 {
				f = 5
			}
			score += cfg.WeightFrequency * float64(f-1)
			reasons = append(reasons, ReasonFrequency)
		}

		score += cfg.WeightShape * shapeScore(c.Text)
		reasons = append(reasons, ReasonShape)

		return ScoredCandidate{
			Candidate: c,
			Text:      c.Text,
			BlockID:   c.BlockID,
			Page:      c.Page,
			Score:     score,
			Reasons:   reasons,
		}
	}

	score := func(cands []candidate.Candidate) []ScoredCandidate {
		out := make([]ScoredCandidate, 0, len(cands))
		for _, c := range cands {
			out = append(out, scoreOne(c))
		}
		sortRanked(out)
		return out
	}

	return Ranked{
		People:    score(set.People),
		Companies: score(set.Companies),
	}
}

type freqKey struct {
	kind candidate.Kind
	norm string
}

// countOccurrences counts, per candidate match key, the number of blocks
// whose normalized text contains it. Candidate norms become an Aho-Corasick
// pattern set so the whole document is scanned once per kind.
func countOccurrences(blockNorms []string, set candidate.Set) map[freqKey]int {
	freq := make(map[freqKey]int)
	count := func(kind candidate.Kind, cands []candidate.Candidate) {
		patterns := make([]string, 0, len(cands))
		for _, c := range cands {
			if c.Norm != "" {
				patterns = append(patterns, c.Norm)
			}
		}
		if len(patterns) == 0 {
			return
		}
		m := ahocorasick.NewStringMatcher(patterns)
		for _, norm := range blockNorms {
			// Match reports each pattern index at most once per input.
			for _, hit := range m.Match([]byte(norm)) {
				freq[freqKey{kind, patterns[hit]}]++
			}
		}
	}
	count(candidate.KindPerson, set.People)
	count(candidate.KindCompany, set.Companies)
	return freq
}

func containsKeyword(m *ahocorasick.Matcher, textNorm string) bool {
	if textNorm == "" {
		return false
	}
	return len(m.Match([]byte(textNorm))) > 0
}

// shapeScore is the small structural signal: penalize very short, very long,
// or digit-bearing text; otherwise a small positive.
func shapeScore(text string) float64 {
	t := textutil.NormalizeText(text)
	n := utf8.RuneCountInString(t)
	switch {
	case n < 5:
		return -1.0
	case n > 120:
		return -0.5
	case textutil.HasDigit(t):
		return -0.2
	default:
		return 0.5
	}
}

func sortRanked(out []ScoredCandidate) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Candidate.BlockIndex != out[j].Candidate.BlockIndex {
			return out[i].Candidate.BlockIndex < out[j].Candidate.BlockIndex
		}
		return out[i].Text < out[j].Text
	})
}
