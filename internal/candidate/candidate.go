// Package candidate generates typed, deduplicated field candidates from
// normalized blocks. Strategies are a fixed ordered list of pure functions;
// their outputs are concatenated, shape-validated, and deduplicated with
// first-occurrence-wins semantics.
package candidate

// Kind distinguishes the two extracted fields.
type Kind string

const (
	KindPerson  Kind = "funcionario"
	KindCompany Kind = "empresa"
)

// Provenance tags identifying which strategy produced a candidate.
const (
	SourceNER            = "ner"
	SourceRegex          = "regex"
	SourceRegexCaps      = "regex_caps"
	SourceKeywordLine    = "keyword_line"
	SourceLabelNextLine  = "label_next_line"
	SourceLabelNextBlock = "label_next_block"
	SourceCompanyHint    = "company_hint"
	SourceCaps           = "caps"
)

// Candidate is a typed, located textual hypothesis for a field. Immutable
// after generation.
type Candidate struct {
	Kind       Kind
	Text       string // display text, human-normalized
	Norm       string // match key: dedup and frequency, never displayed
	BlockID    string
	Page       int
	BlockIndex int
	Source     string
}

// Meta records generation-time degradations.
type Meta struct {
	NERAvailable bool   `json:"ner_available"`
	NERError     string `json:"ner_error,omitempty"`
}

// Set holds the deduplicated candidate lists for one run.
type Set struct {
	People    []Candidate
	Companies []Candidate
	Meta      Meta
}

// dedupe collapses candidates sharing (kind, match key) to the first
// occurrence in generation order.
func dedupe(cands []Candidate) []Candidate {
	type key struct {
		kind Kind
		norm string
	}
	seen := make(map[key]struct{}, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		k := key{c.Kind, c.Norm}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

func truncateCandidates(cands []Candidate, max int) []Candidate {
	if max > 0 && len(cands) > max {
		return cands[:max]
	}
	return cands
}
