// Package decision picks the final value per field, either through a closed
// deterministic margin rule or by delegating to a completion service whose
// answer is re-validated against the ranked candidate whitelist. Neither
// path can ever return text absent from the candidate set.
package decision

import (
	"strings"

	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/scoring"
)

// Undefined is the sentinel for "no value determined". It is a first-class
// outcome, not an error.
const Undefined = "INDEFINIDO"

// Decision holds the two chosen field values.
type Decision struct {
	Funcionario string
	Empresa     string
	LLMUsed     bool
}

// Fallback applies the deterministic margin rule to both fields. Always
// available; never returns text absent from the ranked lists.
func Fallback(ranked scoring.Ranked, cfg config.Config) Decision {
	return Decision{
		Funcionario: pickDeterministic(ranked.People, cfg),
		Empresa:     pickDeterministic(ranked.Companies, cfg),
	}
}

func pickDeterministic(items []scoring.ScoredCandidate, cfg config.Config) string {
	if len(items) == 0 {
		return Undefined
	}
	top1 := items[0]
	if len(items) == 1 {
		if top1.Score > 0 {
			return top1.Text
		}
		return Undefined
	}
	top2 := items[1]

	if top1.Score-top2.Score >= cfg.MarginAccept && top1.Score > 0 {
		return top1.Text
	}

	// Exact score tie with a strong enough score: tie-break, still only
	// picking from the candidates.
	if diff := top1.Score - top2.Score; diff < cfg.TieEpsilon && diff > -cfg.TieEpsilon && top1.Score >= cfg.TieMinScore {
		if winner := breakTie(top1, top2); winner != "" {
			return winner
		}
		return top1.Text
	}

	return Undefined
}

// breakTie prefers, in order: the strict superset string (more specific
// wins), then same-block keyword evidence, then nearby keyword evidence.
// Empty means no preference.
func breakTie(top1, top2 scoring.ScoredCandidate) string {
	t1 := strings.TrimSpace(top1.Text)
	t2 := strings.TrimSpace(top2.Text)
	if t1 == "" || t2 == "" {
		return ""
	}
	if strings.Contains(t2, t1) && len(t2) > len(t1) {
		return t2
	}
	if strings.Contains(t1, t2) && len(t1) > len(t2) {
		return t1
	}
	for _, reason := range []string{scoring.ReasonKeywordSameBlock, scoring.ReasonKeywordNearby} {
		r1 := hasReason(top1, reason)
		r2 := hasReason(top2, reason)
		if r1 && !r2 {
			return t1
		}
		if r2 && !r1 {
			return t2
		}
	}
	return ""
}

func hasReason(sc scoring.ScoredCandidate, reason string) bool {
	for _, r := range sc.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}
