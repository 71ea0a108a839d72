// Package confidence derives a calibrated [0,1] confidence per field from
// the ranking margin and corroborating redundancy in the document.
package confidence

import (
	"math"
	"strings"

	"github.com/gbarros/docfields/internal/block"
	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/decision"
	"github.com/gbarros/docfields/internal/scoring"
	"github.com/gbarros/docfields/internal/textutil"
)

// Scores holds one confidence value per field.
type Scores struct {
	Funcionario float64 `json:"funcionario"`
	Empresa     float64 `json:"empresa"`
}

// Compute derives confidence for both fields. A field decided as the
// sentinel gets exactly 0.0; any defined value is floored at the configured
// minimum.
func Compute(ranked scoring.Ranked, d decision.Decision, blocks []block.Block, cfg config.Config) Scores {
	return Scores{
		Funcionario: one(ranked.People, d.Funcionario, blocks, cfg),
		Empresa:     one(ranked.Companies, d.Empresa, blocks, cfg),
	}
}

func one(items []scoring.ScoredCandidate, chosen string, blocks []block.Block, cfg config.Config) float64 {
	if chosen == decision.Undefined {
		return 0.0
	}
	val := clamp01(marginConfidence(items) + redundancyBonus(chosen, blocks))
	return math.Max(cfg.MinConfidenceWhenDefined, val)
}

// marginConfidence maps the score gap between the two top candidates from a
// conceptual [-1,+1] range onto [0,1].
func marginConfidence(items []scoring.ScoredCandidate) float64 {
	if len(items) == 0 {
		return 0.0
	}
	top1 := items[0].Score
	top2 := 0.0
	if len(items) > 1 {
		top2 = items[1].Score
	}
	denom := math.Max(math.Abs(top1), 1.0)
	margin := (top1 - top2) / denom
	return clamp01((margin + 1.0) / 2.0)
}

// redundancyBonus rewards values corroborated by multiple blocks, capped so
// a single noisy block cannot dominate.
func redundancyBonus(chosen string, blocks []block.Block) float64 {
	chosenNorm := textutil.NormalizeForMatch(chosen)
	if chosenNorm == "" {
		return 0.0
	}
	hits := 0
	for i := range blocks {
		if strings.Contains(textutil.NormalizeForMatch(blocks[i].Text), chosenNorm) {
			hits++
		}
	}
	if hits <= 1 {
		return 0.0
	}
	return math.Min(0.2, 0.05*float64(hits-1))
}

func clamp01(x float64) float64 {
	if x < 0.0 {
		return 0.0
	}
	if x > 1.0 {
		return 1.0
	}
	return x
}
