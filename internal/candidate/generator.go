package candidate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gbarros/docfields/internal/block"
	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/ner"
	"github.com/gbarros/docfields/internal/textutil"
)

// Generator produces candidate sets from blocks. The recognizer is optional;
// when absent or failing, generation degrades to pattern-only strategies and
// the degradation is recorded in Meta, never raised.
type Generator struct {
	recognizer ner.Recognizer
	cfg        config.Config
	log        *slog.Logger
}

func NewGenerator(recognizer ner.Recognizer, cfg config.Config, log *slog.Logger) *Generator {
	return &Generator{recognizer: recognizer, cfg: cfg, log: log}
}

// Generate runs all strategies in fixed order and returns deduplicated,
// truncated candidate lists per kind.
func (g *Generator) Generate(ctx context.Context, blocks []block.Block) Set {
	var meta Meta

	people, nerErr := g.extractPersonNER(ctx, blocks)
	if g.recognizer != nil {
		if nerErr != nil {
			meta.NERError = nerErr.Error()
			g.log.Warn("ner degraded to pattern-only extraction", "error", nerErr)
			people = nil
		} else {
			meta.NERAvailable = true
		}
	}

	people = append(people, extractPersonKeywordLine(blocks)...)
	people = append(people, extractPersonFallback(blocks)...)
	companies := extractCompany(blocks)

	people = truncateCandidates(dedupe(people), g.cfg.MaxCandidatesPerKind)
	companies = truncateCandidates(dedupe(companies), g.cfg.MaxCandidatesPerKind)

	return Set{People: people, Companies: companies, Meta: meta}
}

// extractPersonNER asks the recognizer for spans per block and keeps person
// entities, re-validated against the person-shape rule. A failing recognizer
// invalidates the whole strategy so partially collected spans never bias the
// run.
func (g *Generator) extractPersonNER(ctx context.Context, blocks []block.Block) ([]Candidate, error) {
	if g.recognizer == nil {
		return nil, nil
	}
	var out []Candidate
	for i := range blocks {
		b := &blocks[i]
		if b.Text == "" {
			continue
		}
		spans, err := g.recognizer.Entities(ctx, b.Text)
		if err != nil {
			return nil, err
		}
		for _, span := range spans {
			label := strings.ToUpper(span.Label)
			if label != "PER" && label != "PERSON" {
				continue
			}
			value := textutil.NormalizeText(span.Text)
			if !LooksLikePerson(value) {
				continue
			}
			out = append(out, newCandidate(KindPerson, value, b, SourceNER))
		}
	}
	return out, nil
}
