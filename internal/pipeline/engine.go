// Package pipeline wires the resolution stages together and manages the
// async job flow for the HTTP service. Within a run stages execute strictly
// in sequence; the two fields are independent and share only read-only
// block data.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/gbarros/docfields/internal/block"
	"github.com/gbarros/docfields/internal/candidate"
	"github.com/gbarros/docfields/internal/confidence"
	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/decision"
	"github.com/gbarros/docfields/internal/extractor"
	"github.com/gbarros/docfields/internal/llm"
	"github.com/gbarros/docfields/internal/ner"
	"github.com/gbarros/docfields/internal/scoring"
)

// Result is the final payload for one document run.
type Result struct {
	Funcionario string            `json:"funcionario"`
	Empresa     string            `json:"empresa"`
	Confidence  confidence.Scores `json:"confidence"`
	Debug       map[string]any    `json:"debug,omitempty"`
}

// Engine runs the resolution stages over one document's blocks. It holds no
// per-run state: concurrent runs are safe.
type Engine struct {
	generator *candidate.Generator
	resolver  *decision.Resolver
	cfg       config.Config
	log       *slog.Logger
}

// NewEngine builds an engine. Both collaborators are optional: a nil
// recognizer degrades generation to pattern-only strategies, a nil completer
// routes decisions through the deterministic path.
func NewEngine(recognizer ner.Recognizer, completer llm.Completer, cfg config.Config, log *slog.Logger) *Engine {
	return &Engine{
		generator: candidate.NewGenerator(recognizer, cfg, log),
		resolver:  decision.NewResolver(completer, cfg, log),
		cfg:       cfg,
		log:       log,
	}
}

// Resolve turns raw extractor records into the final payload. It never
// fails: insufficient evidence yields the sentinel for both fields with
// zero confidence.
func (e *Engine) Resolve(ctx context.Context, raw []block.RawBlock, debug bool) Result {
	quality := extractor.AssessQuality(raw, e.cfg.MinUsefulChars)
	if quality != extractor.QualityOK {
		return WeakResult(string(quality))
	}

	blocks := block.Build(raw)
	cands := e.generator.Generate(ctx, blocks)
	ranked := scoring.Rank(blocks, cands, e.cfg)
	d := e.resolver.Decide(ctx, ranked)
	conf := confidence.Compute(ranked, d, blocks, e.cfg)

	dbg := map[string]any{
		"extraction_quality": string(quality),
	}
	if debug {
		dbg["blocks_count"] = len(blocks)
		dbg["candidates_count"] = map[string]int{
			"funcionarios": len(cands.People),
			"empresas":     len(cands.Companies),
		}
		dbg["ner"] = cands.Meta
		dbg["top_ranked"] = map[string]any{
			"funcionario": topN(ranked.People, 3),
			"empresa":     topN(ranked.Companies, 3),
		}
		dbg["llm_used"] = d.LLMUsed
	}

	return Result{
		Funcionario: d.Funcionario,
		Empresa:     d.Empresa,
		Confidence:  conf,
		Debug:       dbg,
	}
}

// WeakResult is the terminal, expected outcome when upstream extraction
// quality is too low (or extraction failed outright).
func WeakResult(reason string) Result {
	return Result{
		Funcionario: decision.Undefined,
		Empresa:     decision.Undefined,
		Confidence:  confidence.Scores{},
		Debug: map[string]any{
			"extraction_quality": reason,
		},
	}
}

func topN(items []scoring.ScoredCandidate, n int) []scoring.ScoredCandidate {
	if len(items) > n {
		items = items[:n]
	}
	return items
}
