package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/llm"
	"github.com/gbarros/docfields/internal/scoring"
)

// Resolver selects the final field values. The completer is optional; when
// absent or failing, the deterministic fallback path decides and the run
// records that delegation was not used.
type Resolver struct {
	completer llm.Completer
	cfg       config.Config
	log       *slog.Logger
}

func NewResolver(completer llm.Completer, cfg config.Config, log *slog.Logger) *Resolver {
	return &Resolver{completer: completer, cfg: cfg, log: log}
}

// Decide resolves both fields from the ranked lists. Delegation failures of
// any kind route to the deterministic path; they never fail the run.
func (r *Resolver) Decide(ctx context.Context, ranked scoring.Ranked) Decision {
	topF := scoring.TopTexts(ranked.People, r.cfg.TopKForLLM)
	topE := scoring.TopTexts(ranked.Companies, r.cfg.TopKForLLM)

	if r.completer == nil {
		return Fallback(ranked, r.cfg)
	}

	content, err := r.completer.Complete(ctx, BuildPrompt(topF, topE), "Select the best options now.")
	if err != nil {
		r.log.Warn("delegation unavailable, using deterministic path", "error", err)
		return Fallback(ranked, r.cfg)
	}

	d := ValidateResponse(content, topF, topE)
	d.LLMUsed = true
	return d
}

// BuildPrompt renders the closed-candidate instruction. Only the top-K texts
// per kind are listed; the answer must be one of them or the sentinel.
func BuildPrompt(allowedFuncionarios, allowedEmpresas []string) string {
	fj, _ := json.Marshal(nonNil(allowedFuncionarios))
	ej, _ := json.Marshal(nonNil(allowedEmpresas))
	return "You are a strict information extractor.\n" +
		"You must answer with a single JSON object and nothing else.\n" +
		"Rules:\n" +
		"- You are NOT allowed to invent names.\n" +
		"- You MUST choose ONLY from the provided candidates, or " + Undefined + ".\n" +
		"- Output must be strict JSON.\n\n" +
		fmt.Sprintf("FUNCIONARIO_CANDIDATES = %s\n", fj) +
		fmt.Sprintf("EMPRESA_CANDIDATES = %s\n\n", ej) +
		`Return JSON exactly like: {"funcionario": "...|` + Undefined + `", "empresa": "...|` + Undefined + `"}` + "\n"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
