package decision

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/scoring"
)

type fakeCompleter struct {
	response string
	err      error
	system   string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.system = system
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rankedFixture() scoring.Ranked {
	return scoring.Ranked{
		People: []scoring.ScoredCandidate{
			sc("Maria Silva", 2.5, 0),
			sc("Ana Souza", 2.0, 1),
		},
		Companies: []scoring.ScoredCandidate{
			sc("ACME LTDA", 4.0, 2),
			sc("BETA LTDA", 1.0, 3),
		},
	}
}

func TestDecide_NoCompleterUsesFallback(t *testing.T) {
	r := NewResolver(nil, config.Load(), testLogger())
	d := r.Decide(context.Background(), rankedFixture())
	if d.LLMUsed {
		t.Error("expected LLMUsed false without completer")
	}
	// People margin is ambiguous, companies clear.
	if d.Funcionario != Undefined {
		t.Errorf("funcionario = %q, want %q", d.Funcionario, Undefined)
	}
	if d.Empresa != "ACME LTDA" {
		t.Errorf("empresa = %q, want %q", d.Empresa, "ACME LTDA")
	}
}

func TestDecide_DelegatesAndValidates(t *testing.T) {
	fc := &fakeCompleter{response: `{"funcionario": "Maria Silva", "empresa": "ACME LTDA"}`}
	r := NewResolver(fc, config.Load(), testLogger())
	d := r.Decide(context.Background(), rankedFixture())
	if !d.LLMUsed {
		t.Error("expected LLMUsed true")
	}
	if d.Funcionario != "Maria Silva" || d.Empresa != "ACME LTDA" {
		t.Errorf("got %+v", d)
	}
	// The prompt must carry the whitelists.
	if !strings.Contains(fc.system, `"Maria Silva"`) || !strings.Contains(fc.system, `"ACME LTDA"`) {
		t.Errorf("expected candidates in prompt, got %q", fc.system)
	}
}

func TestDecide_InventedAnswerNeutralized(t *testing.T) {
	fc := &fakeCompleter{response: `{"funcionario": "José Inexistente", "empresa": "ACME LTDA"}`}
	r := NewResolver(fc, config.Load(), testLogger())
	d := r.Decide(context.Background(), rankedFixture())
	if d.Funcionario != Undefined {
		t.Errorf("funcionario = %q, want %q", d.Funcionario, Undefined)
	}
	if d.Empresa != "ACME LTDA" {
		t.Errorf("empresa = %q, want %q", d.Empresa, "ACME LTDA")
	}
	if !d.LLMUsed {
		t.Error("delegation happened; expected LLMUsed true")
	}
}

func TestDecide_CompleterErrorFallsBack(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("service unavailable")}
	r := NewResolver(fc, config.Load(), testLogger())
	d := r.Decide(context.Background(), rankedFixture())
	if d.LLMUsed {
		t.Error("expected LLMUsed false after completer failure")
	}
	if d.Empresa != "ACME LTDA" {
		t.Errorf("empresa = %q, want fallback result %q", d.Empresa, "ACME LTDA")
	}
}

func TestDecide_WhitelistLimitedToTopK(t *testing.T) {
	cfg := config.Load()
	cfg.TopKForLLM = 1
	fc := &fakeCompleter{response: `{"funcionario": "Ana Souza", "empresa": "INDEFINIDO"}`}
	r := NewResolver(fc, cfg, testLogger())
	d := r.Decide(context.Background(), rankedFixture())
	// "Ana Souza" is rank 2 and therefore outside the delegated whitelist.
	if d.Funcionario != Undefined {
		t.Errorf("funcionario = %q, want %q", d.Funcionario, Undefined)
	}
	if strings.Contains(fc.system, "Ana Souza") {
		t.Errorf("expected prompt limited to top 1, got %q", fc.system)
	}
}

func TestBuildPrompt_EmptyLists(t *testing.T) {
	p := BuildPrompt(nil, nil)
	if !strings.Contains(p, "FUNCIONARIO_CANDIDATES = []") {
		t.Errorf("expected empty JSON array for people, got %q", p)
	}
	if !strings.Contains(p, "EMPRESA_CANDIDATES = []") {
		t.Errorf("expected empty JSON array for companies, got %q", p)
	}
	if !strings.Contains(p, Undefined) {
		t.Error("expected sentinel mentioned in prompt")
	}
}
