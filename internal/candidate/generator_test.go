package candidate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/gbarros/docfields/internal/block"
	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/ner"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRecognizer returns canned spans, or an error after failAfter calls.
type fakeRecognizer struct {
	spans     map[string][]ner.Span
	err       error
	failAfter int
	calls     int
}

func (f *fakeRecognizer) Entities(ctx context.Context, text string) ([]ner.Span, error) {
	f.calls++
	if f.err != nil && f.calls > f.failAfter {
		return nil, f.err
	}
	return f.spans[text], nil
}

func buildBlocks(texts ...string) []block.Block {
	raw := make([]block.RawBlock, len(texts))
	for i, txt := range texts {
		raw[i] = block.RawBlock{Text: txt, Page: 1}
	}
	return block.Build(raw)
}

func findCandidate(cands []Candidate, text string) *Candidate {
	for i := range cands {
		if cands[i].Text == text {
			return &cands[i]
		}
	}
	return nil
}

func TestGenerate_PatternOnly(t *testing.T) {
	cfg := config.Load()
	g := NewGenerator(nil, cfg, testLogger())

	blocks := buildBlocks(
		"Nome: Sandra Regina Hortencio",
		"Empresa: CEI Erinice Siqueira",
		"ACME COMERCIO LTDA",
	)
	set := g.Generate(context.Background(), blocks)

	p := findCandidate(set.People, "Sandra Regina Hortencio")
	if p == nil {
		t.Fatalf("expected person candidate, got %+v", set.People)
	}
	if p.Source != SourceKeywordLine {
		t.Errorf("expected source %q, got %q", SourceKeywordLine, p.Source)
	}
	if p.BlockID != blocks[0].ID {
		t.Errorf("expected block ID %q, got %q", blocks[0].ID, p.BlockID)
	}

	c := findCandidate(set.Companies, "CEI Erinice Siqueira")
	if c == nil {
		t.Fatalf("expected company candidate, got %+v", set.Companies)
	}
	if c.Source != SourceKeywordLine {
		t.Errorf("expected source %q, got %q", SourceKeywordLine, c.Source)
	}
	if findCandidate(set.Companies, "ACME COMERCIO LTDA") == nil {
		t.Error("expected legal-suffix company candidate")
	}

	if set.Meta.NERAvailable {
		t.Error("expected NERAvailable false without recognizer")
	}
}

func TestGenerate_PersonValueTruncated(t *testing.T) {
	g := NewGenerator(nil, config.Load(), testLogger())
	blocks := buildBlocks("Funcionário: Ana Paula Souza Lima Auxiliar Administrativo")
	set := g.Generate(context.Background(), blocks)
	if findCandidate(set.People, "Ana Paula Souza Lima") == nil {
		t.Errorf("expected value cut at four tokens, got %+v", set.People)
	}
}

func TestGenerate_NERCandidatesFirst(t *testing.T) {
	rec := &fakeRecognizer{spans: map[string][]ner.Span{
		"Sandra Regina Hortencio compareceu ao exame": {
			{Label: "PER", Text: "Sandra Regina Hortencio"},
			{Label: "ORG", Text: "ignored"},
		},
	}}
	g := NewGenerator(rec, config.Load(), testLogger())
	blocks := buildBlocks("Sandra Regina Hortencio compareceu ao exame")
	set := g.Generate(context.Background(), blocks)

	p := findCandidate(set.People, "Sandra Regina Hortencio")
	if p == nil {
		t.Fatalf("expected NER person candidate, got %+v", set.People)
	}
	if p.Source != SourceNER {
		t.Errorf("expected source %q, got %q", SourceNER, p.Source)
	}
	if !set.Meta.NERAvailable {
		t.Error("expected NERAvailable true")
	}
}

func TestGenerate_NERFailureDegradesToPatterns(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("connection refused")}
	g := NewGenerator(rec, config.Load(), testLogger())
	blocks := buildBlocks("Nome: Maria Silva")
	set := g.Generate(context.Background(), blocks)

	if set.Meta.NERAvailable {
		t.Error("expected NERAvailable false after failure")
	}
	if set.Meta.NERError == "" {
		t.Error("expected NERError recorded")
	}
	if findCandidate(set.People, "Maria Silva") == nil {
		t.Errorf("expected pattern candidates to survive, got %+v", set.People)
	}
}

func TestGenerate_NERMidRunFailureDiscardsEarlierSpans(t *testing.T) {
	// A recognizer that served block 1 but fails on block 2 must not leave
	// block 1's spans in the output.
	rec := &fakeRecognizer{
		spans: map[string][]ner.Span{
			"Carlos Eduardo Pereira assinou": {{Label: "PER", Text: "Carlos Eduardo Pereira"}},
		},
		err:       errors.New("timeout"),
		failAfter: 1,
	}
	g := NewGenerator(rec, config.Load(), testLogger())
	blocks := buildBlocks("Carlos Eduardo Pereira assinou", "segunda linha qualquer")
	set := g.Generate(context.Background(), blocks)

	for _, c := range set.People {
		if c.Source == SourceNER {
			t.Errorf("expected no NER-sourced candidates after mid-run failure, got %+v", c)
		}
	}
	if set.Meta.NERError == "" {
		t.Error("expected NERError recorded")
	}
}

func TestGenerate_DedupFirstWins(t *testing.T) {
	g := NewGenerator(nil, config.Load(), testLogger())
	// Same name via keyword line (first) and plain regex (second).
	blocks := buildBlocks("Nome: Maria Silva", "Maria Silva esteve presente")
	set := g.Generate(context.Background(), blocks)

	count := 0
	var kept *Candidate
	for i := range set.People {
		if set.People[i].Norm == "maria silva" {
			count++
			kept = &set.People[i]
		}
	}
	if count != 1 {
		t.Fatalf("expected 1 deduplicated candidate, got %d", count)
	}
	if kept.Source != SourceKeywordLine {
		t.Errorf("expected first occurrence (keyword_line) to win, got %q", kept.Source)
	}
}

func TestGenerate_TruncatesPerKind(t *testing.T) {
	cfg := config.Load()
	cfg.MaxCandidatesPerKind = 3
	g := NewGenerator(nil, cfg, testLogger())

	texts := []string{
		"Nome: Maria Silva", "Nome: Ana Souza", "Nome: Carla Lima",
		"Nome: Rita Costa", "Nome: Lia Ramos",
	}
	set := g.Generate(context.Background(), buildBlocks(texts...))
	if len(set.People) != 3 {
		t.Errorf("expected 3 candidates after truncation, got %d", len(set.People))
	}
}

func TestExtractCompany_LabelNextLine(t *testing.T) {
	// Multi-line blocks only survive when constructed directly; block.Build
	// collapses whitespace.
	blocks := []block.Block{
		{ID: "b0", Page: 1, Index: 0, Text: "Empresa\nACME COMERCIO LTDA"},
	}
	out := extractCompany(blocks)
	c := findCandidate(out, "ACME COMERCIO LTDA")
	if c == nil {
		t.Fatalf("expected label_next_line candidate, got %+v", out)
	}
	if c.Source != SourceLabelNextLine {
		t.Errorf("expected source %q, got %q", SourceLabelNextLine, c.Source)
	}
}

func TestExtractCompany_LabelNextBlock(t *testing.T) {
	blocks := buildBlocks("Empregador", "CEI Erinice Siqueira")
	out := extractCompany(blocks)
	c := findCandidate(out, "CEI Erinice Siqueira")
	if c == nil {
		t.Fatalf("expected label_next_block candidate, got %+v", out)
	}
	if c.Source != SourceLabelNextBlock {
		t.Errorf("expected source %q, got %q", SourceLabelNextBlock, c.Source)
	}
	if c.BlockIndex != 1 {
		t.Errorf("expected candidate anchored to value block, got index %d", c.BlockIndex)
	}
}

func TestExtractCompany_LabelNextBlockStopsAtPageBreak(t *testing.T) {
	raw := []block.RawBlock{
		{Text: "Empresa", Page: 1},
		{Text: "ACME COMERCIO LTDA", Page: 2},
	}
	out := extractCompany(block.Build(raw))
	for _, c := range out {
		if c.Source == SourceLabelNextBlock {
			t.Errorf("expected no label_next_block across pages, got %+v", c)
		}
	}
}

func TestExtractCompany_SectionHeadingRejected(t *testing.T) {
	blocks := buildBlocks("EXAME FÍSICO - PERIÓDICO")
	if out := extractCompany(blocks); len(out) != 0 {
		t.Errorf("expected no candidates from section heading, got %+v", out)
	}
}
