package extractor

import (
	"strings"
	"testing"
)

func TestMarkdownExtractor_TopLevelBlocks(t *testing.T) {
	input := "# Ficha de Admissão\n\nNome: Maria Silva\n\nEmpresa: ACME LTDA\n"
	p := &MarkdownExtractor{}
	blocks, err := p.Extract(strings.NewReader(input), "ficha.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Text != "Ficha de Admissão" {
		t.Errorf("block[0] = %q", blocks[0].Text)
	}
	if blocks[1].Text != "Nome: Maria Silva" {
		t.Errorf("block[1] = %q", blocks[1].Text)
	}
}

func TestMarkdownExtractor_InlineFormattingStripped(t *testing.T) {
	input := "Empresa: **ACME** _LTDA_\n"
	p := &MarkdownExtractor{}
	blocks, err := p.Extract(strings.NewReader(input), "fmt.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if !strings.Contains(blocks[0].Text, "ACME") || strings.Contains(blocks[0].Text, "**") {
		t.Errorf("expected formatting markers stripped, got %q", blocks[0].Text)
	}
}

func TestMarkdownExtractor_Empty(t *testing.T) {
	p := &MarkdownExtractor{}
	blocks, err := p.Extract(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("expected 0 blocks, got %d", len(blocks))
	}
}
