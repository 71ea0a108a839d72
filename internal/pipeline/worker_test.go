package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/decision"
	"github.com/gbarros/docfields/internal/extractor"
)

func newTestWorker() *Worker {
	cfg := config.Load()
	engine := NewEngine(nil, nil, cfg, testLogger())
	return NewWorker(engine, extractor.Options{}, testLogger())
}

func TestProcess_CompletesWithResult(t *testing.T) {
	filler := strings.Repeat("texto de preenchimento com conteudo util ", 8)
	content := "Empresa: CEI Erinice Siqueira\nNome: Sandra Regina Hortencio\n" + filler

	job := NewJob("exame.txt", []byte(content), false)
	newTestWorker().Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%s)", snap.Status, snap.Error)
	}
	if snap.Result == nil {
		t.Fatal("expected result")
	}
	if snap.Result.Funcionario != "Sandra Regina Hortencio" {
		t.Errorf("funcionario = %q", snap.Result.Funcionario)
	}
	if snap.Result.Empresa != "CEI Erinice Siqueira" {
		t.Errorf("empresa = %q", snap.Result.Empresa)
	}
}

func TestProcess_UnsupportedFormatFails(t *testing.T) {
	job := NewJob("binario.exe", []byte{0x4d, 0x5a}, false)
	newTestWorker().Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", snap.Status)
	}
	if snap.Error == "" {
		t.Error("expected error message")
	}
}

func TestProcess_BrokenFileCompletesWithSentinel(t *testing.T) {
	// Unreadable content is an expected input: the job completes and the
	// payload carries the sentinel, not an error.
	job := NewJob("corrompido.pdf", []byte("this is not a pdf"), false)
	newTestWorker().Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%s)", snap.Status, snap.Error)
	}
	if snap.Result == nil {
		t.Fatal("expected sentinel result")
	}
	if snap.Result.Funcionario != decision.Undefined || snap.Result.Empresa != decision.Undefined {
		t.Errorf("expected sentinel fields, got %+v", snap.Result)
	}
	if snap.Result.Confidence.Funcionario != 0 || snap.Result.Confidence.Empresa != 0 {
		t.Errorf("expected zero confidence, got %+v", snap.Result.Confidence)
	}
}
