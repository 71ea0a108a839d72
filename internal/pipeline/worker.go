package pipeline

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/gbarros/docfields/internal/extractor"
)

// Worker processes a single document job: extract text blocks, then run the
// resolution engine over them.
type Worker struct {
	engine  *Engine
	extOpts extractor.Options
	log     *slog.Logger
}

func NewWorker(engine *Engine, extOpts extractor.Options, log *slog.Logger) *Worker {
	return &Worker{
		engine:  engine,
		extOpts: extOpts,
		log:     log,
	}
}

// Process runs the full resolution pipeline for a job. Extraction failure is
// a completed run with the sentinel payload, not a failed job: documents with
// unreadable content are an expected input, and the caller still gets a
// well-formed answer.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusExtracting, "extracting")
	ext, err := extractor.ForFile(job.Filename, w.extOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.Fail("extracting", err.Error())
		return
	}

	raw, err := ext.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Warn("extraction failed, returning sentinel payload", "error", err)
		job.SetResult(WeakResult("extract_failed"))
		return
	}
	log.Info("extracted blocks", "blocks", len(raw))

	job.SetStatus(StatusResolving, "resolving")
	result := w.engine.Resolve(ctx, raw, job.Debug())
	log.Info("resolution complete",
		"funcionario", result.Funcionario,
		"empresa", result.Empresa,
		"conf_funcionario", result.Confidence.Funcionario,
		"conf_empresa", result.Confidence.Empresa)

	job.SetResult(result)
}
