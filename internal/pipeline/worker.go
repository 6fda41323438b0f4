package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgallion1/docsift/internal/ocr"
	"github.com/dgallion1/docsift/internal/parser"
)

// ParserSource picks the parser for a filename.
type ParserSource interface {
	ForFile(filename string) (parser.Parser, error)
}

// Worker processes a single document job.
type Worker struct {
	parsers ParserSource
	log     *slog.Logger
}

func NewWorker(parsers ParserSource, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{parsers: parsers, log: log}
}

// Process runs extraction for a job and records the outcome on it.
// Whole-document failures mark the job failed with a message for the
// uploader; page failures mark it partial.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	job.SetStatus(StatusExtracting, "extracting")
	p, err := w.parsers.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.finish(nil, StatusFailed, "extracting")
		return
	}

	res, err := p.Parse(ctx, job.FileData(), job.Filename, job.SetProgress)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("extraction canceled")
			job.AddError("extraction canceled")
		} else {
			log.Error("extraction failed", "error", err)
			job.AddError(parser.UserMessage(err))
		}
		job.finish(nil, StatusFailed, "extracting")
		return
	}
	if job.Title != "" {
		res.Title = job.Title
	}

	for _, warning := range res.Warnings {
		job.AddError(warning)
	}
	job.SetProgress(ocr.Progress{Status: "Done", Fraction: 1})

	status := StatusCompleted
	if res.PageFailures() > 0 {
		status = StatusPartial
	}
	job.finish(res, status, "done")

	log.Info("extraction complete",
		"status", status,
		"method", res.Method,
		"pages", len(res.Pages),
		"images", len(res.Images),
		"page_failures", res.PageFailures(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
