package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
)

// Strategy runs several recognition attempts and keeps the best one.
type Strategy struct {
	Recognizer Recognizer

	// Attempts run against the enhanced bitmap, in order.
	Attempts []Options

	// Fallback runs against the unenhanced bitmap when no attempt produced
	// non-empty text with at least MinConfidence.
	Fallback      Options
	MinConfidence float64

	Log *slog.Logger
}

// Recognize returns the highest-confidence non-empty attempt result, or the
// fallback result when attempts were empty or below MinConfidence. An error
// is returned only when nothing at all could be recognized.
func (s *Strategy) Recognize(ctx context.Context, enhanced, original image.Image, progress ProgressFunc) (Result, error) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}

	steps := len(s.Attempts) + 1
	var best Result
	found := false
	for i, opts := range s.Attempts {
		progress.Report(Progress{Status: "recognizing text", Fraction: float64(i) / float64(steps)})
		res, err := s.Recognizer.Recognize(ctx, enhanced, opts)
		if err != nil {
			log.Warn("recognition attempt failed", "attempt", i, "psm", int(opts.PageSegMode), "error", err)
			continue
		}
		if strings.TrimSpace(res.Text) == "" {
			continue
		}
		if !found || res.Confidence > best.Confidence {
			best, found = res, true
		}
	}

	if found && best.Confidence >= s.MinConfidence {
		progress.Report(Progress{Status: "recognizing text", Fraction: 1})
		return best, nil
	}

	progress.Report(Progress{Status: "recognizing text (fallback)", Fraction: float64(steps-1) / float64(steps)})
	fb, err := s.Recognizer.Recognize(ctx, original, s.Fallback)
	progress.Report(Progress{Status: "recognizing text", Fraction: 1})
	if err != nil {
		if found {
			log.Warn("fallback recognition failed, keeping best attempt", "error", err)
			return best, nil
		}
		return Result{}, fmt.Errorf("fallback recognition: %w", err)
	}
	if !found || (strings.TrimSpace(fb.Text) != "" && fb.Confidence >= best.Confidence) {
		return fb, nil
	}
	return best, nil
}
