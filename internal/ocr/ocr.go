// Package ocr defines the text-recognition contract used by the parsers and
// provides a Tesseract-backed recognizer plus a best-of-attempts strategy.
package ocr

import (
	"context"
	"image"

	"github.com/otiai10/gosseract/v2"
)

// Page segmentation modes used by the parsers.
const (
	PSMAutoOSD     = gosseract.PSM_AUTO_OSD
	PSMAuto        = gosseract.PSM_AUTO
	PSMSingleBlock = gosseract.PSM_SINGLE_BLOCK // engine default
)

// Result is one recognition outcome. Confidence is in [0,100].
type Result struct {
	Text       string
	Confidence float64
}

// Options configures a single recognition call.
type Options struct {
	PageSegMode gosseract.PageSegMode
	Variables   map[string]string
}

// Recognizer turns a bitmap into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, opts Options) (Result, error)
}

// Progress is a side-channel status event. Fraction is in [0,1].
type Progress struct {
	Status   string  `json:"status"`
	Fraction float64 `json:"fraction"`
}

// ProgressFunc receives progress events. A nil ProgressFunc discards them.
type ProgressFunc func(Progress)

// Report delivers p if f is non-nil.
func (f ProgressFunc) Report(p Progress) {
	if f != nil {
		f(p)
	}
}

// Step returns a sink that maps fractions of step n (1-based) out of total
// onto the overall [0,1] range.
func (f ProgressFunc) Step(n, total int) ProgressFunc {
	if f == nil {
		return nil
	}
	if total <= 0 {
		total = 1
	}
	return func(p Progress) {
		p.Fraction = (float64(n-1) + p.Fraction) / float64(total)
		f(p)
	}
}

// PageSegMode converts an integer mode from configuration.
func PageSegMode(n int) gosseract.PageSegMode {
	return gosseract.PageSegMode(n)
}
