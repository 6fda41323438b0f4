package ocr

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/dgallion1/docsift/internal/raster"
	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text through libtesseract. Each call uses its own
// client, so one Tesseract may serve concurrent workers.
type Tesseract struct {
	languages []string
	newClient func() *gosseract.Client
	stats     *Stats
}

// NewTesseract creates a recognizer for the given languages (e.g. "eng").
// stats may be nil.
func NewTesseract(languages []string, stats *Stats) *Tesseract {
	return &Tesseract{
		languages: languages,
		newClient: gosseract.NewClient,
		stats:     stats,
	}
}

// Recognize encodes img as PNG and runs Tesseract with opts. Confidence is
// the mean word confidence.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	data, err := raster.EncodePNG(img)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	c := t.newClient()
	defer c.Close()

	if len(t.languages) > 0 {
		if err := c.SetLanguage(t.languages...); err != nil {
			return Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(opts.PageSegMode); err != nil {
		return Result{}, fmt.Errorf("set page segmentation mode: %w", err)
	}
	for k, v := range opts.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}
	conf := meanConfidence(c)

	if t.stats != nil {
		t.stats.Record(time.Since(start).Milliseconds())
	}
	return Result{Text: text, Confidence: conf}, nil
}

func meanConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}
