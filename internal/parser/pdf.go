package parser

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsift/internal/document"
	"github.com/dgallion1/docsift/internal/layout"
	"github.com/dgallion1/docsift/internal/ocr"
	"github.com/dgallion1/docsift/internal/pdfdoc"
	"github.com/dgallion1/docsift/internal/raster"
	"github.com/dgallion1/docsift/internal/textnorm"
	"golang.org/x/sync/errgroup"
)

// PDFParser extracts content regions and text from PDF files. Text comes
// from the text layer; when that is (nearly) empty every page is rendered
// and recognized instead.
type PDFParser struct {
	Open          PDFOpener
	Detector      *raster.Detector
	Reconstructor *layout.Reconstructor
	Strategy      *ocr.Strategy
	Enhance       raster.EnhanceConfig

	RegionScale float64
	OCRScale    float64

	// PageImages adds each page, trimmed to its content, to the images.
	PageImages  bool
	CropPadding int

	// MinTextLayerChars is the largest trimmed text-layer length that still
	// triggers recognition.
	MinTextLayerChars int

	Log *slog.Logger
}

// pageNote is what one pass learned about one page.
type pageNote struct {
	method  document.Method
	chars   int
	regions int
	text    string
	err     string
}

func (p *PDFParser) Parse(ctx context.Context, data []byte, filename string, progress ocr.ProgressFunc) (*document.Result, error) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("filename", filename)

	doc, err := p.Open(data)
	if err != nil {
		switch {
		case errors.Is(err, pdfdoc.ErrEncrypted):
			return nil, &DocumentError{Msg: "PDF is password protected. Please remove the password and try again.", Err: err}
		case errors.Is(err, pdfdoc.ErrCorrupt):
			return nil, &DocumentError{Msg: "Invalid PDF file. The file may be corrupted.", Err: err}
		default:
			return nil, &DocumentError{Msg: "Failed to process PDF.", Err: err}
		}
	}
	defer doc.Close()

	n := doc.NumPages()
	base := titleFromFilename(filename)
	log.Info("pdf opened", "pages", n)

	var (
		images      []document.Image
		regionNotes []pageNote
		text        string
		method      document.Method
		textNotes   []pageNote
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		images, regionNotes, err = p.extractRegions(gctx, doc, base, log)
		return err
	})
	g.Go(func() error {
		var err error
		text, method, textNotes, err = p.extractText(gctx, doc, progress, log)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &document.Result{
		Title:  base,
		Text:   text,
		Method: method,
		Images: images,
		Pages:  make([]document.Page, n),
	}
	for i := range res.Pages {
		r, t := regionNotes[i], textNotes[i]
		pg := document.Page{Number: i + 1, Method: t.method, Chars: t.chars, Regions: r.regions}
		var errs []string
		for _, e := range []string{r.err, t.err} {
			if e != "" {
				errs = append(errs, e)
				res.Warn("page %d: %s", i+1, e)
			}
		}
		pg.Err = strings.Join(errs, "; ")
		res.Pages[i] = pg
		if t.chars > 0 {
			res.Sections = append(res.Sections, &document.Section{Text: strings.TrimSpace(t.text), Page: i + 1})
		}
	}
	log.Info("pdf processed", "pages", n, "images", len(images), "method", method, "page_failures", res.PageFailures())
	return res, nil
}

// extractRegions renders every page and cuts out each content region as a
// PNG named <base>-page<N>-region<M>.
func (p *PDFParser) extractRegions(ctx context.Context, doc PDFDocument, base string, log *slog.Logger) ([]document.Image, []pageNote, error) {
	n := doc.NumPages()
	notes := make([]pageNote, n)
	var images []document.Image

	for page := 1; page <= n; page++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		bmp, err := doc.Render(page, p.RegionScale)
		if err != nil {
			log.Warn("page render failed", "page", page, "error", err)
			notes[page-1].err = fmt.Sprintf("render: %v", err)
			continue
		}

		blocks := p.Detector.Detect(bmp)
		for i, b := range blocks {
			img, err := pngImage(raster.Crop(bmp, b.Rect()), fmt.Sprintf("%s-page%d-region%d", base, page, i+1))
			if err != nil {
				log.Warn("region encode failed", "page", page, "region", i+1, "error", err)
				continue
			}
			images = append(images, img)
			notes[page-1].regions++
		}

		if p.PageImages {
			trimmed, _ := raster.TrimToContent(bmp, p.CropPadding)
			img, err := pngImage(trimmed, fmt.Sprintf("%s-page%d", base, page))
			if err != nil {
				log.Warn("page image encode failed", "page", page, "error", err)
			} else {
				images = append(images, img)
			}
		}
		log.Debug("page regions", "page", page, "blocks", len(blocks))
	}
	return images, notes, nil
}

func pngImage(bmp *image.NRGBA, name string) (document.Image, error) {
	data, err := raster.EncodePNG(bmp)
	if err != nil {
		return document.Image{}, err
	}
	b := bmp.Bounds()
	return document.Image{Name: name, MIME: "image/png", Width: b.Dx(), Height: b.Dy(), Data: data}, nil
}

// extractText reads the text layer of every page. If the trimmed result is
// no longer than MinTextLayerChars, every page is rendered and recognized
// instead, and the normalized page texts are joined by blank lines.
func (p *PDFParser) extractText(ctx context.Context, doc PDFDocument, progress ocr.ProgressFunc, log *slog.Logger) (string, document.Method, []pageNote, error) {
	n := doc.NumPages()
	notes := make([]pageNote, n)
	layer := progress.Step(1, 2)

	var sb strings.Builder
	for page := 1; page <= n; page++ {
		if err := ctx.Err(); err != nil {
			return "", "", nil, err
		}
		layer.Report(ocr.Progress{
			Status:   fmt.Sprintf("Extracting text from page %d of %d", page, n),
			Fraction: float64(page-1) / float64(n),
		})
		frags, err := doc.Fragments(page)
		if err != nil {
			log.Warn("text layer read failed", "page", page, "error", err)
			notes[page-1].err = fmt.Sprintf("text layer: %v", err)
			continue
		}
		s := p.Reconstructor.Reconstruct(frags)
		notes[page-1].method = document.MethodTextLayer
		notes[page-1].chars = utf8.RuneCountInString(strings.TrimSpace(s))
		notes[page-1].text = s
		sb.WriteString(s)
	}

	text := sb.String()
	chars := utf8.RuneCountInString(strings.TrimSpace(text))
	if chars > p.MinTextLayerChars {
		progress.Report(ocr.Progress{Status: "Text extracted", Fraction: 1})
		return text, document.MethodTextLayer, notes, nil
	}
	log.Info("text layer too short, recognizing pages", "chars", chars, "threshold", p.MinTextLayerChars)

	notes = make([]pageNote, n)
	recognize := progress.Step(2, 2)
	var parts []string
	for page := 1; page <= n; page++ {
		if err := ctx.Err(); err != nil {
			return "", "", nil, err
		}
		step := recognize.Step(page, n)
		step.Report(ocr.Progress{Status: fmt.Sprintf("OCR processing page %d of %d", page, n)})

		bmp, err := doc.Render(page, p.OCRScale)
		if err != nil {
			log.Warn("page render failed", "page", page, "error", err)
			notes[page-1].err = fmt.Sprintf("render: %v", err)
			continue
		}
		out, err := p.Strategy.Recognize(ctx, raster.Enhance(bmp, p.Enhance), bmp, step)
		if err != nil {
			if ctx.Err() != nil {
				return "", "", nil, ctx.Err()
			}
			log.Warn("page recognition failed", "page", page, "error", err)
			notes[page-1].err = fmt.Sprintf("recognize: %v", err)
			continue
		}
		pageText := textnorm.Normalize(out.Text)
		notes[page-1].method = document.MethodOCR
		notes[page-1].chars = charCount(pageText)
		notes[page-1].text = pageText
		parts = append(parts, pageText)
	}
	progress.Report(ocr.Progress{Status: "Text extracted", Fraction: 1})
	return textOrSentinel(strings.Join(parts, "\n\n")), document.MethodOCR, notes, nil
}
