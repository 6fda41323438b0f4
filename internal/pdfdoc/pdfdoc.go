// Package pdfdoc opens a PDF once and exposes the two views the parsers
// need: rendered page bitmaps (MuPDF via go-fitz) and positioned text
// fragments from the text layer (ledongthuc/pdf).
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/dgallion1/docsift/internal/layout"
	"github.com/dgallion1/docsift/internal/raster"
	"github.com/gen2brain/go-fitz"
	pdflib "github.com/ledongthuc/pdf"
)

var (
	// ErrEncrypted is returned for password-protected documents.
	ErrEncrypted = errors.New("pdf is password protected")
	// ErrCorrupt is returned when the bytes are not a readable PDF.
	ErrCorrupt = errors.New("invalid or corrupted pdf")
)

// Document is an opened PDF. Render and Fragments may be called from
// different goroutines.
type Document struct {
	renderMu sync.Mutex
	fz       *fitz.Document

	textMu  sync.Mutex
	text    *pdflib.Reader
	textErr error

	pages int
}

// Open parses data. The renderer decides whether the document is usable; a
// text layer the reader cannot parse only disables Fragments.
func Open(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("open pdf: empty input: %w", ErrCorrupt)
	}
	fz, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, classify(err)
	}
	d := &Document{fz: fz, pages: fz.NumPage()}
	if d.pages <= 0 {
		fz.Close()
		return nil, fmt.Errorf("open pdf: no pages: %w", ErrCorrupt)
	}

	d.text, d.textErr = openTextLayer(data)
	if errors.Is(d.textErr, pdflib.ErrInvalidPassword) {
		fz.Close()
		return nil, fmt.Errorf("open pdf: %w", ErrEncrypted)
	}
	return d, nil
}

func openTextLayer(data []byte) (r *pdflib.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("text layer: %v", p)
		}
	}()
	return pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
}

func classify(err error) error {
	switch {
	case errors.Is(err, fitz.ErrNeedsPassword), errors.Is(err, pdflib.ErrInvalidPassword):
		return fmt.Errorf("open pdf: %w", ErrEncrypted)
	default:
		return fmt.Errorf("open pdf: %v: %w", err, ErrCorrupt)
	}
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.pages
}

// Render rasterizes page (1-based) at scale times the natural 72 dpi size.
func (d *Document) Render(page int, scale float64) (*image.NRGBA, error) {
	if page < 1 || page > d.pages {
		return nil, fmt.Errorf("render page %d: out of range 1..%d", page, d.pages)
	}
	if scale <= 0 {
		scale = 1
	}
	d.renderMu.Lock()
	img, err := d.fz.ImageDPI(page-1, 72*scale)
	d.renderMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	return raster.FromImage(img), nil
}

// Fragments returns the positioned text runs of page (1-based) in content
// stream order. A page without a text layer yields no fragments.
func (d *Document) Fragments(page int) (frags []layout.Fragment, err error) {
	if d.text == nil {
		return nil, fmt.Errorf("text layer unavailable: %w", d.textErr)
	}
	if page < 1 || page > d.text.NumPage() {
		return nil, fmt.Errorf("text page %d: out of range 1..%d", page, d.text.NumPage())
	}

	d.textMu.Lock()
	defer d.textMu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			frags, err = nil, fmt.Errorf("text page %d: malformed content: %v", page, p)
		}
	}()

	p := d.text.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}
	content := p.Content()
	frags = make([]layout.Fragment, 0, len(content.Text))
	for _, t := range content.Text {
		frags = append(frags, layout.Fragment{X: t.X, Y: t.Y, Text: t.S, Width: t.W})
	}
	return frags, nil
}

// Close releases the renderer.
func (d *Document) Close() error {
	return d.fz.Close()
}
