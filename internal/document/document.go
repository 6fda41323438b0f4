// Package document holds the extraction result shared by the parsers, the
// pipeline and the HTTP layer.
package document

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docsift/internal/raster"
)

// Method records where text came from.
type Method string

const (
	MethodTextLayer Method = "text-layer"
	MethodOCR       Method = "ocr"
	MethodDirect    Method = "direct" // plain decoding of a text-family file
)

// Result is everything extracted from one upload.
type Result struct {
	Title  string
	Text   string
	Method Method

	Sections []*Section // heading hierarchy, for formats that have one
	Pages    []Page     // per-page outcome, for paged formats
	Images   []Image

	Warnings []string
}

// Section is a heading with its body text and subsections.
type Section struct {
	Title    string // empty for untitled leading text
	Text     string
	Page     int // source page (0 if N/A)
	Children []*Section
}

// Page is the outcome of processing one page. Err is set when a pass failed
// on this page; the page is still reported so clients can tell.
type Page struct {
	Number  int    `json:"number"`
	Method  Method `json:"method,omitempty"`
	Chars   int    `json:"chars"`
	Regions int    `json:"regions"`
	Err     string `json:"error,omitempty"`
}

// Image is an extracted image with its encoded bytes.
type Image struct {
	Name   string
	MIME   string
	Width  int
	Height int
	Data   []byte
}

// DataURI returns the image as a base64 data URI.
func (i Image) DataURI() string {
	return raster.DataURI(i.MIME, i.Data)
}

// Filename is the download name: Name plus an extension for MIME.
func (i Image) Filename() string {
	ext, ok := extensions[i.MIME]
	if !ok || strings.HasSuffix(strings.ToLower(i.Name), ext) {
		return i.Name
	}
	return i.Name + ext
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/webp": ".webp",
	"image/tiff": ".tiff",
}

// Warn records a non-fatal problem.
func (r *Result) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// PageFailures counts pages with a recorded error.
func (r *Result) PageFailures() int {
	n := 0
	for _, p := range r.Pages {
		if p.Err != "" {
			n++
		}
	}
	return n
}

// Flatten renders a section tree as plain text: each heading on its own
// line followed by its text, blocks separated by a blank line.
func Flatten(sections []*Section) string {
	var blocks []string
	var walk func(nodes []*Section)
	walk = func(nodes []*Section) {
		for _, n := range nodes {
			if n.Title != "" {
				blocks = append(blocks, n.Title)
			}
			if n.Text != "" {
				blocks = append(blocks, n.Text)
			}
			walk(n.Children)
		}
	}
	walk(sections)
	return strings.Join(blocks, "\n\n")
}
