package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/dgallion1/docsift/internal/document"
	"github.com/dgallion1/docsift/internal/ocr"
	"github.com/dgallion1/docsift/internal/raster"
	"github.com/dgallion1/docsift/internal/textnorm"
	"github.com/fumiama/go-docx"
)

// maxMediaBytes caps the decompressed size of one embedded media entry.
const maxMediaBytes = 64 << 20

// mediaTypes maps the embedded image extensions we return to MIME types.
var mediaTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
}

// DOCXParser handles .docx files: embedded media become images and the
// paragraph text is normalized.
type DOCXParser struct {
	Log *slog.Logger
}

func (p *DOCXParser) Parse(ctx context.Context, data []byte, filename string, progress ocr.ProgressFunc) (*document.Result, error) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("filename", filename)

	res := &document.Result{
		Title:  titleFromFilename(filename),
		Method: document.MethodDirect,
	}

	progress.Report(ocr.Progress{Status: "Extracting images", Fraction: 0})
	images, err := docxMedia(data, log)
	if err != nil {
		log.Warn("docx media extraction failed", "error", err)
		res.Warn("images: %v", err)
	}
	res.Images = images

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress.Report(ocr.Progress{Status: "Extracting text", Fraction: 0.5})
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &DocumentError{Msg: "Failed to extract text from DOCX.", Err: fmt.Errorf("parse docx: %w", err)}
	}

	o := newOutline()
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if level := docxHeadingLevel(para); level > 0 && text != "" {
			o.heading(level, text)
			continue
		}
		o.text(text)
	}

	res.Sections = o.sections()
	res.Text = textnorm.Normalize(document.Flatten(res.Sections))
	progress.Report(ocr.Progress{Status: "Text extracted", Fraction: 1})
	log.Info("docx processed", "images", len(res.Images), "sections", len(res.Sections))
	return res, nil
}

// docxMedia returns the images stored under word/media/, named image-N in
// archive order. Entries that cannot be read are skipped.
func docxMedia(data []byte, log *slog.Logger) ([]document.Image, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	var images []document.Image
	index := 0
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "word/media/") || f.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(f.Name), "."))
		mime, ok := mediaTypes[ext]
		if !ok {
			continue
		}
		index++

		b, err := readZipEntry(f)
		if err != nil {
			log.Warn("skipping docx media entry", "entry", f.Name, "error", err)
			continue
		}
		img := document.Image{Name: fmt.Sprintf("image-%d", index), MIME: mime, Data: b}
		if w, h, err := raster.Dimensions(b); err == nil {
			img.Width, img.Height = w, h
		}
		images = append(images, img)
	}
	return images, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, maxMediaBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxMediaBytes {
		return nil, fmt.Errorf("entry exceeds %d bytes", maxMediaBytes)
	}
	return b, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	switch strings.TrimPrefix(style, "heading") {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRunText(&buf, c)
		case *docx.Hyperlink:
			writeRunText(&buf, &c.Run)
		}
	}
	return strings.TrimSpace(buf.String())
}

func writeRunText(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		}
	}
}
