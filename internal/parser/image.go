package parser

import (
	"context"

	"github.com/dgallion1/docsift/internal/document"
	"github.com/dgallion1/docsift/internal/ocr"
	"github.com/dgallion1/docsift/internal/raster"
	"github.com/dgallion1/docsift/internal/textnorm"
)

// ImageParser recognizes text in raster image uploads. The upload itself is
// returned as the single extracted image.
type ImageParser struct {
	Strategy *ocr.Strategy
	Enhance  raster.EnhanceConfig
}

func (p *ImageParser) Parse(ctx context.Context, data []byte, filename string, progress ocr.ProgressFunc) (*document.Result, error) {
	progress.Report(ocr.Progress{Status: "Processing image..."})

	img, format, err := raster.Decode(data)
	if err != nil {
		return nil, &DocumentError{Msg: "Could not read the image. The file may be corrupted.", Err: err}
	}
	b := img.Bounds()

	res := &document.Result{
		Title:  titleFromFilename(filename),
		Method: document.MethodOCR,
		Images: []document.Image{{
			Name:   filename,
			MIME:   "image/" + format,
			Width:  b.Dx(),
			Height: b.Dy(),
			Data:   data,
		}},
	}

	enhanced := raster.Enhance(img, p.Enhance)
	out, err := p.Strategy.Recognize(ctx, enhanced, img, progress)
	if err != nil {
		return nil, &DocumentError{Msg: "Failed to recognize text in the image.", Err: err}
	}

	res.Text = textnorm.Normalize(out.Text)
	res.Pages = []document.Page{{
		Number: 1,
		Method: document.MethodOCR,
		Chars:  charCount(res.Text),
	}}
	return res, nil
}
