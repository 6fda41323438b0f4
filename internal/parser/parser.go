package parser

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsift/internal/config"
	"github.com/dgallion1/docsift/internal/document"
	"github.com/dgallion1/docsift/internal/layout"
	"github.com/dgallion1/docsift/internal/ocr"
	"github.com/dgallion1/docsift/internal/pdfdoc"
	"github.com/dgallion1/docsift/internal/raster"
	"github.com/dgallion1/docsift/internal/textnorm"
)

// Parser converts raw document bytes into an extraction result. progress
// may be nil.
type Parser interface {
	Parse(ctx context.Context, data []byte, filename string, progress ocr.ProgressFunc) (*document.Result, error)
}

// ErrUnsupported is returned by ForFile for extensions no parser handles.
var ErrUnsupported = errors.New("unsupported file type")

// DocumentError is a whole-document failure with a message fit for the
// uploader.
type DocumentError struct {
	Msg string
	Err error
}

func (e *DocumentError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *DocumentError) Unwrap() error { return e.Err }

// UserMessage returns the uploader-facing text for err.
func UserMessage(err error) string {
	var de *DocumentError
	if errors.As(err, &de) {
		return de.Msg
	}
	return err.Error()
}

// PDFDocument is the view of an opened PDF the PDF parser works on.
type PDFDocument interface {
	NumPages() int
	Render(page int, scale float64) (*image.NRGBA, error)
	Fragments(page int) ([]layout.Fragment, error)
	Close() error
}

// PDFOpener opens PDF bytes.
type PDFOpener func(data []byte) (PDFDocument, error)

func openPDF(data []byte) (PDFDocument, error) {
	d, err := pdfdoc.Open(data)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".png":      true,
	".jpg":      true,
	".jpeg":     true,
	".gif":      true,
	".bmp":      true,
	".webp":     true,
	".tif":      true,
	".tiff":     true,
	".pdf":      true,
	".docx":     true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
}

// Registry builds parsers from the service configuration.
type Registry struct {
	cfg        config.Config
	recognizer ocr.Recognizer
	openPDF    PDFOpener
	log        *slog.Logger
}

// NewRegistry creates a registry. The recognizer serves both image uploads
// and the PDF OCR fallback.
func NewRegistry(cfg config.Config, recognizer ocr.Recognizer, log *slog.Logger) *Registry {
	return &Registry{
		cfg:        cfg,
		recognizer: recognizer,
		openPDF:    openPDF,
		log:        log,
	}
}

// ForFile returns the appropriate parser for a filename.
func (r *Registry) ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff":
		return &ImageParser{
			Strategy: r.strategy(r.cfg.OCRImagePSMs),
			Enhance:  r.enhanceConfig(),
		}, nil
	case ".pdf":
		return &PDFParser{
			Open: r.openPDF,
			Detector: raster.NewDetector(raster.DetectConfig{
				Stride:       r.cfg.DetectStride,
				Connectivity: raster.Connectivity(r.cfg.DetectConnectivity),
				MinArea:      r.cfg.DetectMinArea,
				Padding:      r.cfg.DetectPadding,
				MinWidth:     r.cfg.RegionMinSize,
				MinHeight:    r.cfg.RegionMinSize,
			}),
			Reconstructor:     layout.NewReconstructor(),
			Strategy:          r.strategy(r.cfg.OCRPDFPSMs),
			Enhance:           r.enhanceConfig(),
			RegionScale:       r.cfg.RegionScale,
			OCRScale:          r.cfg.OCRScale,
			PageImages:        r.cfg.PDFPageImages,
			CropPadding:       r.cfg.CropPadding,
			MinTextLayerChars: r.cfg.MinTextLayerChars,
			Log:               r.log,
		}, nil
	case ".docx":
		return &DOCXParser{Log: r.log}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

func (r *Registry) strategy(psms []int) *ocr.Strategy {
	attempts := make([]ocr.Options, 0, len(psms))
	for _, n := range psms {
		attempts = append(attempts, ocr.Options{
			PageSegMode: ocr.PageSegMode(n),
			Variables:   map[string]string{"preserve_interword_spaces": "1"},
		})
	}
	return &ocr.Strategy{
		Recognizer:    r.recognizer,
		Attempts:      attempts,
		Fallback:      ocr.Options{PageSegMode: ocr.PSMSingleBlock},
		MinConfidence: r.cfg.OCRMinConfidence,
		Log:           r.log,
	}
}

func (r *Registry) enhanceConfig() raster.EnhanceConfig {
	return raster.EnhanceConfig{
		Contrast:        r.cfg.OCRContrast,
		Threshold:       r.cfg.OCRThreshold,
		UpscaleMinWidth: r.cfg.OCRUpscaleMinWidth,
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFromFilename strips the extension.
func titleFromFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// textOrSentinel substitutes the no-text sentinel for blank text.
func textOrSentinel(s string) string {
	if strings.TrimSpace(s) == "" {
		return textnorm.NoText
	}
	return s
}

// charCount counts the runes of trimmed text; the sentinel counts as none.
func charCount(s string) int {
	if s == textnorm.NoText {
		return 0
	}
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
