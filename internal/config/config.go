package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	DocsiftAPIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Rendering
	RegionScale float64
	OCRScale    float64

	// Block detection
	DetectStride       int
	DetectConnectivity int
	DetectMinArea      int
	DetectPadding      int
	RegionMinSize      int

	// Page images
	CropPadding   int
	PDFPageImages bool

	// OCR
	OCRLanguages       []string
	OCRContrast        float64
	OCRThreshold       int
	OCRUpscaleMinWidth int
	OCRImagePSMs       []int
	OCRPDFPSMs         []int
	OCRMinConfidence   float64

	// PDF text layer
	MinTextLayerChars int

	// Chunking defaults
	DefaultChunkSize    int
	DefaultChunkOverlap int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocsiftAPIKey: os.Getenv("DOCSIFT_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		RegionScale: envFloat("REGION_SCALE", 1.5),
		OCRScale:    envFloat("OCR_SCALE", 2.0),

		DetectStride:       envInt("DETECT_STRIDE", 5),
		DetectConnectivity: envInt("DETECT_CONNECTIVITY", 8),
		DetectMinArea:      envInt("DETECT_MIN_AREA", 50),
		DetectPadding:      envInt("DETECT_PADDING", 5),
		RegionMinSize:      envInt("REGION_MIN_SIZE", 50),

		CropPadding:   envInt("CROP_PADDING", 10),
		PDFPageImages: envBool("PDF_PAGE_IMAGES", false),

		OCRLanguages:       envList("OCR_LANGUAGES", []string{"eng"}),
		OCRContrast:        envFloat("OCR_CONTRAST", 1.5),
		OCRThreshold:       envInt("OCR_THRESHOLD", 0),
		OCRUpscaleMinWidth: envInt("OCR_UPSCALE_MIN_WIDTH", 0),
		OCRImagePSMs:       envIntList("OCR_IMAGE_PSMS", []int{3}),
		OCRPDFPSMs:         envIntList("OCR_PDF_PSMS", []int{1}),
		OCRMinConfidence:   envFloat("OCR_MIN_CONFIDENCE", 0),

		MinTextLayerChars: envInt("MIN_TEXT_LAYER_CHARS", 10),

		DefaultChunkSize:    envInt("DEFAULT_CHUNK_SIZE", 1500),
		DefaultChunkOverlap: envInt("DEFAULT_CHUNK_OVERLAP", 200),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.RegionScale <= 0 {
		cfg.RegionScale = 1.5
	}
	if cfg.OCRScale <= 0 {
		cfg.OCRScale = 2.0
	}
	if cfg.DetectStride <= 0 {
		cfg.DetectStride = 5
	}
	if cfg.DetectMinArea <= 0 {
		cfg.DetectMinArea = 50
	}
	if cfg.DetectPadding < 0 {
		cfg.DetectPadding = 5
	}
	if cfg.RegionMinSize < 0 {
		cfg.RegionMinSize = 50
	}
	if cfg.CropPadding < 0 {
		cfg.CropPadding = 10
	}
	if cfg.OCRContrast <= 0 {
		cfg.OCRContrast = 1.5
	}
	if cfg.MinTextLayerChars < 0 {
		cfg.MinTextLayerChars = 10
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = 1500
	}
	if cfg.DefaultChunkOverlap < 0 {
		cfg.DefaultChunkOverlap = 200
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocsiftAPIKey == "" {
		return fmt.Errorf("DOCSIFT_API_KEY is required")
	}
	if c.DetectConnectivity != 4 && c.DetectConnectivity != 8 {
		return fmt.Errorf("DETECT_CONNECTIVITY must be 4 or 8, got %d", c.DetectConnectivity)
	}
	if c.OCRThreshold < 0 || c.OCRThreshold > 255 {
		return fmt.Errorf("OCR_THRESHOLD must be in 0..255, got %d", c.OCRThreshold)
	}
	if len(c.OCRLanguages) == 0 {
		return fmt.Errorf("OCR_LANGUAGES must name at least one language")
	}
	for _, psm := range append(append([]int{}, c.OCRImagePSMs...), c.OCRPDFPSMs...) {
		if psm < 0 || psm > 13 {
			return fmt.Errorf("page segmentation mode %d out of range 0..13", psm)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma or plus separated value ("eng+deu" is Tesseract's
// own notation).
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, f := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '+' }) {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envIntList(key string, fallback []int) []int {
	var out []int
	for _, f := range envList(key, nil) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return fallback
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
