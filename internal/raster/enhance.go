package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// EnhanceConfig controls the pre-recognition contrast step.
type EnhanceConfig struct {
	// Contrast stretches gray levels around mid-gray: (g-128)*Contrast+128.
	// Values <= 0 are treated as 1 (no change).
	Contrast float64

	// Threshold, when in 1..255, binarizes the stretched image: levels at or
	// above it become white, the rest black. Zero disables thresholding.
	Threshold int

	// UpscaleMinWidth, when positive, scales narrower images up to this width
	// before the contrast step.
	UpscaleMinWidth int
}

// DefaultEnhanceConfig returns a 1.5 contrast stretch with no thresholding.
func DefaultEnhanceConfig() EnhanceConfig {
	return EnhanceConfig{Contrast: 1.5}
}

// Enhance returns a new grayscale bitmap tuned for text recognition.
func Enhance(src image.Image, cfg EnhanceConfig) *image.Gray {
	if cfg.UpscaleMinWidth > 0 && src.Bounds().Dx() > 0 && src.Bounds().Dx() < cfg.UpscaleMinWidth {
		src = upscale(src, cfg.UpscaleMinWidth)
	}
	contrast := cfg.Contrast
	if contrast <= 0 {
		contrast = 1
	}

	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			gray := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
			v := clamp((gray-128)*contrast + 128)
			if cfg.Threshold > 0 && cfg.Threshold <= 255 {
				if int(v) >= cfg.Threshold {
					v = 255
				} else {
					v = 0
				}
			}
			dst.Pix[y*dst.Stride+x] = uint8(v)
		}
	}
	return dst
}

func upscale(src image.Image, width int) image.Image {
	b := src.Bounds()
	height := int(math.Round(float64(b.Dy()) * float64(width) / float64(b.Dx())))
	if height <= 0 {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func clamp(v float64) float64 {
	return math.Round(math.Min(255, math.Max(0, v)))
}
