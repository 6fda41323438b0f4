// Package raster holds the pixel-level half of the extraction pipeline:
// background classification, connected-component block detection, region
// cropping, contrast enhancement and image encoding.
//
// Every function treats its input bitmap as read-only and returns freshly
// allocated bitmaps, so results can be encoded or exported concurrently.
package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// backgroundLevel is the channel value above which a pixel counts as near-white.
const backgroundLevel = 240

// IsBackground reports whether an RGB sample is near-white background.
func IsBackground(r, g, b uint8) bool {
	return r > backgroundLevel && g > backgroundLevel && b > backgroundLevel
}

// isBlank is the cropper's classifier: background or fully transparent.
func isBlank(r, g, b, a uint8) bool {
	return a == 0 || IsBackground(r, g, b)
}

// FromImage returns an NRGBA copy of img with its origin moved to (0,0).
// An *image.NRGBA already anchored at the origin is returned as-is.
func FromImage(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// pixel returns the channels of the pixel at (x,y). Coordinates must be in range.
func pixel(img *image.NRGBA, x, y int) (r, g, b, a uint8) {
	i := y*img.Stride + x*4
	p := img.Pix[i : i+4 : i+4]
	return p[0], p[1], p[2], p[3]
}
