package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// DefaultTrimPadding is the margin TrimToContent keeps around the content box.
const DefaultTrimPadding = 10

// Crop copies rect out of src into a new bitmap of exactly rect's size.
// The result shares no storage with src. Callers pass rectangles already
// clamped to src (Detect guarantees this for its blocks).
func Crop(src *image.NRGBA, rect image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Copy(dst, image.Point{}, src, rect.Add(src.Rect.Min), draw.Src, nil)
	return dst
}

// ContentBounds returns the tightest rectangle holding every non-background,
// non-transparent pixel. ok is false when the bitmap is blank.
func ContentBounds(src *image.NRGBA) (rect image.Rectangle, ok bool) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if src.Rect.Min != (image.Point{}) {
		src = FromImage(src)
	}
	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if isBlank(pixel(src, x, y)) {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// TrimToContent crops src to its content bounds plus padding, clamped to the
// bitmap. A blank bitmap is returned unchanged with trimmed=false.
func TrimToContent(src *image.NRGBA, padding int) (out *image.NRGBA, trimmed bool) {
	rect, ok := ContentBounds(src)
	if !ok {
		return src, false
	}
	bounds := image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy())
	rect = rect.Inset(-padding).Intersect(bounds)
	return Crop(src, rect), true
}
