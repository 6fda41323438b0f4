package raster

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func grayCanvas(levels ...uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(levels), 1))
	for i, v := range levels {
		img.SetNRGBA(i, 0, color.NRGBA{R: v, G: v, B: v, A: 255})
	}
	return img
}

func TestEnhance_ContrastStretch(t *testing.T) {
	out := Enhance(grayCanvas(100, 128, 200, 10, 250), DefaultEnhanceConfig())
	want := []uint8{86, 128, 236, 0, 255}
	for i, w := range want {
		if got := out.GrayAt(i, 0).Y; got != w {
			t.Errorf("pixel %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestEnhance_Threshold(t *testing.T) {
	cfg := EnhanceConfig{Contrast: 1, Threshold: 128}
	out := Enhance(grayCanvas(127, 128, 30, 220), cfg)
	want := []uint8{0, 255, 0, 255}
	for i, w := range want {
		if got := out.GrayAt(i, 0).Y; got != w {
			t.Errorf("pixel %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestEnhance_DoesNotMutateSource(t *testing.T) {
	src := grayCanvas(100)
	Enhance(src, DefaultEnhanceConfig())
	if got := src.NRGBAAt(0, 0).R; got != 100 {
		t.Errorf("expected source untouched, got %d", got)
	}
}

func TestEnhance_Upscale(t *testing.T) {
	src := whiteCanvas(50, 20)
	out := Enhance(src, EnhanceConfig{Contrast: 1, UpscaleMinWidth: 100})
	if out.Rect.Dx() != 100 || out.Rect.Dy() != 40 {
		t.Errorf("expected 100x40 after upscaling, got %dx%d", out.Rect.Dx(), out.Rect.Dy())
	}

	wide := Enhance(whiteCanvas(150, 20), EnhanceConfig{Contrast: 1, UpscaleMinWidth: 100})
	if wide.Rect.Dx() != 150 {
		t.Errorf("expected wide image to keep its width, got %d", wide.Rect.Dx())
	}
}

func TestDecode_PNG(t *testing.T) {
	src := whiteCanvas(4, 3)
	src.SetNRGBA(1, 1, black)
	data, err := EncodePNG(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, format, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != "png" {
		t.Errorf("expected format png, got %q", format)
	}
	if img.NRGBAAt(1, 1) != black {
		t.Errorf("expected black pixel at (1,1), got %+v", img.NRGBAAt(1, 1))
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, _, err := Decode([]byte("not an image")); err == nil {
		t.Fatal("expected an error for non-image bytes")
	}
}

func TestDataURI(t *testing.T) {
	got := DataURI("image/png", []byte("abc"))
	if got != "data:image/png;base64,YWJj" {
		t.Errorf("unexpected data URI %q", got)
	}
	if !strings.HasPrefix(DataURI("image/jpeg", nil), "data:image/jpeg;base64,") {
		t.Error("expected prefix for empty payload")
	}
}
