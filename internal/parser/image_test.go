package parser

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/dgallion1/docsift/internal/ocr"
	"github.com/dgallion1/docsift/internal/textnorm"
)

func TestImageParser(t *testing.T) {
	rec := &fakeRecognizer{res: ocr.Result{Text: "Hello , world.Next\n\n\n\nline", Confidence: 88}}
	p, err := NewRegistry(testConfig(), rec, nil).ForFile("receipt.png")
	if err != nil {
		t.Fatal(err)
	}
	data := pngBytes(t, canvas(40, 20, image.Rect(5, 5, 30, 15)))

	var events []ocr.Progress
	res, err := p.Parse(context.Background(), data, "receipt.png", func(e ocr.Progress) { events = append(events, e) })
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if res.Text != "Hello, world. Next\n\nline" {
		t.Errorf("unexpected text %q", res.Text)
	}
	if res.Title != "receipt" || res.Method != "ocr" {
		t.Errorf("unexpected title/method %q/%q", res.Title, res.Method)
	}
	if len(res.Images) != 1 {
		t.Fatalf("expected the upload as the only image, got %d", len(res.Images))
	}
	img := res.Images[0]
	if img.Name != "receipt.png" || img.MIME != "image/png" || img.Width != 40 || img.Height != 20 {
		t.Errorf("unexpected image %+v", img)
	}
	if string(img.Data) != string(data) {
		t.Error("expected original bytes to be returned")
	}
	if len(events) == 0 {
		t.Error("expected progress events")
	}
}

func TestImageParser_NoText(t *testing.T) {
	rec := &fakeRecognizer{res: ocr.Result{Text: "   ", Confidence: 10}}
	p, _ := NewRegistry(testConfig(), rec, nil).ForFile("blank.png")

	res, err := p.Parse(context.Background(), pngBytes(t, canvas(10, 10)), "blank.png", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Text != textnorm.NoText {
		t.Errorf("expected sentinel, got %q", res.Text)
	}
	if rec.Calls() != 2 {
		t.Errorf("expected attempt plus fallback, got %d calls", rec.Calls())
	}
	if res.Pages[0].Chars != 0 {
		t.Errorf("expected no characters, got %d", res.Pages[0].Chars)
	}
}

func TestImageParser_Errors(t *testing.T) {
	p, _ := NewRegistry(testConfig(), &fakeRecognizer{}, nil).ForFile("bad.png")
	_, err := p.Parse(context.Background(), []byte("not an image"), "bad.png", nil)
	var de *DocumentError
	if !errors.As(err, &de) {
		t.Fatalf("expected DocumentError for undecodable image, got %v", err)
	}

	rec := &fakeRecognizer{err: errors.New("engine unavailable")}
	p, _ = NewRegistry(testConfig(), rec, nil).ForFile("ok.png")
	if _, err := p.Parse(context.Background(), pngBytes(t, canvas(8, 8)), "ok.png", nil); err == nil {
		t.Fatal("expected error when recognition fails entirely")
	}
}
