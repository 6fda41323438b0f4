package parser

import (
	"context"
	"testing"

	"github.com/dgallion1/docsift/internal/textnorm"
)

func TestHTMLParser(t *testing.T) {
	input := `<html><head><title>Field Guide</title><style>p{}</style></head>
<body>
<nav><p>Home</p></nav>
<p>Intro paragraph.</p>
<h1>Birds</h1>
<p>Small ones.</p>
<h2>Owls</h2>
<ul><li>Barn owl</li><li>Snowy owl</li></ul>
<script>var x = 1;</script>
<footer><p>Copyright</p></footer>
</body></html>`

	res, err := (&HTMLParser{}).Parse(context.Background(), []byte(input), "guide.html", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Title != "Field Guide" {
		t.Errorf("expected <title> to win, got %q", res.Title)
	}
	want := "Intro paragraph.\n\nBirds\n\nSmall ones.\n\nOwls\n\nBarn owl\n\nSnowy owl"
	if res.Text != want {
		t.Errorf("expected %q, got %q", want, res.Text)
	}
	if len(res.Sections) != 2 || res.Sections[1].Children[0].Title != "Owls" {
		t.Errorf("unexpected sections %+v", res.Sections)
	}
}

func TestHTMLParser_NoContent(t *testing.T) {
	res, err := (&HTMLParser{}).Parse(context.Background(), []byte("<html><body><script>x()</script></body></html>"), "empty.htm", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Title != "empty" {
		t.Errorf("expected filename title, got %q", res.Title)
	}
	if res.Text != textnorm.NoText {
		t.Errorf("expected sentinel, got %q", res.Text)
	}
}
