package parser

import (
	"bytes"
	"context"
	"strings"

	"github.com/dgallion1/docsift/internal/document"
	"github.com/dgallion1/docsift/internal/ocr"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings become
// sections; the text is the markup-free content.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(ctx context.Context, data []byte, filename string, progress ocr.ProgressFunc) (*document.Result, error) {
	decoded, err := decodeText(data)
	if err != nil {
		return nil, &DocumentError{Msg: "Could not decode the Markdown file.", Err: err}
	}
	src := []byte(decoded)

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	res := &document.Result{
		Title:  titleFromFilename(filename),
		Method: document.MethodDirect,
	}

	o := newOutline()
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			o.heading(h.Level, markdownText(h, src))
			continue
		}
		o.text(markdownText(n, src))
	}

	res.Sections = o.sections()
	res.Text = textOrSentinel(document.Flatten(res.Sections))
	progress.Report(ocr.Progress{Status: "Text extracted", Fraction: 1})
	return res, nil
}

// markdownText returns the plain text under n. Leaf blocks such as code
// contribute their raw lines; other nodes contribute their inline text, with
// line breaks kept and nested blocks on their own lines.
func markdownText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := range lines.Len() {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			buf.Write(c.Value(src))
			if c.HardLineBreak() || c.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(c.Value)
		default:
			buf.WriteString(markdownText(c, src))
			if c.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
