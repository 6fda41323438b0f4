package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/docsift/internal/document"
	"github.com/dgallion1/docsift/internal/ocr"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLParser handles HTML files. h1-h6 open sections; script, style and
// page chrome are skipped.
type HTMLParser struct{}

func (p *HTMLParser) Parse(ctx context.Context, data []byte, filename string, progress ocr.ProgressFunc) (*document.Result, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &DocumentError{Msg: "Could not parse the HTML file.", Err: fmt.Errorf("parse html: %w", err)}
	}

	res := &document.Result{
		Title:  titleFromFilename(filename),
		Method: document.MethodDirect,
	}
	if t := findElement(doc, atom.Title); t != nil {
		if title := nodeText(t); title != "" {
			res.Title = title
		}
	}

	o := newOutline()
	start := findElement(doc, atom.Body)
	if start == nil {
		start = doc
	}
	walkHTML(start, o)

	res.Sections = o.sections()
	res.Text = textOrSentinel(document.Flatten(res.Sections))
	progress.Report(ocr.Progress{Status: "Text extracted", Fraction: 1})
	return res, nil
}

func walkHTML(n *html.Node, o *outline) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			o.heading(int(n.Data[1]-'0'), nodeText(n))
			return
		case atom.Script, atom.Style, atom.Nav, atom.Footer, atom.Header, atom.Noscript:
			return
		case atom.P, atom.Li, atom.Td, atom.Blockquote, atom.Pre:
			o.text(nodeText(n))
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, o)
	}
}

// nodeText concatenates the text nodes under n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(sb.String())
}

// findElement returns the first element of the given kind, depth-first.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
