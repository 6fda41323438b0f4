package parser

import (
	"strings"

	"github.com/dgallion1/docsift/internal/document"
)

// outline builds a section tree from a stream of headings and text blocks.
// A heading closes every open section at its level or deeper.
type outline struct {
	root    document.Section
	open    []openSection
	pending []string
}

type openSection struct {
	sec   *document.Section
	level int
}

func newOutline() *outline {
	o := &outline{}
	o.open = []openSection{{sec: &o.root}}
	return o
}

func (o *outline) heading(level int, title string) {
	o.flush()
	for len(o.open) > 1 && o.open[len(o.open)-1].level >= level {
		o.open = o.open[:len(o.open)-1]
	}
	sec := &document.Section{Title: title}
	parent := o.open[len(o.open)-1].sec
	parent.Children = append(parent.Children, sec)
	o.open = append(o.open, openSection{sec: sec, level: level})
}

// text adds a block to the innermost open section. Blank blocks are ignored.
func (o *outline) text(block string) {
	if block = strings.TrimSpace(block); block != "" {
		o.pending = append(o.pending, block)
	}
}

func (o *outline) flush() {
	if len(o.pending) == 0 {
		return
	}
	top := o.open[len(o.open)-1].sec
	body := strings.Join(o.pending, "\n\n")
	if top.Text != "" {
		top.Text += "\n\n" + body
	} else {
		top.Text = body
	}
	o.pending = o.pending[:0]
}

// sections returns the top-level sections. Text that came before the first
// heading becomes a leading untitled section.
func (o *outline) sections() []*document.Section {
	o.flush()
	if o.root.Text == "" {
		return o.root.Children
	}
	return append([]*document.Section{{Text: o.root.Text}}, o.root.Children...)
}
