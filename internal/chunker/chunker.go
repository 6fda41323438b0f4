// Package chunker splits extracted section trees into sized, heading-aware
// chunks for downstream indexing.
package chunker

import (
	"strings"

	"github.com/dgallion1/docsift/internal/document"
	"github.com/dgallion1/docsift/internal/textnorm"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = def.ChunkOverlap
	}
	if c.MinChunk <= 0 {
		c.MinChunk = def.MinChunk
	}
	return c
}

// Chunk is a sized text segment with its heading path.
type Chunk struct {
	Index      int      `json:"index"`
	Text       string   `json:"text"`
	Tokens     int      `json:"tokens"`
	Breadcrumb []string `json:"breadcrumb"`
	Page       int      `json:"page,omitempty"`
}

// FromResult chunks a result's sections. A result without sections is
// chunked as one untitled section holding its text; the no-text sentinel
// yields nothing.
func FromResult(res *document.Result, cfg Config) []Chunk {
	sections := res.Sections
	if len(sections) == 0 {
		if strings.TrimSpace(res.Text) == "" || res.Text == textnorm.NoText {
			return nil
		}
		sections = []*document.Section{{Text: res.Text}}
	}
	return Sections(sections, cfg)
}

// Sections walks the tree depth-first and chunks every section's text.
func Sections(sections []*document.Section, cfg Config) []Chunk {
	c := &chunker{cfg: cfg.withDefaults()}
	for _, s := range sections {
		c.walk(s, nil)
	}
	return c.chunks
}

type chunker struct {
	cfg    Config
	chunks []Chunk
}

func (c *chunker) walk(s *document.Section, breadcrumb []string) {
	bc := breadcrumb
	if s.Title != "" {
		bc = append(append([]string(nil), breadcrumb...), s.Title)
	}

	if s.Text != "" {
		parts := []string{s.Text}
		if EstimateTokens(s.Text) > c.cfg.ChunkSize {
			parts = c.split(s.Text)
		}
		for _, part := range parts {
			tokens := EstimateTokens(part)
			if tokens < c.cfg.MinChunk {
				continue
			}
			c.chunks = append(c.chunks, Chunk{
				Index:      len(c.chunks),
				Text:       part,
				Tokens:     tokens,
				Breadcrumb: append([]string(nil), bc...),
				Page:       s.Page,
			})
		}
	}

	for _, child := range s.Children {
		c.walk(child, bc)
	}
}

// split packs paragraphs into chunks of about ChunkSize tokens. Paragraphs
// that are too large on their own are packed sentence by sentence.
func (c *chunker) split(text string) []string {
	var out []string
	var pending []string
	for _, para := range paragraphs(text) {
		if EstimateTokens(para) <= c.cfg.ChunkSize {
			pending = append(pending, para)
			continue
		}
		out = append(out, c.pack(pending, "\n\n")...)
		pending = nil
		out = append(out, c.pack(sentences(para), " ")...)
	}
	return append(out, c.pack(pending, "\n\n")...)
}

// pack joins units with sep, starting a new chunk when the next unit would
// exceed ChunkSize. Each new chunk opens with the last ChunkOverlap tokens
// of the previous one.
func (c *chunker) pack(units []string, sep string) []string {
	var out []string
	var cur strings.Builder
	curTokens := 0
	for _, u := range units {
		n := EstimateTokens(u)
		if curTokens > 0 && curTokens+n > c.cfg.ChunkSize {
			out = append(out, cur.String())
			overlap := tail(cur.String(), c.cfg.ChunkOverlap)
			cur.Reset()
			cur.WriteString(overlap)
			curTokens = EstimateTokens(overlap)
		}
		if cur.Len() > 0 {
			cur.WriteString(sep)
		}
		cur.WriteString(u)
		curTokens += n
	}
	if curTokens > 0 {
		out = append(out, cur.String())
	}
	return out
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// sentences splits after '.', '!' or '?' followed by a space.
func sentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// tail returns roughly the last n tokens of text as whole words, or "" when
// text is not longer than that.
func tail(text string, n int) string {
	words := strings.Fields(text)
	keep := int(float64(n) / tokensPerWord)
	if keep <= 0 || len(words) <= keep {
		return ""
	}
	return strings.Join(words[len(words)-keep:], " ")
}
