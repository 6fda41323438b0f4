package parser

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/docsift/internal/document"
	"github.com/dgallion1/docsift/internal/ocr"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextParser handles plain text files. The text is returned as written;
// paragraphs become untitled sections.
type TextParser struct{}

func (p *TextParser) Parse(ctx context.Context, data []byte, filename string, progress ocr.ProgressFunc) (*document.Result, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, &DocumentError{Msg: "Could not decode the text file.", Err: err}
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), max(1024*1024, len(text)+1))

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	res := &document.Result{
		Title:  titleFromFilename(filename),
		Text:   textOrSentinel(text),
		Method: document.MethodDirect,
	}
	for _, para := range paragraphs {
		res.Sections = append(res.Sections, &document.Section{Text: para})
	}
	progress.Report(ocr.Progress{Status: "Text extracted", Fraction: 1})
	return res, nil
}

// decodeText honors a UTF-8 or UTF-16 byte order mark and otherwise treats
// the bytes as UTF-8, replacing invalid sequences.
func decodeText(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}
