package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/dgallion1/docsift/internal/document"
	"github.com/dgallion1/docsift/internal/ocr"
)

// CSVParser handles CSV files. Each data row is rendered as
// "header: value" pairs; rows are grouped into sections of 20.
type CSVParser struct{}

func (p *CSVParser) Parse(ctx context.Context, data []byte, filename string, progress ocr.ProgressFunc) (*document.Result, error) {
	src, err := decodeText(data)
	if err != nil {
		return nil, &DocumentError{Msg: "Could not decode the CSV file.", Err: err}
	}
	reader := csv.NewReader(strings.NewReader(src))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &DocumentError{Msg: "Could not parse the CSV file.", Err: fmt.Errorf("parse csv: %w", err)}
	}

	res := &document.Result{
		Title:  titleFromFilename(filename),
		Method: document.MethodDirect,
	}

	if len(records) == 0 {
		res.Text = textOrSentinel("")
		return res, nil
	}

	// First row is headers.
	headers := records[0]

	const batchSize = 20
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += batchSize {
		end := min(i+batchSize, len(dataRows))
		batch := dataRows[i:end]

		var text strings.Builder
		for _, row := range batch {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		res.Sections = append(res.Sections, &document.Section{
			Title: fmt.Sprintf("Rows %d-%d", i+2, end+1), // 1-indexed, skip header
			Text:  strings.TrimRight(text.String(), "\n"),
		})
	}

	body := document.Flatten(res.Sections)
	res.Text = "Headers: " + strings.Join(headers, ", ")
	if body != "" {
		res.Text += "\n\n" + body
	}
	progress.Report(ocr.Progress{Status: "Text extracted", Fraction: 1})
	return res, nil
}
