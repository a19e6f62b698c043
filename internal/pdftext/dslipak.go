package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dslipak/pdf"
)

// DslipakExtractor is the fallback extractor tried when the primary
// extractor errors or returns sparse text, grounded in the teacher's
// pkg/processing/extractor/pdf_dslipak.go.
type DslipakExtractor struct{}

func NewDslipakExtractor() *DslipakExtractor {
	return &DslipakExtractor{}
}

func (e *DslipakExtractor) Name() string { return "dslipak" }

func (e *DslipakExtractor) Extract(ctx context.Context, content []byte) ([]ExtractedPage, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf with dslipak/pdf: %w", err)
	}

	total := r.NumPage()
	pages := make([]ExtractedPage, 0, total)
	for i := 1; i <= total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := extractRow(page)
		if err != nil || text == "" {
			continue
		}
		pages = append(pages, ExtractedPage{Number: i, Text: text})
	}

	return pages, nil
}

// extractRow walks GetTextByRow output, which recovers text in legal
// filings where GetPlainText garbles column layout (teacher's
// extractWithTextByRow).
func extractRow(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, row := range rows {
		for _, word := range row.Content {
			if word.S == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(word.S)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}
