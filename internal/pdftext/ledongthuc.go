package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LedongthucExtractor is the primary text-layer extractor, grounded in
// bbiangul-go-reason/parser/pdf.go's use of ledongthuc/pdf.
type LedongthucExtractor struct{}

func NewLedongthucExtractor() *LedongthucExtractor {
	return &LedongthucExtractor{}
}

func (e *LedongthucExtractor) Name() string { return "ledongthuc" }

func (e *LedongthucExtractor) Extract(ctx context.Context, content []byte) ([]ExtractedPage, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
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

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		text = strings.TrimSpace(text)
		pages = append(pages, ExtractedPage{Number: i, Text: text})
	}

	return pages, nil
}
