// Package pdftext implements the PDF-to-text extractor contract spec.md §6
// treats as external, following the teacher's registry-of-extractors shape
// in pkg/processing/extractor (primary extractor, fallback extractor, OCR
// extractor, tried in order until one returns non-empty text).
package pdftext

import (
	"context"
)

// Extractor pulls page-ordered text out of a PDF's raw bytes.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, content []byte) ([]ExtractedPage, error)
}

// ExtractedPage is one page of text in document order.
type ExtractedPage struct {
	Number int
	Text   string
}

// minCharsPerPage is the threshold below which a text-layer extraction is
// considered sparse enough to warrant an OCR fallback (SPEC_FULL.md §6).
const minCharsPerPage = 40

// Pipeline tries each extractor in order and falls through to OCR when the
// text layer is sparse, mirroring the teacher's extractor-service dispatch
// in pkg/processing/extractor/service.go.
type Pipeline struct {
	primary  Extractor
	fallback Extractor
	ocr      Extractor // nil disables OCR
}

func NewPipeline(primary, fallback, ocr Extractor) *Pipeline {
	return &Pipeline{primary: primary, fallback: fallback, ocr: ocr}
}

func (p *Pipeline) Extract(ctx context.Context, content []byte) ([]ExtractedPage, error) {
	pages, err := p.primary.Extract(ctx, content)
	if err != nil || sparse(pages) {
		if fbPages, fbErr := p.fallback.Extract(ctx, content); fbErr == nil && !sparse(fbPages) {
			pages, err = fbPages, nil
		} else if err == nil {
			pages, err = fbPages, fbErr
		}
	}

	if (err != nil || sparse(pages)) && p.ocr != nil {
		if ocrPages, ocrErr := p.ocr.Extract(ctx, content); ocrErr == nil && len(ocrPages) > 0 {
			return ocrPages, nil
		}
	}

	if err != nil {
		return nil, err
	}
	return pages, nil
}

func sparse(pages []ExtractedPage) bool {
	if len(pages) == 0 {
		return true
	}
	total := 0
	for _, p := range pages {
		total += len(p.Text)
	}
	return total/len(pages) < minCharsPerPage
}
