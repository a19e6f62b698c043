package pdftext

import (
	"context"
	"fmt"
	"image/png"
	"os"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
)

// OCRExtractor rasterizes pages with go-fitz and runs Tesseract via
// gosseract, for scanned opinions whose text layer is empty or sparse.
// Grounded in the teacher's pkg/processing/extractor/ocr.go.
type OCRExtractor struct {
	Language string
	TempDir  string
}

func NewOCRExtractor(language string) *OCRExtractor {
	if language == "" {
		language = "eng"
	}
	return &OCRExtractor{Language: language}
}

func (e *OCRExtractor) Name() string { return "ocr" }

func (e *OCRExtractor) Extract(ctx context.Context, content []byte) ([]ExtractedPage, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, fmt.Errorf("open pdf for rasterization: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	pages := make([]ExtractedPage, 0, total)

	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.Image(i)
		if err != nil {
			continue
		}

		tmp, err := os.CreateTemp(e.TempDir, "ocr_page_*.png")
		if err != nil {
			continue
		}
		tmpName := tmp.Name()
		encErr := png.Encode(tmp, img)
		tmp.Close()
		if encErr != nil {
			os.Remove(tmpName)
			continue
		}

		text, err := e.ocrImage(tmpName)
		os.Remove(tmpName)
		if err != nil || text == "" {
			continue
		}

		pages = append(pages, ExtractedPage{Number: i + 1, Text: text})
	}

	return pages, nil
}

func (e *OCRExtractor) ocrImage(path string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.Language); err != nil {
		return "", fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("set ocr image: %w", err)
	}
	return client.Text()
}
