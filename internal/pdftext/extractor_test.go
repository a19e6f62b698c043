package pdftext_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techjusticelab/opinion-ingest/internal/pdftext"
)

type fakeExtractor struct {
	name  string
	pages []pdftext.ExtractedPage
	err   error
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Extract(ctx context.Context, content []byte) ([]pdftext.ExtractedPage, error) {
	return f.pages, f.err
}

func TestPipelineUsesPrimaryWhenDense(t *testing.T) {
	primary := &fakeExtractor{name: "primary", pages: []pdftext.ExtractedPage{
		{Number: 1, Text: "a lengthy paragraph of extracted opinion text that clears the sparse threshold easily"},
	}}
	fallback := &fakeExtractor{name: "fallback", err: errors.New("should not be called")}

	p := pdftext.NewPipeline(primary, fallback, nil)
	pages, err := p.Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
}

func TestPipelineFallsBackOnSparsePrimary(t *testing.T) {
	primary := &fakeExtractor{name: "primary", pages: []pdftext.ExtractedPage{{Number: 1, Text: "x"}}}
	fallback := &fakeExtractor{name: "fallback", pages: []pdftext.ExtractedPage{
		{Number: 1, Text: "recovered text long enough to clear the sparse-page threshold"},
	}}

	p := pdftext.NewPipeline(primary, fallback, nil)
	pages, err := p.Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Text, "recovered")
}

func TestPipelineFallsBackToOCRWhenBothSparse(t *testing.T) {
	primary := &fakeExtractor{name: "primary", pages: []pdftext.ExtractedPage{{Number: 1, Text: ""}}}
	fallback := &fakeExtractor{name: "fallback", pages: []pdftext.ExtractedPage{{Number: 1, Text: ""}}}
	ocr := &fakeExtractor{name: "ocr", pages: []pdftext.ExtractedPage{
		{Number: 1, Text: "ocr recovered text"},
	}}

	p := pdftext.NewPipeline(primary, fallback, ocr)
	pages, err := p.Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "ocr recovered text", pages[0].Text)
}

func TestPipelinePropagatesErrorWhenNoFallbackSucceeds(t *testing.T) {
	wantErr := errors.New("corrupt pdf")
	primary := &fakeExtractor{name: "primary", err: wantErr}
	fallback := &fakeExtractor{name: "fallback", err: errors.New("also broken")}

	p := pdftext.NewPipeline(primary, fallback, nil)
	_, err := p.Extract(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}
