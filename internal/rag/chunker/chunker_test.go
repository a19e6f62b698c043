package chunker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/rag/chunker"
)

func words(n int) string {
	return strings.Repeat("word ", n)
}

func TestChunkOrderIsDenseAndSequential(t *testing.T) {
	pages := []models.Page{
		{Number: 1, Text: "FACTS\n" + words(300) + "\nANALYSIS\n" + words(300) + "\nHOLDING\n" + words(300)},
	}

	chunks := chunker.Chunk(pages)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i+1, c.ChunkOrder)
	}
}

func TestChunkAssignsSectionFromHeading(t *testing.T) {
	pages := []models.Page{
		{Number: 1, Text: "ANALYSIS\n" + words(250)},
	}
	chunks := chunker.Chunk(pages)
	require.NotEmpty(t, chunks)
	assert.Equal(t, models.SectionAnalysis, chunks[0].Section)
}

func TestChunkDefaultsToContentSection(t *testing.T) {
	pages := []models.Page{{Number: 1, Text: words(250)}}
	chunks := chunker.Chunk(pages)
	require.NotEmpty(t, chunks)
	assert.Equal(t, models.SectionContent, chunks[0].Section)
}

func TestChunkKeepsOversizedLineWhole(t *testing.T) {
	pages := []models.Page{{Number: 1, Text: words(600)}}
	chunks := chunker.Chunk(pages)
	require.Len(t, chunks, 1)
	assert.Equal(t, 600, len(strings.Fields(chunks[0].Text)))
}
