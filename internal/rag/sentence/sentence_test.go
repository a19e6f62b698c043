package sentence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techjusticelab/opinion-ingest/internal/rag/sentence"
)

func TestSegmentProtectsVAbbreviation(t *testing.T) {
	global := 1
	sentences := sentence.Segment("State v. Doe was decided in 2019. The court affirmed.", 1, 1, &global)
	require.Len(t, sentences, 2)
	assert.Contains(t, sentences[0].Text, "State v. Doe")
	assert.Equal(t, "The court affirmed.", sentences[1].Text)
}

func TestSegmentProtectsReporterCitation(t *testing.T) {
	global := 1
	sentences := sentence.Segment("See State v. Smith, 123 Wn.2d 456, 789 P.2d 10 (1994). It controls here.", 1, 1, &global)
	require.Len(t, sentences, 2)
	assert.Contains(t, sentences[0].Text, "Wn.2d 456")
}

func TestSegmentAssignsDenseSentenceOrder(t *testing.T) {
	global := 1
	sentences := sentence.Segment("One. Two. Three.", 5, 9, &global)
	require.Len(t, sentences, 3)
	for i, s := range sentences {
		assert.Equal(t, i+1, s.SentenceOrder)
		assert.Equal(t, int64(5), s.ChunkID)
		assert.Equal(t, int64(9), s.CaseID)
	}
}

func TestSegmentAdvancesGlobalOrderAcrossChunks(t *testing.T) {
	global := 1
	first := sentence.Segment("One. Two.", 1, 1, &global)
	second := sentence.Segment("Three. Four.", 2, 1, &global)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.Equal(t, []int{1, 2}, []int{first[0].GlobalSentenceOrder, first[1].GlobalSentenceOrder})
	assert.Equal(t, []int{3, 4}, []int{second[0].GlobalSentenceOrder, second[1].GlobalSentenceOrder})
}

func TestSegmentSetsWordCount(t *testing.T) {
	global := 1
	sentences := sentence.Segment("The court affirmed the ruling.", 1, 1, &global)
	require.Len(t, sentences, 1)
	assert.Equal(t, 5, sentences[0].WordCount) // the, court, affirmed, the, ruling
}
