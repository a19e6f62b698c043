package phrase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techjusticelab/opinion-ingest/internal/rag/phrase"
)

func TestExtractKeepsCuratedLegalPhrase(t *testing.T) {
	sentences := []phrase.SentenceTokens{
		{SentenceID: 1, ChunkID: 1, Words: []string{"the", "court", "found", "due", "process", "violated"}},
	}
	phrases := phrase.Extract(sentences, phrase.Strict)

	var found bool
	for _, p := range phrases {
		if p.Phrase == "due process" {
			found = true
			assert.Equal(t, 2, p.N)
			assert.Equal(t, 1, p.Frequency)
		}
	}
	assert.True(t, found)
}

func TestExtractRejectsStopPhrase(t *testing.T) {
	sentences := []phrase.SentenceTokens{
		{SentenceID: 1, ChunkID: 1, Words: []string{"part", "of", "the", "record"}},
	}
	phrases := phrase.Extract(sentences, phrase.Relaxed)
	for _, p := range phrases {
		assert.NotEqual(t, "of the", p.Phrase)
	}
}

func TestExtractStrictRequiresKeywordOrAllowlist(t *testing.T) {
	sentences := []phrase.SentenceTokens{
		{SentenceID: 1, ChunkID: 1, Words: []string{"the", "weather", "was", "pleasant", "today"}},
	}
	phrases := phrase.Extract(sentences, phrase.Strict)
	assert.Empty(t, phrases)
}

func TestExtractRelaxedDropsKeywordRequirement(t *testing.T) {
	sentences := []phrase.SentenceTokens{
		{SentenceID: 1, ChunkID: 1, Words: []string{"the", "weather", "was", "pleasant", "today"}},
	}
	phrases := phrase.Extract(sentences, phrase.Relaxed)
	assert.NotEmpty(t, phrases)
}

func TestExtractAggregatesFrequencyAndKeepsFirstExampleLocation(t *testing.T) {
	sentences := []phrase.SentenceTokens{
		{SentenceID: 1, ChunkID: 1, Words: []string{"abuse", "of", "discretion"}},
		{SentenceID: 2, ChunkID: 1, Words: []string{"abuse", "of", "discretion"}},
	}
	phrases := phrase.Extract(sentences, phrase.Strict)

	require.NotEmpty(t, phrases)
	for _, p := range phrases {
		if p.Phrase == "abuse of discretion" {
			require.NotNil(t, p.ExampleSentence)
			assert.Equal(t, 2, p.Frequency)
			assert.Equal(t, int64(1), *p.ExampleSentence)
		}
	}
}
