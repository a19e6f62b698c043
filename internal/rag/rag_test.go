package rag_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/rag"
	"github.com/techjusticelab/opinion-ingest/internal/rag/phrase"
)

type fakeSink struct {
	nextChunkID    int64
	nextSentenceID int64
	nextWordID     int64
	wordIDs        map[string]int64

	chunks      []models.Chunk
	sentences   []models.Sentence
	occurrences []models.WordOccurrence
	phrases     []models.Phrase
	embeddings  []models.Embedding
}

func newFakeSink() *fakeSink { return &fakeSink{wordIDs: make(map[string]int64)} }

func (f *fakeSink) InsertChunks(ctx context.Context, caseID int64, chunks []models.Chunk) ([]models.Chunk, error) {
	for i := range chunks {
		f.nextChunkID++
		chunks[i].CaseID = caseID
		chunks[i].ChunkID = f.nextChunkID
	}
	f.chunks = chunks
	return chunks, nil
}

func (f *fakeSink) InsertSentences(ctx context.Context, caseID int64, sentences []models.Sentence) ([]models.Sentence, error) {
	for i := range sentences {
		f.nextSentenceID++
		sentences[i].SentenceID = f.nextSentenceID
	}
	f.sentences = sentences
	return sentences, nil
}

func (f *fakeSink) UpsertWords(ctx context.Context, words []string) (map[string]int64, error) {
	out := make(map[string]int64, len(words))
	for _, w := range words {
		id, ok := f.wordIDs[w]
		if !ok {
			f.nextWordID++
			id = f.nextWordID
			f.wordIDs[w] = id
		}
		out[w] = id
	}
	return out, nil
}

func (f *fakeSink) InsertOccurrences(ctx context.Context, occs []models.WordOccurrence) error {
	f.occurrences = append(f.occurrences, occs...)
	return nil
}

func (f *fakeSink) InsertPhrases(ctx context.Context, caseID int64, phrases []models.Phrase) error {
	f.phrases = phrases
	return nil
}

func (f *fakeSink) InsertEmbeddings(ctx context.Context, caseID int64, embeddings []models.Embedding) error {
	f.embeddings = embeddings
	return nil
}

type fakeEmbedder struct{ calls int }

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func samplePages() []models.Page {
	words := strings.Repeat("word ", 250)
	return []models.Page{
		{Number: 1, Text: "FACTS\nState v. Doe was decided. " + words},
		{Number: 2, Text: "ANALYSIS\nThe court reviewed the abuse of discretion standard. " + words},
	}
}

func TestProcessWritesEveryStageInOrder(t *testing.T) {
	sink := newFakeSink()
	embedder := &fakeEmbedder{}

	err := rag.Process(context.Background(), sink, embedder, 42, samplePages(), "State v. Doe", "summary", rag.Options{
		WordBatchSize: 500,
		EmbedMode:     models.EmbedAll,
		PhraseFilter:  phrase.Strict,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, sink.chunks)
	assert.NotEmpty(t, sink.sentences)
	assert.NotEmpty(t, sink.occurrences)
	assert.NotEmpty(t, sink.embeddings)
	for _, c := range sink.chunks {
		assert.Equal(t, int64(42), c.CaseID)
	}
	assert.Equal(t, len(sink.chunks), len(sink.embeddings)) // EmbedAll -> one vector per chunk
}

func TestProcessImportantModeOnlyEmbedsKeySections(t *testing.T) {
	sink := newFakeSink()
	embedder := &fakeEmbedder{}

	err := rag.Process(context.Background(), sink, embedder, 1, samplePages(), "t", "s", rag.Options{
		WordBatchSize: 500,
		EmbedMode:     models.EmbedImportant,
		PhraseFilter:  phrase.Relaxed,
	})
	require.NoError(t, err)

	for _, e := range sink.embeddings {
		require.NotNil(t, e.Section)
		assert.True(t, models.ImportantSections[*e.Section])
	}
}

func TestProcessNoneModeProducesSingleCaseLevelEmbedding(t *testing.T) {
	sink := newFakeSink()
	embedder := &fakeEmbedder{}

	err := rag.Process(context.Background(), sink, embedder, 1, samplePages(), "Case Title", "Case Summary", rag.Options{
		WordBatchSize: 500,
		EmbedMode:     models.EmbedNone,
		PhraseFilter:  phrase.Strict,
	})
	require.NoError(t, err)

	require.Len(t, sink.embeddings, 1)
	assert.Nil(t, sink.embeddings[0].ChunkID)
	assert.Contains(t, sink.embeddings[0].Text, "Case Title")
}

func TestProcessSentenceOrderingIsDenseWithinChunks(t *testing.T) {
	sink := newFakeSink()
	embedder := &fakeEmbedder{}

	err := rag.Process(context.Background(), sink, embedder, 1, samplePages(), "t", "s", rag.Options{
		WordBatchSize: 500,
		EmbedMode:     models.EmbedNone,
		PhraseFilter:  phrase.Strict,
	})
	require.NoError(t, err)

	byChunk := map[int64][]models.Sentence{}
	for _, s := range sink.sentences {
		byChunk[s.ChunkID] = append(byChunk[s.ChunkID], s)
	}
	for _, sentences := range byChunk {
		for i, s := range sentences {
			assert.Equal(t, i+1, s.SentenceOrder)
		}
	}

	for i, s := range sink.sentences {
		assert.Equal(t, i+1, s.GlobalSentenceOrder)
	}
}
