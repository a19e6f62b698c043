package word_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/rag/word"
)

type fakeStore struct {
	nextID      int64
	ids         map[string]int64
	occurrences []models.WordOccurrence
	upsertCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{ids: make(map[string]int64)}
}

func (f *fakeStore) UpsertWords(ctx context.Context, words []string) (map[string]int64, error) {
	f.upsertCalls++
	out := make(map[string]int64, len(words))
	for _, w := range words {
		id, ok := f.ids[w]
		if !ok {
			f.nextID++
			id = f.nextID
			f.ids[w] = id
		}
		out[w] = id
	}
	return out, nil
}

func (f *fakeStore) InsertOccurrences(ctx context.Context, occs []models.WordOccurrence) error {
	f.occurrences = append(f.occurrences, occs...)
	return nil
}

func TestProcessResolvesIDsAndWritesOccurrences(t *testing.T) {
	store := newFakeStore()
	sentences := []word.SentenceTokens{
		{ChunkID: 1, SentenceID: 10, Tokens: word.Tokenize("the court affirmed")},
		{ChunkID: 1, SentenceID: 11, Tokens: word.Tokenize("the court reversed")},
	}

	err := word.Process(context.Background(), 100, 2, sentences, store)
	require.NoError(t, err)

	assert.Len(t, store.occurrences, 6)
	for _, occ := range store.occurrences {
		assert.Equal(t, int64(100), occ.CaseID)
		assert.NotZero(t, occ.WordID)
	}

	var courtIDs []int64
	for _, occ := range store.occurrences {
		if occ.WordID == store.ids["court"] {
			courtIDs = append(courtIDs, occ.WordID)
		}
	}
	assert.Len(t, courtIDs, 2)
}

func TestProcessBatchesDistinctWordUpserts(t *testing.T) {
	store := newFakeStore()
	sentences := []word.SentenceTokens{
		{ChunkID: 1, SentenceID: 1, Tokens: word.Tokenize("alpha beta gamma delta epsilon")},
	}

	err := word.Process(context.Background(), 1, 2, sentences, store)
	require.NoError(t, err)
	assert.Equal(t, 3, store.upsertCalls) // 5 distinct words, batch size 2 -> 3 batches
}
