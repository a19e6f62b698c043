package word

import (
	"context"
	"fmt"

	"github.com/techjusticelab/opinion-ingest/internal/models"
)

// DefaultBatchSize is the minimum multi-row batch size spec.md §4.6
// requires for both the word-dictionary upsert and the occurrence flush.
const DefaultBatchSize = 500

// Store is the persistence seam WordProcessor writes through; pgstore and
// sqlitestore both implement it.
type Store interface {
	// UpsertWords inserts any normalized words not already present
	// (conflict-do-nothing on the natural key) and returns word_id for
	// every word in the batch, including ones that already existed.
	UpsertWords(ctx context.Context, words []string) (map[string]int64, error)
	InsertOccurrences(ctx context.Context, occurrences []models.WordOccurrence) error
}

// SentenceTokens pairs one sentence's tokens with its identity, the unit
// Process consumes per case (spec.md §4.6).
type SentenceTokens struct {
	ChunkID    int64
	SentenceID int64
	Tokens     []models.Token
}

// Process tokenizes nothing itself (rag.Process calls Tokenize on each
// stored sentence) but drives the two-phase write: batch-upsert
// distinct normalized words, then batch-insert positional occurrences
// using the resolved ids.
func Process(ctx context.Context, caseID int64, batchSize int, sentences []SentenceTokens, store Store) error {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	distinct := collectDistinctWords(sentences)
	wordIDs := make(map[string]int64, len(distinct))

	for start := 0; start < len(distinct); start += batchSize {
		end := min(start+batchSize, len(distinct))
		batch := distinct[start:end]
		ids, err := store.UpsertWords(ctx, batch)
		if err != nil {
			return fmt.Errorf("upsert word batch: %w", err)
		}
		for w, id := range ids {
			wordIDs[w] = id
		}
	}

	var occurrences []models.WordOccurrence
	flush := func() error {
		if len(occurrences) == 0 {
			return nil
		}
		if err := store.InsertOccurrences(ctx, occurrences); err != nil {
			return fmt.Errorf("insert occurrence batch: %w", err)
		}
		occurrences = occurrences[:0]
		return nil
	}

	for _, st := range sentences {
		for _, tok := range st.Tokens {
			id, ok := wordIDs[tok.Normalized]
			if !ok {
				return fmt.Errorf("word %q missing resolved id after upsert", tok.Normalized)
			}
			occurrences = append(occurrences, models.WordOccurrence{
				WordID:     id,
				CaseID:     caseID,
				ChunkID:    st.ChunkID,
				SentenceID: st.SentenceID,
				Position:   tok.Position,
			})
			if len(occurrences) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	return flush()
}

func collectDistinctWords(sentences []SentenceTokens) []string {
	seen := make(map[string]bool)
	var out []string
	for _, st := range sentences {
		for _, tok := range st.Tokens {
			if !seen[tok.Normalized] {
				seen[tok.Normalized] = true
				out = append(out, tok.Normalized)
			}
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
