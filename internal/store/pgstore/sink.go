package pgstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/techjusticelab/opinion-ingest/internal/models"
)

// sink implements rag.Sink against one case's transaction. It also
// tracks which word_ids it has already bumped df for, so a multi-batch
// WordProcessor run only increments document frequency once per case
// per word (the supplemented df-maintenance rule recorded in DESIGN.md).
type sink struct {
	tx          pgx.Tx
	dfCountedID map[int64]bool
}

func newSink(tx pgx.Tx) *sink {
	return &sink{tx: tx, dfCountedID: make(map[int64]bool)}
}

func (s *sink) InsertChunks(ctx context.Context, caseID int64, chunks []models.Chunk) ([]models.Chunk, error) {
	out := make([]models.Chunk, len(chunks))
	for i, c := range chunks {
		var id int64
		err := s.tx.QueryRow(ctx, `
			INSERT INTO case_chunk (case_id, chunk_order, section, text, sentence_count)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING chunk_id`, caseID, c.ChunkOrder, string(c.Section), c.Text, c.SentenceCount).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert chunk %d: %w", c.ChunkOrder, err)
		}
		c.ChunkID = id
		c.CaseID = caseID
		out[i] = c
	}
	return out, nil
}

func (s *sink) InsertSentences(ctx context.Context, caseID int64, sentences []models.Sentence) ([]models.Sentence, error) {
	out := make([]models.Sentence, len(sentences))
	counts := make(map[int64]int)
	for i, sn := range sentences {
		var id int64
		err := s.tx.QueryRow(ctx, `
			INSERT INTO case_sentence (case_id, chunk_id, sentence_order, global_sentence_order, text, word_count)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING sentence_id`, caseID, sn.ChunkID, sn.SentenceOrder, sn.GlobalSentenceOrder, sn.Text, sn.WordCount).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert sentence (chunk %d, order %d): %w", sn.ChunkID, sn.SentenceOrder, err)
		}
		sn.SentenceID = id
		sn.CaseID = caseID
		out[i] = sn
		counts[sn.ChunkID]++
	}

	for chunkID, count := range counts {
		if _, err := s.tx.Exec(ctx, `UPDATE case_chunk SET sentence_count = $1 WHERE chunk_id = $2`, count, chunkID); err != nil {
			return nil, fmt.Errorf("backfill sentence_count for chunk %d: %w", chunkID, err)
		}
	}
	return out, nil
}

// UpsertWords implements word.Store: a multi-row insert with
// conflict-do-nothing on the natural key, followed by a batched select
// to resolve ids for the whole batch including pre-existing words
// (spec.md §4.6).
func (s *sink) UpsertWords(ctx context.Context, words []string) (map[string]int64, error) {
	if len(words) == 0 {
		return map[string]int64{}, nil
	}

	placeholders := make([]string, len(words))
	args := make([]interface{}, len(words))
	for i, w := range words {
		placeholders[i] = fmt.Sprintf("($%d)", i+1)
		args[i] = w
	}
	insertQuery := fmt.Sprintf(`INSERT INTO word_dictionary (word) VALUES %s ON CONFLICT (word) DO NOTHING`, strings.Join(placeholders, ","))
	if _, err := s.tx.Exec(ctx, insertQuery, args...); err != nil {
		return nil, fmt.Errorf("upsert word batch: %w", err)
	}

	selectPlaceholders := make([]string, len(words))
	for i := range words {
		selectPlaceholders[i] = fmt.Sprintf("$%d", i+1)
	}
	selectQuery := fmt.Sprintf(`SELECT word_id, word FROM word_dictionary WHERE word IN (%s)`, strings.Join(selectPlaceholders, ","))
	rows, err := s.tx.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve word ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64, len(words))
	for rows.Next() {
		var id int64
		var w string
		if err := rows.Scan(&id, &w); err != nil {
			return nil, fmt.Errorf("scan word id: %w", err)
		}
		out[w] = id
	}
	return out, rows.Err()
}

// InsertOccurrences implements word.Store's batched multi-row insert
// with uniquely named parameters, staying well under Postgres's 65535
// parameter limit at the ≥500-row batch size spec.md §4.6 requires.
func (s *sink) InsertOccurrences(ctx context.Context, occurrences []models.WordOccurrence) error {
	if len(occurrences) == 0 {
		return nil
	}

	const cols = 5
	placeholders := make([]string, len(occurrences))
	args := make([]interface{}, 0, len(occurrences)*cols)
	newWordIDs := make(map[int64]bool)
	for i, o := range occurrences {
		base := i * cols
		placeholders[i] = fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, o.WordID, o.CaseID, o.ChunkID, o.SentenceID, o.Position)
		if !s.dfCountedID[o.WordID] {
			newWordIDs[o.WordID] = true
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO word_occurrence (word_id, case_id, chunk_id, sentence_id, position)
		VALUES %s
		ON CONFLICT (word_id, sentence_id, position) DO NOTHING`, strings.Join(placeholders, ","))
	if _, err := s.tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert occurrence batch: %w", err)
	}

	if err := s.bumpDocumentFrequency(ctx, newWordIDs); err != nil {
		return err
	}
	return nil
}

// bumpDocumentFrequency implements the supplemented df-maintenance rule
// (SPEC_FULL.md §11): df counts distinct cases contributing a word, so
// it is incremented at most once per word per case.
func (s *sink) bumpDocumentFrequency(ctx context.Context, wordIDs map[int64]bool) error {
	if len(wordIDs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(wordIDs))
	for id := range wordIDs {
		ids = append(ids, id)
		s.dfCountedID[id] = true
	}
	_, err := s.tx.Exec(ctx, `UPDATE word_dictionary SET df = df + 1 WHERE word_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("bump word document frequency: %w", err)
	}
	return nil
}

func (s *sink) InsertPhrases(ctx context.Context, caseID int64, phrases []models.Phrase) error {
	for _, p := range phrases {
		_, err := s.tx.Exec(ctx, `
			INSERT INTO case_phrase (case_id, phrase, n, frequency, example_sentence, example_chunk)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (case_id, phrase) DO UPDATE SET frequency = EXCLUDED.frequency`,
			caseID, p.Phrase, p.N, p.Frequency, p.ExampleSentence, p.ExampleChunk)
		if err != nil {
			return fmt.Errorf("insert phrase %q: %w", p.Phrase, err)
		}
	}
	return nil
}

func (s *sink) InsertEmbeddings(ctx context.Context, caseID int64, embeddings []models.Embedding) error {
	for _, e := range embeddings {
		var section *string
		if e.Section != nil {
			str := string(*e.Section)
			section = &str
		}
		_, err := s.tx.Exec(ctx, `
			INSERT INTO embedding (case_id, chunk_id, document_id, text, vector, chunk_order, section)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			caseID, e.ChunkID, e.DocumentID, e.Text, pgvector.NewVector(e.Vector), e.ChunkOrder, section)
		if err != nil {
			return fmt.Errorf("insert embedding for chunk %v: %w", e.ChunkID, err)
		}
	}
	return nil
}
