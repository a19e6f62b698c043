package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/techjusticelab/opinion-ingest/internal/models"
)

// sink implements rag.Sink against one case's transaction, mirroring
// pgstore's sink but split across the embedding metadata table and its
// paired vec0 virtual table (SQLite cannot mix arbitrary columns into a
// vec0 table), and using IN-list placeholders in place of ANY($1).
type sink struct {
	tx          *sql.Tx
	dfCountedID map[int64]bool
}

func newSink(tx *sql.Tx) *sink {
	return &sink{tx: tx, dfCountedID: make(map[int64]bool)}
}

func (s *sink) InsertChunks(ctx context.Context, caseID int64, chunks []models.Chunk) ([]models.Chunk, error) {
	out := make([]models.Chunk, len(chunks))
	for i, c := range chunks {
		var id int64
		err := s.tx.QueryRowContext(ctx, `
			INSERT INTO case_chunk (case_id, chunk_order, section, text, sentence_count)
			VALUES (?, ?, ?, ?, ?)
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
		err := s.tx.QueryRowContext(ctx, `
			INSERT INTO case_sentence (case_id, chunk_id, sentence_order, global_sentence_order, text, word_count)
			VALUES (?, ?, ?, ?, ?, ?)
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
		if _, err := s.tx.ExecContext(ctx, `UPDATE case_chunk SET sentence_count = ? WHERE chunk_id = ?`, count, chunkID); err != nil {
			return nil, fmt.Errorf("backfill sentence_count for chunk %d: %w", chunkID, err)
		}
	}
	return out, nil
}

func (s *sink) UpsertWords(ctx context.Context, words []string) (map[string]int64, error) {
	if len(words) == 0 {
		return map[string]int64{}, nil
	}

	placeholders := make([]string, len(words))
	args := make([]interface{}, len(words))
	for i, w := range words {
		placeholders[i] = "(?)"
		args[i] = w
	}
	insertQuery := fmt.Sprintf(`INSERT INTO word_dictionary (word) VALUES %s ON CONFLICT (word) DO NOTHING`, strings.Join(placeholders, ","))
	if _, err := s.tx.ExecContext(ctx, insertQuery, args...); err != nil {
		return nil, fmt.Errorf("upsert word batch: %w", err)
	}

	inPlaceholders := make([]string, len(words))
	for i := range words {
		inPlaceholders[i] = "?"
	}
	selectQuery := fmt.Sprintf(`SELECT word_id, word FROM word_dictionary WHERE word IN (%s)`, strings.Join(inPlaceholders, ","))
	rows, err := s.tx.QueryContext(ctx, selectQuery, args...)
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

func (s *sink) InsertOccurrences(ctx context.Context, occurrences []models.WordOccurrence) error {
	if len(occurrences) == 0 {
		return nil
	}

	placeholders := make([]string, len(occurrences))
	args := make([]interface{}, 0, len(occurrences)*5)
	newWordIDs := make(map[int64]bool)
	for i, o := range occurrences {
		placeholders[i] = "(?,?,?,?,?)"
		args = append(args, o.WordID, o.CaseID, o.ChunkID, o.SentenceID, o.Position)
		if !s.dfCountedID[o.WordID] {
			newWordIDs[o.WordID] = true
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO word_occurrence (word_id, case_id, chunk_id, sentence_id, position)
		VALUES %s
		ON CONFLICT (word_id, sentence_id, position) DO NOTHING`, strings.Join(placeholders, ","))
	if _, err := s.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert occurrence batch: %w", err)
	}

	return s.bumpDocumentFrequency(ctx, newWordIDs)
}

// bumpDocumentFrequency implements the same at-most-once-per-case df rule
// as pgstore's sink, using an IN-list in place of ANY($1).
func (s *sink) bumpDocumentFrequency(ctx context.Context, wordIDs map[int64]bool) error {
	if len(wordIDs) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(wordIDs))
	args := make([]interface{}, 0, len(wordIDs))
	for id := range wordIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
		s.dfCountedID[id] = true
	}
	query := fmt.Sprintf(`UPDATE word_dictionary SET df = df + 1 WHERE word_id IN (%s)`, strings.Join(placeholders, ","))
	if _, err := s.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bump word document frequency: %w", err)
	}
	return nil
}

func (s *sink) InsertPhrases(ctx context.Context, caseID int64, phrases []models.Phrase) error {
	for _, p := range phrases {
		_, err := s.tx.ExecContext(ctx, `
			INSERT INTO case_phrase (case_id, phrase, n, frequency, example_sentence, example_chunk)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (case_id, phrase) DO UPDATE SET frequency = excluded.frequency`,
			caseID, p.Phrase, p.N, p.Frequency, p.ExampleSentence, p.ExampleChunk)
		if err != nil {
			return fmt.Errorf("insert phrase %q: %w", p.Phrase, err)
		}
	}
	return nil
}

// InsertEmbeddings writes metadata to embedding and the vector to the
// paired vec0 table embedding_vec, joined by embedding_id, since vec0
// tables cannot carry arbitrary metadata columns.
func (s *sink) InsertEmbeddings(ctx context.Context, caseID int64, embeddings []models.Embedding) error {
	for _, e := range embeddings {
		var section *string
		if e.Section != nil {
			str := string(*e.Section)
			section = &str
		}

		var embeddingID int64
		err := s.tx.QueryRowContext(ctx, `
			INSERT INTO embedding (case_id, chunk_id, document_id, text, chunk_order, section)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING embedding_id`,
			caseID, e.ChunkID, e.DocumentID, e.Text, e.ChunkOrder, section).Scan(&embeddingID)
		if err != nil {
			return fmt.Errorf("insert embedding metadata for chunk %v: %w", e.ChunkID, err)
		}

		vec, err := vectorLiteral(e.Vector)
		if err != nil {
			return fmt.Errorf("encode embedding vector for chunk %v: %w", e.ChunkID, err)
		}
		if _, err := s.tx.ExecContext(ctx, `
			INSERT INTO embedding_vec (embedding_id, vector) VALUES (?, ?)`,
			embeddingID, vec); err != nil {
			return fmt.Errorf("insert embedding vector for chunk %v: %w", e.ChunkID, err)
		}
	}
	return nil
}

// vectorLiteral renders a float32 vector as the JSON array text sqlite-vec
// accepts for its float[N] columns.
func vectorLiteral(v []float32) (string, error) {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return "[" + strings.Join(parts, ",") + "]", nil
}
