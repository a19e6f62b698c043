package sqlitestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/rag"
	"github.com/techjusticelab/opinion-ingest/internal/rag/phrase"
)

// fakeEmbedder returns a fixed-width deterministic vector per input,
// avoiding any network dependency in these tests (SPEC_FULL.md §6: the
// embedding client is replaced by an in-memory fake for testable-property
// tests that run against the sqlitestore backend).
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, models.EmbeddingDim)
		out[i][0] = float32(i) + 1
	}
	return out, nil
}

func testOpts() rag.Options {
	return rag.Options{WordBatchSize: 500, EmbedMode: models.EmbedAll, PhraseFilter: phrase.Relaxed}
}

func sampleCase(fileID string) models.AssembledCase {
	return models.AssembledCase{
		Case: models.Case{
			CaseFileID:           fileID,
			CaseFileIDNormalized: fileID,
			Title:                "State v. Doe",
			CourtLevel:           models.CourtLevelAppeals,
			District:             "Division One",
			PublicationStatus:    models.PublicationPublished,
			SourceFile:           fileID + ".pdf",
			ExtractionTimestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		CourtName: "Court of Appeals",
		Parties: []models.Party{
			{Name: "State of Washington", LegalRole: "appellant"},
			{Name: "John Doe", LegalRole: "respondent"},
		},
		Judges: []struct {
			Name string
			Role models.JudgeRole
		}{
			{Name: "Judge Smith", Role: models.JudgeRoleAuthor},
		},
		Issues: []models.AssembledIssue{
			{
				IssueSummary:     "Whether the trial court erred in admitting evidence.",
				DecisionSummary:  "The trial court did not err.",
				TaxonomyCaseType: "Criminal",
				TaxonomyCategory: "Evidence",
				Arguments: []models.Argument{
					{Side: models.SideAppellant, Text: "The evidence was improperly admitted."},
				},
			},
		},
	}
}

func samplePages() []models.Page {
	return []models.Page{
		{Number: 1, Text: "FACTS\n\nThe defendant was arrested on January 1. The officer testified that the search was lawful. The trial court admitted the evidence over objection.\n\nANALYSIS\n\nThe appellate court reviews evidentiary rulings for abuse of discretion. The trial court did not abuse its discretion here. The conviction is affirmed."},
	}
}

func TestIngestCaseWritesFullCaseGraph(t *testing.T) {
	db, err := New(":memory:", models.EmbeddingDim)
	require.NoError(t, err)
	defer db.Close()

	sess := db.NewSession()
	result, err := sess.IngestCase(context.Background(), sampleCase("case-001"), samplePages(), fakeEmbedder{}, testOpts())
	require.NoError(t, err)
	assert.False(t, result.WasUpdate)
	assert.NotZero(t, result.CaseID)

	report, err := sess.VerifyCase(context.Background(), result.CaseID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFullyProcessed, report.ProcessingStatus)
	assert.NotZero(t, report.ChunkCount)
	assert.NotZero(t, report.SentenceCount)
	assert.NotZero(t, report.WordOccurrenceCount)
	assert.NotZero(t, report.EmbeddingCount)
	assert.True(t, report.OrderingValid)
}

// TestIngestCaseReingestionReplacesDependents exercises spec.md §3's
// lifecycle rule: re-ingesting the same natural key (case_file_id_normalized,
// court_level) updates the same case row and rewrites its dependents rather
// than accumulating duplicates.
func TestIngestCaseReingestionReplacesDependents(t *testing.T) {
	db, err := New(":memory:", models.EmbeddingDim)
	require.NoError(t, err)
	defer db.Close()

	sess := db.NewSession()
	ctx := context.Background()

	first, err := sess.IngestCase(ctx, sampleCase("case-002"), samplePages(), fakeEmbedder{}, testOpts())
	require.NoError(t, err)
	firstReport, err := sess.VerifyCase(ctx, first.CaseID)
	require.NoError(t, err)

	second, err := sess.IngestCase(ctx, sampleCase("case-002"), samplePages(), fakeEmbedder{}, testOpts())
	require.NoError(t, err)
	assert.True(t, second.WasUpdate)
	assert.Equal(t, first.CaseID, second.CaseID)

	secondReport, err := sess.VerifyCase(ctx, second.CaseID)
	require.NoError(t, err)
	assert.Equal(t, firstReport.ChunkCount, secondReport.ChunkCount)
	assert.Equal(t, firstReport.SentenceCount, secondReport.SentenceCount)
	assert.Equal(t, firstReport.EmbeddingCount, secondReport.EmbeddingCount)
}

// TestDimensionUniqueness exercises spec.md §8's "for every dimension
// table, no two rows share the natural key" property: two cases sharing a
// court natural key converge on the same court row.
func TestDimensionUniqueness(t *testing.T) {
	db, err := New(":memory:", models.EmbeddingDim)
	require.NoError(t, err)
	defer db.Close()

	sess := db.NewSession()
	ctx := context.Background()

	a := sampleCase("case-003")
	b := sampleCase("case-004")

	_, err = sess.IngestCase(ctx, a, nil, fakeEmbedder{}, testOpts())
	require.NoError(t, err)
	_, err = sess.IngestCase(ctx, b, nil, fakeEmbedder{}, testOpts())
	require.NoError(t, err)

	var count int
	err = db.db.QueryRowContext(ctx, `SELECT count(*) FROM court WHERE name = ? AND district = ?`, "Court of Appeals", "Division One").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// TestWordOccurrenceCountMatchesWordCount exercises spec.md §8's word-count
// invariant: the number of word_occurrence rows for a sentence equals its
// recorded word_count.
func TestWordOccurrenceCountMatchesWordCount(t *testing.T) {
	db, err := New(":memory:", models.EmbeddingDim)
	require.NoError(t, err)
	defer db.Close()

	sess := db.NewSession()
	ctx := context.Background()

	result, err := sess.IngestCase(ctx, sampleCase("case-005"), samplePages(), fakeEmbedder{}, testOpts())
	require.NoError(t, err)

	rows, err := db.db.QueryContext(ctx, `SELECT sentence_id, word_count FROM case_sentence WHERE case_id = ?`, result.CaseID)
	require.NoError(t, err)
	defer rows.Close()

	type sc struct {
		id    int64
		count int
	}
	var sentences []sc
	for rows.Next() {
		var s sc
		require.NoError(t, rows.Scan(&s.id, &s.count))
		sentences = append(sentences, s)
	}
	require.NotEmpty(t, sentences)

	for _, s := range sentences {
		var occCount int
		err := db.db.QueryRowContext(ctx, `SELECT count(*) FROM word_occurrence WHERE sentence_id = ?`, s.id).Scan(&occCount)
		require.NoError(t, err)
		assert.Equal(t, s.count, occCount, "sentence %d", s.id)
	}
}

// TestEmbedNoneProducesSingleCaseLevelEmbedding exercises spec.md §4.8's
// "none" mode end to end through the store.
func TestEmbedNoneProducesSingleCaseLevelEmbedding(t *testing.T) {
	db, err := New(":memory:", models.EmbeddingDim)
	require.NoError(t, err)
	defer db.Close()

	sess := db.NewSession()
	ctx := context.Background()
	opts := testOpts()
	opts.EmbedMode = models.EmbedNone

	result, err := sess.IngestCase(ctx, sampleCase("case-006"), samplePages(), fakeEmbedder{}, opts)
	require.NoError(t, err)

	report, err := sess.VerifyCase(ctx, result.CaseID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.EmbeddingCount)

	var vecCount int
	err = db.db.QueryRowContext(ctx, `SELECT count(*) FROM embedding_vec`).Scan(&vecCount)
	require.NoError(t, err)
	assert.Equal(t, 1, vecCount)
}
