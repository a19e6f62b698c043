package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techjusticelab/opinion-ingest/internal/embedding"
	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/rag"
	"github.com/techjusticelab/opinion-ingest/internal/store"
)

// session implements store.Session: one dimension cache, one transaction
// per IngestCase call, exactly as spec.md §4.9 and §5 require ("each
// worker owns a single database connection... one transaction per
// case").
type session struct {
	pool         *pgxpool.Pool
	dims         *dimensionCache
	embeddingDim int
}

// IngestCase runs spec.md §4.9's twelve steps inside one transaction.
func (s *session) IngestCase(ctx context.Context, assembled models.AssembledCase, pages []models.Page, embedder embedding.Client, opts rag.Options) (store.IngestResult, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.IngestResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op once committed

	result, err := s.ingestCaseTx(ctx, tx, assembled, pages, embedder, opts)
	if err != nil {
		return store.IngestResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return store.IngestResult{}, fmt.Errorf("commit case %s: %w", assembled.Case.CaseFileID, err)
	}
	return result, nil
}

func (s *session) ingestCaseTx(ctx context.Context, tx pgx.Tx, assembled models.AssembledCase, pages []models.Page, embedder embedding.Client, opts rag.Options) (store.IngestResult, error) {
	c := assembled.Case

	// Step 1: resolve dimension ids (spec.md §4.3, §4.9 step 1).
	if assembled.CourtName != "" {
		courtID, err := s.dims.ensureCourt(ctx, tx, assembled.CourtName, c.CourtLevel, c.District, c.County)
		if err != nil {
			return store.IngestResult{}, err
		}
		c.CourtID = &courtID
	}

	// The case-level case_type dimension takes the primary (first) issue's
	// taxonomy case type, keeping one natural key shared between
	// legal_taxonomy's root node and case_type rather than asking the LLM
	// to classify the case twice.
	if len(assembled.Issues) > 0 && assembled.Issues[0].TaxonomyCaseType != "" {
		caseTypeID, err := s.dims.ensureCaseType(ctx, tx, assembled.Issues[0].TaxonomyCaseType)
		if err != nil {
			return store.IngestResult{}, err
		}
		c.CaseTypeID = &caseTypeID
	}

	if assembled.ProceduralStage != "" {
		stageID, err := s.dims.ensureStageType(ctx, tx, assembled.ProceduralStage)
		if err != nil {
			return store.IngestResult{}, err
		}
		c.StageTypeID = &stageID
	}

	// Every ingested PDF is itself the court's own decision document, so
	// document_type's role/decision/adversarial/strategy attributes are
	// fixed; only the name varies with the opinion's authorship type.
	docTypeName := c.OpinionType
	if docTypeName == "" {
		docTypeName = "Opinion"
	}
	docTypeID, err := s.dims.ensureDocumentType(ctx, tx, docTypeName, models.DocumentRoleCourt, true, true, models.StrategyCaseOutcome)
	if err != nil {
		return store.IngestResult{}, err
	}
	c.DocumentTypeID = &docTypeID

	// Step 2: upsert the case, detecting whether this was an update.
	var caseID int64
	var wasUpdate bool
	err = tx.QueryRow(ctx, `
		INSERT INTO "case" (
			case_file_id, case_file_id_normalized, court_id, case_type_id, stage_type_id, document_type_id,
			title, docket_number, court_level, district, county, decision_year, decision_month,
			appeal_published_date, publication_status, opinion_type, full_text, processing_status,
			appeal_outcome, winner_legal_role, winner_personal_role, source_file, extraction_timestamp,
			parent_case_id
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,'ai_processed',$18,$19,$20,$21,$22,$23
		)
		ON CONFLICT (case_file_id_normalized, court_level) DO UPDATE SET
			case_file_id = EXCLUDED.case_file_id, court_id = EXCLUDED.court_id,
			case_type_id = EXCLUDED.case_type_id, stage_type_id = EXCLUDED.stage_type_id,
			document_type_id = EXCLUDED.document_type_id,
			title = EXCLUDED.title, docket_number = EXCLUDED.docket_number, district = EXCLUDED.district,
			county = EXCLUDED.county, decision_year = EXCLUDED.decision_year, decision_month = EXCLUDED.decision_month,
			appeal_published_date = EXCLUDED.appeal_published_date, publication_status = EXCLUDED.publication_status,
			opinion_type = EXCLUDED.opinion_type, full_text = EXCLUDED.full_text,
			processing_status = 'ai_processed', appeal_outcome = EXCLUDED.appeal_outcome,
			winner_legal_role = EXCLUDED.winner_legal_role, winner_personal_role = EXCLUDED.winner_personal_role,
			source_file = EXCLUDED.source_file, extraction_timestamp = EXCLUDED.extraction_timestamp,
			parent_case_id = EXCLUDED.parent_case_id
		RETURNING case_id, (xmax <> 0)`,
		c.CaseFileID, c.CaseFileIDNormalized, c.CourtID, c.CaseTypeID, c.StageTypeID, c.DocumentTypeID,
		c.Title, c.DocketNumber, string(c.CourtLevel), c.District, c.County, c.DecisionYear, c.DecisionMonth,
		c.AppealPublishedDate, string(c.PublicationStatus), c.OpinionType, c.FullText,
		c.AppealOutcome, c.WinnerLegalRole, c.WinnerPersonalRole, c.SourceFile, c.ExtractionTimestamp,
		c.ParentCaseID,
	).Scan(&caseID, &wasUpdate)
	if err != nil {
		return store.IngestResult{}, fmt.Errorf("upsert case %s: %w", c.CaseFileID, err)
	}

	// Step 3: on update, delete every dependent row so the whole case is
	// rewritten atomically (spec.md §3 lifecycle rule).
	if wasUpdate {
		if err := deleteDependents(ctx, tx, caseID); err != nil {
			return store.IngestResult{}, err
		}
	}

	// Step 4: parties, attorneys, judges.
	for _, p := range assembled.Parties {
		if _, err := tx.Exec(ctx, `INSERT INTO party (case_id, name, legal_role, personal_role) VALUES ($1,$2,$3,$4)`,
			caseID, p.Name, p.LegalRole, p.PersonalRole); err != nil {
			return store.IngestResult{}, fmt.Errorf("insert party %q: %w", p.Name, err)
		}
	}
	for _, a := range assembled.Attorneys {
		if _, err := tx.Exec(ctx, `INSERT INTO attorney (case_id, name, firm, representing_role) VALUES ($1,$2,$3,$4)`,
			caseID, a.Name, a.Firm, a.RepresentingRole); err != nil {
			return store.IngestResult{}, fmt.Errorf("insert attorney %q: %w", a.Name, err)
		}
	}
	for _, j := range assembled.Judges {
		judgeID, err := s.dims.ensureJudge(ctx, tx, j.Name)
		if err != nil {
			return store.IngestResult{}, err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO case_judge (case_id, judge_id, role) VALUES ($1,$2,$3) ON CONFLICT DO NOTHING`,
			caseID, judgeID, string(j.Role)); err != nil {
			return store.IngestResult{}, fmt.Errorf("link judge %q: %w", j.Name, err)
		}
	}

	// Step 5 & 6: issues, arguments, statute citations, citation edges.
	for _, issue := range assembled.Issues {
		taxonomyID, err := s.dims.ensureTaxonomyPath(ctx, tx, issue.TaxonomyCaseType, issue.TaxonomyCategory, issue.TaxonomySubcategory)
		if err != nil {
			return store.IngestResult{}, err
		}

		var issueID int64
		err = tx.QueryRow(ctx, `
			INSERT INTO issue_decision (case_id, issue_summary, decision_summary, issue_outcome, winner_legal_role, taxonomy_id)
			VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
			caseID, issue.IssueSummary, issue.DecisionSummary, issueOutcomeString(issue.IssueOutcome), issue.WinnerLegalRole, taxonomyID).Scan(&issueID)
		if err != nil {
			return store.IngestResult{}, fmt.Errorf("insert issue %q: %w", issue.IssueSummary, err)
		}

		for _, arg := range issue.Arguments {
			if _, err := tx.Exec(ctx, `INSERT INTO argument (issue_id, side, text) VALUES ($1,$2,$3)`,
				issueID, string(arg.Side), arg.Text); err != nil {
				return store.IngestResult{}, fmt.Errorf("insert argument: %w", err)
			}
		}

		for _, cite := range issue.StatuteCites {
			statuteID, err := s.dims.ensureStatute(ctx, tx, cite.Jurisdiction, cite.Code, cite.Title, cite.Section)
			if err != nil {
				return store.IngestResult{}, err
			}
			if _, err := tx.Exec(ctx, `INSERT INTO statute_citation (case_id, statute_id, context) VALUES ($1,$2,$3)`,
				caseID, statuteID, cite.Context); err != nil {
				return store.IngestResult{}, fmt.Errorf("insert statute citation: %w", err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO issue_rcw (issue_id, statute_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
				issueID, statuteID); err != nil {
				return store.IngestResult{}, fmt.Errorf("link issue statute: %w", err)
			}
		}
	}

	for _, edge := range assembled.Citations {
		if _, err := tx.Exec(ctx, `
			INSERT INTO citation_edge (source_case_id, target_case_id, target_case_citation, relationship, importance)
			VALUES ($1,$2,$3,$4,$5)`,
			caseID, edge.TargetCaseID, edge.TargetCaseCitation, string(edge.Relationship), citationImportanceString(edge.Importance)); err != nil {
			return store.IngestResult{}, fmt.Errorf("insert citation edge: %w", err)
		}
	}

	// Steps 7-11: the RAG write path.
	if len(pages) > 0 {
		sink := newSink(tx)
		caseSummary := firstIssueSummary(assembled.Issues)
		if err := rag.Process(ctx, sink, embedder, caseID, pages, c.Title, caseSummary, opts); err != nil {
			return store.IngestResult{}, fmt.Errorf("rag process: %w", err)
		}
	}

	// Step 12: mark fully processed.
	if _, err := tx.Exec(ctx, `UPDATE "case" SET processing_status = 'fully_processed' WHERE case_id = $1`, caseID); err != nil {
		return store.IngestResult{}, fmt.Errorf("finalize case status: %w", err)
	}

	return store.IngestResult{CaseID: caseID, WasUpdate: wasUpdate}, nil
}

func issueOutcomeString(v *models.IssueOutcome) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func citationImportanceString(v *models.CitationImportance) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func firstIssueSummary(issues []models.AssembledIssue) string {
	if len(issues) == 0 {
		return ""
	}
	return issues[0].IssueSummary
}

// deleteDependents implements spec.md §3's re-ingestion rule: "the
// transaction first deletes all dependents by case_id then re-creates
// them before committing." The case row itself is kept, so no foreign key
// cascades: every dependent table is deleted explicitly, children first.
// The df of each word the case used is taken back before its occurrences
// go, so the re-ingestion's own df bump does not count the case twice.
func deleteDependents(ctx context.Context, tx pgx.Tx, caseID int64) error {
	statements := []string{
		`DELETE FROM argument WHERE issue_id IN (SELECT id FROM issue_decision WHERE case_id = $1)`,
		`DELETE FROM issue_rcw WHERE issue_id IN (SELECT id FROM issue_decision WHERE case_id = $1)`,
		`DELETE FROM issue_decision WHERE case_id = $1`,
		`DELETE FROM party WHERE case_id = $1`,
		`DELETE FROM attorney WHERE case_id = $1`,
		`DELETE FROM case_judge WHERE case_id = $1`,
		`DELETE FROM citation_edge WHERE source_case_id = $1`,
		`DELETE FROM statute_citation WHERE case_id = $1`,
		`UPDATE word_dictionary SET df = df - 1 WHERE word_id IN (SELECT DISTINCT word_id FROM word_occurrence WHERE case_id = $1)`,
		`DELETE FROM word_occurrence WHERE case_id = $1`,
		`DELETE FROM case_phrase WHERE case_id = $1`,
		`DELETE FROM embedding WHERE case_id = $1`,
		`DELETE FROM case_sentence WHERE case_id = $1`,
		`DELETE FROM case_chunk WHERE case_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, caseID); err != nil {
			return fmt.Errorf("delete dependents: %w", err)
		}
	}
	return nil
}

func (s *session) VerifyCase(ctx context.Context, caseID int64) (store.VerifyReport, error) {
	report := store.VerifyReport{CaseID: caseID}

	err := s.pool.QueryRow(ctx, `SELECT processing_status FROM "case" WHERE case_id = $1`, caseID).Scan(&report.ProcessingStatus)
	if err != nil {
		return store.VerifyReport{}, fmt.Errorf("load case %d: %w", caseID, err)
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT count(*) FROM case_chunk WHERE case_id = $1`, &report.ChunkCount},
		{`SELECT count(*) FROM case_sentence WHERE case_id = $1`, &report.SentenceCount},
		{`SELECT count(*) FROM word_occurrence WHERE case_id = $1`, &report.WordOccurrenceCount},
		{`SELECT count(*) FROM case_phrase WHERE case_id = $1`, &report.PhraseCount},
		{`SELECT count(*) FROM embedding WHERE case_id = $1`, &report.EmbeddingCount},
	}
	for _, c := range counts {
		if err := s.pool.QueryRow(ctx, c.query, caseID).Scan(c.dest); err != nil {
			return store.VerifyReport{}, fmt.Errorf("count query: %w", err)
		}
	}

	var gaps int
	err = s.pool.QueryRow(ctx, `
		SELECT count(*) FROM (
			SELECT chunk_order, row_number() OVER (ORDER BY chunk_order) AS rn
			FROM case_chunk WHERE case_id = $1
		) t WHERE chunk_order <> rn`, caseID).Scan(&gaps)
	if err != nil {
		return store.VerifyReport{}, fmt.Errorf("check chunk ordering: %w", err)
	}
	report.OrderingValid = gaps == 0

	return report, nil
}
