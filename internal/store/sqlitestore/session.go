package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/techjusticelab/opinion-ingest/internal/embedding"
	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/rag"
	"github.com/techjusticelab/opinion-ingest/internal/store"
)

// session implements store.Session against SQLite, mirroring pgstore's
// session: one dimension cache, one transaction per IngestCase call.
type session struct {
	db           *sql.DB
	dims         *dimensionCache
	embeddingDim int
}

func (s *session) IngestCase(ctx context.Context, assembled models.AssembledCase, pages []models.Page, embedder embedding.Client, opts rag.Options) (store.IngestResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.IngestResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	result, err := s.ingestCaseTx(ctx, tx, assembled, pages, embedder, opts)
	if err != nil {
		return store.IngestResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return store.IngestResult{}, fmt.Errorf("commit case %s: %w", assembled.Case.CaseFileID, err)
	}
	return result, nil
}

func (s *session) ingestCaseTx(ctx context.Context, tx *sql.Tx, assembled models.AssembledCase, pages []models.Page, embedder embedding.Client, opts rag.Options) (store.IngestResult, error) {
	c := assembled.Case

	// Step 1: resolve dimension ids.
	if assembled.CourtName != "" {
		courtID, err := s.dims.ensureCourt(ctx, tx, assembled.CourtName, c.CourtLevel, c.District, c.County)
		if err != nil {
			return store.IngestResult{}, err
		}
		c.CourtID = &courtID
	}

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

	docTypeName := c.OpinionType
	if docTypeName == "" {
		docTypeName = "Opinion"
	}
	docTypeID, err := s.dims.ensureDocumentType(ctx, tx, docTypeName, models.DocumentRoleCourt, true, true, models.StrategyCaseOutcome)
	if err != nil {
		return store.IngestResult{}, err
	}
	c.DocumentTypeID = &docTypeID

	// Step 2: upsert the case, detecting whether this was an update via a
	// pre-check since SQLite's RETURNING clause has no xmax equivalent.
	var existingID int64
	wasUpdate := true
	err = tx.QueryRowContext(ctx, `SELECT case_id FROM "case" WHERE case_file_id_normalized = ? AND court_level = ?`,
		c.CaseFileIDNormalized, string(c.CourtLevel)).Scan(&existingID)
	if err == sql.ErrNoRows {
		wasUpdate = false
	} else if err != nil {
		return store.IngestResult{}, fmt.Errorf("check existing case %s: %w", c.CaseFileID, err)
	}

	var caseID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO "case" (
			case_file_id, case_file_id_normalized, court_id, case_type_id, stage_type_id, document_type_id,
			title, docket_number, court_level, district, county, decision_year, decision_month,
			appeal_published_date, publication_status, opinion_type, full_text, processing_status,
			appeal_outcome, winner_legal_role, winner_personal_role, source_file, extraction_timestamp,
			parent_case_id
		) VALUES (
			?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,'ai_processed',?,?,?,?,?,?
		)
		ON CONFLICT (case_file_id_normalized, court_level) DO UPDATE SET
			case_file_id = excluded.case_file_id, court_id = excluded.court_id,
			case_type_id = excluded.case_type_id, stage_type_id = excluded.stage_type_id,
			document_type_id = excluded.document_type_id,
			title = excluded.title, docket_number = excluded.docket_number, district = excluded.district,
			county = excluded.county, decision_year = excluded.decision_year, decision_month = excluded.decision_month,
			appeal_published_date = excluded.appeal_published_date, publication_status = excluded.publication_status,
			opinion_type = excluded.opinion_type, full_text = excluded.full_text,
			processing_status = 'ai_processed', appeal_outcome = excluded.appeal_outcome,
			winner_legal_role = excluded.winner_legal_role, winner_personal_role = excluded.winner_personal_role,
			source_file = excluded.source_file, extraction_timestamp = excluded.extraction_timestamp,
			parent_case_id = excluded.parent_case_id
		RETURNING case_id`,
		c.CaseFileID, c.CaseFileIDNormalized, c.CourtID, c.CaseTypeID, c.StageTypeID, c.DocumentTypeID,
		c.Title, c.DocketNumber, string(c.CourtLevel), c.District, c.County, c.DecisionYear, c.DecisionMonth,
		c.AppealPublishedDate, string(c.PublicationStatus), c.OpinionType, c.FullText,
		c.AppealOutcome, c.WinnerLegalRole, c.WinnerPersonalRole, c.SourceFile, c.ExtractionTimestamp,
		c.ParentCaseID,
	).Scan(&caseID)
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
		if _, err := tx.ExecContext(ctx, `INSERT INTO party (case_id, name, legal_role, personal_role) VALUES (?,?,?,?)`,
			caseID, p.Name, p.LegalRole, p.PersonalRole); err != nil {
			return store.IngestResult{}, fmt.Errorf("insert party %q: %w", p.Name, err)
		}
	}
	for _, a := range assembled.Attorneys {
		if _, err := tx.ExecContext(ctx, `INSERT INTO attorney (case_id, name, firm, representing_role) VALUES (?,?,?,?)`,
			caseID, a.Name, a.Firm, a.RepresentingRole); err != nil {
			return store.IngestResult{}, fmt.Errorf("insert attorney %q: %w", a.Name, err)
		}
	}
	for _, j := range assembled.Judges {
		judgeID, err := s.dims.ensureJudge(ctx, tx, j.Name)
		if err != nil {
			return store.IngestResult{}, err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO case_judge (case_id, judge_id, role) VALUES (?,?,?) ON CONFLICT DO NOTHING`,
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
		err = tx.QueryRowContext(ctx, `
			INSERT INTO issue_decision (case_id, issue_summary, decision_summary, issue_outcome, winner_legal_role, taxonomy_id)
			VALUES (?,?,?,?,?,?) RETURNING id`,
			caseID, issue.IssueSummary, issue.DecisionSummary, issueOutcomeString(issue.IssueOutcome), issue.WinnerLegalRole, taxonomyID).Scan(&issueID)
		if err != nil {
			return store.IngestResult{}, fmt.Errorf("insert issue %q: %w", issue.IssueSummary, err)
		}

		for _, arg := range issue.Arguments {
			if _, err := tx.ExecContext(ctx, `INSERT INTO argument (issue_id, side, text) VALUES (?,?,?)`,
				issueID, string(arg.Side), arg.Text); err != nil {
				return store.IngestResult{}, fmt.Errorf("insert argument: %w", err)
			}
		}

		for _, cite := range issue.StatuteCites {
			statuteID, err := s.dims.ensureStatute(ctx, tx, cite.Jurisdiction, cite.Code, cite.Title, cite.Section)
			if err != nil {
				return store.IngestResult{}, err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO statute_citation (case_id, statute_id, context) VALUES (?,?,?)`,
				caseID, statuteID, cite.Context); err != nil {
				return store.IngestResult{}, fmt.Errorf("insert statute citation: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO issue_rcw (issue_id, statute_id) VALUES (?,?) ON CONFLICT DO NOTHING`,
				issueID, statuteID); err != nil {
				return store.IngestResult{}, fmt.Errorf("link issue statute: %w", err)
			}
		}
	}

	for _, edge := range assembled.Citations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO citation_edge (source_case_id, target_case_id, target_case_citation, relationship, importance)
			VALUES (?,?,?,?,?)`,
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
	if _, err := tx.ExecContext(ctx, `UPDATE "case" SET processing_status = 'fully_processed' WHERE case_id = ?`, caseID); err != nil {
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

// deleteDependents mirrors pgstore's deletion order; embedding_vec rows
// follow embedding's rowid lifecycle implicitly since sqlite-vec doesn't
// support foreign keys, so they're deleted explicitly by embedding_id.
func deleteDependents(ctx context.Context, tx *sql.Tx, caseID int64) error {
	statements := []string{
		`DELETE FROM argument WHERE issue_id IN (SELECT id FROM issue_decision WHERE case_id = ?)`,
		`DELETE FROM issue_rcw WHERE issue_id IN (SELECT id FROM issue_decision WHERE case_id = ?)`,
		`DELETE FROM issue_decision WHERE case_id = ?`,
		`DELETE FROM party WHERE case_id = ?`,
		`DELETE FROM attorney WHERE case_id = ?`,
		`DELETE FROM case_judge WHERE case_id = ?`,
		`DELETE FROM citation_edge WHERE source_case_id = ?`,
		`DELETE FROM statute_citation WHERE case_id = ?`,
		`DELETE FROM embedding_vec WHERE embedding_id IN (SELECT embedding_id FROM embedding WHERE case_id = ?)`,
		`UPDATE word_dictionary SET df = df - 1 WHERE word_id IN (SELECT DISTINCT word_id FROM word_occurrence WHERE case_id = ?)`,
		`DELETE FROM word_occurrence WHERE case_id = ?`,
		`DELETE FROM case_phrase WHERE case_id = ?`,
		`DELETE FROM embedding WHERE case_id = ?`,
		`DELETE FROM case_sentence WHERE case_id = ?`,
		`DELETE FROM case_chunk WHERE case_id = ?`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, caseID); err != nil {
			return fmt.Errorf("delete dependents: %w", err)
		}
	}
	return nil
}

func (s *session) VerifyCase(ctx context.Context, caseID int64) (store.VerifyReport, error) {
	report := store.VerifyReport{CaseID: caseID}

	err := s.db.QueryRowContext(ctx, `SELECT processing_status FROM "case" WHERE case_id = ?`, caseID).Scan(&report.ProcessingStatus)
	if err != nil {
		return store.VerifyReport{}, fmt.Errorf("load case %d: %w", caseID, err)
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT count(*) FROM case_chunk WHERE case_id = ?`, &report.ChunkCount},
		{`SELECT count(*) FROM case_sentence WHERE case_id = ?`, &report.SentenceCount},
		{`SELECT count(*) FROM word_occurrence WHERE case_id = ?`, &report.WordOccurrenceCount},
		{`SELECT count(*) FROM case_phrase WHERE case_id = ?`, &report.PhraseCount},
		{`SELECT count(*) FROM embedding WHERE case_id = ?`, &report.EmbeddingCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, caseID).Scan(c.dest); err != nil {
			return store.VerifyReport{}, fmt.Errorf("count query: %w", err)
		}
	}

	var gaps int
	err = s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM (
			SELECT chunk_order, row_number() OVER (ORDER BY chunk_order) AS rn
			FROM case_chunk WHERE case_id = ?
		) t WHERE chunk_order <> rn`, caseID).Scan(&gaps)
	if err != nil {
		return store.VerifyReport{}, fmt.Errorf("check chunk ordering: %w", err)
	}
	report.OrderingValid = gaps == 0

	return report, nil
}
