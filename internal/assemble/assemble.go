// Package assemble implements the CaseAssembler of spec.md §4.3/§2: it
// merges the metadata-sheet row with the LLM's ExtractedCase into one
// canonical AssembledCase, still keyed by natural identifiers (names) so
// DimensionService can resolve them inside the insert transaction.
package assemble

import (
	"fmt"
	"strings"
	"time"

	"github.com/techjusticelab/opinion-ingest/internal/metadata"
	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/normalize"
)

// Assemble merges the metadata row, the LLM extraction, the source
// filename, and the assembled full text into one AssembledCase.
//
// Metadata-sheet fields win for the columns it supplies (title, court,
// district, county, decision date, publication status, opinion type)
// because the sheet is considered authoritative provenance data; the LLM
// fills everything the sheet does not carry.
func Assemble(row metadata.Row, extracted *models.ExtractedCase, sourceFile, fullText string) models.AssembledCase {
	title := firstNonEmpty(row.Title, extracted.Title)
	courtName := firstNonEmpty(row.Court, extracted.CourtName)
	district := firstNonEmpty(row.District, extracted.District)
	county := firstNonEmpty(row.County, extracted.County)
	opinionType := firstNonEmpty(row.OpinionType, extracted.OpinionType)
	proceduralStage := firstNonEmpty(extracted.ProceduralStage, "Direct Appeal")
	pubStatus := resolvePublicationStatus(row.PublicationStatus)

	decisionYear := firstNonZero(row.DecisionYear, extracted.DecisionYear)
	decisionMonth := firstNonZero(row.DecisionMonth, extracted.DecisionMonth)

	c := models.Case{
		CaseFileID:           row.CaseFileID,
		CaseFileIDNormalized: normalize.CaseFileID(row.CaseFileID),
		Title:                title,
		DocketNumber:         extracted.DocketNumber,
		CourtLevel:           extracted.CourtLevel,
		District:             district,
		County:               county,
		PublicationStatus:    pubStatus,
		OpinionType:          opinionType,
		FullText:             fullText,
		ProcessingStatus:     models.StatusAIProcessed,
		AppealOutcome:        extracted.AppealOutcome,
		WinnerLegalRole:      extracted.WinnerLegalRole,
		WinnerPersonalRole:   extracted.WinnerPersonalRole,
		SourceFile:           sourceFile,
		ExtractionTimestamp:  time.Now().UTC(),
	}
	if decisionYear != 0 {
		c.DecisionYear = &decisionYear
	}
	if decisionMonth != 0 {
		c.DecisionMonth = &decisionMonth
	}

	assembled := models.AssembledCase{Case: c, CourtName: courtName, ProceduralStage: proceduralStage}

	for _, p := range extracted.Parties {
		assembled.Parties = append(assembled.Parties, models.Party{
			Name:         p.Name,
			LegalRole:    p.LegalRole,
			PersonalRole: p.PersonalRole,
		})
	}

	for _, a := range extracted.Attorneys {
		assembled.Attorneys = append(assembled.Attorneys, models.Attorney{
			Name:             a.Name,
			Firm:             a.Firm,
			RepresentingRole: a.RepresentingRole,
		})
	}

	for _, j := range extracted.Judges {
		assembled.Judges = append(assembled.Judges, struct {
			Name string
			Role models.JudgeRole
		}{Name: j.Name, Role: j.Role})
	}

	for _, issue := range extracted.Issues {
		ai := models.AssembledIssue{
			IssueSummary:        issue.IssueSummary,
			DecisionSummary:     issue.DecisionSummary,
			WinnerLegalRole:     issue.WinnerLegalRole,
			TaxonomyCaseType:    issue.TaxonomyCaseType,
			TaxonomyCategory:    issue.TaxonomyCategory,
			TaxonomySubcategory: issue.TaxonomySubcategory,
			StatuteCites:        issue.StatuteCites,
		}
		if issue.IssueOutcome != "" {
			outcome := issue.IssueOutcome
			ai.IssueOutcome = &outcome
		}
		for _, arg := range issue.Arguments {
			ai.Arguments = append(ai.Arguments, models.Argument{Side: arg.Side, Text: arg.Text})
		}
		assembled.Issues = append(assembled.Issues, ai)
	}

	for _, cite := range extracted.Citations {
		edge := models.CitationEdge{
			TargetCaseCitation: cite.TargetCitation,
			Relationship:       cite.Relationship,
		}
		if cite.Importance != "" {
			importance := cite.Importance
			edge.Importance = &importance
		}
		assembled.Citations = append(assembled.Citations, edge)
	}

	return assembled
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func resolvePublicationStatus(raw string) models.PublicationStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "published":
		return models.PublicationPublished
	case "unpublished":
		return models.PublicationUnpublished
	case "":
		return models.PublicationUnknown
	default:
		return models.PublicationUnknown
	}
}

// Validate enforces the invariants spec.md §3/§8 requires before a case
// reaches the insert transaction.
func Validate(c models.AssembledCase) error {
	if c.Case.Title == "" {
		return fmt.Errorf("assembled case has no title")
	}
	if c.Case.CaseFileIDNormalized == "" {
		return fmt.Errorf("assembled case has no normalized case file id")
	}
	if !c.Case.CourtLevel.Valid() {
		return fmt.Errorf("assembled case has invalid court level %q", c.Case.CourtLevel)
	}
	if len(c.Issues) < 2 || len(c.Issues) > 5 {
		return fmt.Errorf("assembled case has %d issues, want 2-5", len(c.Issues))
	}
	return nil
}
