package assemble_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techjusticelab/opinion-ingest/internal/assemble"
	"github.com/techjusticelab/opinion-ingest/internal/metadata"
	"github.com/techjusticelab/opinion-ingest/internal/models"
)

func sampleExtracted() *models.ExtractedCase {
	return &models.ExtractedCase{
		Title:      "State v. Fallback Title",
		CourtLevel: models.CourtLevelAppeals,
		CourtName:  "Court of Appeals Division I",
		Issues: []models.ExtractedIssue{
			{IssueSummary: "issue one", TaxonomyCaseType: "Criminal", TaxonomyCategory: "Evidence"},
			{IssueSummary: "issue two", TaxonomyCaseType: "Criminal", TaxonomyCategory: "Sentencing", IssueOutcome: models.IssueAffirmed},
		},
	}
}

func TestAssemblePrefersMetadataSheetFields(t *testing.T) {
	row := metadata.Row{
		CaseFileID:        "102586-6",
		Title:             "State v. Sheet Title",
		Court:             "Supreme Court",
		DecisionYear:      2019,
		DecisionMonth:     3,
		PublicationStatus: "published",
	}

	result := assemble.Assemble(row, sampleExtracted(), "102586-6.pdf", "full text body")

	assert.Equal(t, "State v. Sheet Title", result.Case.Title)
	assert.Equal(t, "Supreme Court", result.CourtName)
	assert.Equal(t, "1025866", result.Case.CaseFileIDNormalized)
	require.NotNil(t, result.Case.DecisionYear)
	assert.Equal(t, 2019, *result.Case.DecisionYear)
	assert.Equal(t, models.PublicationPublished, result.Case.PublicationStatus)
	require.NoError(t, assemble.Validate(result))
}

func TestAssembleFallsBackToExtractedFields(t *testing.T) {
	row := metadata.Row{CaseFileID: "55-1"}

	result := assemble.Assemble(row, sampleExtracted(), "55-1.pdf", "text")

	assert.Equal(t, "State v. Fallback Title", result.Case.Title)
	assert.Equal(t, "Court of Appeals Division I", result.CourtName)
	assert.Equal(t, models.PublicationUnknown, result.Case.PublicationStatus)
}

func TestValidateRejectsTooFewIssues(t *testing.T) {
	row := metadata.Row{CaseFileID: "1"}
	extracted := sampleExtracted()
	extracted.Issues = extracted.Issues[:1]

	result := assemble.Assemble(row, extracted, "1.pdf", "text")
	assert.Error(t, assemble.Validate(result))
}

func TestValidateRejectsMissingCourtLevel(t *testing.T) {
	row := metadata.Row{CaseFileID: "1"}
	extracted := sampleExtracted()
	extracted.CourtLevel = ""

	result := assemble.Assemble(row, extracted, "1.pdf", "text")
	assert.Error(t, assemble.Validate(result))
}
