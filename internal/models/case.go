package models

import "time"

// Case is the canonical row assembled from the metadata sheet and the
// LLM's ExtractedCase (spec.md §3, §4.3 CaseAssembler). CaseID is zero
// until the inserter's upsert returns a generated identity value.
type Case struct {
	CaseID                  int64
	CaseFileID              string
	CaseFileIDNormalized    string
	CourtID                 *int64
	CaseTypeID              *int64
	StageTypeID             *int64
	DocumentTypeID          *int64
	Title                   string
	DocketNumber            string
	CourtLevel              CourtLevel
	District                string
	County                  string
	DecisionYear            *int
	DecisionMonth           *int
	AppealPublishedDate     *time.Time
	PublicationStatus       PublicationStatus
	OpinionType             string
	FullText                string
	ProcessingStatus        ProcessingStatus
	AppealOutcome           string
	WinnerLegalRole         string
	WinnerPersonalRole      string
	SourceFile              string
	ExtractionTimestamp     time.Time
	ParentCaseID            *int64
}

type Party struct {
	ID           int64
	CaseID       int64
	Name         string
	LegalRole    string
	PersonalRole string
}

type Attorney struct {
	ID               int64
	CaseID           int64
	Name             string
	Firm             string
	RepresentingRole string
}

type Judge struct {
	ID   int64
	Name string
}

type CaseJudge struct {
	CaseID  int64
	JudgeID int64
	Role    JudgeRole
}

type IssueDecision struct {
	ID              int64
	CaseID          int64
	IssueSummary    string
	DecisionSummary string
	IssueOutcome    *IssueOutcome
	WinnerLegalRole string
	TaxonomyID      int64
}

type Argument struct {
	ID      int64
	IssueID int64
	Side    ArgumentSide
	Text    string
}

type CitationEdge struct {
	ID                 int64
	SourceCaseID       int64
	TargetCaseID       *int64
	TargetCaseCitation string
	Relationship       CitationRelationship
	Importance         *CitationImportance
}

type StatuteCitation struct {
	ID        int64
	CaseID    int64
	StatuteID int64
	Context   string
}

type IssueRCW struct {
	IssueID   int64
	StatuteID int64
}

// Dimension tables (spec.md §3).

type CaseType struct {
	ID   int64
	Name string
}

type StageType struct {
	ID   int64
	Name string
}

type DocumentType struct {
	ID                 int64
	Name               string
	Role               DocumentTypeRole
	HasDecision        bool
	IsAdversarial      bool
	ProcessingStrategy ProcessingStrategy
}

type Court struct {
	ID       int64
	Name     string
	Level    CourtLevel
	District string
	County   string
}

type LegalTaxonomy struct {
	ID       int64
	ParentID *int64
	Name     string
	Level    TaxonomyLevel
}

type Statute struct {
	ID           int64
	Jurisdiction string
	Code         string
	Title        string
	Section      string
}

// AssembledCase is what CaseAssembler produces: a Case plus every
// dependent row still keyed by natural identifiers (names), ready for
// DimensionService resolution and the DatabaseInserter's transaction.
type AssembledCase struct {
	Case            Case
	CourtName       string // natural key for DimensionService.ensure; Case.CourtID is resolved from it
	ProceduralStage string // natural key for stage_type; Case.StageTypeID is resolved from it
	Parties         []Party
	Attorneys       []Attorney
	Judges          []struct {
		Name string
		Role JudgeRole
	}
	Issues    []AssembledIssue
	Citations []CitationEdge
}

type AssembledIssue struct {
	IssueSummary        string
	DecisionSummary     string
	IssueOutcome        *IssueOutcome
	WinnerLegalRole     string
	TaxonomyCaseType    string
	TaxonomyCategory    string
	TaxonomySubcategory string
	Arguments           []Argument
	StatuteCites        []ExtractedStatuteCite
}
