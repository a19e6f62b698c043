package models

import "time"

// ExtractedCase is the parsed, validated shape of the LLM's JSON response
// (spec.md §4.2). Every enum field is validated against its oneof list
// before CaseAssembler ever sees the value; unknown values are coerced to a
// neutral default by coerceEnums in internal/llm where the spec explicitly allows it (e.g.
// IssueOutcome -> Mixed) and rejected otherwise.
type ExtractedCase struct {
	Title              string     `json:"title" validate:"required"`
	DocketNumber       string     `json:"docket_number,omitempty"`
	CourtName          string     `json:"court_name,omitempty"`
	CourtLevel         CourtLevel `json:"court_level" validate:"required,oneof='Supreme Court' 'Court of Appeals' 'Superior Court' 'District Court' 'Municipal Court'"`
	District           string     `json:"district,omitempty"`
	County             string     `json:"county,omitempty"`
	DecisionYear       int        `json:"decision_year,omitempty"`
	DecisionMonth      int        `json:"decision_month,omitempty"`
	OpinionType        string     `json:"opinion_type,omitempty"`
	ProceduralStage    string     `json:"procedural_stage,omitempty"`
	AppealOutcome      string     `json:"appeal_outcome,omitempty"`
	WinnerLegalRole    string     `json:"winner_legal_role,omitempty"`
	WinnerPersonalRole string     `json:"winner_personal_role,omitempty"`

	Parties   []ExtractedParty    `json:"parties"`
	Attorneys []ExtractedAttorney `json:"attorneys"`
	Judges    []ExtractedJudge    `json:"judges"`
	Issues    []ExtractedIssue    `json:"issues" validate:"required,min=2,max=5,dive"`
	Citations []ExtractedCitation `json:"citations"`
}

type ExtractedParty struct {
	Name         string `json:"name" validate:"required"`
	LegalRole    string `json:"legal_role" validate:"required"`
	PersonalRole string `json:"personal_role,omitempty"`
}

type ExtractedAttorney struct {
	Name             string `json:"name" validate:"required"`
	Firm             string `json:"firm,omitempty"`
	RepresentingRole string `json:"representing_role,omitempty"`
}

type ExtractedJudge struct {
	Name string    `json:"name" validate:"required"`
	Role JudgeRole `json:"role" validate:"required,oneof=author concurring dissenting per_curiam"`
}

type ExtractedIssue struct {
	IssueSummary     string       `json:"issue_summary" validate:"required"`
	DecisionSummary  string       `json:"decision_summary,omitempty"`
	IssueOutcome     IssueOutcome `json:"issue_outcome,omitempty" validate:"omitempty,oneof=Affirmed Dismissed Reversed Remanded Mixed"`
	WinnerLegalRole  string       `json:"winner_legal_role,omitempty"`
	TaxonomyCaseType string       `json:"taxonomy_case_type" validate:"required"`
	TaxonomyCategory string       `json:"taxonomy_category" validate:"required"`
	TaxonomySubcategory string    `json:"taxonomy_subcategory,omitempty"`
	Arguments        []ExtractedArgument `json:"arguments"`
	StatuteCites     []ExtractedStatuteCite `json:"statute_citations"`
}

type ExtractedArgument struct {
	Side ArgumentSide `json:"side" validate:"required,oneof=appellant respondent amicus"`
	Text string       `json:"text" validate:"required"`
}

type ExtractedStatuteCite struct {
	Jurisdiction string `json:"jurisdiction" validate:"required"`
	Code         string `json:"code" validate:"required"`
	Title        string `json:"title,omitempty"`
	Section      string `json:"section,omitempty"`
	Context      string `json:"context,omitempty"`
}

type ExtractedCitation struct {
	TargetCitation string               `json:"target_citation" validate:"required"`
	Relationship   CitationRelationship `json:"relationship" validate:"required,oneof=cites distinguishes overrules follows affirms reverses discusses"`
	Importance     CitationImportance   `json:"importance,omitempty" validate:"omitempty,oneof=primary secondary passing"`
}

// ExtractionAttempt records one LLM round trip for retry bookkeeping.
type ExtractionAttempt struct {
	Attempt   int
	StartedAt time.Time
	RawJSON   string
	Err       error
}
