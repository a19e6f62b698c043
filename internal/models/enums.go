package models

// Enumerated vocabularies the LLM extractor and database layer must agree
// on. The ExtractedCase fields typed with one of these carry a
// `validate:"...oneof=..."` tag (see extracted.go).

type DocumentTypeRole string

const (
	DocumentRoleCourt          DocumentTypeRole = "court"
	DocumentRoleParty          DocumentTypeRole = "party"
	DocumentRoleEvidence       DocumentTypeRole = "evidence"
	DocumentRoleAdministrative DocumentTypeRole = "administrative"
)

type ProcessingStrategy string

const (
	StrategyCaseOutcome     ProcessingStrategy = "case_outcome"
	StrategyBriefExtraction ProcessingStrategy = "brief_extraction"
	StrategyEvidenceIndex   ProcessingStrategy = "evidence_indexing"
	StrategyTextOnly        ProcessingStrategy = "text_only"
)

type CourtLevel string

const (
	CourtLevelSupreme    CourtLevel = "Supreme Court"
	CourtLevelAppeals    CourtLevel = "Court of Appeals"
	CourtLevelSuperior   CourtLevel = "Superior Court"
	CourtLevelDistrict   CourtLevel = "District Court"
	CourtLevelMunicipal  CourtLevel = "Municipal Court"
)

func (c CourtLevel) Valid() bool {
	switch c {
	case CourtLevelSupreme, CourtLevelAppeals, CourtLevelSuperior, CourtLevelDistrict, CourtLevelMunicipal:
		return true
	}
	return false
}

type TaxonomyLevel string

const (
	TaxonomyCaseType    TaxonomyLevel = "case_type"
	TaxonomyCategory    TaxonomyLevel = "category"
	TaxonomySubcategory TaxonomyLevel = "subcategory"
)

type PublicationStatus string

const (
	PublicationPublished   PublicationStatus = "published"
	PublicationUnpublished PublicationStatus = "unpublished"
	PublicationUnknown     PublicationStatus = "unknown"
)

type ProcessingStatus string

const (
	StatusPending        ProcessingStatus = "pending"
	StatusTextExtracted  ProcessingStatus = "text_extracted"
	StatusAIProcessed    ProcessingStatus = "ai_processed"
	StatusEmbedded       ProcessingStatus = "embedded"
	StatusFullyProcessed ProcessingStatus = "fully_processed"
	StatusFailed         ProcessingStatus = "failed"
)

type JudgeRole string

const (
	JudgeRoleAuthor     JudgeRole = "author"
	JudgeRoleConcurring JudgeRole = "concurring"
	JudgeRoleDissenting JudgeRole = "dissenting"
	JudgeRolePerCuriam  JudgeRole = "per_curiam"
)

type IssueOutcome string

const (
	IssueAffirmed IssueOutcome = "Affirmed"
	IssueDismissed IssueOutcome = "Dismissed"
	IssueReversed IssueOutcome = "Reversed"
	IssueRemanded IssueOutcome = "Remanded"
	IssueMixed    IssueOutcome = "Mixed"
)

type ArgumentSide string

const (
	SideAppellant ArgumentSide = "appellant"
	SideRespondent ArgumentSide = "respondent"
	SideAmicus    ArgumentSide = "amicus"
)

type CitationRelationship string

const (
	RelCites         CitationRelationship = "cites"
	RelDistinguishes CitationRelationship = "distinguishes"
	RelOverrules     CitationRelationship = "overrules"
	RelFollows       CitationRelationship = "follows"
	RelAffirms       CitationRelationship = "affirms"
	RelReverses      CitationRelationship = "reverses"
	RelDiscusses     CitationRelationship = "discusses"
)

type CitationImportance string

const (
	ImportancePrimary   CitationImportance = "primary"
	ImportanceSecondary CitationImportance = "secondary"
	ImportancePassing   CitationImportance = "passing"
)

// Section is the chunker's heading classification (spec.md §3, §4.4).
type Section string

const (
	SectionHeader     Section = "HEADER"
	SectionParties    Section = "PARTIES"
	SectionProcedural Section = "PROCEDURAL"
	SectionFacts      Section = "FACTS"
	SectionAnalysis   Section = "ANALYSIS"
	SectionHolding    Section = "HOLDING"
	SectionCustody    Section = "CUSTODY"
	SectionSupport    Section = "SUPPORT"
	SectionProperty   Section = "PROPERTY"
	SectionFees       Section = "FEES"
	SectionContent    Section = "CONTENT"
)

// ImportantSections are the chunk sections embedded under §4.8's "important" mode.
var ImportantSections = map[Section]bool{
	SectionFacts:    true,
	SectionAnalysis: true,
	SectionHolding:  true,
}

// EmbeddingMode controls which chunks get vectors (spec.md §4.8).
type EmbeddingMode string

const (
	EmbedAll       EmbeddingMode = "all"
	EmbedImportant EmbeddingMode = "important"
	EmbedNone      EmbeddingMode = "none"
)

// PhraseFilterMode controls §4.7's keyword requirement.
type PhraseFilterMode string

const (
	PhraseStrict  PhraseFilterMode = "strict"
	PhraseRelaxed PhraseFilterMode = "relaxed"
)
