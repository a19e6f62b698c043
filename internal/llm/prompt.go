package llm

import "fmt"

const instructions = `You are an expert analyst of Washington State appellate court opinions.

Extract the case into the following JSON schema exactly. Use only these enumerated values:
- court_level: one of "Supreme Court", "Court of Appeals", "Superior Court", "District Court", "Municipal Court"
- judges[].role: one of "author", "concurring", "dissenting", "per_curiam"
- issues[].issue_outcome: one of "Affirmed", "Dismissed", "Reversed", "Remanded", "Mixed" (use "Mixed" if the opinion affirms in part and reverses in part)
- arguments[].side: one of "appellant", "respondent", "amicus"
- citations[].relationship: one of "cites", "distinguishes", "overrules", "follows", "affirms", "reverses", "discusses"
- citations[].importance: one of "primary", "secondary", "passing"

Identify between 2 and 5 distinct legal issues decided by the court, each classified
against the Washington State legal-issue taxonomy with a case_type, category, and
optional subcategory.

Respond with ONLY a JSON object of this shape:
{
  "title": "<case caption>",
  "docket_number": "<docket or cause number>",
  "court_name": "<court name as written>",
  "court_level": "<one of the court levels above>",
  "district": "<division/district if stated>",
  "county": "<county if stated>",
  "decision_year": <int>,
  "decision_month": <int>,
  "opinion_type": "<majority|concurrence|dissent|per curiam>",
  "procedural_stage": "<e.g. direct appeal, interlocutory appeal, post-conviction relief, original proceeding>",
  "appeal_outcome": "<short outcome phrase>",
  "winner_legal_role": "<appellant|respondent>",
  "winner_personal_role": "<if applicable>",
  "parties": [{"name": "...", "legal_role": "...", "personal_role": "..."}],
  "attorneys": [{"name": "...", "firm": "...", "representing_role": "..."}],
  "judges": [{"name": "...", "role": "author|concurring|dissenting|per_curiam"}],
  "issues": [
    {
      "issue_summary": "...",
      "decision_summary": "...",
      "issue_outcome": "Affirmed|Dismissed|Reversed|Remanded|Mixed",
      "winner_legal_role": "...",
      "taxonomy_case_type": "...",
      "taxonomy_category": "...",
      "taxonomy_subcategory": "...",
      "arguments": [{"side": "appellant|respondent|amicus", "text": "..."}],
      "statute_citations": [{"jurisdiction": "...", "code": "...", "title": "...", "section": "...", "context": "..."}]
    }
  ],
  "citations": [{"target_citation": "...", "relationship": "...", "importance": "primary|secondary|passing"}]
}

Use null or an empty string/array for any field that cannot be determined from the text. Do not invent facts not present in the opinion.`

// BuildPrompt builds the standard extraction prompt for the given (already
// truncated) case text.
func BuildPrompt(text string) string {
	return fmt.Sprintf("%s\n\nOpinion text:\n%s", instructions, text)
}

// BuildStrictPrompt is sent on the retry after a parse failure (spec.md
// §4.2's "stricter reminder prompt").
func BuildStrictPrompt(text string) string {
	return fmt.Sprintf("%s\n\nIMPORTANT: your previous response was not valid JSON matching this schema exactly. "+
		"Respond with ONLY the JSON object, no prose before or after it, no markdown code fences.\n\nOpinion text:\n%s",
		instructions, text)
}
