package llm

import (
	"fmt"
	"strings"

	"github.com/techjusticelab/opinion-ingest/internal/models"
)

// extractJSONObject isolates the JSON object within a reply that may carry
// surrounding prose or markdown fences, matching the teacher's
// parseClassificationResponse bracket-scan approach.
func extractJSONObject(response string) (string, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in llm response")
	}
	return response[start : end+1], nil
}

// coerceEnums applies spec.md §4.2's "unknown enum values are coerced to a
// neutral default where permissible" rule. court_level has no neutral
// default and is left for struct validation to reject.
func coerceEnums(c *models.ExtractedCase) {
	for i := range c.Issues {
		issue := &c.Issues[i]
		if issue.IssueOutcome != "" && !validIssueOutcome(issue.IssueOutcome) {
			issue.IssueOutcome = models.IssueMixed
		}
	}
}

func validIssueOutcome(v models.IssueOutcome) bool {
	switch v {
	case models.IssueAffirmed, models.IssueDismissed, models.IssueReversed, models.IssueRemanded, models.IssueMixed:
		return true
	}
	return false
}
