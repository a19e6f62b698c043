// Package normalize implements the pure identifier-normalization rules the
// rest of the engine joins and uniqueness checks on (spec.md §4.1's
// Normalizer component, ≈2% of the system).
package normalize

import "strings"

// CaseFileID strips every non-digit rune from a case-file id, so
// "69423-5", "694235", and "69423-5-I" all normalize to "694235".
func CaseFileID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
