// Package word implements WordProcessor (spec.md §4.6): tokenization and
// the batched word-dictionary upsert / occurrence-write path.
package word

import (
	"strings"
	"unicode"

	"github.com/techjusticelab/opinion-ingest/internal/models"
)

// Tokenize splits text into normalized tokens, one per sentence position
// starting at 0 (spec.md §4.6): lowercase, strip surrounding punctuation,
// retain internal hyphens/apostrophes, drop possessive 's, require at
// least two characters including one letter.
func Tokenize(text string) []models.Token {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r)
	})

	var tokens []models.Token
	pos := 0
	for _, f := range fields {
		norm, ok := normalize(f)
		if !ok {
			continue
		}
		tokens = append(tokens, models.Token{Normalized: norm, Position: pos})
		pos++
	}
	return tokens
}

func normalize(raw string) (string, bool) {
	s := strings.ToLower(raw)
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	s = strings.TrimSuffix(s, "'s")
	s = strings.TrimSuffix(s, "’s")

	if len(s) < 2 {
		return "", false
	}

	hasLetter := false
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\'' && r != '’' {
			return "", false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	if !hasLetter {
		return "", false
	}

	return s, true
}
