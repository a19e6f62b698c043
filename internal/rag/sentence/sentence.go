// Package sentence implements SentenceProcessor (spec.md §4.5):
// citation-protected sentence segmentation within a chunk, assigning dense
// sentence_order and global_sentence_order values.
package sentence

import (
	"regexp"
	"strings"

	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/rag/word"
)

// protectedPatterns match legal-citation fragments whose embedded periods
// must not be treated as sentence terminators (spec.md §4.5).
var protectedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bv\.`),
	regexp.MustCompile(`\bIn re\.?`),
	regexp.MustCompile(`\bex rel\.`),
	regexp.MustCompile(`\bNo\.`),
	regexp.MustCompile(`\b[A-Z][a-z]{0,3}\.\s*\d`),            // "Wash. 2d", "Wn. App."
	regexp.MustCompile(`\bWn\.\s*(2d|App\.)?`),                // "Wn.2d", "Wn. App."
	regexp.MustCompile(`\bU\.S\.`),
	regexp.MustCompile(`\bP\.\s*(2d|3d)?`),                    // "P.2d", "P.3d"
	regexp.MustCompile(`\bRCW\s*\d+(\.\d+)*\.?`),
}

const placeholder = "\x00"

var placeholderPattern = regexp.MustCompile(placeholder + `(\d+)` + placeholder)

// sentenceTerminator ends a sentence on '.', '!', or '?' followed by
// whitespace or end of text; the next character's case is not checked.
var sentenceTerminator = regexp.MustCompile(`([.!?])(\s+|$)`)

// Segment splits a chunk's text into sentences, numbering them
// sentence_order = 1..M within the chunk. nextGlobalOrder is the next
// case-wide global_sentence_order value to assign and advances with each
// sentence produced (spec.md §4.5).
func Segment(chunkText string, chunkID int64, caseID int64, nextGlobalOrder *int) []models.Sentence {
	protected, restore := protect(chunkText)

	raw := splitSentences(protected)

	sentences := make([]models.Sentence, 0, len(raw))
	order := 1
	for _, s := range raw {
		text := restore(strings.TrimSpace(s))
		if text == "" {
			continue
		}
		tokens := word.Tokenize(text)
		sentences = append(sentences, models.Sentence{
			CaseID:              caseID,
			ChunkID:             chunkID,
			SentenceOrder:       order,
			GlobalSentenceOrder: *nextGlobalOrder,
			Text:                text,
			WordCount:           len(tokens),
		})
		order++
		*nextGlobalOrder++
	}
	return sentences
}

// protect replaces citation fragments with a placeholder-wrapped index so
// the sentence splitter can't see their periods, returning a restore
// function that substitutes the originals back in.
func protect(text string) (string, func(string) string) {
	var captured []string
	protected := text
	for _, pat := range protectedPatterns {
		protected = pat.ReplaceAllStringFunc(protected, func(match string) string {
			idx := len(captured)
			captured = append(captured, match)
			return placeholder + itoa(idx) + placeholder
		})
	}

	restore := func(s string) string {
		return placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
			groups := placeholderPattern.FindStringSubmatch(m)
			idx := atoi(groups[1])
			if idx >= 0 && idx < len(captured) {
				return captured[idx]
			}
			return m
		})
	}

	return protected, restore
}

func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceTerminator.FindAllStringIndex(text, -1) {
		out = append(out, text[last:loc[1]])
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, text[last:])
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
