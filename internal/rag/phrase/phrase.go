// Package phrase implements PhraseExtractor (spec.md §4.7): 2-4 gram
// extraction over sentence tokens, filtered by a legal-domain keyword
// list and a curated legal-phrase allowlist, with stop-phrases rejected.
package phrase

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/techjusticelab/opinion-ingest/internal/models"
)

type FilterMode string

const (
	Strict  FilterMode = "strict"
	Relaxed FilterMode = "relaxed"
)

// legalKeywords gate n-grams in strict mode (spec.md §4.7 example list,
// extended with common appellate-procedure terms).
var legalKeywords = map[string]bool{
	"court": true, "judge": true, "support": true, "custody": true,
	"motion": true, "appeal": true, "counsel": true, "statute": true,
	"plaintiff": true, "defendant": true, "trial": true, "evidence": true,
	"discretion": true, "process": true, "jurisdiction": true, "remand": true,
}

// legalPhrases is a curated allowlist of fixed legal phrases that qualify
// regardless of keyword membership (spec.md §4.7).
var legalPhrases = map[string]bool{
	"due process":                         true,
	"best interests":                      true,
	"abuse of discretion":                 true,
	"substantial change in circumstances": true,
	"clear and convincing":                true,
	"preponderance of the evidence":       true,
	"beyond a reasonable doubt":           true,
	"ineffective assistance of counsel":   true,
	"probable cause":                      true,
	"material fact":                       true,
}

// stopPhrases are rejected outright even when they'd otherwise pass a
// filter (spec.md §4.7).
var stopPhrases = map[string]bool{
	"of the": true, "in the": true, "to the": true, "on the": true,
	"for the": true, "and the": true, "at the": true, "by the": true,
}

// LoadKeywordOverrides replaces the built-in legal-keyword list with a
// newline-delimited file (PHRASE_KEYWORDS_FILE), treating the list as
// configuration rather than a compiled-in constant.
func LoadKeywordOverrides(path string) error {
	words, err := readWordList(path)
	if err != nil {
		return fmt.Errorf("load phrase keywords: %w", err)
	}
	legalKeywords = words
	return nil
}

// LoadStopPhraseOverrides replaces the built-in stop-phrase list the same
// way (PHRASE_STOPPHRASES_FILE).
func LoadStopPhraseOverrides(path string) error {
	phrases, err := readWordList(path)
	if err != nil {
		return fmt.Errorf("load stop phrases: %w", err)
	}
	stopPhrases = phrases
	return nil
}

func readWordList(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out[line] = true
	}
	return out, scanner.Err()
}

// occurrence tracks frequency plus the first-seen example location for one
// phrase (spec.md §4.7).
type occurrence struct {
	phrase         string
	n              int
	frequency      int
	exampleSentence *int64
	exampleChunk    *int64
}

// SentenceTokens is the tokenized unit PhraseExtractor scans, paired with
// its identity for example-location recording.
type SentenceTokens struct {
	SentenceID int64
	ChunkID    int64
	Words      []string // normalized tokens, in sentence order
}

// Extract scans every sentence's tokens for 2-4 grams passing the filter
// and aggregates per-case frequency, first occurrence recorded as the
// example location (spec.md §4.7).
func Extract(sentences []SentenceTokens, mode FilterMode) []models.Phrase {
	order := make([]string, 0)
	agg := make(map[string]*occurrence)

	for _, st := range sentences {
		for n := 2; n <= 4; n++ {
			for i := 0; i+n <= len(st.Words); i++ {
				gram := st.Words[i : i+n]
				text := strings.Join(gram, " ")
				if !passes(gram, text, mode) {
					continue
				}
				if existing, ok := agg[text]; ok {
					existing.frequency++
					continue
				}
				sentenceID := st.SentenceID
				chunkID := st.ChunkID
				agg[text] = &occurrence{
					phrase:          text,
					n:               n,
					frequency:       1,
					exampleSentence: &sentenceID,
					exampleChunk:    &chunkID,
				}
				order = append(order, text)
			}
		}
	}

	phrases := make([]models.Phrase, 0, len(order))
	for _, text := range order {
		o := agg[text]
		phrases = append(phrases, models.Phrase{
			Phrase:          o.phrase,
			N:               o.n,
			Frequency:       o.frequency,
			ExampleSentence: o.exampleSentence,
			ExampleChunk:    o.exampleChunk,
		})
	}
	return phrases
}

func passes(gram []string, text string, mode FilterMode) bool {
	if stopPhrases[text] {
		return false
	}
	if legalPhrases[text] {
		return true
	}
	if mode == Relaxed {
		return true
	}
	for _, w := range gram {
		if legalKeywords[w] {
			return true
		}
	}
	return false
}
