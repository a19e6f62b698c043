// Package chunker implements the Chunker component of spec.md §4.4: it
// turns a page sequence into section-labelled, word-bounded chunks. The
// uppercase-heading-closes-a-section heuristic is adapted from the
// teacher's bbiangul-go-reason/parser/pdf.go splitPageIntoSections/
// isLikelyHeading pattern, narrowed from general document headings to the
// fixed legal section vocabulary of spec.md §3.
package chunker

import (
	"strings"

	"github.com/techjusticelab/opinion-ingest/internal/models"
)

const (
	targetWords = 350
	minWords    = 200
	maxWords    = 500
)

// headingSections maps an uppercase heading keyword to the section label
// it opens (spec.md §4.4).
var headingSections = map[string]models.Section{
	"FACTS":      models.SectionFacts,
	"ANALYSIS":   models.SectionAnalysis,
	"HOLDING":    models.SectionHolding,
	"PROCEDURAL": models.SectionProcedural,
	"PARTIES":    models.SectionParties,
	"CUSTODY":    models.SectionCustody,
	"SUPPORT":    models.SectionSupport,
	"PROPERTY":   models.SectionProperty,
	"FEES":       models.SectionFees,
}

// Chunk splits pages into chunks with dense chunk_order, closing a chunk
// once it reaches targetWords or before it would pass maxWords, and
// whenever a recognised uppercase section heading is encountered. A chunk
// under minWords is merged into the next one when the pair fits in
// maxWords; the last chunk, and one that cannot be merged, may stay under
// minWords, and a single line of maxWords or more is a chunk of its own.
func Chunk(pages []models.Page) []models.Chunk {
	lines := flattenLines(pages)

	var chunks []models.Chunk
	var buf []string
	section := models.SectionContent
	wordCount := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		text := strings.Join(buf, "\n")
		chunks = append(chunks, models.Chunk{
			ChunkOrder: len(chunks) + 1,
			Section:    section,
			Text:       text,
		})
		buf = nil
		wordCount = 0
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if newSection, ok := headingSection(trimmed); ok {
			flush()
			section = newSection
			continue
		}

		lineWords := len(strings.Fields(trimmed))

		// A single line that alone exceeds the max budget is never split
		// mid-sentence (spec.md §4.4 edge case); SentenceProcessor still
		// segments it into sentences afterward.
		if lineWords >= maxWords {
			flush()
			chunks = append(chunks, models.Chunk{
				ChunkOrder: len(chunks) + 1,
				Section:    section,
				Text:       trimmed,
			})
			continue
		}

		if wordCount > 0 && wordCount+lineWords > maxWords {
			flush()
		}

		buf = append(buf, trimmed)
		wordCount += lineWords

		if wordCount >= targetWords {
			flush()
		}
	}
	flush()

	if len(chunks) == 0 {
		return chunks
	}

	return renumber(mergeUndersizedChunks(chunks))
}

func flattenLines(pages []models.Page) []string {
	var lines []string
	for _, p := range pages {
		lines = append(lines, strings.Split(p.Text, "\n")...)
	}
	return lines
}

// headingSection reports whether a line is an uppercase legal heading and,
// if so, which section it opens.
func headingSection(line string) (models.Section, bool) {
	if len(line) == 0 || len(line) > 60 {
		return "", false
	}
	upper := strings.ToUpper(line)
	if line != upper {
		return "", false
	}
	key := strings.TrimRight(strings.Fields(upper)[0], ":.")
	section, ok := headingSections[key]
	return section, ok
}

// mergeUndersizedChunks folds a chunk smaller than minWords into its
// successor when doing so doesn't blow the max budget, so that a stray
// heading near the end of a document doesn't spawn a near-empty chunk.
// The last chunk is never merged forward (nothing follows it).
func mergeUndersizedChunks(chunks []models.Chunk) []models.Chunk {
	for i := 0; i < len(chunks)-1; i++ {
		words := len(strings.Fields(chunks[i].Text))
		if words == 0 || words >= minWords {
			continue
		}
		mergedWords := words + len(strings.Fields(chunks[i+1].Text))
		if mergedWords > maxWords {
			continue
		}
		chunks[i+1].Text = chunks[i].Text + "\n" + chunks[i+1].Text
		if chunks[i].Section != models.SectionContent && chunks[i+1].Section == models.SectionContent {
			chunks[i+1].Section = chunks[i].Section
		}
		chunks[i].Text = ""
	}

	out := chunks[:0]
	for _, c := range chunks {
		if c.Text != "" {
			out = append(out, c)
		}
	}
	return out
}

func renumber(chunks []models.Chunk) []models.Chunk {
	for i := range chunks {
		chunks[i].ChunkOrder = i + 1
	}
	return chunks
}
