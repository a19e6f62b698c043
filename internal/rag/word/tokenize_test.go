package word_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techjusticelab/opinion-ingest/internal/rag/word"
)

func TestTokenizeLowercasesAndStripsPunctuation(t *testing.T) {
	tokens := word.Tokenize("The Court's ruling was, clearly, well-reasoned.")
	var words []string
	for _, tok := range tokens {
		words = append(words, tok.Normalized)
	}
	assert.Contains(t, words, "court")
	assert.Contains(t, words, "well-reasoned")
	assert.NotContains(t, words, "court's")
}

func TestTokenizePositionsAreSequentialFromZero(t *testing.T) {
	tokens := word.Tokenize("one two three")
	for i, tok := range tokens {
		assert.Equal(t, i, tok.Position)
	}
}

func TestTokenizeDropsSingleCharacterAndNonLetterTokens(t *testing.T) {
	tokens := word.Tokenize("a 123 ok --")
	var words []string
	for _, tok := range tokens {
		words = append(words, tok.Normalized)
	}
	assert.NotContains(t, words, "a")
	assert.Contains(t, words, "ok")
	assert.NotContains(t, words, "123")
}
