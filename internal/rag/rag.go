// Package rag composes the RAG indexing subsystem (spec.md §2, §4.9 steps
// 7-11): Chunker → SentenceProcessor → WordProcessor → PhraseExtractor →
// EmbeddingService, writing through a Sink that assigns database identity
// values as each stage completes (chunk_id is needed before sentences can
// be written, sentence_id before word occurrences and phrase examples).
package rag

import (
	"context"
	"fmt"

	"github.com/techjusticelab/opinion-ingest/internal/embedding"
	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/rag/chunker"
	"github.com/techjusticelab/opinion-ingest/internal/rag/phrase"
	"github.com/techjusticelab/opinion-ingest/internal/rag/sentence"
	"github.com/techjusticelab/opinion-ingest/internal/rag/word"
)

// Sink persists each RAG stage's output inside the caller's transaction
// and returns database-assigned identity values, which later stages
// depend on (chunk_id for sentences, sentence_id for occurrences/phrase
// examples).
type Sink interface {
	word.Store
	InsertChunks(ctx context.Context, caseID int64, chunks []models.Chunk) ([]models.Chunk, error)
	InsertSentences(ctx context.Context, caseID int64, sentences []models.Sentence) ([]models.Sentence, error)
	InsertPhrases(ctx context.Context, caseID int64, phrases []models.Phrase) error
	InsertEmbeddings(ctx context.Context, caseID int64, embeddings []models.Embedding) error
}

type Options struct {
	WordBatchSize int
	EmbedMode     models.EmbeddingMode
	PhraseFilter  phrase.FilterMode
}

// Process runs the full RAG write path for one case's page text (spec.md
// §4.9 steps 7-11), in order.
func Process(ctx context.Context, sink Sink, embedder embedding.Client, caseID int64, pages []models.Page, caseTitle, caseSummary string, opts Options) error {
	chunks := chunker.Chunk(pages)
	if len(chunks) == 0 {
		return nil
	}

	storedChunks, err := sink.InsertChunks(ctx, caseID, chunks)
	if err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}

	var allSentences []models.Sentence
	globalOrder := 1
	for _, c := range storedChunks {
		allSentences = append(allSentences, sentence.Segment(c.Text, c.ChunkID, caseID, &globalOrder)...)
	}

	storedSentences, err := sink.InsertSentences(ctx, caseID, allSentences)
	if err != nil {
		return fmt.Errorf("insert sentences: %w", err)
	}

	wordTokens := make([]word.SentenceTokens, 0, len(storedSentences))
	phraseTokens := make([]phrase.SentenceTokens, 0, len(storedSentences))
	for _, s := range storedSentences {
		tokens := word.Tokenize(s.Text)
		wordTokens = append(wordTokens, word.SentenceTokens{
			ChunkID:    s.ChunkID,
			SentenceID: s.SentenceID,
			Tokens:     tokens,
		})
		words := make([]string, len(tokens))
		for i, t := range tokens {
			words[i] = t.Normalized
		}
		phraseTokens = append(phraseTokens, phrase.SentenceTokens{
			SentenceID: s.SentenceID,
			ChunkID:    s.ChunkID,
			Words:      words,
		})
	}

	if err := word.Process(ctx, caseID, opts.WordBatchSize, wordTokens, sink); err != nil {
		return fmt.Errorf("word processor: %w", err)
	}

	phrases := phrase.Extract(phraseTokens, opts.PhraseFilter)
	if len(phrases) > 0 {
		for i := range phrases {
			phrases[i].CaseID = caseID
		}
		if err := sink.InsertPhrases(ctx, caseID, phrases); err != nil {
			return fmt.Errorf("insert phrases: %w", err)
		}
	}

	embeddings, err := buildEmbeddings(ctx, embedder, caseID, storedChunks, caseTitle, caseSummary, opts.EmbedMode)
	if err != nil {
		return fmt.Errorf("build embeddings: %w", err)
	}
	if len(embeddings) > 0 {
		if err := sink.InsertEmbeddings(ctx, caseID, embeddings); err != nil {
			return fmt.Errorf("insert embeddings: %w", err)
		}
	}

	return nil
}

// buildEmbeddings implements spec.md §4.8's mode selection: "all" embeds
// every chunk, "important" embeds only FACTS/ANALYSIS/HOLDING chunks,
// "none" produces a single case-level embedding from title+summary.
func buildEmbeddings(ctx context.Context, embedder embedding.Client, caseID int64, chunks []models.Chunk, title, summary string, mode models.EmbeddingMode) ([]models.Embedding, error) {
	if mode == models.EmbedNone {
		text := title + "\n" + summary
		vecs, err := embedder.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		return []models.Embedding{{
			CaseID: caseID,
			Text:   text,
			Vector: vecs[0],
		}}, nil
	}

	var selected []models.Chunk
	for _, c := range chunks {
		if mode == models.EmbedAll || models.ImportantSections[c.Section] {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		return nil, nil
	}

	texts := make([]string, len(selected))
	for i, c := range selected {
		texts[i] = c.Text
	}

	vecs, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	embeddings := make([]models.Embedding, len(selected))
	for i, c := range selected {
		chunkID := c.ChunkID
		section := c.Section
		embeddings[i] = models.Embedding{
			CaseID:     caseID,
			ChunkID:    &chunkID,
			Text:       c.Text,
			Vector:     vecs[i],
			ChunkOrder: c.ChunkOrder,
			Section:    &section,
		}
	}
	return embeddings, nil
}
