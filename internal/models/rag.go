package models

// RAG indexing entities (spec.md §3). These are written by the
// internal/rag stages and the store inserter inside the same
// per-case transaction as the core entities above.

// Page is one page of extractor output, in document order, as produced by
// the external PDF-to-text contract (spec.md §6).
type Page struct {
	Number int
	Text   string
}

type Chunk struct {
	ChunkID       int64
	CaseID        int64
	ChunkOrder    int
	Section       Section
	Text          string
	SentenceCount int
}

type Sentence struct {
	SentenceID         int64
	CaseID             int64
	ChunkID            int64
	SentenceOrder      int
	GlobalSentenceOrder int
	Text               string
	WordCount          int
}

type WordDictionaryEntry struct {
	WordID int64
	Word   string
	DF     int64
}

type WordOccurrence struct {
	WordID     int64
	CaseID     int64
	ChunkID    int64
	SentenceID int64
	Position   int
}

type Phrase struct {
	PhraseID        int64
	CaseID          int64
	Phrase          string
	N               int
	Frequency       int
	ExampleSentence *int64
	ExampleChunk    *int64
}

type Embedding struct {
	EmbeddingID int64
	CaseID      int64
	ChunkID     *int64
	DocumentID  *string
	Text        string
	Vector      []float32
	ChunkOrder  int
	Section     *Section
}

// EmbeddingDim is the fixed vector width of spec.md §3/§4.8.
const EmbeddingDim = 1024

// Token is one normalized word at a specific sentence position, the shared
// unit WordProcessor and PhraseExtractor both consume (spec.md §4.6/§4.7).
type Token struct {
	Normalized string
	Position   int
}
