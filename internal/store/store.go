// Package store defines the persistence contract the engine's two
// relational-store backends (pgstore for production, sqlitestore for
// --verify and tests) both implement: DimensionService's get-or-create
// semantics, the per-case transactional upsert of spec.md §4.9, and the
// rag.Sink seam the RAG indexing subsystem writes through.
package store

import (
	"context"

	"github.com/techjusticelab/opinion-ingest/internal/embedding"
	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/rag"
)

// IngestResult reports what IngestCase did, for the orchestrator's outcome
// log and the caller's processing_status bookkeeping.
type IngestResult struct {
	CaseID    int64
	WasUpdate bool // true when an existing (case_file_id_normalized, court_level) row was overwritten
}

// VerifyReport is the --verify mode's summary of one committed case,
// checked against spec.md §8's testable properties.
type VerifyReport struct {
	CaseID             int64
	ProcessingStatus   models.ProcessingStatus
	ChunkCount         int
	SentenceCount      int
	WordOccurrenceCount int
	PhraseCount        int
	EmbeddingCount     int
	OrderingValid      bool
}

// Store owns the connection pool and schema lifecycle; Session is the
// per-worker handle with its own dimension cache (spec.md §4.3: "a
// per-worker in-memory cache... cache entries are populated only after
// successful DB upsert, so concurrent workers converge to a single id").
type Store interface {
	NewSession() Session
	Close()
}

// Session runs one case's full pipeline per IngestCase call, each inside
// its own transaction (spec.md §4.9), and answers --verify queries.
type Session interface {
	IngestCase(ctx context.Context, assembled models.AssembledCase, pages []models.Page, embedder embedding.Client, opts rag.Options) (IngestResult, error)
	VerifyCase(ctx context.Context, caseID int64) (VerifyReport, error)
}
