// Package pgstore implements store.Store against PostgreSQL with the
// pgvector extension, grounded in SuperOuss-meritDraft-backend's
// repository package (jackc/pgx/v5 + pgxpool) and semaj90-mau5law's
// sse-rag-service / document-chunker (pgvector/pgvector-go alongside
// pgx/v5).
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/techjusticelab/opinion-ingest/internal/store"
)

// PgStore owns the connection pool; each worker calls NewSession for its
// own dimension cache (spec.md §4.3).
type PgStore struct {
	pool         *pgxpool.Pool
	embeddingDim int
}

// New connects to Postgres, applies the schema (idempotent, IF NOT
// EXISTS throughout), and returns a ready Store.
func New(ctx context.Context, dsn string, maxConns, minConns int32, embeddingDim int) (*PgStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	// pgvector.Vector needs its codec registered on every pooled
	// connection (semaj90-mau5law/sse-rag-service registers the same
	// way, one conn at a time, rather than pool-wide).
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &PgStore{pool: pool, embeddingDim: embeddingDim}, nil
}

func (s *PgStore) NewSession() store.Session {
	return &session{pool: s.pool, dims: newDimensionCache(), embeddingDim: s.embeddingDim}
}

func (s *PgStore) Close() {
	s.pool.Close()
}
