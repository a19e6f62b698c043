// Package corpus abstracts the directory walk of spec.md §4.1 behind a
// Source interface so the orchestrator can read PDFs from a local
// filesystem tree or an S3-compatible object store interchangeably.
package corpus

import "context"

// File is one PDF discovered in the corpus, identified by its normalized
// case-file id extracted from the filename.
type File struct {
	Name                 string // path under the corpus root (the object key for S3), e.g. "102586-6.pdf"
	CaseFileIDNormalized string
	Size                 int64
}

// Source lists and fetches PDFs from wherever the corpus lives.
type Source interface {
	// List returns every PDF in the corpus, in no particular order.
	List(ctx context.Context) ([]File, error)
	// Fetch returns the raw bytes of the named file.
	Fetch(ctx context.Context, name string) ([]byte, error)
}
