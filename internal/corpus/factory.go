package corpus

import (
	"context"
	"fmt"

	"github.com/techjusticelab/opinion-ingest/internal/config"
)

// New selects a Source implementation from CorpusConfig.Backend.
func New(ctx context.Context, cfg config.CorpusConfig) (Source, error) {
	switch cfg.Backend {
	case "local":
		if cfg.PDFDir == "" {
			return nil, fmt.Errorf("PDF_DIR is required for the local corpus backend")
		}
		return NewLocalSource(cfg.PDFDir), nil
	case "s3":
		return NewS3Source(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown corpus backend %q", cfg.Backend)
	}
}
