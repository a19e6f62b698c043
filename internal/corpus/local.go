package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/techjusticelab/opinion-ingest/internal/normalize"
)

// LocalSource walks a directory tree of PDFs on the local filesystem
// (spec.md §6's "directory tree of PDF files").
type LocalSource struct {
	Dir string
}

func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{Dir: dir}
}

func (s *LocalSource) List(ctx context.Context) ([]File, error) {
	var files []File
	err := filepath.WalkDir(s.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			return nil
		}
		info, statErr := d.Info()
		var size int64
		if statErr == nil {
			size = info.Size()
		}
		name, relErr := filepath.Rel(s.Dir, path)
		if relErr != nil {
			name = d.Name()
		}
		files = append(files, File{
			Name:                 name,
			CaseFileIDNormalized: normalize.CaseFileID(d.Name()),
			Size:                 size,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.Dir, err)
	}
	return files, nil
}

func (s *LocalSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
