package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/techjusticelab/opinion-ingest/internal/assemble"
	"github.com/techjusticelab/opinion-ingest/internal/corpus"
	"github.com/techjusticelab/opinion-ingest/internal/embedding"
	"github.com/techjusticelab/opinion-ingest/internal/llm"
	"github.com/techjusticelab/opinion-ingest/internal/metadata"
	"github.com/techjusticelab/opinion-ingest/internal/metrics"
	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/pdftext"
	"github.com/techjusticelab/opinion-ingest/internal/rag"
	"github.com/techjusticelab/opinion-ingest/internal/store"
)

// CaseJob runs one PDF's full pipeline: fetch, extract text, LLM extract,
// assemble, validate, and hand off to the Session's transactional insert
// (spec.md §4.9). It implements pipeline.Job.
type CaseJob struct {
	ID        string // uuid, minted by the orchestrator per dispatched file
	StartedAt time.Time
	File      corpus.File
	Source    corpus.Source
	Row       metadata.Row
	Extractor *pdftext.Pipeline
	LLM       llm.Client
	Embedder  embedding.Client
	EnableRAG bool
	RAGOpts   rag.Options
	Log       *zap.Logger
}

func (j *CaseJob) Run(ctx context.Context, sess store.Session) error {
	defer metrics.ObserveDuration(metrics.CaseDuration, time.Now())

	content, err := j.Source.Fetch(ctx, j.File.Name)
	if err != nil {
		return newError(KindInput, fmt.Sprintf("fetch %s", j.File.Name), err)
	}

	extractedPages, err := j.Extractor.Extract(ctx, content)
	if err != nil {
		return newError(KindInput, fmt.Sprintf("extract text from %s", j.File.Name), err)
	}

	var sb strings.Builder
	pages := make([]models.Page, len(extractedPages))
	for i, p := range extractedPages {
		pages[i] = models.Page{Number: p.Number, Text: p.Text}
		sb.WriteString(p.Text)
		sb.WriteString("\n")
	}
	fullText := sb.String()

	llmStart := time.Now()
	extracted, err := j.LLM.Extract(ctx, fullText)
	metrics.ObserveDuration(metrics.LLMCallDuration, llmStart)
	if err != nil {
		return newError(KindExtraction, fmt.Sprintf("llm extract %s", j.File.Name), err)
	}

	assembled := assemble.Assemble(j.Row, extracted, j.File.Name, fullText)
	if err := assemble.Validate(assembled); err != nil {
		return newError(KindExtraction, fmt.Sprintf("validate %s", j.File.Name), err)
	}

	if !j.EnableRAG {
		pages = nil
	}

	result, err := sess.IngestCase(ctx, assembled, pages, j.Embedder, j.RAGOpts)
	if err != nil {
		return newError(classifyIngestError(j.EnableRAG), fmt.Sprintf("ingest %s", j.File.Name), err)
	}

	if j.Log != nil {
		j.Log.Info("ingested case",
			zap.String("job_id", j.ID),
			zap.String("file", j.File.Name),
			zap.Int64("case_id", result.CaseID),
			zap.Bool("was_update", result.WasUpdate))
	}
	return nil
}

// classifyIngestError picks Indexing vs Database for a failed IngestCase
// call. The Session's transaction wraps both the dimension/case upsert and
// the RAG write path, so the call site can't distinguish them structurally;
// when RAG was enabled the more likely culprit is the indexing stage, so
// that's the default classification (spec.md §7 doesn't require finer
// granularity than the outcome log's kind field).
func classifyIngestError(ragEnabled bool) Kind {
	if ragEnabled {
		return KindIndexing
	}
	return KindDatabase
}

// Counters is the orchestrator's end-of-run summary (spec.md §4.1: "the
// orchestrator emits counters {attempted, succeeded, skipped_no_metadata,
// failed}").
type Counters struct {
	Attempted         int64
	Succeeded         int64
	SkippedNoMetadata int64
	Failed            int64
}

// Outcome is one line of the per-file outcome log (SPEC_FULL.md §11's
// outcome.jsonl format).
type Outcome struct {
	JobID        string        `json:"job_id"`
	File         string        `json:"file"`
	CaseFileID   string        `json:"case_file_id,omitempty"`
	Status       string        `json:"status"` // succeeded | failed | skipped_no_metadata
	Kind         Kind          `json:"kind,omitempty"`
	Error        string        `json:"error,omitempty"`
	Duration     time.Duration `json:"-"`
	DurationMS   int64         `json:"duration_ms,omitempty"`
}

// Orchestrator implements spec.md §4.1: directory walk, metadata join,
// bounded-parallel dispatch to a WorkerPool, and outcome aggregation.
type Orchestrator struct {
	Source    corpus.Source
	Sheet     *metadata.Sheet
	Extractor *pdftext.Pipeline
	LLM       llm.Client
	Embedder  embedding.Client
	Store     store.Store
	Workers   int
	EnableRAG bool
	RAGOpts   rag.Options
	Limit     int
	Log       *zap.Logger

	// OutcomeLogPath, if set, receives one JSON line per dispatched file
	// (SPEC_FULL.md §11). Empty disables the file; outcomes are always
	// returned to the caller either way.
	OutcomeLogPath string
}

// Run walks the corpus, joins each file against the metadata sheet, and
// dispatches matched files to a WorkerPool of o.Workers workers. It returns
// once every dispatched job has completed or ctx is cancelled (spec.md
// §4.1's cancellation rule: "in-flight workers are allowed to complete or
// abort their transaction").
func (o *Orchestrator) Run(ctx context.Context) (Counters, []Outcome, error) {
	files, err := o.Source.List(ctx)
	if err != nil {
		return Counters{}, nil, fmt.Errorf("list corpus: %w", err)
	}
	if o.Limit > 0 && len(files) > o.Limit {
		files = files[:o.Limit]
	}

	var counters Counters
	var outcomesMu sync.Mutex
	var outcomes []Outcome

	var outcomeLog *os.File
	if o.OutcomeLogPath != "" {
		f, err := os.Create(o.OutcomeLogPath)
		if err != nil {
			return Counters{}, nil, fmt.Errorf("create outcome log: %w", err)
		}
		outcomeLog = f
		defer outcomeLog.Close()
	}
	writeOutcome := func(oc Outcome) {
		outcomesMu.Lock()
		defer outcomesMu.Unlock()
		outcomes = append(outcomes, oc)
		if outcomeLog != nil {
			enc := json.NewEncoder(outcomeLog)
			enc.Encode(oc) //nolint:errcheck // best-effort audit log
		}
	}

	pool := NewWorkerPool(o.Workers, o.Workers*2)
	pool.Start(ctx, o.Store.NewSession, func(job Job, jobErr error) {
		cj := job.(*CaseJob)
		oc := Outcome{JobID: cj.ID, File: cj.File.Name, CaseFileID: cj.Row.CaseFileID, Status: "succeeded", Duration: time.Since(cj.StartedAt)}
		if jobErr != nil {
			oc.Status = "failed"
			oc.Error = jobErr.Error()
			if pe, ok := jobErr.(*Error); ok {
				oc.Kind = pe.Kind
			}
			atomic.AddInt64(&counters.Failed, 1)
			metrics.CasesFailed.Inc()
			if o.Log != nil {
				o.Log.Error("case failed", zap.String("job_id", cj.ID), zap.String("file", cj.File.Name), zap.Error(jobErr))
			}
		} else {
			atomic.AddInt64(&counters.Succeeded, 1)
			metrics.CasesSucceeded.Inc()
		}
		oc.DurationMS = oc.Duration.Milliseconds()
		writeOutcome(oc)
	})

dispatch:
	for _, f := range files {
		select {
		case <-ctx.Done():
			break dispatch
		default:
		}

		row, ok := o.Sheet.Lookup(f.CaseFileIDNormalized)
		if !ok {
			atomic.AddInt64(&counters.SkippedNoMetadata, 1)
			metrics.CasesSkippedNoMetadata.Inc()
			writeOutcome(Outcome{File: f.Name, Status: "skipped_no_metadata"})
			continue
		}

		atomic.AddInt64(&counters.Attempted, 1)
		metrics.CasesAttempted.Inc()

		job := &CaseJob{
			ID: uuid.NewString(), StartedAt: time.Now(), File: f, Source: o.Source, Row: row, Extractor: o.Extractor,
			LLM: o.LLM, Embedder: o.Embedder, EnableRAG: o.EnableRAG, RAGOpts: o.RAGOpts, Log: o.Log,
		}
		if err := pool.Submit(ctx, job); err != nil {
			atomic.AddInt64(&counters.Attempted, -1)
			break dispatch
		}
	}

	pool.CloseAndWait()

	return counters, outcomes, nil
}
