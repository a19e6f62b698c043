// Command ingest is the engine's single entry point: single-file mode,
// batch mode, and --verify mode all dispatch through this binary
// (SPEC_FULL.md §6), following the teacher's cmd/server/main.go shape of
// godotenv.Load + config.Load + fatal-on-setup-error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/techjusticelab/opinion-ingest/internal/config"
	"github.com/techjusticelab/opinion-ingest/internal/corpus"
	"github.com/techjusticelab/opinion-ingest/internal/embedding"
	"github.com/techjusticelab/opinion-ingest/internal/llm"
	"github.com/techjusticelab/opinion-ingest/internal/logging"
	"github.com/techjusticelab/opinion-ingest/internal/metadata"
	"github.com/techjusticelab/opinion-ingest/internal/metrics"
	"github.com/techjusticelab/opinion-ingest/internal/models"
	"github.com/techjusticelab/opinion-ingest/internal/pdftext"
	"github.com/techjusticelab/opinion-ingest/internal/pipeline"
	"github.com/techjusticelab/opinion-ingest/internal/rag"
	"github.com/techjusticelab/opinion-ingest/internal/rag/phrase"
	"github.com/techjusticelab/opinion-ingest/internal/store"
	"github.com/techjusticelab/opinion-ingest/internal/store/pgstore"
	"github.com/techjusticelab/opinion-ingest/internal/store/sqlitestore"
	"github.com/techjusticelab/opinion-ingest/internal/tracing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found or could not be loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var (
		pdfPath    = flag.String("pdf", "", "single-file mode: path to one opinion PDF")
		csvPath    = flag.String("csv", cfg.Corpus.CSVPath, "path to the metadata sheet (CSV or XLSX)")
		rowNum     = flag.Int("row", 0, "single-file mode: 1-indexed metadata row to join against --pdf")
		batch      = flag.Bool("batch", false, "batch mode: walk --pdf-dir and process every matched PDF")
		pdfDir     = flag.String("pdf-dir", cfg.Corpus.PDFDir, "batch mode: directory of opinion PDFs")
		limit      = flag.Int("limit", 0, "batch mode: consider only the first N listed PDFs, matched or not (0 = no limit)")
		workers    = flag.Int("workers", cfg.Processing.Workers, "batch mode: number of parallel workers (0 = auto-detect)")
		sequential = flag.Bool("sequential", false, "batch mode: force a single worker, overriding --workers")
		chunkEmbed = flag.String("chunk-embeddings", cfg.Processing.ChunkEmbedMode, "all | important | none")
		phraseMode = flag.String("phrase-filter", cfg.Processing.PhraseFilterMode, "strict | relaxed")
		noRAG      = flag.Bool("no-rag", !cfg.Processing.EnableRAG, "skip RAG indexing entirely")
		outcomeLog = flag.String("outcome-log", "", "batch mode: write one JSON line per file to this path")
		verify     = flag.Bool("verify", false, "verify mode: check a previously ingested case")
		caseID     = flag.Int64("case-id", 0, "verify mode: the case_id to check")
	)
	flag.Parse()

	logger := logging.Must(cfg.Environment, cfg.Logging.Level)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, "opinion-ingest", cfg.Environment, cfg.Tracing.OTLPEndpoint)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	if cfg.Metrics.Enabled {
		metricsSrv := metrics.Serve(fmt.Sprintf(":%d", cfg.Metrics.Port))
		defer metrics.Shutdown(context.Background(), metricsSrv)
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	if cfg.Processing.PhraseKeywordsFile != "" {
		if err := phrase.LoadKeywordOverrides(cfg.Processing.PhraseKeywordsFile); err != nil {
			logger.Fatal("load phrase keyword overrides", zap.Error(err))
		}
	}
	if cfg.Processing.PhraseStopPhrasesFile != "" {
		if err := phrase.LoadStopPhraseOverrides(cfg.Processing.PhraseStopPhrasesFile); err != nil {
			logger.Fatal("load phrase stop-phrase overrides", zap.Error(err))
		}
	}

	enableRAG := !*noRAG
	ragOpts := rag.Options{
		WordBatchSize: cfg.Processing.WordBatchSize,
		EmbedMode:     parseEmbedMode(*chunkEmbed),
		PhraseFilter:  parsePhraseFilter(*phraseMode),
	}

	switch {
	case *verify:
		runVerify(ctx, st.NewSession(), *caseID, logger)
	case *batch:
		runBatch(ctx, cfg, st, *pdfDir, *csvPath, *limit, *workers, *sequential, enableRAG, ragOpts, *outcomeLog, logger)
	default:
		runSingle(ctx, cfg, st, *pdfPath, *csvPath, *rowNum, enableRAG, ragOpts, logger)
	}
}

func parseEmbedMode(s string) models.EmbeddingMode {
	mode := models.EmbeddingMode(s)
	switch mode {
	case models.EmbedAll, models.EmbedImportant, models.EmbedNone:
		return mode
	default:
		return models.EmbedAll
	}
}

func parsePhraseFilter(s string) phrase.FilterMode {
	mode := phrase.FilterMode(s)
	switch mode {
	case phrase.Strict, phrase.Relaxed:
		return mode
	default:
		return phrase.Strict
	}
}

// openStore selects pgstore or sqlitestore by DATABASE_URL's scheme
// (SPEC_FULL.md §6: a "sqlite://" prefix routes to the verification
// backend; anything else is a Postgres DSN).
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if strings.HasPrefix(cfg.Database.URL, "sqlite://") {
		path := strings.TrimPrefix(cfg.Database.URL, "sqlite://")
		s, err := sqlitestore.New(path, cfg.Embedding.Dimension)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, s.Close, nil
	}

	s, err := pgstore.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns, cfg.Embedding.Dimension)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres store: %w", err)
	}
	return s, s.Close, nil
}

// newEmbeddingClient wires the Redis cache into embedding.NewClient,
// careful not to hand a typed-nil *RedisCache to the Cache interface
// parameter: that would make the interface value itself non-nil and
// panic on the first Get call inside httpClient.Embed.
func newEmbeddingClient(cfg *config.Config, logger *zap.Logger) embedding.Client {
	redisCache, err := embedding.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		logger.Warn("embedding cache disabled: could not connect to redis", zap.Error(err))
		redisCache = nil
	}
	var cache embedding.Cache
	if redisCache != nil {
		cache = redisCache
	}
	return embedding.NewClient(embedding.Config{
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimension:  cfg.Embedding.Dimension,
		BatchSize:  cfg.Embedding.BatchSize,
		TruncChars: cfg.Embedding.TruncChars,
		Timeout:    cfg.Embedding.Timeout,
	}, cache, logger)
}

func newExtractorPipeline() *pdftext.Pipeline {
	return pdftext.NewPipeline(
		pdftext.NewLedongthucExtractor(),
		pdftext.NewDslipakExtractor(),
		pdftext.NewOCRExtractor(""),
	)
}

func runVerify(ctx context.Context, sess store.Session, caseID int64, logger *zap.Logger) {
	if caseID == 0 {
		logger.Fatal("--verify requires --case-id")
	}
	report, err := sess.VerifyCase(ctx, caseID)
	if err != nil {
		logger.Fatal("verify case", zap.Int64("case_id", caseID), zap.Error(err))
	}

	fmt.Printf("case_id:            %d\n", report.CaseID)
	fmt.Printf("processing_status:  %s\n", report.ProcessingStatus)
	fmt.Printf("chunk_count:        %d\n", report.ChunkCount)
	fmt.Printf("sentence_count:     %d\n", report.SentenceCount)
	fmt.Printf("word_occurrences:   %d\n", report.WordOccurrenceCount)
	fmt.Printf("phrase_count:       %d\n", report.PhraseCount)
	fmt.Printf("embedding_count:    %d\n", report.EmbeddingCount)
	fmt.Printf("chunk_ordering_ok:  %v\n", report.OrderingValid)

	if report.ProcessingStatus != models.StatusFullyProcessed || !report.OrderingValid {
		os.Exit(1)
	}
}

func runSingle(ctx context.Context, cfg *config.Config, st store.Store, pdfPath, csvPath string, rowNum int, enableRAG bool, ragOpts rag.Options, logger *zap.Logger) {
	if pdfPath == "" || csvPath == "" || rowNum == 0 {
		logger.Fatal("single-file mode requires --pdf, --csv, and --row")
	}

	sheet, err := metadata.Load(csvPath)
	if err != nil {
		logger.Fatal("load metadata sheet", zap.Error(err))
	}
	row, ok := sheet.RowAt(rowNum)
	if !ok {
		logger.Fatal("row out of range", zap.Int("row", rowNum), zap.Int("sheet_len", sheet.Len()))
	}

	content, err := os.ReadFile(pdfPath)
	if err != nil {
		logger.Fatal("read pdf", zap.String("path", pdfPath), zap.Error(err))
	}

	job := &pipeline.CaseJob{
		File:      corpus.File{Name: filepathBase(pdfPath)},
		Source:    singleFileSource{name: filepathBase(pdfPath), content: content},
		Row:       row,
		Extractor: newExtractorPipeline(),
		LLM:       llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout, logger),
		Embedder:  newEmbeddingClient(cfg, logger),
		EnableRAG: enableRAG,
		RAGOpts:   ragOpts,
		Log:       logger,
	}

	sess := st.NewSession()
	if err := job.Run(ctx, sess); err != nil {
		logger.Fatal("ingest failed", zap.Error(err))
	}
	logger.Info("ingest succeeded", zap.String("pdf", pdfPath))
}

func runBatch(ctx context.Context, cfg *config.Config, st store.Store, pdfDir, csvPath string, limit, workers int, sequential, enableRAG bool, ragOpts rag.Options, outcomeLogPath string, logger *zap.Logger) {
	if pdfDir == "" || csvPath == "" {
		logger.Fatal("batch mode requires --pdf-dir and --csv")
	}

	corpusCfg := cfg.Corpus
	corpusCfg.PDFDir = pdfDir
	source, err := corpus.New(ctx, corpusCfg)
	if err != nil {
		logger.Fatal("open corpus source", zap.Error(err))
	}

	sheet, err := metadata.Load(csvPath)
	if err != nil {
		logger.Fatal("load metadata sheet", zap.Error(err))
	}

	if workers <= 0 {
		workers = pipeline.DefaultWorkerCount()
	}
	if sequential {
		workers = 1
	}

	orch := &pipeline.Orchestrator{
		Source:         source,
		Sheet:          sheet,
		Extractor:      newExtractorPipeline(),
		LLM:            llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout, logger),
		Embedder:       newEmbeddingClient(cfg, logger),
		Store:          st,
		Workers:        workers,
		EnableRAG:      enableRAG,
		RAGOpts:        ragOpts,
		Limit:          limit,
		Log:            logger,
		OutcomeLogPath: outcomeLogPath,
	}

	start := time.Now()
	counters, outcomes, err := orch.Run(ctx)
	if err != nil {
		logger.Fatal("batch run failed", zap.Error(err))
	}

	logger.Info("batch run complete",
		zap.Int64("attempted", counters.Attempted),
		zap.Int64("succeeded", counters.Succeeded),
		zap.Int64("skipped_no_metadata", counters.SkippedNoMetadata),
		zap.Int64("failed", counters.Failed),
		zap.Duration("elapsed", time.Since(start)))

	for _, o := range outcomes {
		if o.Status == "failed" {
			logger.Warn("case failed", zap.String("file", o.File), zap.String("kind", string(o.Kind)), zap.String("error", o.Error))
		}
	}

	if counters.Failed > 0 {
		os.Exit(1)
	}
}

func filepathBase(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}

// singleFileSource adapts one already-read PDF into a corpus.Source so
// pipeline.CaseJob's Fetch call works unchanged in single-file mode.
type singleFileSource struct {
	name    string
	content []byte
}

func (s singleFileSource) List(ctx context.Context) ([]corpus.File, error) {
	return []corpus.File{{Name: s.name}}, nil
}

func (s singleFileSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	return s.content, nil
}
