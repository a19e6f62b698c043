// Package config loads the engine's configuration from the environment,
// following the typed-sub-struct-plus-validate() pattern of the teacher
// repo's internal/config/config.go.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Environment string
	Database    DatabaseConfig
	LLM         LLMConfig
	Embedding   EmbeddingConfig
	Processing  ProcessingConfig
	Corpus      CorpusConfig
	Redis       RedisConfig
	Metrics     MetricsConfig
	Tracing     TracingConfig
	Logging     LoggingConfig
}

// DatabaseConfig holds the relational-store connection string. A
// "sqlite://" scheme selects the sqlitestore backend (SPEC_FULL.md §6);
// anything else is treated as a Postgres DSN for pgxpool.
type DatabaseConfig struct {
	URL          string
	MaxConns     int32
	MinConns     int32
}

type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

type EmbeddingConfig struct {
	BaseURL     string
	Model       string
	Dimension   int
	BatchSize   int
	TruncChars  int
	Timeout     time.Duration
}

type ProcessingConfig struct {
	Workers              int // 0 means "auto-detect from CPU count"
	WordBatchSize        int
	EnableRAG            bool
	ChunkEmbedMode       string // all | important | none
	PhraseFilterMode     string // strict | relaxed
	PhraseKeywordsFile   string // overrides the built-in legal-keyword list
	PhraseStopPhrasesFile string // overrides the built-in stop-phrase list
}

// CorpusConfig selects where the PDF tree and metadata sheet live.
type CorpusConfig struct {
	Backend   string // local | s3
	PDFDir    string
	CSVPath   string
	S3Bucket  string
	S3Region  string
	S3Prefix  string
	AccessKey string
	SecretKey string
}

type RedisConfig struct {
	URL string // empty disables the embedding cache
}

type MetricsConfig struct {
	Enabled bool
	Port    int
}

type TracingConfig struct {
	OTLPEndpoint string // empty uses a no-op tracer
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	environment := getEnv("ENVIRONMENT", "local")

	cfg := &Config{
		Environment: environment,
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://postgres@localhost:5432/opinion_ingest"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 15)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
		},
		LLM: LLMConfig{
			BaseURL: getEnv("LLM_BASE_URL", "http://localhost:11434"),
			Model:   getEnv("LLM_MODEL", "gpt-oss:20b"),
			Timeout: getEnvDuration("LLM_TIMEOUT_SEC", 180*time.Second, true),
		},
		Embedding: EmbeddingConfig{
			BaseURL:    getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
			Model:      getEnv("EMBEDDING_MODEL", "bge-large-en"),
			Dimension:  getEnvInt("EMBEDDING_DIM", 1024),
			BatchSize:  getEnvInt("EMBEDDING_BATCH", 25),
			TruncChars: getEnvInt("EMBED_TRUNC_CHARS", 4000),
			Timeout:    30 * time.Second,
		},
		Processing: ProcessingConfig{
			Workers:               getEnvInt("WORKERS", 4),
			WordBatchSize:         getEnvInt("WORD_BATCH", 500),
			EnableRAG:             !getEnvBool("NO_RAG", false),
			ChunkEmbedMode:        getEnv("CHUNK_EMBEDDINGS", "all"),
			PhraseFilterMode:      getEnv("PHRASE_FILTER", "strict"),
			PhraseKeywordsFile:    getEnv("PHRASE_KEYWORDS_FILE", ""),
			PhraseStopPhrasesFile: getEnv("PHRASE_STOPPHRASES_FILE", ""),
		},
		Corpus: CorpusConfig{
			Backend:   getEnv("CORPUS_BACKEND", "local"),
			PDFDir:    getEnv("PDF_DIR", ""),
			CSVPath:   getEnv("CSV_PATH", ""),
			S3Bucket:  getEnv("CORPUS_S3_BUCKET", ""),
			S3Region:  getEnv("CORPUS_S3_REGION", "us-east-1"),
			S3Prefix:  getEnv("CORPUS_S3_PREFIX", ""),
			AccessKey: getEnv("CORPUS_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("CORPUS_S3_SECRET_KEY", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", false),
			Port:    getEnvInt("METRICS_PORT", 9109),
		},
		Tracing: TracingConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Processing.Workers < 0 {
		return fmt.Errorf("WORKERS must not be negative")
	}
	if c.Processing.WordBatchSize < 1 {
		return fmt.Errorf("WORD_BATCH must be at least 1")
	}
	switch c.Processing.ChunkEmbedMode {
	case "all", "important", "none":
	default:
		return fmt.Errorf("CHUNK_EMBEDDINGS must be all, important, or none")
	}
	switch c.Processing.PhraseFilterMode {
	case "strict", "relaxed":
	default:
		return fmt.Errorf("PHRASE_FILTER must be strict or relaxed")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive")
	}
	if c.Corpus.Backend != "local" && c.Corpus.Backend != "s3" {
		return fmt.Errorf("CORPUS_BACKEND must be local or s3")
	}
	if c.Corpus.Backend == "s3" && c.Corpus.S3Bucket == "" {
		return fmt.Errorf("CORPUS_S3_BUCKET is required when CORPUS_BACKEND=s3")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration parses a duration env var. When seconds is true, a bare
// integer (no unit suffix) is interpreted as seconds, matching spec.md
// §6's *_TIMEOUT_SEC naming.
func getEnvDuration(key string, defaultValue time.Duration, seconds bool) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if seconds {
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
