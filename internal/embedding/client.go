// Package embedding implements the EmbeddingService client contract of
// spec.md §4.8: fixed-dimension vectors for batches of text, with
// exponential-backoff retry. The HTTP/JSON shape follows the teacher's
// pkg/processing/classifier/openai.go request pattern; the cache in front
// of it is grounded in semaj90-mau5law's pkg/cache/cache.go RedisCache.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client generates fixed-dimension embeddings for batches of text.
type Client interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

const (
	maxRetries     = 4
	baseRetryDelay = 500 * time.Millisecond
	maxRetryDelay  = 8 * time.Second
)

type httpClient struct {
	baseURL    string
	model      string
	dimension  int
	batchSize  int
	truncChars int
	httpClient *http.Client
	cache      Cache // nil disables caching
	log        *zap.Logger
}

type Config struct {
	BaseURL    string
	Model      string
	Dimension  int
	BatchSize  int
	TruncChars int
	Timeout    time.Duration
}

func NewClient(cfg Config, cache Cache, log *zap.Logger) Client {
	return &httpClient{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimension:  cfg.Dimension,
		batchSize:  cfg.BatchSize,
		truncChars: cfg.TruncChars,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache,
		log:        log,
	}
}

// Embed truncates each input, batches requests at cfg.BatchSize, and
// resolves cache hits before calling out (spec.md §4.8).
func (c *httpClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	truncated := make([]string, len(texts))
	for i, t := range texts {
		truncated[i] = truncate(t, c.truncChars)
	}

	results := make([][]float32, len(truncated))
	var missIdx []int
	var missTexts []string

	if c.cache != nil {
		for i, t := range truncated {
			if v, ok := c.cache.Get(ctx, t); ok {
				results[i] = v
				continue
			}
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, t)
		}
	} else {
		for i, t := range truncated {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, t)
		}
	}

	for start := 0; start < len(missTexts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(missTexts) {
			end = len(missTexts)
		}
		batch := missTexts[start:end]

		vecs, err := c.embedBatchWithRetry(ctx, batch)
		if err != nil {
			return nil, err
		}

		for j, vec := range vecs {
			idx := missIdx[start+j]
			results[idx] = vec
			if c.cache != nil {
				c.cache.Set(ctx, batch[j], vec)
			}
		}
	}

	return results, nil
}

func (c *httpClient) embedBatchWithRetry(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		vecs, err := c.doRequest(ctx, batch)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
		if c.log != nil {
			c.log.Warn("embedding request failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
		}
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", maxRetries, lastErr)
}

type embedRequest struct {
	Inputs []string `json:"inputs"`
}

type embedResponse struct {
	Vectors [][]float32 `json:"vectors"`
	Error   string      `json:"error,omitempty"`
}

func (c *httpClient) doRequest(ctx context.Context, batch []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Inputs: batch})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed embedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal embed response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("embed service error: %s", parsed.Error)
	}
	if len(parsed.Vectors) != len(batch) {
		return nil, fmt.Errorf("embed service returned %d vectors for %d inputs", len(parsed.Vectors), len(batch))
	}
	for _, v := range parsed.Vectors {
		if len(v) != c.dimension {
			return nil, fmt.Errorf("embed service returned vector of dimension %d, want %d", len(v), c.dimension)
		}
	}

	return parsed.Vectors, nil
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
